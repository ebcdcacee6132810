// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tools

import (
	"testing"

	"cogentcore.org/toolsys/slots"
	"github.com/stretchr/testify/assert"
)

func TestSlotManagerTriggers(t *testing.T) {
	sm := NewSlotManager()
	press := slots.Get("press")
	move := slots.Get("move")
	other := slots.Get("other")

	grab := newRecTool("grab", []*slots.Slot{press}, []*slots.Slot{move})
	sm.AddTool(grab)

	// activation slots trigger regardless of activation state
	assert.True(t, sm.IsTrigger(press))

	// current slots only trigger while the tool is active
	assert.False(t, sm.IsTrigger(move))
	assert.False(t, sm.IsTrigger(other))
	assert.False(t, sm.IsActive(grab))

	sm.ToolActivated(grab)
	assert.True(t, sm.IsActive(grab))
	assert.True(t, sm.IsTrigger(move))
	assert.Equal(t, []Tool{grab}, sm.ActiveToolsOn(move))
	assert.Equal(t, []Tool{grab}, sm.DeactivationTargets(press))

	sm.ToolDeactivated(grab)
	assert.False(t, sm.IsActive(grab))
	assert.False(t, sm.IsTrigger(move))
	assert.Empty(t, sm.ActiveToolsOn(move))
	assert.Empty(t, sm.DeactivationTargets(press))
}

func TestSlotManagerRefcount(t *testing.T) {
	sm := NewSlotManager()
	press := slots.Get("press")
	move := slots.Get("move")
	grab := newRecTool("grab", []*slots.Slot{press}, []*slots.Slot{move})
	sm.AddTool(grab)

	// two activations on different paths: active until both end
	sm.ToolActivated(grab)
	sm.ToolActivated(grab)
	sm.ToolDeactivated(grab)
	assert.True(t, sm.IsActive(grab))
	sm.ToolDeactivated(grab)
	assert.False(t, sm.IsActive(grab))
}

func TestSlotManagerAlwaysActive(t *testing.T) {
	sm := NewSlotManager()
	tickSlot := slots.Get("tick")
	spin := newRecTool("spin", nil, []*slots.Slot{tickSlot})
	sm.AddTool(spin)

	assert.True(t, sm.IsActive(spin))
	assert.True(t, sm.IsTrigger(tickSlot))

	// deactivation cannot turn off an always-active tool
	sm.ToolDeactivated(spin)
	assert.True(t, sm.IsActive(spin))

	sm.RemoveTool(spin)
	assert.False(t, sm.IsActive(spin))
	assert.False(t, sm.IsTrigger(tickSlot))
}

func TestSlotManagerCandidates(t *testing.T) {
	sm := NewSlotManager()
	press := slots.Get("press")
	a := newRecTool("a", []*slots.Slot{press}, nil)
	b := newRecTool("b", []*slots.Slot{press}, nil)
	sm.AddTool(a)
	sm.AddTool(b)
	assert.Equal(t, []Tool{a, b}, sm.ActivationCandidates(press))

	sm.RemoveTool(a)
	assert.Equal(t, []Tool{b}, sm.ActivationCandidates(press))
	assert.True(t, sm.IsTrigger(press))

	sm.RemoveTool(b)
	assert.Empty(t, sm.ActivationCandidates(press))
	assert.False(t, sm.IsTrigger(press))
}
