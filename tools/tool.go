// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tools implements the tool system: it routes device events to
// tools attached to scene graph nodes, managing their activation and
// deactivation through a pick-gated state machine.
//
// A [Tool] declares activation slots, which gate it, and current slots,
// which drive it while it is active. The [System] evaluates each incoming
// event through the device network in [devices.Manager], classifies the
// resulting events as triggers, and dispatches them as Activate, Perform,
// and Deactivate calls. A tool with no activation slots is always active
// and receives Perform for every trigger on its current slots.
package tools

import (
	"cogentcore.org/core/tree"
	"cogentcore.org/toolsys/slots"
)

// Tool is the interface for tools that respond to input events while
// attached to a scene graph path. Implementations typically embed
// [ToolBase] and override the callbacks they need.
type Tool interface {

	// Name returns a short descriptive name for the tool, used in logs.
	Name() string

	// ActivationSlots returns the slots whose press edges activate the
	// tool and whose release edges deactivate it. An empty list makes
	// the tool always active.
	ActivationSlots() []*slots.Slot

	// CurrentSlots returns the slots the tool wants to receive Perform
	// calls for while it is active.
	CurrentSlots() []*slots.Slot

	// Activate is called when a press edge on an activation slot
	// selects this tool. The context carries the triggering event and
	// the pick that selected it. Calling [Context.Reject] inside
	// Activate undoes the activation.
	Activate(tc *Context)

	// Perform is called for each trigger event on a current slot while
	// the tool is active.
	Perform(tc *Context)

	// Deactivate is called when a release edge on an activation slot
	// ends the activation.
	Deactivate(tc *Context)
}

// ToolNode is implemented by scene graph nodes that carry their own
// tools. [System.RegisterSceneTools] walks the scene and adds each
// node's tools at that node's path.
type ToolNode interface {
	tree.Node

	// SceneTools returns the tools to register at this node.
	SceneTools() []Tool
}

// ToolBase provides a base implementation of [Tool] with no-op
// callbacks. Concrete tools embed it and set the slot lists, then
// override the callbacks they care about.
type ToolBase struct {

	// ToolName is the name reported by [ToolBase.Name].
	ToolName string

	// Activation is the list of activation slots.
	Activation []*slots.Slot

	// Current is the list of current slots.
	Current []*slots.Slot
}

// NewToolBase returns a ToolBase with the given name, activated by
// activation and driven by current. Either list may be empty.
func NewToolBase(name string, activation, current []*slots.Slot) *ToolBase {
	return &ToolBase{ToolName: name, Activation: activation, Current: current}
}

func (tb *ToolBase) Name() string { return tb.ToolName }

func (tb *ToolBase) ActivationSlots() []*slots.Slot { return tb.Activation }

func (tb *ToolBase) CurrentSlots() []*slots.Slot { return tb.Current }

func (tb *ToolBase) Activate(tc *Context) {}

func (tb *ToolBase) Perform(tc *Context) {}

func (tb *ToolBase) Deactivate(tc *Context) {}

var _ Tool = (*ToolBase)(nil)
