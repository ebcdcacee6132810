// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tools

import (
	"slices"

	"cogentcore.org/toolsys/slots"
)

// SlotManager indexes tools by the slots they listen to, and tracks
// which tools are currently active. The [System] uses it to classify
// trigger slots and to find the tools a given trigger event concerns.
// Activation is reference counted: a tool activated on several scene
// paths stays active until the last path deactivates.
type SlotManager struct {
	activation map[*slots.Slot][]Tool
	current    map[*slots.Slot][]Tool

	// active counts activations per tool. Always-active tools hold a
	// permanent count of one from registration.
	active map[Tool]int

	// always marks tools with no activation slots, which are active
	// from registration to removal.
	always map[Tool]bool
}

func NewSlotManager() *SlotManager {
	return &SlotManager{
		activation: make(map[*slots.Slot][]Tool),
		current:    make(map[*slots.Slot][]Tool),
		active:     make(map[Tool]int),
		always:     make(map[Tool]bool),
	}
}

// AddTool indexes the given tool under its activation and current slots.
// A tool with no activation slots is marked always active immediately.
// AddTool is called once per tool, regardless of how many scene paths
// the tool is registered at.
func (sm *SlotManager) AddTool(t Tool) {
	for _, s := range t.ActivationSlots() {
		sm.activation[s] = append(sm.activation[s], t)
	}
	for _, s := range t.CurrentSlots() {
		sm.current[s] = append(sm.current[s], t)
	}
	if len(t.ActivationSlots()) == 0 {
		sm.always[t] = true
		sm.active[t] = 1
	}
}

// RemoveTool removes the tool from all indexes and clears any remaining
// activation state.
func (sm *SlotManager) RemoveTool(t Tool) {
	for _, s := range t.ActivationSlots() {
		sm.activation[s] = removeTool(sm.activation[s], t)
		if len(sm.activation[s]) == 0 {
			delete(sm.activation, s)
		}
	}
	for _, s := range t.CurrentSlots() {
		sm.current[s] = removeTool(sm.current[s], t)
		if len(sm.current[s]) == 0 {
			delete(sm.current, s)
		}
	}
	delete(sm.active, t)
	delete(sm.always, t)
}

// IsTrigger reports whether an event on the given slot can affect any
// tool: either some registered tool lists it as an activation slot, or
// some currently active tool lists it as a current slot.
func (sm *SlotManager) IsTrigger(s *slots.Slot) bool {
	if len(sm.activation[s]) > 0 {
		return true
	}
	for _, t := range sm.current[s] {
		if sm.active[t] > 0 {
			return true
		}
	}
	return false
}

// ActivationCandidates returns the tools that list the given slot as an
// activation slot, in registration order.
func (sm *SlotManager) ActivationCandidates(s *slots.Slot) []Tool {
	return slices.Clone(sm.activation[s])
}

// ActiveToolsOn returns the currently active tools that list the given
// slot as a current slot, in registration order.
func (sm *SlotManager) ActiveToolsOn(s *slots.Slot) []Tool {
	var ts []Tool
	for _, t := range sm.current[s] {
		if sm.active[t] > 0 {
			ts = append(ts, t)
		}
	}
	return ts
}

// DeactivationTargets returns the currently active tools that list the
// given slot as an activation slot. These are the tools a release edge
// on the slot deactivates.
func (sm *SlotManager) DeactivationTargets(s *slots.Slot) []Tool {
	var ts []Tool
	for _, t := range sm.activation[s] {
		if sm.active[t] > 0 {
			ts = append(ts, t)
		}
	}
	return ts
}

// ToolActivated records one activation of the tool.
func (sm *SlotManager) ToolActivated(t Tool) {
	sm.active[t]++
}

// ToolDeactivated records the end of one activation. Always-active
// tools are unaffected.
func (sm *SlotManager) ToolDeactivated(t Tool) {
	if sm.always[t] {
		return
	}
	if sm.active[t] <= 1 {
		delete(sm.active, t)
		return
	}
	sm.active[t]--
}

// IsActive reports whether the tool has at least one live activation.
func (sm *SlotManager) IsActive(t Tool) bool {
	return sm.active[t] > 0
}

func removeTool(ts []Tool, t Tool) []Tool {
	return slices.DeleteFunc(ts, func(o Tool) bool { return o == t })
}
