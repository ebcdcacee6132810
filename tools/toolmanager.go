// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tools

import (
	"slices"

	"cogentcore.org/toolsys/scene"
)

// registration binds a tool to one scene path. The same tool may be
// registered at several paths, and activates independently per path.
type registration struct {
	tool Tool
	path *scene.Path
}

// ToolManager tracks where tools are registered in the scene and on
// which paths they are currently active. Paths compare by node identity,
// so two registrations of one tool are distinct exactly when their paths
// differ.
type ToolManager struct {
	regs   []registration
	active []registration
}

func NewToolManager() *ToolManager {
	return &ToolManager{}
}

// Add registers the tool at the given path. It reports false if the
// tool is already registered at an equal path.
func (tm *ToolManager) Add(t Tool, p *scene.Path) bool {
	if findReg(tm.regs, t, p) >= 0 {
		return false
	}
	tm.regs = append(tm.regs, registration{tool: t, path: p})
	return true
}

// Remove unregisters the tool from the given path, ending any activation
// there. It reports false if no such registration exists.
func (tm *ToolManager) Remove(t Tool, p *scene.Path) bool {
	i := findReg(tm.regs, t, p)
	if i < 0 {
		return false
	}
	tm.regs = slices.Delete(tm.regs, i, i+1)
	if a := findReg(tm.active, t, p); a >= 0 {
		tm.active = slices.Delete(tm.active, a, a+1)
	}
	return true
}

// IsRegistered reports whether the tool is registered at any path.
func (tm *ToolManager) IsRegistered(t Tool) bool {
	for _, r := range tm.regs {
		if r.tool == t {
			return true
		}
	}
	return false
}

// RegisteredPaths returns the paths the tool is registered at, in
// registration order.
func (tm *ToolManager) RegisteredPaths(t Tool) []*scene.Path {
	var ps []*scene.Path
	for _, r := range tm.regs {
		if r.tool == t {
			ps = append(ps, r.path)
		}
	}
	return ps
}

// ToolsAt returns the tools registered at exactly the given path, in
// registration order.
func (tm *ToolManager) ToolsAt(p *scene.Path) []Tool {
	var ts []Tool
	for _, r := range tm.regs {
		if r.path.Equal(p) {
			ts = append(ts, r.tool)
		}
	}
	return ts
}

// Tools returns the distinct registered tools, in first-registration
// order.
func (tm *ToolManager) Tools() []Tool {
	var ts []Tool
	for _, r := range tm.regs {
		if !slices.Contains(ts, r.tool) {
			ts = append(ts, r.tool)
		}
	}
	return ts
}

// Activate marks the tool active on the given path. It reports false if
// the tool is not registered there or is already active there.
func (tm *ToolManager) Activate(t Tool, p *scene.Path) bool {
	if findReg(tm.regs, t, p) < 0 || findReg(tm.active, t, p) >= 0 {
		return false
	}
	tm.active = append(tm.active, registration{tool: t, path: p})
	return true
}

// Deactivate clears the tool's activation on the given path. It reports
// false if the tool was not active there.
func (tm *ToolManager) Deactivate(t Tool, p *scene.Path) bool {
	i := findReg(tm.active, t, p)
	if i < 0 {
		return false
	}
	tm.active = slices.Delete(tm.active, i, i+1)
	return true
}

// IsActive reports whether the tool is active on the given path.
func (tm *ToolManager) IsActive(t Tool, p *scene.Path) bool {
	return findReg(tm.active, t, p) >= 0
}

// ActivePaths returns the paths the tool is currently active on, in
// activation order.
func (tm *ToolManager) ActivePaths(t Tool) []*scene.Path {
	var ps []*scene.Path
	for _, r := range tm.active {
		if r.tool == t {
			ps = append(ps, r.path)
		}
	}
	return ps
}

func findReg(regs []registration, t Tool, p *scene.Path) int {
	for i, r := range regs {
		if r.tool == t && r.path.Equal(p) {
			return i
		}
	}
	return -1
}
