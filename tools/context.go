// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tools

import (
	"time"

	"cogentcore.org/core/math32"
	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/scene"
	"cogentcore.org/toolsys/slots"
)

// Context carries everything a tool callback needs: the triggering
// event, access to current device state, the scene paths involved, and
// the pick results for the pointer ray. A fresh Context is built for
// each callback; tools must not retain it beyond the call.
type Context struct {
	sys      *System
	event    *events.ToolEvent
	path     *scene.Path
	rejected bool
}

// Viewer returns the viewer the system was created with, or nil.
func (tc *Context) Viewer() scene.Viewer {
	return tc.sys.viewer
}

// Key returns the owning system's unique key, letting tools that are
// shared between systems keep per-system state.
func (tc *Context) Key() string {
	return tc.sys.key
}

// Event returns the trigger event being dispatched.
func (tc *Context) Event() *events.ToolEvent {
	return tc.event
}

// Source returns the slot of the trigger event.
func (tc *Context) Source() *slots.Slot {
	return tc.event.Slot
}

// Time returns the timestamp of the trigger event.
func (tc *Context) Time() time.Time {
	return tc.event.Time
}

// AxisState returns the current axis state of the given slot from the
// device manager. It returns [devices.ErrMissingSlot] if no axis value
// has been produced for the slot yet.
func (tc *Context) AxisState(s *slots.Slot) (slots.AxisState, error) {
	return tc.sys.devMgr.AxisState(s)
}

// Matrix returns the current transformation of the given slot from the
// device manager. It returns [devices.ErrMissingSlot] if no matrix has
// been produced for the slot yet.
func (tc *Context) Matrix(s *slots.Slot) (math32.Matrix4, error) {
	return tc.sys.devMgr.Matrix(s)
}

// RootToTool returns the scene path the tool is registered at for this
// dispatch.
func (tc *Context) RootToTool() *scene.Path {
	return tc.path
}

// RootToLocal returns the path of the current pick when the pointer hit
// something, and the tool's own path otherwise. This is the frame tools
// should interpret pointer coordinates in.
func (tc *Context) RootToLocal() *scene.Path {
	if picks := tc.sys.currentPicks(); len(picks) > 0 {
		return picks[0].Path
	}
	return tc.path
}

// CurrentPick returns the nearest pick for the current pointer ray, or
// nil if the ray hit nothing or no pick system is set.
func (tc *Context) CurrentPick() *PickResult {
	picks := tc.sys.currentPicks()
	if len(picks) == 0 {
		return nil
	}
	return &picks[0]
}

// CurrentPicks returns all picks for the current pointer ray, nearest
// first. Pick results are computed at most once per trigger event.
func (tc *Context) CurrentPicks() []PickResult {
	return tc.sys.currentPicks()
}

// AvatarPath returns the viewer's avatar path, falling back to the
// camera path, or nil without a viewer.
func (tc *Context) AvatarPath() *scene.Path {
	if tc.sys.viewer == nil {
		return nil
	}
	if p := tc.sys.viewer.AvatarPath(); p != nil {
		return p
	}
	return tc.sys.viewer.CameraPath()
}

// PickSystem returns the pick system, or nil if none is set. Tools can
// use it to cast their own rays.
func (tc *Context) PickSystem() PickSystem {
	return tc.sys.pick
}

// Reject, called from within [Tool.Activate], undoes the activation:
// the tool does not become active and receives no Deactivate call.
// Reject has no effect in other callbacks.
func (tc *Context) Reject() {
	tc.rejected = true
}
