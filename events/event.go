// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events defines the tool event type and the frame-paced queue
// that feeds a tool system. Events originate in raw devices, are coalesced
// by the [Queue], and are evaluated one at a time by the single dispatch
// goroutine, which may derive further events through virtual devices.
package events

import (
	"fmt"
	"time"

	"cogentcore.org/core/math32"
	"cogentcore.org/toolsys/slots"
)

// Tolerances used when comparing event payloads, both for queue coalescing
// and for the idempotence guard in the device manager. Values closer than
// these are treated as the same value.
const (
	// AxisTolerance is the tolerance for axis payloads.
	AxisTolerance float32 = 1e-6

	// MatrixTolerance is the per-element tolerance for transformation
	// payloads.
	MatrixTolerance float32 = 1e-6
)

// ToolEvent is one value change on one slot. It carries an axis payload,
// a transformation payload, or both (or neither, for pure pings used in
// tests). Events are created by raw and virtual devices and consumed by
// the device manager and tools; a consumed event is invisible to later
// trigger classification.
//
// Events are only written by their producing device and then by the single
// dispatch goroutine, so the fields need no locking.
type ToolEvent struct {
	// Source is the name of the device that produced the event.
	Source string

	// Time is when the device produced the event.
	Time time.Time

	// Slot is the slot whose value this event changes.
	Slot *slots.Slot

	// Axis is the axis payload, or nil if the event carries none.
	Axis *slots.AxisState

	// Matrix is the transformation payload, or nil if the event
	// carries none.
	Matrix *math32.Matrix4

	// PressEdge is set by the device manager when this event moved the
	// slot's axis state from released to pressed.
	PressEdge bool

	// ReleaseEdge is set by the device manager when this event moved the
	// slot's axis state from pressed to released.
	ReleaseEdge bool

	consumed bool
}

// NewAxisEvent returns an event carrying an axis payload.
func NewAxisEvent(source string, slot *slots.Slot, a slots.AxisState, t time.Time) *ToolEvent {
	return &ToolEvent{Source: source, Time: t, Slot: slot, Axis: &a}
}

// NewMatrixEvent returns an event carrying a transformation payload.
// The matrix is copied, so the caller can keep mutating its own.
func NewMatrixEvent(source string, slot *slots.Slot, m math32.Matrix4, t time.Time) *ToolEvent {
	return &ToolEvent{Source: source, Time: t, Slot: slot, Matrix: &m}
}

// Consume marks the event as consumed, hiding it from trigger
// classification. The consumed latch cannot be cleared.
func (ev *ToolEvent) Consume() {
	ev.consumed = true
}

// IsConsumed reports whether [ToolEvent.Consume] has been called.
func (ev *ToolEvent) IsConsumed() bool {
	return ev.consumed
}

// Replaces reports whether ev can replace prev in the queue: the two must
// target the same slot from the same source, and their payloads must have
// the same shape and be equal within [AxisTolerance] and [MatrixTolerance].
func (ev *ToolEvent) Replaces(prev *ToolEvent) bool {
	if ev.Slot != prev.Slot || ev.Source != prev.Source {
		return false
	}
	if (ev.Axis == nil) != (prev.Axis == nil) {
		return false
	}
	if (ev.Matrix == nil) != (prev.Matrix == nil) {
		return false
	}
	if ev.Axis != nil && !ev.Axis.Equal(*prev.Axis, AxisTolerance) {
		return false
	}
	if ev.Matrix != nil && !MatrixEqual(ev.Matrix, prev.Matrix, MatrixTolerance) {
		return false
	}
	return true
}

func (ev *ToolEvent) String() string {
	s := fmt.Sprintf("%s@%s", ev.Slot, ev.Source)
	if ev.Axis != nil {
		s += " " + ev.Axis.String()
	}
	if ev.Matrix != nil {
		s += fmt.Sprintf(" pos%v", ev.Matrix.Pos())
	}
	if ev.consumed {
		s += " (consumed)"
	}
	return s
}

// MatrixEqual reports whether every element of the two matrices is equal
// within the given tolerance. A nil matrix is only equal to another nil.
func MatrixEqual(a, b *math32.Matrix4, tol float32) bool {
	if a == nil || b == nil {
		return a == b
	}
	for i := range a {
		if math32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
