// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slots

import (
	"fmt"

	"cogentcore.org/core/math32"
)

// PressThreshold is the magnitude at or above which an axis value counts
// as pressed. It is the midpoint of the analog range so that both digital
// buttons (0 / 1) and analog axes (-1 .. 1) classify sensibly.
const PressThreshold = 0.5

// AxisState is the immutable scalar state of an axis slot. The raw value is
// typically in -1..1 for analog axes and 0 / 1 for buttons, but any float32
// is representable. The pressed and released facets are derived from the
// value by [AxisState.Pressed], never stored, so the two can never disagree.
type AxisState struct {
	value float32
}

// Standard digital axis states.
var (
	// AxisPressed is the canonical fully-pressed button state.
	AxisPressed = Axis(1)

	// AxisReleased is the canonical fully-released button state.
	AxisReleased = Axis(0)
)

// Axis returns an [AxisState] holding the given value.
func Axis(value float32) AxisState {
	return AxisState{value: value}
}

// Value returns the raw axis value.
func (a AxisState) Value() float32 {
	return a.value
}

// Pressed reports whether the magnitude of the value is at least
// [PressThreshold].
func (a AxisState) Pressed() bool {
	return math32.Abs(a.value) >= PressThreshold
}

// Released reports the opposite of [AxisState.Pressed].
func (a AxisState) Released() bool {
	return !a.Pressed()
}

// Equal reports whether the two axis values are equal within the given
// tolerance.
func (a AxisState) Equal(o AxisState, tol float32) bool {
	return math32.Abs(a.value-o.value) <= tol
}

func (a AxisState) String() string {
	switch {
	case a.Pressed():
		return fmt.Sprintf("pressed(%g)", a.value)
	default:
		return fmt.Sprintf("released(%g)", a.value)
	}
}
