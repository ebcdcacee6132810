// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package devices implements the device layer of a tool system: raw devices
// that adapt hardware or synthetic sources into slot events, virtual devices
// that derive new slot values from existing ones, and the [Manager] that
// owns the current value of every slot, the subscription network between
// slots and virtual devices, and the slot aliases.
package devices

import (
	"fmt"
	"time"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"
	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/slots"
)

// ErrMissingSlot is returned by slot state lookups when the slot has no
// value yet. Virtual devices return it (wrapped or plain) from
// [VirtualDevice.Process] to signal that they cannot fire yet; the manager
// skips them without logging an error.
var ErrMissingSlot = errors.New("no value for slot yet")

// RawDevice is a source of tool events: a hardware adapter, a network
// bridge, a timer, or a replay of a recorded trace. Raw devices push events
// into the queue they are initialized with, or implement [events.Poller]
// to be sampled once per frame.
type RawDevice interface {
	// Name returns the instance name of the device, used as the source
	// of the events it emits.
	Name() string

	// Initialize prepares the device and hands it the queue to feed and
	// its free-form configuration parameters. It is called exactly once,
	// before any mapping.
	Initialize(q *events.Queue, params map[string]any) error

	// MapRawDevice binds the device-local source name to the given slot
	// and returns an event carrying the slot's initial value, which the
	// manager writes into the slot state without dispatching it.
	MapRawDevice(source string, slot *slots.Slot) (*events.ToolEvent, error)

	// Dispose releases the device's resources. No events may be emitted
	// after Dispose returns.
	Dispose()
}

// VirtualDevice derives events on an output slot from the current state of
// its input slots. Virtual devices are pure with respect to slot state:
// they read it through the [Context] they are handed and communicate
// results only through returned events.
type VirtualDevice interface {
	// Name returns the type name of the device, used in logs.
	Name() string

	// Initialize binds the device to its input and output slots and
	// decodes its free-form configuration parameters. It is called
	// exactly once, before any Process call.
	Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error

	// Process is called whenever one of the device's input slots changes,
	// with the triggering event and the current slot state. It returns a
	// derived event for the output slot, or nil if this change produces
	// none. Returning an error wrapping [ErrMissingSlot] means an input
	// has no value yet and is not an error condition.
	Process(dc *Context) (*events.ToolEvent, error)

	// Dispose releases any resources held by the device.
	Dispose()
}

// Context is the read-only view a [VirtualDevice] gets of the event being
// evaluated and of the current slot state.
type Context struct {
	mgr   *Manager
	event *events.ToolEvent
}

// Event returns the event that triggered this Process call.
func (dc *Context) Event() *events.ToolEvent {
	return dc.event
}

// Time returns the time of the triggering event.
func (dc *Context) Time() time.Time {
	return dc.event.Time
}

// AxisState returns the current axis state of the given slot, or
// [ErrMissingSlot] if it has none.
func (dc *Context) AxisState(slot *slots.Slot) (slots.AxisState, error) {
	return dc.mgr.AxisState(slot)
}

// Matrix returns the current transformation of the given slot, or
// [ErrMissingSlot] if it has none.
func (dc *Context) Matrix(slot *slots.Slot) (math32.Matrix4, error) {
	return dc.mgr.Matrix(slot)
}

// missingSlot returns an error wrapping [ErrMissingSlot] naming the slot.
func missingSlot(slot *slots.Slot) error {
	return fmt.Errorf("%w: %s", ErrMissingSlot, slot)
}
