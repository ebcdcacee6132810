// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package devices

import (
	"fmt"
	"time"

	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/slots"
)

func init() {
	RegisterRaw("timer", func(name string) RawDevice { return &Timer{name: name} })
}

// Timer is the raw device behind the SystemTime slot. Once per queue tick
// it emits, on its single "tick" source, the milliseconds elapsed since it
// was initialized. The value is absolute rather than a per-tick delta so
// that coalescing in the queue can never lose time; integrating devices
// (see [TimestepEvolution]) derive their timestep from consecutive values.
type Timer struct {
	name  string
	q     *events.Queue
	slot  *slots.Slot
	start time.Time
}

func (tm *Timer) Name() string {
	return tm.name
}

func (tm *Timer) Initialize(q *events.Queue, params map[string]any) error {
	tm.q = q
	tm.start = time.Now()
	return nil
}

func (tm *Timer) MapRawDevice(source string, slot *slots.Slot) (*events.ToolEvent, error) {
	if source != "tick" {
		return nil, fmt.Errorf("timer: unknown source %q", source)
	}
	tm.slot = slot
	return events.NewAxisEvent(tm.name, slot, slots.Axis(0), tm.start), nil
}

// Poll emits the current elapsed time. It runs once per queue tick.
func (tm *Timer) Poll(now time.Time) {
	if tm.slot == nil {
		return
	}
	elapsed := float32(now.Sub(tm.start).Milliseconds())
	tm.q.AddEvent(events.NewAxisEvent(tm.name, tm.slot, slots.Axis(elapsed), now))
}

func (tm *Timer) Dispose() {
	tm.slot = nil
}
