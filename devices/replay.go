// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package devices

import (
	"fmt"
	"time"

	"cogentcore.org/core/base/iox/jsonx"
	"cogentcore.org/core/math32"
	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/slots"
)

func init() {
	RegisterRaw("replay", func(name string) RawDevice { return &Replay{name: name} })
}

// TraceEvent is the serialized form of one event in a recorded trace,
// written by [Recorder] and played back by [Replay].
type TraceEvent struct {
	// At is the offset from the start of the trace in milliseconds.
	At float64 `json:"at"`

	// Source is the name of the device that originally produced the event.
	Source string `json:"source"`

	// Slot is the slot name.
	Slot string `json:"slot"`

	// Axis is the axis payload value, if any.
	Axis *float32 `json:"axis,omitempty"`

	// Matrix is the transformation payload, if any.
	Matrix *math32.Matrix4 `json:"matrix,omitempty"`
}

// Replay is a raw device that plays back a recorded event trace in real
// time: each queue tick it emits the trace events whose offset has been
// reached. Trace entries address slots by name, so a replay needs no
// mappings of its own. Params: file (the JSON trace, required),
// loop (restart at the end, default false).
type Replay struct {
	name string
	q    *events.Queue

	// Loop restarts the trace from the beginning when it ends.
	Loop bool `mapstructure:"loop"`

	trace []TraceEvent
	start time.Time
	next  int
}

func (rp *Replay) Name() string {
	return rp.name
}

func (rp *Replay) Initialize(q *events.Queue, params map[string]any) error {
	var p struct {
		File string `mapstructure:"file"`
		Loop bool   `mapstructure:"loop"`
	}
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	if p.File == "" {
		return fmt.Errorf("replay: needs a trace file parameter")
	}
	if err := jsonx.Open(&rp.trace, p.File); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	rp.q = q
	rp.Loop = p.Loop
	rp.start = time.Now()
	return nil
}

// MapRawDevice is a no-op: trace entries carry their slot names.
func (rp *Replay) MapRawDevice(source string, slot *slots.Slot) (*events.ToolEvent, error) {
	return nil, nil
}

// Poll emits every trace event whose offset has been reached.
func (rp *Replay) Poll(now time.Time) {
	if rp.q == nil {
		return
	}
	elapsed := float64(now.Sub(rp.start).Microseconds()) / 1000
	for rp.next < len(rp.trace) && rp.trace[rp.next].At <= elapsed {
		te := rp.trace[rp.next]
		rp.next++
		ev := &events.ToolEvent{
			Source: te.Source,
			Time:   rp.start.Add(time.Duration(te.At * float64(time.Millisecond))),
			Slot:   slots.Get(te.Slot),
		}
		if te.Axis != nil {
			a := slots.Axis(*te.Axis)
			ev.Axis = &a
		}
		if te.Matrix != nil {
			m := *te.Matrix
			ev.Matrix = &m
		}
		rp.q.AddEvent(ev)
	}
	if rp.next >= len(rp.trace) && rp.Loop && len(rp.trace) > 0 {
		rp.start = now
		rp.next = 0
	}
}

func (rp *Replay) Dispose() {
	rp.next = len(rp.trace)
	rp.Loop = false
	rp.q = nil
}
