// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package devices

import (
	"slices"
	"sync"
	"time"

	"cogentcore.org/core/base/iox/jsonx"
	"cogentcore.org/toolsys/events"
)

// Recorder captures raw events as a [TraceEvent] trace that [Replay] can
// play back. A tool system with a recorder attached passes every raw event
// entering dispatch to [Recorder.Record]; derived events are not recorded,
// since replaying the raw ones regenerates them.
type Recorder struct {
	mu    sync.Mutex
	start time.Time
	trace []TraceEvent
}

// NewRecorder returns a recorder; offsets are measured from this call.
func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

// Record appends the event to the trace. It is safe to call from any
// goroutine.
func (rc *Recorder) Record(ev *events.ToolEvent) {
	te := TraceEvent{
		At:     float64(ev.Time.Sub(rc.start).Microseconds()) / 1000,
		Source: ev.Source,
		Slot:   ev.Slot.Name(),
	}
	if te.At < 0 {
		te.At = 0
	}
	if ev.Axis != nil {
		v := ev.Axis.Value()
		te.Axis = &v
	}
	if ev.Matrix != nil {
		m := *ev.Matrix
		te.Matrix = &m
	}
	rc.mu.Lock()
	rc.trace = append(rc.trace, te)
	rc.mu.Unlock()
}

// Trace returns a copy of the recorded trace so far.
func (rc *Recorder) Trace() []TraceEvent {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return slices.Clone(rc.trace)
}

// Save writes the trace as JSON to the given file, in the format
// [Replay] loads.
func (rc *Recorder) Save(filename string) error {
	trace := rc.Trace()
	return jsonx.Save(&trace, filename)
}
