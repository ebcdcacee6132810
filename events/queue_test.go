// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"testing"
	"time"

	"cogentcore.org/toolsys/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualQueue returns a started queue in manual pacing mode along with the
// slice its receiver appends to.
func manualQueue(t *testing.T) (*Queue, *[]*ToolEvent) {
	var got []*ToolEvent
	q := NewQueue(func(ev *ToolEvent) {
		got = append(got, ev)
	})
	q.Interval = 0
	require.NoError(t, q.Start())
	t.Cleanup(q.Dispose)
	return q, &got
}

func TestQueueFIFO(t *testing.T) {
	q, got := manualQueue(t)
	slot := slots.Get("TestQueueFIFO")
	now := time.Now()

	for i := range 3 {
		assert.True(t, q.AddEvent(NewAxisEvent("dev", slot, slots.Axis(float32(i)*0.1), now)))
	}
	q.Step(now)
	require.Len(t, *got, 3)
	assert.Equal(t, float32(0), (*got)[0].Axis.Value())
	assert.Equal(t, float32(0.1), (*got)[1].Axis.Value())
	assert.Equal(t, float32(0.2), (*got)[2].Axis.Value())

	// drained: another step delivers nothing
	q.Step(now)
	assert.Len(t, *got, 3)
}

func TestQueueCoalescing(t *testing.T) {
	q, got := manualQueue(t)
	slot := slots.Get("TestQueueCoalescing")
	now := time.Now()

	assert.True(t, q.AddEvent(NewAxisEvent("dev", slot, slots.Axis(0.5), now)))
	// same payload within tolerance: replaced in place, not appended
	assert.False(t, q.AddEvent(NewAxisEvent("dev", slot, slots.Axis(0.5), now.Add(time.Millisecond))))
	q.Step(now)
	require.Len(t, *got, 1)

	// the replacement keeps the newer event
	assert.Equal(t, now.Add(time.Millisecond), (*got)[0].Time)
}

func TestQueueCoalescingScansTail(t *testing.T) {
	q, got := manualQueue(t)
	a := slots.Get("TestQueueScanA")
	b := slots.Get("TestQueueScanB")
	now := time.Now()

	assert.True(t, q.AddEvent(NewAxisEvent("dev", a, slots.Axis(1), now)))
	assert.True(t, q.AddEvent(NewAxisEvent("dev", b, slots.Axis(1), now)))
	// coalesces with the first entry even though it is not last,
	// and keeps that entry's queue position
	assert.False(t, q.AddEvent(NewAxisEvent("dev", a, slots.Axis(1), now)))
	q.Step(now)
	require.Len(t, *got, 2)
	assert.Same(t, a, (*got)[0].Slot)
	assert.Same(t, b, (*got)[1].Slot)
}

func TestQueueLifecycle(t *testing.T) {
	var got []*ToolEvent
	q := NewQueue(func(ev *ToolEvent) { got = append(got, ev) })
	q.Interval = 0
	slot := slots.Get("TestQueueLifecycle")
	now := time.Now()

	// before Start: dropped
	assert.False(t, q.AddEvent(NewAxisEvent("dev", slot, slots.AxisPressed, now)))

	require.NoError(t, q.Start())
	assert.Error(t, q.Start())

	assert.True(t, q.AddEvent(NewAxisEvent("dev", slot, slots.AxisPressed, now)))
	q.Dispose()
	q.Dispose() // idempotent

	// after Dispose: dropped, and queued events were discarded
	assert.False(t, q.AddEvent(NewAxisEvent("dev", slot, slots.AxisReleased, now)))
	q.Step(now)
	assert.Empty(t, got)

	assert.Error(t, q.Start())
}

type countingPoller struct {
	q     *Queue
	slot  *slots.Slot
	polls int
}

func (p *countingPoller) Poll(now time.Time) {
	p.polls++
	p.q.AddEvent(NewAxisEvent("poller", p.slot, slots.Axis(float32(p.polls)), now))
}

func TestQueuePollers(t *testing.T) {
	q, got := manualQueue(t)
	p := &countingPoller{q: q, slot: slots.Get("TestQueuePollers")}
	q.AddPoller(p)

	now := time.Now()
	q.Step(now)
	q.Step(now.Add(time.Second))
	assert.Equal(t, 2, p.polls)
	// poller events are drained in the same tick they are polled
	require.Len(t, *got, 2)
	assert.Equal(t, float32(1), (*got)[0].Axis.Value())
	assert.Equal(t, float32(2), (*got)[1].Axis.Value())
}

func TestQueueTicker(t *testing.T) {
	done := make(chan *ToolEvent, 1)
	q := NewQueue(func(ev *ToolEvent) {
		select {
		case done <- ev:
		default:
		}
	})
	q.Interval = time.Millisecond
	require.NoError(t, q.Start())
	defer q.Dispose()

	q.AddEvent(NewAxisEvent("dev", slots.Get("TestQueueTicker"), slots.AxisPressed, time.Now()))
	select {
	case ev := <-done:
		assert.True(t, ev.Axis.Pressed())
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not dispatch")
	}
}
