// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"cogentcore.org/core/base/errors"
)

// DefaultInterval is the frame pacing interval used by [NewQueue],
// about one tick per display frame at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// Receiver is the single consumer of a [Queue]. It is always called from
// the queue's one dispatch goroutine (or from the goroutine calling
// [Queue.Step] in manual mode), so implementations need no locking against
// other deliveries.
type Receiver func(ev *ToolEvent)

// Poller is polled once per queue tick, before the queued events are
// drained. Raw devices that sample rather than push (timers, replay
// sources) implement it and feed the queue from their Poll method.
type Poller interface {
	Poll(now time.Time)
}

// Queue is the frame-paced event queue between devices and the tool
// system. Producers call [Queue.AddEvent] from any goroutine; once per
// [Queue.Interval] the queue polls its pollers and drains everything
// queued, in FIFO order, into the receiver. Consecutive replaceable
// events (see [ToolEvent.Replaces]) are coalesced on insertion, so a
// burst of identical device states costs one dispatch.
type Queue struct {
	// Interval is the frame pacing interval, [DefaultInterval] unless
	// changed before [Queue.Start]. If it is zero when Start is called,
	// no pacing goroutine is spawned and the owner must call
	// [Queue.Step] once per frame instead.
	Interval time.Duration

	recv     Receiver
	mu       sync.Mutex
	events   []*ToolEvent
	pollers  []Poller
	started  bool
	disposed bool
	stop     chan struct{}
}

// NewQueue returns a queue delivering to the given receiver, with
// [DefaultInterval] pacing.
func NewQueue(recv Receiver) *Queue {
	return &Queue{Interval: DefaultInterval, recv: recv, stop: make(chan struct{})}
}

// AddEvent queues the event for the next tick and reports whether it was
// appended as a new entry. If the tail of the queue holds an entry that the
// event can replace, the event takes that entry's place instead and
// AddEvent returns false. Events added before [Queue.Start] or after
// [Queue.Dispose] are dropped with a warning. AddEvent never blocks on
// dispatch and is safe to call from any goroutine.
func (q *Queue) AddEvent(ev *ToolEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started || q.disposed {
		slog.Warn("events.Queue: event dropped outside of Start..Dispose window", "event", ev)
		return false
	}
	for i := len(q.events) - 1; i >= 0; i-- {
		if ev.Replaces(q.events[i]) {
			q.events[i] = ev
			return false
		}
	}
	q.events = append(q.events, ev)
	return true
}

// AddPoller registers a poller to be polled at the start of every tick.
func (q *Queue) AddPoller(p Poller) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pollers = append(q.pollers, p)
}

// Start begins accepting and dispatching events. It must be called exactly
// once; a second call, or a call after [Queue.Dispose], returns an error.
// With a nonzero [Queue.Interval] it spawns the pacing goroutine; with a
// zero interval the owner paces frames by calling [Queue.Step].
func (q *Queue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.disposed {
		return errors.New("events.Queue: Start after Dispose")
	}
	if q.started {
		return errors.New("events.Queue: already started")
	}
	q.started = true
	if q.Interval > 0 {
		go q.run(q.Interval)
	}
	return nil
}

// Dispose stops dispatch and discards any queued events. It is idempotent
// and safe to call from any goroutine; a disposed queue drops all further
// events.
func (q *Queue) Dispose() {
	q.mu.Lock()
	if q.disposed {
		q.mu.Unlock()
		return
	}
	q.disposed = true
	q.events = nil
	q.mu.Unlock()
	close(q.stop)
}

func (q *Queue) run(interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-q.stop:
			return
		case now := <-tick.C:
			q.Step(now)
		}
	}
}

// Step runs one tick at the given time: every poller is polled, then all
// events queued at that point (the pollers' additions included) are
// delivered to the receiver in FIFO order. Events added while the drain
// itself is running wait for the next tick. Step is what the pacing
// goroutine calls; owners that set a zero [Queue.Interval] call it from
// their own frame loop instead.
func (q *Queue) Step(now time.Time) {
	q.mu.Lock()
	if q.disposed || !q.started {
		q.mu.Unlock()
		return
	}
	pollers := slices.Clone(q.pollers)
	q.mu.Unlock()

	for _, p := range pollers {
		p.Poll(now)
	}

	q.mu.Lock()
	evs := q.events
	q.events = nil
	disposed := q.disposed
	q.mu.Unlock()
	if disposed {
		return
	}
	for i, ev := range evs {
		if q.isDisposed() {
			slog.Debug("events.Queue: disposed mid-drain", "dropped", len(evs)-i)
			return
		}
		q.recv(ev)
	}
}

func (q *Queue) isDisposed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.disposed
}
