// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package remote implements a raw device that streams input events from
// another process over a WebSocket connection, so that trackers, motion
// controllers, and simulators running elsewhere can drive a tool system.
package remote

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"
	"cogentcore.org/toolsys/devices"
	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/slots"
	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
)

func init() {
	devices.RegisterRaw("remote", func(name string) devices.RawDevice {
		return &Device{name: name}
	})
}

// Frame is one input message on the wire, carrying either an axis value
// or a transformation for one device-local source.
type Frame struct {
	Source string          `json:"source"`
	Axis   *float32        `json:"axis,omitempty"`
	Matrix *math32.Matrix4 `json:"matrix,omitempty"`
}

// params configures a [Device].
type params struct {
	URL string `mapstructure:"url"`
}

// Device is a raw device fed by JSON [Frame] messages over a WebSocket.
// Frames whose source has been mapped to a slot are queued as events;
// frames for unmapped sources are dropped. The device type is registered
// as "remote" and takes a "url" parameter with the ws:// address to
// connect to.
type Device struct {
	name string
	q    *events.Queue
	conn *websocket.Conn
	done chan struct{}

	mu       sync.Mutex
	mappings map[string]*slots.Slot
}

func (d *Device) Name() string { return d.name }

// Initialize connects to the configured WebSocket server and starts
// reading frames.
func (d *Device) Initialize(q *events.Queue, pars map[string]any) error {
	var p params
	if err := mapstructure.Decode(pars, &p); err != nil {
		return fmt.Errorf("remote device %q: %w", d.name, err)
	}
	if p.URL == "" {
		return fmt.Errorf("remote device %q: missing url parameter", d.name)
	}
	conn, _, err := websocket.DefaultDialer.Dial(p.URL, nil)
	if err != nil {
		return fmt.Errorf("remote device %q: %w", d.name, err)
	}
	d.q = q
	d.conn = conn
	d.done = make(chan struct{})
	d.mappings = map[string]*slots.Slot{}
	go d.read()
	return nil
}

// MapRawDevice routes the given source name to the given slot. There is
// no initial state for remote sources: the first frame establishes it.
func (d *Device) MapRawDevice(source string, slot *slots.Slot) (*events.ToolEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mappings == nil {
		return nil, fmt.Errorf("remote device %q: not initialized", d.name)
	}
	d.mappings[source] = slot
	return nil, nil
}

// Dispose closes the connection, ending the read loop.
func (d *Device) Dispose() {
	if d.conn == nil {
		return
	}
	errors.Log(d.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	d.conn.Close()
	d.conn = nil
}

func (d *Device) read() {
	conn := d.conn
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			close(d.done)
			return
		}
		d.dispatch(&f)
	}
}

func (d *Device) dispatch(f *Frame) {
	d.mu.Lock()
	slot := d.mappings[f.Source]
	d.mu.Unlock()
	if slot == nil {
		slog.Debug("remote.Device: frame for unmapped source dropped",
			"device", d.name, "source", f.Source)
		return
	}
	now := time.Now()
	switch {
	case f.Axis != nil:
		d.q.AddEvent(events.NewAxisEvent(d.name, slot, slots.Axis(*f.Axis), now))
	case f.Matrix != nil:
		d.q.AddEvent(events.NewMatrixEvent(d.name, slot, *f.Matrix, now))
	default:
		slog.Warn("remote.Device: frame with no payload dropped",
			"device", d.name, "source", f.Source)
	}
}

// Done returns a channel that is closed when the connection ends.
func (d *Device) Done() <-chan struct{} {
	return d.done
}
