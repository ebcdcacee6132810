// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slots provides the interned input slot identities and the axis
// states that name and carry the values flowing through a tool system.
// Raw devices produce events targeting slots, virtual devices derive new
// slot values from existing ones, and tools declare the slots they react to.
package slots

import "sync"

// Slot is a uniquely named logical input channel, such as a button axis or
// a pointer transformation. Slots are interned: [Get] returns the one
// canonical *Slot for a given name for the lifetime of the process, so slot
// equality is pointer identity and slots can be used directly as map keys.
// A Slot carries no value itself; current values live in the device manager.
type Slot struct {
	name string
}

var (
	internMu sync.Mutex
	interned = map[string]*Slot{}
)

// Get returns the canonical [Slot] with the given name, creating it if it
// does not exist yet. It is safe to call from any goroutine.
func Get(name string) *Slot {
	internMu.Lock()
	defer internMu.Unlock()
	s, ok := interned[name]
	if !ok {
		s = &Slot{name: name}
		interned[name] = s
	}
	return s
}

// Name returns the name the slot was interned under.
func (s *Slot) Name() string {
	return s.name
}

func (s *Slot) String() string {
	return s.name
}
