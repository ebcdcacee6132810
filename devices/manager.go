// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package devices

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/ordmap"
	"cogentcore.org/core/math32"
	"cogentcore.org/toolsys/config"
	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/scene"
	"cogentcore.org/toolsys/slots"
)

// ImplicitSource is the source name on events the manager emits itself for
// the camera-derived implicit slots.
const ImplicitSource = "implicit"

// slotValue is the current state of one slot. The axis and matrix facets
// are independent: a slot normally carries only one of them, but nothing
// forbids both.
type slotValue struct {
	axis      slots.AxisState
	hasAxis   bool
	matrix    math32.Matrix4
	hasMatrix bool
}

// VirtualWiring records one virtual device instance and the slots it is
// wired to, for inspection and network analysis.
type VirtualWiring struct {
	Device VirtualDevice
	Inputs []*slots.Slot
	Output *slots.Slot
}

// Manager owns the device layer of a tool system: the current value of
// every slot, the raw device instances, the subscription network from
// slots to the virtual devices reading them, and the slot aliases.
//
// All state access and event evaluation happens on the single dispatch
// goroutine of the owning system; the manager does no locking of its own.
type Manager struct {
	viewer scene.Viewer

	state      map[*slots.Slot]*slotValue
	subs       map[*slots.Slot][]VirtualDevice
	aliases    map[*slots.Slot][]*slots.Slot
	aliasSrcs  map[*slots.Slot][]*slots.Slot
	aliasPairs [][2]*slots.Slot

	raws    *ordmap.Map[string, RawDevice]
	wirings []VirtualWiring

	disposed bool
}

// NewManager returns a manager wired from the given configuration, with
// raw devices feeding the given queue. The viewer may be nil for headless
// use, in which case the implicit camera slots stay empty. Individual
// configuration entries that fail (unknown types, bad parameters, unknown
// device references) are logged and skipped; the network that did build
// keeps working.
func NewManager(cfg *config.Config, viewer scene.Viewer, q *events.Queue) *Manager {
	dm := &Manager{
		viewer:    viewer,
		state:     map[*slots.Slot]*slotValue{},
		subs:      map[*slots.Slot][]VirtualDevice{},
		aliases:   map[*slots.Slot][]*slots.Slot{},
		aliasSrcs: map[*slots.Slot][]*slots.Slot{},
		raws:      ordmap.New[string, RawDevice](),
	}
	if cfg == nil {
		return dm
	}
	for _, rd := range cfg.RawDevices {
		if _, err := dm.AddRawDevice(rd, q); err != nil {
			slog.Error("devices.Manager: raw device skipped", "type", rd.Type, "id", rd.Name(), "err", err)
		}
	}
	for _, c := range cfg.Constants {
		switch {
		case c.Axis != nil:
			dm.SetAxisConstant(slots.Get(c.Slot), *c.Axis)
		case c.Matrix != nil:
			dm.SetMatrixConstant(slots.Get(c.Slot), *c.Matrix)
		default:
			slog.Warn("devices.Manager: constant with no value skipped", "slot", c.Slot)
		}
	}
	for _, m := range cfg.RawMappings {
		if err := dm.MapRaw(m.Device, m.Source, slots.Get(m.Slot)); err != nil {
			slog.Error("devices.Manager: raw mapping skipped", "device", m.Device, "source", m.Source, "slot", m.Slot, "err", err)
		}
	}
	for _, v := range cfg.VirtualDevices {
		vd, err := NewVirtual(v.Type)
		if err == nil {
			inputs := make([]*slots.Slot, len(v.Inputs))
			for i, in := range v.Inputs {
				inputs[i] = slots.Get(in)
			}
			err = dm.AddVirtualDevice(vd, inputs, slots.Get(v.Output), v.Params)
		}
		if err != nil {
			slog.Error("devices.Manager: virtual device skipped", "type", v.Type, "output", v.Output, "err", err)
		}
	}
	for _, a := range cfg.Aliases {
		dm.AddAlias(slots.Get(a.Slot), slots.Get(a.Target))
	}
	return dm
}

// Viewer returns the viewer the manager was built with, which may be nil.
func (dm *Manager) Viewer() scene.Viewer {
	return dm.viewer
}

// AddRawDevice constructs, initializes, and registers a raw device from
// its configuration. Instance names must be unique.
func (dm *Manager) AddRawDevice(rd config.RawDevice, q *events.Queue) (RawDevice, error) {
	name := rd.Name()
	if _, ok := dm.raws.ValueByKeyTry(name); ok {
		return nil, fmt.Errorf("duplicate raw device instance %q", name)
	}
	d, err := NewRaw(rd.Type, name)
	if err != nil {
		return nil, err
	}
	if err := d.Initialize(q, rd.Params); err != nil {
		return nil, err
	}
	dm.raws.Add(name, d)
	if p, ok := d.(events.Poller); ok {
		q.AddPoller(p)
	}
	return d, nil
}

// MapRaw binds a source of the named raw device instance to the given
// slot, seeding the slot state with the device's initial value.
func (dm *Manager) MapRaw(device, source string, slot *slots.Slot) error {
	rd, ok := dm.raws.ValueByKeyTry(device)
	if !ok {
		return fmt.Errorf("unknown raw device instance %q", device)
	}
	ev, err := rd.MapRawDevice(source, slot)
	if err != nil {
		return err
	}
	if ev != nil {
		dm.writeState(ev)
	}
	return nil
}

// AddVirtualDevice initializes the given virtual device on the given slots
// and subscribes it to every input.
func (dm *Manager) AddVirtualDevice(vd VirtualDevice, inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	if err := vd.Initialize(inputs, output, params); err != nil {
		return err
	}
	for _, in := range inputs {
		dm.subs[in] = append(dm.subs[in], vd)
	}
	dm.wirings = append(dm.wirings, VirtualWiring{Device: vd, Inputs: slices.Clone(inputs), Output: output})
	return nil
}

// AddAlias republishes every event arriving on slot under the target slot
// as well. The target's state is seeded from the slot's current value.
// Alias chains are followed transitively during evaluation; a cycle is
// harmless because an unchanged republished value is consumed.
func (dm *Manager) AddAlias(slot, target *slots.Slot) {
	if slot == target {
		slog.Warn("devices.Manager: alias onto itself ignored", "slot", slot)
		return
	}
	if slices.Contains(dm.aliases[slot], target) {
		return
	}
	dm.aliases[slot] = append(dm.aliases[slot], target)
	dm.aliasSrcs[target] = append(dm.aliasSrcs[target], slot)
	dm.aliasPairs = append(dm.aliasPairs, [2]*slots.Slot{slot, target})
	if sv, ok := dm.state[slot]; ok {
		tv := dm.slotValueFor(target)
		if sv.hasAxis && !tv.hasAxis {
			tv.axis, tv.hasAxis = sv.axis, true
		}
		if sv.hasMatrix && !tv.hasMatrix {
			tv.matrix, tv.hasMatrix = sv.matrix, true
		}
	}
}

// SetAxisConstant seeds the slot state with a fixed axis value.
func (dm *Manager) SetAxisConstant(slot *slots.Slot, value float32) {
	sv := dm.slotValueFor(slot)
	sv.axis, sv.hasAxis = slots.Axis(value), true
}

// SetMatrixConstant seeds the slot state with a fixed transformation.
func (dm *Manager) SetMatrixConstant(slot *slots.Slot, m math32.Matrix4) {
	sv := dm.slotValueFor(slot)
	sv.matrix, sv.hasMatrix = m, true
}

func (dm *Manager) slotValueFor(slot *slots.Slot) *slotValue {
	sv := dm.state[slot]
	if sv == nil {
		sv = &slotValue{}
		dm.state[slot] = sv
	}
	return sv
}

// AxisState returns the current axis state of the slot, or
// [ErrMissingSlot] if it has none.
func (dm *Manager) AxisState(slot *slots.Slot) (slots.AxisState, error) {
	if sv, ok := dm.state[slot]; ok && sv.hasAxis {
		return sv.axis, nil
	}
	return slots.AxisState{}, missingSlot(slot)
}

// Matrix returns the current transformation of the slot, or
// [ErrMissingSlot] if it has none.
func (dm *Manager) Matrix(slot *slots.Slot) (math32.Matrix4, error) {
	if sv, ok := dm.state[slot]; ok && sv.hasMatrix {
		return sv.matrix, nil
	}
	return math32.Matrix4{}, missingSlot(slot)
}

// Slots returns every slot that currently has a value, sorted by name.
func (dm *Manager) Slots() []*slots.Slot {
	ss := make([]*slots.Slot, 0, len(dm.state))
	for s := range dm.state {
		ss = append(ss, s)
	}
	slices.SortFunc(ss, func(a, b *slots.Slot) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return ss
}

// RawDevices returns the raw device instances in configuration order.
func (dm *Manager) RawDevices() []RawDevice {
	return dm.raws.Values()
}

// RawDeviceByName returns the raw device with the given instance name.
func (dm *Manager) RawDeviceByName(name string) (RawDevice, bool) {
	return dm.raws.ValueByKeyTry(name)
}

// Wirings returns the virtual device instances and their slots, in
// configuration order.
func (dm *Manager) Wirings() []VirtualWiring {
	return slices.Clone(dm.wirings)
}

// Aliases returns the (slot, target) alias pairs in configuration order.
func (dm *Manager) Aliases() [][2]*slots.Slot {
	return slices.Clone(dm.aliasPairs)
}

// EvaluateEvent applies one event to the slot state and feeds the
// subscribed virtual devices, appending any derived events through emit.
// If the event does not change its slot's state (a value resend within
// tolerance), it is marked consumed and nothing further happens; this is
// what makes the evaluation network terminate on cyclic wirings.
//
// For every alias target of the event's slot, a copy of the event is
// emitted on the target slot, so aliases behave as full renames: they
// update state, classify as triggers, and feed their own subscribers.
func (dm *Manager) EvaluateEvent(ev *events.ToolEvent, emit func(*events.ToolEvent)) {
	if !dm.writeState(ev) {
		ev.Consume()
		return
	}
	for _, target := range dm.aliases[ev.Slot] {
		emit(&events.ToolEvent{Source: ev.Source, Time: ev.Time, Slot: target, Axis: ev.Axis, Matrix: ev.Matrix})
	}
	dc := &Context{mgr: dm, event: ev}
	for _, vd := range dm.subs[ev.Slot] {
		out, err := vd.Process(dc)
		if err != nil {
			if errors.Is(err, ErrMissingSlot) {
				slog.Debug("devices.Manager: virtual device waiting on unset input", "device", vd.Name(), "err", err)
			} else {
				slog.Error("devices.Manager: virtual device failed", "device", vd.Name(), "slot", ev.Slot, "err", err)
			}
			continue
		}
		if out != nil {
			emit(out)
		}
	}
}

// writeState applies the event payloads to the slot state, sets the
// press and release edge flags, and reports whether any state changed.
// Payload-free events always count as changed.
func (dm *Manager) writeState(ev *events.ToolEvent) bool {
	if ev.Axis == nil && ev.Matrix == nil {
		return true
	}
	sv := dm.slotValueFor(ev.Slot)
	changed := false
	if ev.Axis != nil {
		oldPressed := sv.hasAxis && sv.axis.Pressed()
		if !sv.hasAxis || !ev.Axis.Equal(sv.axis, events.AxisTolerance) {
			changed = true
		}
		sv.axis, sv.hasAxis = *ev.Axis, true
		ev.PressEdge = ev.Axis.Pressed() && !oldPressed
		ev.ReleaseEdge = ev.Axis.Released() && oldPressed
	}
	if ev.Matrix != nil {
		if !sv.hasMatrix || !events.MatrixEqual(ev.Matrix, &sv.matrix, events.MatrixTolerance) {
			changed = true
		}
		sv.matrix, sv.hasMatrix = *ev.Matrix, true
	}
	return changed
}

// UpdateImplicitDevices compares the camera-derived implicit slots against
// the viewer's current camera state and returns events for those that
// moved: WorldToCamera, CameraToWorld, CameraToNDC, NDCToWorld, and
// AvatarTransformation. With no viewer it returns nil.
func (dm *Manager) UpdateImplicitDevices() []*events.ToolEvent {
	if dm.viewer == nil {
		return nil
	}
	now := time.Now()
	var out []*events.ToolEvent
	camPath := dm.viewer.CameraPath()
	if camPath != nil && camPath.Len() > 0 {
		c2w := camPath.Matrix()
		dm.implicitMatrix(&out, slots.CameraToWorld, c2w, now)
		if w2c, err := c2w.Inverse(); err == nil {
			dm.implicitMatrix(&out, slots.WorldToCamera, *w2c, now)
		}
		proj := dm.viewer.CameraToNDC()
		dm.implicitMatrix(&out, slots.CameraToNDC, proj, now)
		if projInv, err := proj.Inverse(); err == nil {
			var ndc2w math32.Matrix4
			ndc2w.MulMatrices(&c2w, projInv)
			dm.implicitMatrix(&out, slots.NDCToWorld, ndc2w, now)
		}
	}
	avPath := dm.viewer.AvatarPath()
	if avPath == nil {
		avPath = camPath
	}
	if avPath != nil && avPath.Len() > 0 {
		dm.implicitMatrix(&out, slots.AvatarTransformation, avPath.Matrix(), now)
	}
	return out
}

func (dm *Manager) implicitMatrix(out *[]*events.ToolEvent, slot *slots.Slot, m math32.Matrix4, now time.Time) {
	if cur, err := dm.Matrix(slot); err == nil && events.MatrixEqual(&cur, &m, events.MatrixTolerance) {
		return
	}
	*out = append(*out, events.NewMatrixEvent(ImplicitSource, slot, m, now))
}

// ResolveSlot walks the alias graph backwards from the given slot and
// returns the ultimate source slots feeding it: the non-aliased slots from
// which a chain of aliases reaches it. A slot that is not an alias target
// resolves to itself.
func (dm *Manager) ResolveSlot(slot *slots.Slot) []*slots.Slot {
	var leaves []*slots.Slot
	seen := map[*slots.Slot]bool{}
	var walk func(s *slots.Slot)
	walk = func(s *slots.Slot) {
		if seen[s] {
			return
		}
		seen[s] = true
		srcs := dm.aliasSrcs[s]
		if len(srcs) == 0 {
			leaves = append(leaves, s)
			return
		}
		for _, src := range srcs {
			walk(src)
		}
	}
	walk(slot)
	return leaves
}

// Dispose disposes every raw and virtual device. It is idempotent.
func (dm *Manager) Dispose() {
	if dm.disposed {
		return
	}
	dm.disposed = true
	for _, rd := range dm.raws.Values() {
		rd.Dispose()
	}
	for _, w := range dm.wirings {
		w.Device.Dispose()
	}
}
