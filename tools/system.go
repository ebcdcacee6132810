// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tools

import (
	"fmt"
	"log/slog"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"
	"cogentcore.org/core/tree"
	"cogentcore.org/toolsys/config"
	"cogentcore.org/toolsys/devices"
	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/scene"
	"cogentcore.org/toolsys/slots"
	"github.com/google/uuid"
)

// DefaultMaxNetworkIterations is the default cap on device network
// evaluations per incoming event.
const DefaultMaxNetworkIterations = 256

// toolOp is a deferred tool registration change, queued when AddTool or
// RemoveTool is called from inside a tool callback.
type toolOp struct {
	add  bool
	tool Tool
	path *scene.Path
}

// System is the tool system: it owns the event [events.Queue], the
// [devices.Manager], and the registered tools, and turns raw device
// events into Activate, Perform, and Deactivate calls on them.
//
// Each event delivered by the queue is first evaluated through the
// device network until it settles, then the resulting unconsumed events
// on trigger slots are dispatched: a press edge attempts activation
// along the pick path, a release edge deactivates, and everything else
// is delivered as Perform to the active tools listening on the slot.
//
// All dispatching happens on the queue's delivery goroutine. AddTool and
// RemoveTool may be called from tool callbacks during dispatch; such
// changes are applied after the current event's dispatch finishes.
type System struct {

	// MaxNetworkIterations caps how many events the device network may
	// evaluate for one incoming event. When exceeded, the system assumes
	// a divergent device cycle, logs a warning, and drops the remaining
	// derived events.
	MaxNetworkIterations int

	viewer   scene.Viewer
	devMgr   *devices.Manager
	queue    *events.Queue
	slotMgr  *SlotManager
	toolMgr  *ToolManager
	pick     PickSystem
	recorder *devices.Recorder

	// key identifies this system instance to tools shared between
	// multiple systems.
	key string

	dispatching bool
	pending     []toolOp
	disposed    bool

	// picks caches the pick results for the current trigger event.
	picks      []PickResult
	picksValid bool
}

// New returns a new tool system for the given viewer, with its device
// network built from the given configuration. The viewer may be nil for
// headless use, disabling picking and the implicit camera slots. Call
// [System.Start] to begin processing events.
func New(viewer scene.Viewer, cfg *config.Config) *System {
	ts := &System{
		MaxNetworkIterations: DefaultMaxNetworkIterations,
		viewer:               viewer,
		slotMgr:              NewSlotManager(),
		toolMgr:              NewToolManager(),
		key:                  uuid.New().String(),
	}
	ts.queue = events.NewQueue(ts.ProcessToolEvent)
	ts.devMgr = devices.NewManager(cfg, viewer, ts.queue)
	return ts
}

// Key returns the unique key of this system instance.
func (ts *System) Key() string {
	return ts.key
}

// Queue returns the event queue feeding this system.
func (ts *System) Queue() *events.Queue {
	return ts.queue
}

// DeviceManager returns the device manager owning slot state and the
// device network.
func (ts *System) DeviceManager() *devices.Manager {
	return ts.devMgr
}

// SetPickSystem sets the pick system used to resolve pointer rays, and
// points it at the viewer's scene root. Without one, all picks come up
// empty and press activation falls back to the scene root.
func (ts *System) SetPickSystem(ps PickSystem) {
	ts.pick = ps
	if ps != nil && ts.viewer != nil {
		ps.SetSceneRoot(ts.viewer.SceneRoot())
	}
}

// SetRecorder sets a recorder that captures every raw event entering
// the system, before network evaluation. Set nil to stop recording.
func (ts *System) SetRecorder(rc *devices.Recorder) {
	ts.recorder = rc
}

// Start starts the event queue. See [events.Queue.Start].
func (ts *System) Start() error {
	return ts.queue.Start()
}

// Dispose stops event processing and disposes the queue and all
// devices. The system cannot be restarted. Dispose is idempotent.
func (ts *System) Dispose() {
	if ts.disposed {
		return
	}
	ts.disposed = true
	ts.queue.Dispose()
	ts.devMgr.Dispose()
}

// AddTool registers the tool at the given scene path. The same tool may
// be registered at multiple paths and activates independently per path;
// registering it twice at the same path is a no-op. A tool with no
// activation slots becomes active immediately. When called during
// dispatch, the registration is applied after the current event's
// dispatch finishes.
func (ts *System) AddTool(t Tool, p *scene.Path) error {
	if t == nil {
		return errors.New("tools.System.AddTool: nil tool")
	}
	if p == nil || p.Len() == 0 {
		return fmt.Errorf("tools.System.AddTool: tool %q needs a non-empty path", t.Name())
	}
	if ts.dispatching {
		ts.pending = append(ts.pending, toolOp{add: true, tool: t, path: p})
		return nil
	}
	ts.applyAdd(t, p)
	return nil
}

// RemoveTool unregisters the tool from the given scene path, silently
// ending any activation there. When called during dispatch, the removal
// is applied after the current event's dispatch finishes.
func (ts *System) RemoveTool(t Tool, p *scene.Path) {
	if t == nil || p == nil {
		return
	}
	if ts.dispatching {
		ts.pending = append(ts.pending, toolOp{tool: t, path: p})
		return
	}
	ts.applyRemove(t, p)
}

// RegisterSceneTools walks the scene graph from root and registers the
// tools of every node implementing [ToolNode] at that node's path. It
// returns the number of tools registered.
func (ts *System) RegisterSceneTools(root tree.Node) int {
	if root == nil {
		return 0
	}
	n := 0
	root.AsTree().WalkDown(func(nd tree.Node) bool {
		tn, ok := nd.(ToolNode)
		if !ok {
			return tree.Continue
		}
		for _, t := range tn.SceneTools() {
			if err := ts.AddTool(t, scene.PathTo(nd)); err != nil {
				errors.Log(err)
				continue
			}
			n++
		}
		return tree.Continue
	})
	return n
}

// Tools returns the distinct registered tools, in registration order.
func (ts *System) Tools() []Tool {
	return ts.toolMgr.Tools()
}

// ActivePaths returns the scene paths the tool is currently active on.
func (ts *System) ActivePaths(t Tool) []*scene.Path {
	return ts.toolMgr.ActivePaths(t)
}

func (ts *System) applyAdd(t Tool, p *scene.Path) {
	first := !ts.toolMgr.IsRegistered(t)
	if !ts.toolMgr.Add(t, p) {
		slog.Warn("tools.System: tool already registered at path", "tool", t.Name(), "path", p)
		return
	}
	if first {
		ts.slotMgr.AddTool(t)
	}
	// always-active tools hold an activation on every registered path
	if len(t.ActivationSlots()) == 0 {
		ts.toolMgr.Activate(t, p)
	}
}

func (ts *System) applyRemove(t Tool, p *scene.Path) {
	if ts.toolMgr.IsActive(t, p) {
		ts.toolMgr.Deactivate(t, p)
		ts.slotMgr.ToolDeactivated(t)
	}
	if !ts.toolMgr.Remove(t, p) {
		slog.Warn("tools.System: tool not registered at path", "tool", t.Name(), "path", p)
		return
	}
	if !ts.toolMgr.IsRegistered(t) {
		ts.slotMgr.RemoveTool(t)
	}
}

// flushPendingOps applies tool additions and removals deferred during
// dispatch. Applying an op never runs tool callbacks, so the flush
// cannot generate further ops.
func (ts *System) flushPendingOps() {
	ops := ts.pending
	ts.pending = nil
	for _, op := range ops {
		if op.add {
			ts.applyAdd(op.tool, op.path)
		} else {
			ts.applyRemove(op.tool, op.path)
		}
	}
}

// ProcessToolEvent evaluates one incoming event through the device
// network and dispatches the resulting triggers to tools. It is the
// queue's receiver and runs on the queue's delivery goroutine; call it
// directly only when driving a manual queue.
func (ts *System) ProcessToolEvent(raw *events.ToolEvent) {
	if ts.disposed || raw == nil || raw.Slot == nil {
		return
	}
	if ts.recorder != nil {
		ts.recorder.Record(raw)
	}
	ts.dispatching = true
	defer func() { ts.dispatching = false }()

	seen := ts.evaluateNetwork(raw)

	var triggers []*events.ToolEvent
	for _, ev := range seen {
		if ev.IsConsumed() || !ts.slotMgr.IsTrigger(ev.Slot) {
			continue
		}
		triggers = append(triggers, ev)
	}
	for _, ev := range triggers {
		ts.processTrigger(ev)
	}
	ts.flushPendingOps()
}

// evaluateNetwork runs the device network to a fixpoint for one
// incoming event: aliases and virtual devices derive further events,
// which are evaluated in turn, and the implicit camera slots are
// refreshed whenever the cascade settles. It returns every event
// evaluated, in evaluation order, including consumed ones.
func (ts *System) evaluateNetwork(raw *events.ToolEvent) []*events.ToolEvent {
	var seen []*events.ToolEvent
	work := []*events.ToolEvent{raw}
	emit := func(d *events.ToolEvent) {
		work = append(work, d)
	}
	n := 0
	for len(work) > 0 {
		ev := work[0]
		work = work[1:]
		n++
		if n > ts.MaxNetworkIterations {
			slog.Warn("tools.System: device network did not settle, dropping derived events",
				"cap", ts.MaxNetworkIterations, "slot", ev.Slot)
			break
		}
		seen = append(seen, ev)
		ts.devMgr.EvaluateEvent(ev, emit)
		if len(work) == 0 {
			work = ts.devMgr.UpdateImplicitDevices()
		}
	}
	return seen
}

// processTrigger dispatches one unconsumed trigger event: press edges
// attempt activation, release edges deactivate, and anything else is a
// Perform for the tools active on the slot. An edge that activates or
// deactivates nothing falls through to Perform delivery.
func (ts *System) processTrigger(ev *events.ToolEvent) {
	ts.picksValid = false
	acted := false
	switch {
	case ev.PressEdge:
		acted = ts.tryActivate(ev)
	case ev.ReleaseEdge:
		acted = ts.tryDeactivate(ev)
	}
	if !acted {
		ts.performActive(ev)
	}
}

// tryActivate walks the pick path from the deepest node toward the root
// and activates the candidate tools registered at the deepest matching
// path. It reports whether any tool was activated.
func (ts *System) tryActivate(ev *events.ToolEvent) bool {
	cands := ts.slotMgr.ActivationCandidates(ev.Slot)
	if len(cands) == 0 {
		return false
	}
	pickPath := ts.pickPath()
	activated := false
	for d := pickPath.Len(); d >= 1 && !activated; d-- {
		prefix := pickPath.Prefix(d)
		for _, t := range ts.toolMgr.ToolsAt(prefix) {
			if !slices.Contains(cands, t) || ts.toolMgr.IsActive(t, prefix) {
				continue
			}
			ts.toolMgr.Activate(t, prefix)
			ts.slotMgr.ToolActivated(t)
			tc := &Context{sys: ts, event: ev, path: prefix}
			ts.invoke(t, tc, phaseActivate)
			if tc.rejected {
				ts.toolMgr.Deactivate(t, prefix)
				ts.slotMgr.ToolDeactivated(t)
				continue
			}
			activated = true
		}
	}
	return activated
}

// tryDeactivate deactivates, on every path they are active on, the
// active tools that list the event's slot as an activation slot. It
// reports whether any tool was deactivated.
func (ts *System) tryDeactivate(ev *events.ToolEvent) bool {
	any := false
	for _, t := range ts.slotMgr.DeactivationTargets(ev.Slot) {
		for _, p := range ts.toolMgr.ActivePaths(t) {
			ts.toolMgr.Deactivate(t, p)
			ts.slotMgr.ToolDeactivated(t)
			tc := &Context{sys: ts, event: ev, path: p}
			ts.invoke(t, tc, phaseDeactivate)
			any = true
		}
	}
	return any
}

// performActive delivers the event as Perform to every active tool
// listening on the slot, once per path the tool is active on.
func (ts *System) performActive(ev *events.ToolEvent) {
	for _, t := range ts.slotMgr.ActiveToolsOn(ev.Slot) {
		for _, p := range ts.toolMgr.ActivePaths(t) {
			tc := &Context{sys: ts, event: ev, path: p}
			ts.invoke(t, tc, phasePerform)
		}
	}
}

// pickPath returns the path of the nearest pick for the current pointer
// ray, falling back to a root-only path when nothing was hit, so that
// presses over empty space can still reach tools registered at the
// scene root.
func (ts *System) pickPath() *scene.Path {
	if picks := ts.currentPicks(); len(picks) > 0 {
		return picks[0].Path
	}
	if ts.viewer != nil {
		if root := ts.viewer.SceneRoot(); root != nil {
			return scene.NewPath(root)
		}
	}
	return scene.NewPath()
}

// currentPicks computes the pick results for the current pointer ray,
// at most once per trigger event. The ray starts at the translation of
// the pointer transformation and points down its negative z axis.
func (ts *System) currentPicks() []PickResult {
	if ts.picksValid {
		return ts.picks
	}
	ts.picksValid = true
	ts.picks = nil
	if ts.pick == nil {
		return nil
	}
	m, err := ts.devMgr.Matrix(slots.PointerTransformation)
	if err != nil {
		return nil
	}
	from := m.Pos()
	dir := math32.Vec3(-m[8], -m[9], -m[10])
	if dir.Length() == 0 {
		return nil
	}
	ts.picks = ts.pick.ComputePick(from, from.Add(dir.Normal()))
	return ts.picks
}

const (
	phaseActivate   = "activate"
	phasePerform    = "perform"
	phaseDeactivate = "deactivate"
)

// invoke runs one tool callback, recovering from panics so that a
// broken tool cannot take down event processing.
func (ts *System) invoke(t Tool, tc *Context, phase string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tools.System: tool callback panicked",
				"tool", t.Name(), "phase", phase, "slot", tc.event.Slot, "panic", r)
		}
	}()
	switch phase {
	case phaseActivate:
		t.Activate(tc)
	case phasePerform:
		t.Perform(tc)
	case phaseDeactivate:
		t.Deactivate(tc)
	}
}
