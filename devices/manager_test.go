// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package devices

import (
	"slices"
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/tree"
	"cogentcore.org/toolsys/config"
	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/scene"
	"cogentcore.org/toolsys/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain evaluates the given events and everything derived from them,
// in FIFO order, returning every event that went through evaluation.
func drain(dm *Manager, evs ...*events.ToolEvent) []*events.ToolEvent {
	var all []*events.ToolEvent
	work := slices.Clone(evs)
	for len(work) > 0 {
		ev := work[0]
		work = work[1:]
		all = append(all, ev)
		dm.EvaluateEvent(ev, func(d *events.ToolEvent) {
			work = append(work, d)
		})
	}
	return all
}

func axisEvent(source string, slot *slots.Slot, v float32) *events.ToolEvent {
	return events.NewAxisEvent(source, slot, slots.Axis(v), time.Now())
}

func TestLastWriterWins(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	slot := slots.Get("TestLWW")

	drain(dm, axisEvent("mouse", slot, 0.2), axisEvent("pad", slot, 0.8))
	a, err := dm.AxisState(slot)
	require.NoError(t, err)
	assert.Equal(t, float32(0.8), a.Value())

	// and in the other arrival order
	drain(dm, axisEvent("pad", slot, 0.5), axisEvent("mouse", slot, 0.1))
	a, err = dm.AxisState(slot)
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), a.Value())
}

func TestIdempotentResendConsumed(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	slot := slots.Get("TestIdempotent")
	m := math32.Identity4()
	m[12] = 5

	first := events.NewMatrixEvent("dev", slot, m, time.Now())
	second := events.NewMatrixEvent("dev", slot, m, time.Now())
	drain(dm, first, second)
	assert.False(t, first.IsConsumed())
	assert.True(t, second.IsConsumed())

	// a genuinely new value is not consumed
	m[12] = 6
	third := events.NewMatrixEvent("dev", slot, m, time.Now())
	drain(dm, third)
	assert.False(t, third.IsConsumed())
	got, err := dm.Matrix(slot)
	require.NoError(t, err)
	assert.Equal(t, float32(6), got[12])
}

func TestEdgeFlags(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	slot := slots.Get("TestEdges")

	press := axisEvent("dev", slot, 1)
	drain(dm, press)
	assert.True(t, press.PressEdge)
	assert.False(t, press.ReleaseEdge)

	hold := axisEvent("dev", slot, 1)
	drain(dm, hold)
	assert.False(t, hold.PressEdge)
	assert.True(t, hold.IsConsumed())

	release := axisEvent("dev", slot, 0)
	drain(dm, release)
	assert.False(t, release.PressEdge)
	assert.True(t, release.ReleaseEdge)

	// analog wiggle below the press threshold has no edges
	wiggle := axisEvent("dev", slot, 0.3)
	drain(dm, wiggle)
	assert.False(t, wiggle.PressEdge)
	assert.False(t, wiggle.ReleaseEdge)
	assert.False(t, wiggle.IsConsumed())
}

func TestAliases(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	src := slots.Get("TestAliasSrc")
	tgt := slots.Get("TestAliasTgt")
	dm.AddAlias(src, tgt)
	dm.AddAlias(src, tgt) // duplicate ignored
	assert.Len(t, dm.Aliases(), 1)

	all := drain(dm, axisEvent("dev", src, 1))
	require.Len(t, all, 2)
	assert.Same(t, tgt, all[1].Slot)
	assert.Equal(t, "dev", all[1].Source)
	assert.True(t, all[1].PressEdge)

	a, err := dm.AxisState(tgt)
	require.NoError(t, err)
	assert.Equal(t, float32(1), a.Value())
}

func TestAliasCycleTerminates(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	a := slots.Get("TestAliasCycleA")
	b := slots.Get("TestAliasCycleB")
	dm.AddAlias(a, b)
	dm.AddAlias(b, a)

	all := drain(dm, axisEvent("dev", a, 1))
	// a -> copy on b -> copy back on a (unchanged, consumed); done
	require.Len(t, all, 3)
	assert.True(t, all[2].IsConsumed())
}

func TestAliasSeedsFromSource(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	src := slots.Get("TestAliasSeedSrc")
	tgt := slots.Get("TestAliasSeedTgt")
	dm.SetAxisConstant(src, 1)
	dm.AddAlias(src, tgt)
	a, err := dm.AxisState(tgt)
	require.NoError(t, err)
	assert.Equal(t, float32(1), a.Value())
}

func TestResolveSlot(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	a := slots.Get("TestResolveA")
	b := slots.Get("TestResolveB")
	c := slots.Get("TestResolveC")
	d := slots.Get("TestResolveD")
	dm.AddAlias(a, c)
	dm.AddAlias(b, c)
	dm.AddAlias(c, d)

	leaves := dm.ResolveSlot(d)
	assert.ElementsMatch(t, []*slots.Slot{a, b}, leaves)
	assert.Equal(t, []*slots.Slot{a}, dm.ResolveSlot(a))
}

func TestVirtualSubscription(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	in := slots.Get("TestSubIn")
	out := slots.Get("TestSubOut")
	sa := &ScaledAxis{}
	require.NoError(t, dm.AddVirtualDevice(sa, []*slots.Slot{in}, out, map[string]any{"scale": 2.0}))

	all := drain(dm, axisEvent("dev", in, 0.25))
	require.Len(t, all, 2)
	assert.Same(t, out, all[1].Slot)
	assert.Equal(t, "scaledAxis", all[1].Source)
	a, err := dm.AxisState(out)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), a.Value())
}

func TestVirtualMissingSlotSkipped(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	rate := slots.Get("TestMissingRate")
	tick := slots.Get("TestMissingTick")
	out := slots.Get("TestMissingOut")
	te := &TimestepEvolution{}
	require.NoError(t, dm.AddVirtualDevice(te, []*slots.Slot{rate, tick}, out, nil))

	// rate never set: time ticks evaluate without errors or output
	all := drain(dm, axisEvent("timer", tick, 16), axisEvent("timer", tick, 32))
	assert.Len(t, all, 2)
	_, err := dm.AxisState(out)
	assert.ErrorIs(t, err, ErrMissingSlot)
}

func TestNewManagerFromConfig(t *testing.T) {
	q := events.NewQueue(func(ev *events.ToolEvent) {})
	q.Interval = 0
	require.NoError(t, q.Start())
	defer q.Dispose()

	cfg := config.Default()
	cfg.RawDevices = append(cfg.RawDevices, config.RawDevice{Type: "no-such-type"})
	cfg.RawMappings = append(cfg.RawMappings, config.RawMapping{Device: "ghost", Source: "x", Slot: "Y"})
	cfg.VirtualDevices = append(cfg.VirtualDevices,
		config.VirtualDevice{Type: "negateAxis", Inputs: []string{"SystemTime"}, Output: "NegTime"},
		config.VirtualDevice{Type: "no-such-virtual", Inputs: []string{"A"}, Output: "B"},
	)
	cfg.Constants = append(cfg.Constants, config.Constant{Slot: "TestCfgConst", Axis: float32ptr(1)})
	cfg.Aliases = append(cfg.Aliases, config.Alias{Slot: "SystemTime", Target: "Clock"})

	dm := NewManager(cfg, nil, q)

	// the bad entries were skipped, the good ones built
	assert.Len(t, dm.RawDevices(), 1)
	_, ok := dm.RawDeviceByName("timer")
	assert.True(t, ok)
	assert.Len(t, dm.Wirings(), 1)
	assert.Len(t, dm.Aliases(), 1)

	// timer mapping seeded SystemTime, alias seeded Clock
	st, err := dm.AxisState(slots.SystemTime)
	require.NoError(t, err)
	assert.Equal(t, float32(0), st.Value())
	_, err = dm.AxisState(slots.Get("Clock"))
	require.NoError(t, err)

	a, err := dm.AxisState(slots.Get("TestCfgConst"))
	require.NoError(t, err)
	assert.True(t, a.Pressed())

	dm.Dispose()
	dm.Dispose() // idempotent
}

func float32ptr(v float32) *float32 {
	return &v
}

// viewNode is a minimal transformed scene node for viewer tests.
type viewNode struct {
	tree.NodeBase
	Pose math32.Matrix4
}

func (vn *viewNode) LocalMatrix() math32.Matrix4 {
	return vn.Pose
}

// testViewer is a static viewer over a two-node scene with a movable
// camera.
type testViewer struct {
	root *viewNode
	cam  *viewNode
	proj math32.Matrix4
}

func newTestViewer() *testViewer {
	tv := &testViewer{}
	tv.root = tree.New[viewNode]()
	tv.root.SetName("root")
	tv.root.Pose = math32.Identity4()
	tv.cam = tree.New[viewNode](tv.root)
	tv.cam.SetName("camera")
	tv.cam.Pose = math32.Identity4()
	tv.cam.Pose[14] = 10 // camera at z=10
	tv.proj = math32.Identity4()
	return tv
}

func (tv *testViewer) SceneRoot() tree.Node { return tv.root }

func (tv *testViewer) CameraPath() *scene.Path { return scene.PathTo(tv.cam) }

func (tv *testViewer) AvatarPath() *scene.Path { return nil }

func (tv *testViewer) CameraToNDC() math32.Matrix4 { return tv.proj }

func TestUpdateImplicitDevices(t *testing.T) {
	tv := newTestViewer()
	dm := NewManager(nil, tv, nil)

	evs := dm.UpdateImplicitDevices()
	// camera to world, world to camera, camera to NDC, NDC to world, avatar
	require.Len(t, evs, 5)
	for _, ev := range evs {
		assert.Equal(t, ImplicitSource, ev.Source)
		require.NotNil(t, ev.Matrix)
	}
	drain(dm, evs...)

	c2w, err := dm.Matrix(slots.CameraToWorld)
	require.NoError(t, err)
	assert.Equal(t, float32(10), c2w.Pos().Z)
	w2c, err := dm.Matrix(slots.WorldToCamera)
	require.NoError(t, err)
	assert.Equal(t, float32(-10), w2c.Pos().Z)

	// with no avatar, AvatarTransformation falls back to the camera
	av, err := dm.Matrix(slots.AvatarTransformation)
	require.NoError(t, err)
	assert.Equal(t, float32(10), av.Pos().Z)

	// steady camera: nothing new to publish
	assert.Empty(t, dm.UpdateImplicitDevices())

	// camera moves: updates flow again
	tv.cam.Pose[14] = 20
	evs = dm.UpdateImplicitDevices()
	assert.NotEmpty(t, evs)
}

func TestManagerWithoutViewer(t *testing.T) {
	dm := NewManager(nil, nil, nil)
	assert.Nil(t, dm.UpdateImplicitDevices())
	assert.Nil(t, dm.Viewer())
	_, err := dm.Matrix(slots.CameraToWorld)
	assert.ErrorIs(t, err, ErrMissingSlot)
}
