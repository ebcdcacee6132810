// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package devices

import (
	"fmt"
	"time"

	"cogentcore.org/core/math32"
	"cogentcore.org/toolsys/events"
	"cogentcore.org/toolsys/slots"
	"github.com/mitchellh/mapstructure"
)

// The built-in virtual device library. Each device registers itself under
// the type name given here, usable in the virtualDevices section of a
// configuration file.
func init() {
	RegisterVirtual("scaledAxis", func() VirtualDevice { return &ScaledAxis{} })
	RegisterVirtual("negateAxis", func() VirtualDevice { return &NegateAxis{} })
	RegisterVirtual("thresholdAxis", func() VirtualDevice { return &ThresholdAxis{} })
	RegisterVirtual("mergedAxis", func() VirtualDevice { return &MergedAxis{} })
	RegisterVirtual("toggle", func() VirtualDevice { return &Toggle{} })
	RegisterVirtual("click", func() VirtualDevice { return &Click{} })
	RegisterVirtual("timestepEvolution", func() VirtualDevice { return &TimestepEvolution{} })
	RegisterVirtual("productMatrix", func() VirtualDevice { return &ProductMatrix{} })
	RegisterVirtual("invertMatrix", func() VirtualDevice { return &InvertMatrix{} })
	RegisterVirtual("extractTranslation", func() VirtualDevice { return &ExtractTranslation{} })
	RegisterVirtual("rasterToNDC", func() VirtualDevice { return &RasterToNDC{} })
}

// decodeParams decodes free-form configuration parameters into the given
// device struct, matching keys to mapstructure tags.
func decodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	return mapstructure.Decode(params, out)
}

// translationMatrix returns the pure translation matrix for the given
// position.
func translationMatrix(x, y, z float32) math32.Matrix4 {
	m := math32.Identity4()
	m[12], m[13], m[14] = x, y, z
	return *m
}

// virtualBase carries the wiring common to all built-in virtual devices:
// the type name, the bound slots, and the output event constructors.
type virtualBase struct {
	name   string
	inputs []*slots.Slot
	output *slots.Slot
}

// bind stores the wiring, checking the input count.
func (vb *virtualBase) bind(name string, inputs []*slots.Slot, output *slots.Slot, wantInputs int) error {
	if len(inputs) < wantInputs {
		return fmt.Errorf("%s: needs %d input slot(s), got %d", name, wantInputs, len(inputs))
	}
	if output == nil {
		return fmt.Errorf("%s: needs an output slot", name)
	}
	vb.name, vb.inputs, vb.output = name, inputs, output
	return nil
}

func (vb *virtualBase) Name() string {
	return vb.name
}

func (vb *virtualBase) Dispose() {}

func (vb *virtualBase) axisOut(dc *Context, v float32) *events.ToolEvent {
	return events.NewAxisEvent(vb.name, vb.output, slots.Axis(v), dc.Time())
}

func (vb *virtualBase) matrixOut(dc *Context, m math32.Matrix4) *events.ToolEvent {
	return events.NewMatrixEvent(vb.name, vb.output, m, dc.Time())
}

// ScaledAxis emits Scale*value + Offset for every change of its one input
// axis. Params: scale (default 1), offset (default 0).
type ScaledAxis struct {
	virtualBase
	Scale  float32 `mapstructure:"scale"`
	Offset float32 `mapstructure:"offset"`
}

func (sa *ScaledAxis) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	sa.Scale = 1
	if err := sa.bind("scaledAxis", inputs, output, 1); err != nil {
		return err
	}
	return decodeParams(params, sa)
}

func (sa *ScaledAxis) Process(dc *Context) (*events.ToolEvent, error) {
	a, err := dc.AxisState(sa.inputs[0])
	if err != nil {
		return nil, err
	}
	return sa.axisOut(dc, a.Value()*sa.Scale+sa.Offset), nil
}

// NegateAxis emits the negated value of its one input axis, turning for
// example a scroll-up axis into a scroll-down one.
type NegateAxis struct {
	virtualBase
}

func (na *NegateAxis) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	return na.bind("negateAxis", inputs, output, 1)
}

func (na *NegateAxis) Process(dc *Context) (*events.ToolEvent, error) {
	a, err := dc.AxisState(na.inputs[0])
	if err != nil {
		return nil, err
	}
	return na.axisOut(dc, -a.Value()), nil
}

// ThresholdAxis digitizes an analog axis: it emits 1 while the magnitude
// of its input is at least Threshold and 0 otherwise, turning a joystick
// deflection into a button. Params: threshold (default 0.5).
type ThresholdAxis struct {
	virtualBase
	Threshold float32 `mapstructure:"threshold"`
}

func (ta *ThresholdAxis) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	ta.Threshold = slots.PressThreshold
	if err := ta.bind("thresholdAxis", inputs, output, 1); err != nil {
		return err
	}
	return decodeParams(params, ta)
}

func (ta *ThresholdAxis) Process(dc *Context) (*events.ToolEvent, error) {
	a, err := dc.AxisState(ta.inputs[0])
	if err != nil {
		return nil, err
	}
	if math32.Abs(a.Value()) >= ta.Threshold {
		return ta.axisOut(dc, 1), nil
	}
	return ta.axisOut(dc, 0), nil
}

// MergedAxis merges two or more input axes into one output: on every
// change of any input it emits the input value of largest magnitude, so
// for buttons the output is held while any of them is.
type MergedAxis struct {
	virtualBase
}

func (ma *MergedAxis) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	return ma.bind("mergedAxis", inputs, output, 2)
}

func (ma *MergedAxis) Process(dc *Context) (*events.ToolEvent, error) {
	best := float32(0)
	found := false
	for _, in := range ma.inputs {
		a, err := dc.AxisState(in)
		if err != nil {
			continue
		}
		found = true
		if math32.Abs(a.Value()) > math32.Abs(best) {
			best = a.Value()
		}
	}
	if !found {
		return nil, missingSlot(ma.inputs[0])
	}
	return ma.axisOut(dc, best), nil
}

// Toggle latches a button: every press edge of its input flips the output
// between 0 and 1, so holding and releasing does not change it again.
type Toggle struct {
	virtualBase
	on bool
}

func (tg *Toggle) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	return tg.bind("toggle", inputs, output, 1)
}

func (tg *Toggle) Process(dc *Context) (*events.ToolEvent, error) {
	if !dc.Event().PressEdge {
		return nil, nil
	}
	tg.on = !tg.on
	if tg.on {
		return tg.axisOut(dc, 1), nil
	}
	return tg.axisOut(dc, 0), nil
}

// Click detects quick taps of a button: when the input is released within
// ClickMillis of its press, the output goes to pressed; it returns to
// released at the start of the next press. Holding the button past the
// window produces no output. Params: clickMillis (default 400).
type Click struct {
	virtualBase
	ClickMillis int `mapstructure:"clickMillis"`

	pressedAt time.Time
	outOn     bool
}

func (ck *Click) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	ck.ClickMillis = 400
	if err := ck.bind("click", inputs, output, 1); err != nil {
		return err
	}
	return decodeParams(params, ck)
}

func (ck *Click) Process(dc *Context) (*events.ToolEvent, error) {
	ev := dc.Event()
	switch {
	case ev.PressEdge:
		ck.pressedAt = ev.Time
		if ck.outOn {
			ck.outOn = false
			return ck.axisOut(dc, 0), nil
		}
	case ev.ReleaseEdge:
		if !ck.pressedAt.IsZero() && ev.Time.Sub(ck.pressedAt) <= time.Duration(ck.ClickMillis)*time.Millisecond {
			ck.outOn = true
			return ck.axisOut(dc, 1), nil
		}
	}
	return nil, nil
}

// TimestepEvolution integrates a rate axis over time: on every change of
// the time input (elapsed milliseconds, normally SystemTime) it adds
// rate * dt to its accumulated output, with dt in seconds. Wiring a held
// button as the rate gives a value that grows while the button is down.
// Inputs: 0 = rate axis, 1 = time axis.
type TimestepEvolution struct {
	virtualBase
	value    float32
	last     float32
	haveLast bool
}

func (te *TimestepEvolution) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	return te.bind("timestepEvolution", inputs, output, 2)
}

func (te *TimestepEvolution) Process(dc *Context) (*events.ToolEvent, error) {
	if dc.Event().Slot != te.inputs[1] {
		return nil, nil // rate changes alone produce nothing
	}
	tm, err := dc.AxisState(te.inputs[1])
	if err != nil {
		return nil, err
	}
	now := tm.Value()
	if !te.haveLast {
		te.last, te.haveLast = now, true
		return nil, nil
	}
	dt := now - te.last
	te.last = now
	if dt <= 0 {
		return nil, nil
	}
	rate, err := dc.AxisState(te.inputs[0])
	if err != nil {
		return nil, err
	}
	if rate.Value() == 0 {
		return nil, nil
	}
	te.value += rate.Value() * dt / 1000
	return te.axisOut(dc, te.value), nil
}

// ProductMatrix emits the product A * B of its two transformation inputs
// whenever either changes. Composing PointerNDC with NDCToWorld this way
// yields PointerTransformation. Inputs: 0 = A, 1 = B.
type ProductMatrix struct {
	virtualBase
}

func (pm *ProductMatrix) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	return pm.bind("productMatrix", inputs, output, 2)
}

func (pm *ProductMatrix) Process(dc *Context) (*events.ToolEvent, error) {
	a, err := dc.Matrix(pm.inputs[0])
	if err != nil {
		return nil, err
	}
	b, err := dc.Matrix(pm.inputs[1])
	if err != nil {
		return nil, err
	}
	var out math32.Matrix4
	out.MulMatrices(&a, &b)
	return pm.matrixOut(dc, out), nil
}

// InvertMatrix emits the inverse of its one transformation input.
type InvertMatrix struct {
	virtualBase
}

func (im *InvertMatrix) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	return im.bind("invertMatrix", inputs, output, 1)
}

func (im *InvertMatrix) Process(dc *Context) (*events.ToolEvent, error) {
	m, err := dc.Matrix(im.inputs[0])
	if err != nil {
		return nil, err
	}
	inv, err := m.Inverse()
	if err != nil {
		return nil, fmt.Errorf("invertMatrix: %w", err)
	}
	return im.matrixOut(dc, *inv), nil
}

// ExtractTranslation emits the pure translation part of its one
// transformation input, dropping rotation and scale.
type ExtractTranslation struct {
	virtualBase
}

func (et *ExtractTranslation) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	return et.bind("extractTranslation", inputs, output, 1)
}

func (et *ExtractTranslation) Process(dc *Context) (*events.ToolEvent, error) {
	m, err := dc.Matrix(et.inputs[0])
	if err != nil {
		return nil, err
	}
	pos := m.Pos()
	return et.matrixOut(dc, translationMatrix(pos.X, pos.Y, pos.Z)), nil
}

// RasterToNDC converts raster pixel coordinates into a normalized device
// coordinate pointer transformation: a translation to (x', y', -1) on the
// near plane, with x' and y' in -1..1 and y flipped from raster (down)
// to NDC (up). Inputs: 0 = x axis, 1 = y axis, both in pixels.
// Params: width, height of the viewport in pixels (default 1).
type RasterToNDC struct {
	virtualBase
	Width  float32 `mapstructure:"width"`
	Height float32 `mapstructure:"height"`
}

func (rn *RasterToNDC) Initialize(inputs []*slots.Slot, output *slots.Slot, params map[string]any) error {
	rn.Width, rn.Height = 1, 1
	if err := rn.bind("rasterToNDC", inputs, output, 2); err != nil {
		return err
	}
	if err := decodeParams(params, rn); err != nil {
		return err
	}
	if rn.Width <= 0 || rn.Height <= 0 {
		return fmt.Errorf("rasterToNDC: width and height must be positive, got %g x %g", rn.Width, rn.Height)
	}
	return nil
}

func (rn *RasterToNDC) Process(dc *Context) (*events.ToolEvent, error) {
	x, err := dc.AxisState(rn.inputs[0])
	if err != nil {
		return nil, err
	}
	y, err := dc.AxisState(rn.inputs[1])
	if err != nil {
		return nil, err
	}
	ndcX := 2*x.Value()/rn.Width - 1
	ndcY := 1 - 2*y.Value()/rn.Height
	return rn.matrixOut(dc, translationMatrix(ndcX, ndcY, -1)), nil
}
