// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenYAML(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(`
rawDevices:
  - type: timer
  - type: remote
    id: headset
    params:
      url: ws://localhost:8800/input
rawMappings:
  - device: timer
    source: tick
    slot: SystemTime
  - device: headset
    source: trigger
    slot: PrimaryAction
virtualDevices:
  - type: scaledAxis
    inputs: [PrimaryAction]
    output: ScaledAction
    params:
      scale: 2.5
aliases:
  - slot: PrimaryAction
    target: Action
constants:
  - slot: Enabled
    axis: 1
`), 0666))

	cfg, err := Open(fn)
	require.NoError(t, err)
	require.Len(t, cfg.RawDevices, 2)
	assert.Equal(t, "timer", cfg.RawDevices[0].Name())
	assert.Equal(t, "headset", cfg.RawDevices[1].Name())
	assert.Equal(t, "ws://localhost:8800/input", cfg.RawDevices[1].Params["url"])
	require.Len(t, cfg.RawMappings, 2)
	assert.Equal(t, "PrimaryAction", cfg.RawMappings[1].Slot)
	require.Len(t, cfg.VirtualDevices, 1)
	assert.Equal(t, []string{"PrimaryAction"}, cfg.VirtualDevices[0].Inputs)
	require.Len(t, cfg.Aliases, 1)
	require.Len(t, cfg.Constants, 1)
	require.NotNil(t, cfg.Constants[0].Axis)
	assert.Equal(t, float32(1), *cfg.Constants[0].Axis)
}

func TestSaveOpenRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.VirtualDevices = append(cfg.VirtualDevices, VirtualDevice{
		Type:   "negateAxis",
		Inputs: []string{"A"},
		Output: "NegA",
	})
	for _, ext := range []string{".json", ".toml", ".yaml"} {
		fn := filepath.Join(t.TempDir(), "tools"+ext)
		require.NoError(t, Save(cfg, fn), ext)
		got, err := Open(fn)
		require.NoError(t, err, ext)
		require.Len(t, got.RawDevices, 1, ext)
		assert.Equal(t, "timer", got.RawDevices[0].Type, ext)
		require.Len(t, got.RawMappings, 1, ext)
		assert.Equal(t, "SystemTime", got.RawMappings[0].Slot, ext)
		require.Len(t, got.VirtualDevices, 1, ext)
		assert.Equal(t, "negateAxis", got.VirtualDevices[0].Type, ext)
		assert.Equal(t, []string{"A"}, got.VirtualDevices[0].Inputs, ext)
		assert.Equal(t, "NegA", got.VirtualDevices[0].Output, ext)
	}
}

func TestOpenUnknownExtension(t *testing.T) {
	_, err := Open("tools.ini")
	assert.Error(t, err)
	assert.Error(t, Save(Default(), "tools.ini"))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.RawDevices, 1)
	assert.Equal(t, "timer", cfg.RawDevices[0].Type)
	require.Len(t, cfg.RawMappings, 1)
	assert.Equal(t, "SystemTime", cfg.RawMappings[0].Slot)
}
