// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"strings"
	"testing"

	"cogentcore.org/toolsys/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cfg := &config.Config{
		RawDevices: []config.RawDevice{
			{Type: "timer", ID: "clock"},
			{Type: "warp", ID: "w"},
			{Type: "timer", ID: "clock"},
		},
		RawMappings: []config.RawMapping{
			{Device: "clock", Source: "tick", Slot: "systemTime"},
			{Device: "ghost", Source: "x", Slot: "y"},
		},
		VirtualDevices: []config.VirtualDevice{
			{Type: "scaledAxis", Inputs: []string{"a"}, Output: "b"},
			{Type: "nope", Inputs: []string{"a"}, Output: "c"},
			{Type: "negateAxis", Output: "d"},
		},
		Aliases: []config.Alias{{Slot: "x", Target: "x"}},
	}
	joined := strings.Join(validate(cfg), "\n")
	assert.Contains(t, joined, `raw device "w": unknown type "warp"`)
	assert.Contains(t, joined, "duplicate name")
	assert.Contains(t, joined, `unknown device "ghost"`)
	assert.Contains(t, joined, `virtual device "nope": unknown type`)
	assert.Contains(t, joined, "no inputs")
	assert.Contains(t, joined, "self reference")
}

func TestCycles(t *testing.T) {
	looped := &config.Config{
		VirtualDevices: []config.VirtualDevice{
			{Type: "scaledAxis", Inputs: []string{"a"}, Output: "b"},
			{Type: "scaledAxis", Inputs: []string{"b"}, Output: "a"},
		},
	}
	issues := cycles(looped)
	require.Len(t, issues, 1)
	assert.Equal(t, "slot cycle: a -> b -> a", issues[0])

	chain := &config.Config{
		VirtualDevices: []config.VirtualDevice{
			{Type: "scaledAxis", Inputs: []string{"a"}, Output: "b"},
			{Type: "scaledAxis", Inputs: []string{"b"}, Output: "c"},
		},
		Aliases: []config.Alias{{Slot: "c", Target: "d"}},
	}
	assert.Empty(t, cycles(chain))

	aliasLoop := &config.Config{
		Aliases: []config.Alias{{Slot: "l", Target: "r"}, {Slot: "r", Target: "l"}},
	}
	assert.Len(t, cycles(aliasLoop), 1)
}

func TestInitAndCheck(t *testing.T) {
	file := filepath.Join(t.TempDir(), "toolsys.toml")
	c := &Config{File: file}
	require.NoError(t, Init(c))
	require.NoError(t, Check(c))

	cfg, err := load(c)
	require.NoError(t, err)
	out := describe(cfg)
	assert.Contains(t, out, "timer")
	assert.Contains(t, out, "systemTime")
}

func TestCheckFailsOnProblems(t *testing.T) {
	bad := &config.Config{RawDevices: []config.RawDevice{{Type: "warp"}}}
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, config.Save(bad, file))
	assert.Error(t, Check(&Config{File: file}))

	assert.Error(t, Inspect(&Config{}))
}
