// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the declarative description of a device network:
// which raw devices exist, how their sources map onto slots, which virtual
// devices derive further slots, plus slot aliases and constant slot values.
// Configurations load from TOML, YAML, or JSON files by extension.
package config

import (
	"fmt"
	"path/filepath"

	"cogentcore.org/core/base/iox/jsonx"
	"cogentcore.org/core/base/iox/tomlx"
	"cogentcore.org/core/base/iox/yamlx"
	"cogentcore.org/core/math32"
)

// RawDevice declares one raw device instance.
type RawDevice struct {
	// Type is the registered device type name, such as "timer" or "remote".
	Type string `json:"type" yaml:"type"`

	// ID is the instance name used by [RawMapping.Device] and as the
	// source name on the events the device emits. It defaults to Type.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Params holds free-form device parameters, decoded by the device.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Name returns the instance name: ID if set, else Type.
func (d *RawDevice) Name() string {
	if d.ID != "" {
		return d.ID
	}
	return d.Type
}

// RawMapping binds one source of a raw device to a slot.
type RawMapping struct {
	// Device is the instance name of the raw device, see [RawDevice.Name].
	Device string `json:"device" yaml:"device"`

	// Source is the device-local source name, such as "tick" or "left".
	Source string `json:"source" yaml:"source"`

	// Slot is the slot name the source feeds.
	Slot string `json:"slot" yaml:"slot"`
}

// VirtualDevice declares one virtual device instance in the network.
type VirtualDevice struct {
	// Type is the registered virtual device type name, such as
	// "scaledAxis" or "productMatrix".
	Type string `json:"type" yaml:"type"`

	// Inputs are the slot names the device is evaluated on, in the
	// order the device documents.
	Inputs []string `json:"inputs" yaml:"inputs"`

	// Output is the slot name the device writes.
	Output string `json:"output" yaml:"output"`

	// Params holds free-form device parameters, decoded by the device.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Alias renames a slot: every event arriving on Slot is republished on
// Target, so tools and virtual devices can listen to either name.
type Alias struct {
	Slot   string `json:"slot" yaml:"slot"`
	Target string `json:"target" yaml:"target"`
}

// Constant seeds a slot with a fixed value at startup. Exactly one of
// Axis and Matrix should be set.
type Constant struct {
	Slot   string          `json:"slot" yaml:"slot"`
	Axis   *float32        `json:"axis,omitempty" yaml:"axis,omitempty"`
	Matrix *math32.Matrix4 `json:"matrix,omitempty" yaml:"matrix,omitempty"`
}

// Config is the full declarative description of a device network.
type Config struct {
	// RawDevices are the raw device instances to create.
	RawDevices []RawDevice `json:"rawDevices,omitempty" yaml:"rawDevices,omitempty"`

	// RawMappings bind raw device sources to slots.
	RawMappings []RawMapping `json:"rawMappings,omitempty" yaml:"rawMappings,omitempty"`

	// VirtualDevices derive further slots from existing ones.
	VirtualDevices []VirtualDevice `json:"virtualDevices,omitempty" yaml:"virtualDevices,omitempty"`

	// Aliases republish slots under additional names.
	Aliases []Alias `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Constants seed slots with fixed values at startup.
	Constants []Constant `json:"constants,omitempty" yaml:"constants,omitempty"`
}

// Default returns the configuration every tool system can run with:
// a timer device feeding the SystemTime slot once per frame. Applications
// append their own devices and mappings to it.
func Default() *Config {
	return &Config{
		RawDevices:  []RawDevice{{Type: "timer"}},
		RawMappings: []RawMapping{{Device: "timer", Source: "tick", Slot: "SystemTime"}},
	}
}

// Open reads the configuration from the given file, choosing the format
// by extension: .toml, .yaml / .yml, or .json.
func Open(filename string) (*Config, error) {
	cfg := &Config{}
	var err error
	switch filepath.Ext(filename) {
	case ".toml":
		err = tomlx.Open(cfg, filename)
	case ".yaml", ".yml":
		err = yamlx.Open(cfg, filename)
	case ".json":
		err = jsonx.Open(cfg, filename)
	default:
		err = fmt.Errorf("config.Open: unknown config file extension %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given file, choosing the format by
// extension as in [Open].
func Save(cfg *Config, filename string) error {
	switch filepath.Ext(filename) {
	case ".toml":
		return tomlx.Save(cfg, filename)
	case ".yaml", ".yml":
		return yamlx.Save(cfg, filename)
	case ".json":
		return jsonx.Save(cfg, filename)
	}
	return fmt.Errorf("config.Save: unknown config file extension %q", filepath.Ext(filename))
}
