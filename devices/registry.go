// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package devices

import (
	"fmt"

	"cogentcore.org/core/base/ordmap"
)

// Registries of device constructors, keyed by the type names used in
// configuration files. The registries preserve registration order so that
// listings are stable. Built-in devices register themselves in init
// functions; applications add their own with [RegisterRaw] and
// [RegisterVirtual] before building a manager.
var (
	rawTypes     = ordmap.New[string, func(name string) RawDevice]()
	virtualTypes = ordmap.New[string, func() VirtualDevice]()
)

// RegisterRaw registers a raw device constructor under the given type
// name. The constructor receives the instance name from the configuration.
func RegisterRaw(typeName string, ctor func(name string) RawDevice) {
	rawTypes.Add(typeName, ctor)
}

// RegisterVirtual registers a virtual device constructor under the given
// type name.
func RegisterVirtual(typeName string, ctor func() VirtualDevice) {
	virtualTypes.Add(typeName, ctor)
}

// NewRaw constructs a raw device of the given registered type with the
// given instance name.
func NewRaw(typeName, name string) (RawDevice, error) {
	ctor, ok := rawTypes.ValueByKeyTry(typeName)
	if !ok {
		return nil, fmt.Errorf("devices: unknown raw device type %q", typeName)
	}
	return ctor(name), nil
}

// NewVirtual constructs a virtual device of the given registered type.
func NewVirtual(typeName string) (VirtualDevice, error) {
	ctor, ok := virtualTypes.ValueByKeyTry(typeName)
	if !ok {
		return nil, fmt.Errorf("devices: unknown virtual device type %q", typeName)
	}
	return ctor(), nil
}

// RawTypes returns the registered raw device type names, in registration
// order.
func RawTypes() []string {
	return rawTypes.Keys()
}

// VirtualTypes returns the registered virtual device type names, in
// registration order.
func VirtualTypes() []string {
	return virtualTypes.Keys()
}
