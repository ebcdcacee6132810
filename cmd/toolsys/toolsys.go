// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command toolsys inspects and validates tool system device
// configurations.
package main

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/cli"
	"cogentcore.org/toolsys/config"
	"cogentcore.org/toolsys/devices"
	_ "cogentcore.org/toolsys/devices/remote"
)

//go:generate core generate -add-types -add-funcs

// Config is the configuration information for the toolsys cli.
type Config struct {

	// File is the device configuration file to operate on
	// (.toml, .yaml, or .json).
	File string `posarg:"0" required:"-"`
}

func main() { //types:skip
	opts := cli.DefaultOptions("toolsys", "Inspect and validate tool system device configurations.")
	cli.Run(opts, &Config{}, Inspect, Check, Init)
}

// Inspect prints the device network described by the configuration
// file: devices, mappings, virtual devices, aliases, and constants,
// followed by any problems found.
func Inspect(c *Config) error { //cli:cmd -root
	cfg, err := load(c)
	if err != nil {
		return err
	}
	fmt.Print(describe(cfg))
	issues := validate(cfg)
	if len(issues) > 0 {
		fmt.Printf("problems (%d):\n", len(issues))
		for _, is := range issues {
			fmt.Println("  " + is)
		}
	}
	return nil
}

// Check validates the configuration file and fails if it has problems,
// for use in build pipelines.
func Check(c *Config) error {
	cfg, err := load(c)
	if err != nil {
		return err
	}
	if issues := validate(cfg); len(issues) > 0 {
		return fmt.Errorf("%s: %d problems:\n  %s", c.File, len(issues), strings.Join(issues, "\n  "))
	}
	fmt.Println(c.File + ": ok")
	return nil
}

// Init writes a starter configuration with the standard timer device to
// the given file, defaulting to toolsys.toml.
func Init(c *Config) error {
	if c.File == "" {
		c.File = "toolsys.toml"
	}
	return config.Save(config.Default(), c.File)
}

func load(c *Config) (*config.Config, error) {
	if c.File == "" {
		return nil, errors.New("no configuration file given")
	}
	return config.Open(c.File)
}

// describe renders the device network of the configuration as text.
func describe(cfg *config.Config) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "raw devices (%d):\n", len(cfg.RawDevices))
	for _, rd := range cfg.RawDevices {
		fmt.Fprintf(b, "  %s: type %s\n", rd.Name(), rd.Type)
	}
	fmt.Fprintf(b, "raw mappings (%d):\n", len(cfg.RawMappings))
	for _, m := range cfg.RawMappings {
		fmt.Fprintf(b, "  %s.%s -> %s\n", m.Device, m.Source, m.Slot)
	}
	fmt.Fprintf(b, "virtual devices (%d):\n", len(cfg.VirtualDevices))
	for _, vd := range cfg.VirtualDevices {
		fmt.Fprintf(b, "  %s: %s -> %s\n", vd.Type, strings.Join(vd.Inputs, " "), vd.Output)
	}
	fmt.Fprintf(b, "aliases (%d):\n", len(cfg.Aliases))
	for _, a := range cfg.Aliases {
		fmt.Fprintf(b, "  %s -> %s\n", a.Slot, a.Target)
	}
	fmt.Fprintf(b, "constants (%d):\n", len(cfg.Constants))
	for _, ct := range cfg.Constants {
		switch {
		case ct.Axis != nil:
			fmt.Fprintf(b, "  %s = %v\n", ct.Slot, *ct.Axis)
		case ct.Matrix != nil:
			fmt.Fprintf(b, "  %s = matrix\n", ct.Slot)
		default:
			fmt.Fprintf(b, "  %s = (empty)\n", ct.Slot)
		}
	}
	return b.String()
}

// validate returns a list of problems in the configuration: unknown
// device types, references to missing devices, degenerate entries, and
// cycles in the slot graph.
func validate(cfg *config.Config) []string {
	var issues []string
	names := map[string]bool{}
	for _, rd := range cfg.RawDevices {
		if !slices.Contains(devices.RawTypes(), rd.Type) {
			issues = append(issues, fmt.Sprintf("raw device %q: unknown type %q", rd.Name(), rd.Type))
		}
		if names[rd.Name()] {
			issues = append(issues, fmt.Sprintf("raw device %q: duplicate name", rd.Name()))
		}
		names[rd.Name()] = true
	}
	for _, m := range cfg.RawMappings {
		if !names[m.Device] {
			issues = append(issues, fmt.Sprintf("mapping %s.%s: unknown device %q", m.Device, m.Source, m.Device))
		}
		if m.Slot == "" {
			issues = append(issues, fmt.Sprintf("mapping %s.%s: empty slot", m.Device, m.Source))
		}
	}
	for _, vd := range cfg.VirtualDevices {
		if !slices.Contains(devices.VirtualTypes(), vd.Type) {
			issues = append(issues, fmt.Sprintf("virtual device %q: unknown type", vd.Type))
		}
		if len(vd.Inputs) == 0 {
			issues = append(issues, fmt.Sprintf("virtual device %q: no inputs", vd.Type))
		}
		if vd.Output == "" {
			issues = append(issues, fmt.Sprintf("virtual device %q: empty output slot", vd.Type))
		}
	}
	for _, a := range cfg.Aliases {
		if a.Slot == a.Target {
			issues = append(issues, fmt.Sprintf("alias %q: self reference", a.Slot))
		}
	}
	return append(issues, cycles(cfg)...)
}

// cycles finds loops in the slot graph formed by virtual devices and
// aliases. A cycle of aliases terminates at runtime, but a cycle through
// value-changing virtual devices may never settle, so all cycles are
// worth flagging.
func cycles(cfg *config.Config) []string {
	edges := map[string][]string{}
	for _, vd := range cfg.VirtualDevices {
		for _, in := range vd.Inputs {
			edges[in] = append(edges[in], vd.Output)
		}
	}
	for _, a := range cfg.Aliases {
		edges[a.Slot] = append(edges[a.Slot], a.Target)
	}
	srcs := make([]string, 0, len(edges))
	for s := range edges {
		srcs = append(srcs, s)
	}
	sort.Strings(srcs)

	var issues []string
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var stack []string
	var visit func(s string)
	visit = func(s string) {
		color[s] = gray
		stack = append(stack, s)
		for _, t := range edges[s] {
			switch color[t] {
			case gray:
				i := slices.Index(stack, t)
				cyc := append(slices.Clone(stack[i:]), t)
				issues = append(issues, "slot cycle: "+strings.Join(cyc, " -> "))
			case white:
				visit(t)
			}
		}
		stack = stack[:len(stack)-1]
		color[s] = black
	}
	for _, s := range srcs {
		if color[s] == white {
			visit(s)
		}
	}
	return issues
}
