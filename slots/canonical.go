// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slots

// Canonical slots shared by the standard devices, the device manager, and
// the tools shipped with this module. Raw device mappings and virtual
// device networks in configuration files normally route their outputs onto
// these, so that tools written against the canonical names work with any
// device setup. Nothing restricts a configuration to this set: [Get] interns
// any name on demand.
var (
	// SystemTime carries the milliseconds elapsed since the tool system
	// started, emitted once per frame by the timer device. Devices that
	// integrate over time (see TimestepEvolution) read their timestep
	// from it.
	SystemTime = Get("SystemTime")

	// PointerTransformation is the world-space pointer frame: its
	// translation is the ray origin used for picking and its -Z axis is
	// the ray direction.
	PointerTransformation = Get("PointerTransformation")

	// PointerNDC is the pointer position in normalized device
	// coordinates, as a transformation whose translation is
	// (x, y, -1) on the near plane.
	PointerNDC = Get("PointerNDC")

	// PrimaryAction is the main button or trigger, normally what tools
	// use as their activation slot.
	PrimaryAction = Get("PrimaryAction")

	// PrimarySelection is the secondary button, conventionally used for
	// selection style interactions.
	PrimarySelection = Get("PrimarySelection")

	// PrimaryMenu is the tertiary button, conventionally bound to menu
	// or mode toggles.
	PrimaryMenu = Get("PrimaryMenu")

	// WorldToCamera is the implicit view matrix, republished by the
	// device manager whenever the camera moves.
	WorldToCamera = Get("WorldToCamera")

	// CameraToWorld is the inverse of [WorldToCamera].
	CameraToWorld = Get("CameraToWorld")

	// CameraToNDC is the implicit projection matrix of the viewer.
	CameraToNDC = Get("CameraToNDC")

	// NDCToWorld maps normalized device coordinates back into world
	// space, the composition of [CameraToWorld] with the inverse
	// projection. Combined with [PointerNDC] it yields
	// [PointerTransformation].
	NDCToWorld = Get("NDCToWorld")

	// AvatarTransformation is the world transformation of the avatar
	// node, or of the camera when no avatar is configured.
	AvatarTransformation = Get("AvatarTransformation")
)
