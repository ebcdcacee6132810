// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tools

import (
	"cogentcore.org/core/math32"
	"cogentcore.org/core/tree"
	"cogentcore.org/toolsys/scene"
)

// PickResult is one intersection between the pointer ray and the scene.
type PickResult struct {

	// Path is the scene path from the root to the picked node.
	Path *scene.Path

	// Point is the intersection point in world coordinates.
	Point math32.Vector3
}

// PickSystem computes intersections between a ray and the scene graph.
// The [System] queries it lazily when a trigger event needs a pick, using
// the pointer transformation to derive the ray. Implementations must
// return results ordered from nearest to farthest.
type PickSystem interface {

	// SetSceneRoot sets the scene graph root that picking operates on.
	SetSceneRoot(root tree.Node)

	// ComputePick returns all intersections of the ray from from toward
	// to, nearest first. An empty result means the ray hit nothing.
	ComputePick(from, to math32.Vector3) []PickResult
}
