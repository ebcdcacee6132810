// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pick implements bounding box picking: a [tools.PickSystem]
// that intersects the pointer ray with the world bounding boxes of
// scene graph nodes.
package pick

import (
	"sort"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/tree"
	"cogentcore.org/toolsys/scene"
	"cogentcore.org/toolsys/tools"
)

// Bounded is implemented by scene nodes that can be picked. Bounds must
// be in world coordinates and are expected to enclose the bounds of all
// children, so that a miss prunes the whole subtree.
type Bounded interface {

	// WorldBounds returns the node's bounding box in world coordinates.
	WorldBounds() math32.Box3
}

// Bounds is a [tools.PickSystem] that tests the pointer ray against the
// [Bounded] nodes of the scene. Nodes that do not implement [Bounded]
// are transparent to picking but their children are still considered.
type Bounds struct {
	root tree.Node
}

func NewBounds(root tree.Node) *Bounds {
	return &Bounds{root: root}
}

func (pb *Bounds) SetSceneRoot(root tree.Node) {
	pb.root = root
}

// ComputePick walks the scene and collects a result for every [Bounded]
// node whose box the ray from from toward to hits, sorted from nearest
// to farthest intersection.
func (pb *Bounds) ComputePick(from, to math32.Vector3) []tools.PickResult {
	if pb.root == nil {
		return nil
	}
	dir := to.Sub(from)
	if dir.Length() == 0 {
		return nil
	}
	ray := math32.Ray{Origin: from, Dir: dir.Normal()}
	var res []tools.PickResult
	pb.root.AsTree().WalkDown(func(n tree.Node) bool {
		bn, ok := n.(Bounded)
		if !ok {
			return tree.Continue
		}
		pt, has := ray.IntersectBox(bn.WorldBounds())
		if !has {
			return tree.Break
		}
		res = append(res, tools.PickResult{Path: scene.PathTo(n), Point: pt})
		return tree.Continue
	})

	sort.Slice(res, func(i, j int) bool {
		di := res[i].Point.DistanceTo(from)
		dj := res[j].Point.DistanceTo(from)
		return di < dj
	})

	return res
}

var _ tools.PickSystem = (*Bounds)(nil)
