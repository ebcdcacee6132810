// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene defines the minimal scene-graph contracts a tool system
// needs: node paths, local transformations, and the viewer that owns the
// scene. The actual graph is any [tree.Node] hierarchy; rendering concerns
// live entirely with the embedding application.
package scene

import (
	"cogentcore.org/core/math32"
	"cogentcore.org/core/tree"
)

// Transformer is implemented by scene nodes that carry a local
// transformation. [Path.Matrix] accumulates these along a path; nodes that
// do not implement it contribute the identity.
type Transformer interface {
	// LocalMatrix returns the node's transformation relative to its parent.
	LocalMatrix() math32.Matrix4
}

// Viewer is the contract between the embedding application and a tool
// system. It exposes the scene root for tool registration and picking,
// and the camera state that the device manager republishes as implicit
// transformation slots.
type Viewer interface {
	// SceneRoot returns the root node of the scene graph.
	SceneRoot() tree.Node

	// CameraPath returns the path from the scene root to the camera
	// node, or nil if there is no camera.
	CameraPath() *Path

	// AvatarPath returns the path from the scene root to the avatar
	// node, or nil to fall back to the camera.
	AvatarPath() *Path

	// CameraToNDC returns the projection matrix mapping camera
	// coordinates to normalized device coordinates.
	CameraToNDC() math32.Matrix4
}
