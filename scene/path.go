// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"slices"
	"strings"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/tree"
)

// Path is an ordered sequence of scene-graph nodes from an ancestor (the
// first element, normally the scene root) down to a target node (the last).
// Paths are treated as immutable once built: [Path.Prefix] and [Path.Pop]
// return views sharing the same backing nodes.
type Path struct {
	nodes []tree.Node
}

// NewPath returns a path over the given nodes, first element outermost.
func NewPath(nodes ...tree.Node) *Path {
	return &Path{nodes: nodes}
}

// PathTo returns the path from the outermost ancestor of n down to n,
// following parent links.
func PathTo(n tree.Node) *Path {
	var nodes []tree.Node
	for cur := n; cur != nil; cur = cur.AsTree().Parent {
		nodes = append(nodes, cur)
	}
	slices.Reverse(nodes)
	return &Path{nodes: nodes}
}

// Len returns the number of nodes in the path.
func (p *Path) Len() int {
	return len(p.nodes)
}

// Node returns the i-th node, 0 being the outermost.
func (p *Path) Node(i int) tree.Node {
	return p.nodes[i]
}

// Last returns the innermost node, or nil for an empty path.
func (p *Path) Last() tree.Node {
	if len(p.nodes) == 0 {
		return nil
	}
	return p.nodes[len(p.nodes)-1]
}

// Prefix returns the path holding the first n nodes.
func (p *Path) Prefix(n int) *Path {
	return &Path{nodes: p.nodes[:n]}
}

// Pop returns the path without its innermost node.
func (p *Path) Pop() *Path {
	if len(p.nodes) == 0 {
		return p
	}
	return p.Prefix(len(p.nodes) - 1)
}

// Contains reports whether the given node occurs anywhere in the path.
func (p *Path) Contains(n tree.Node) bool {
	return slices.Contains(p.nodes, n)
}

// Equal reports whether the two paths hold the same nodes, by identity,
// in the same order.
func (p *Path) Equal(o *Path) bool {
	if p == nil || o == nil {
		return p == o
	}
	if len(p.nodes) != len(o.nodes) {
		return false
	}
	for i, n := range p.nodes {
		if o.nodes[i] != n {
			return false
		}
	}
	return true
}

// Matrix returns the accumulated transformation along the path: the
// product of the [Transformer] nodes' local matrices, outermost first.
// For a path from the scene root this is the world matrix of the last node.
func (p *Path) Matrix() math32.Matrix4 {
	m := math32.Identity4()
	for _, n := range p.nodes {
		if tf, ok := n.(Transformer); ok {
			lm := tf.LocalMatrix()
			m.SetMul(&lm)
		}
	}
	return *m
}

func (p *Path) String() string {
	if p == nil {
		return "<nil>"
	}
	var sb strings.Builder
	for _, n := range p.nodes {
		sb.WriteString("/")
		sb.WriteString(n.AsTree().Name)
	}
	return sb.String()
}
