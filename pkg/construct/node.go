// Copyright (c) 2025, The kubesynth Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package construct

import (
	"strings"

	"github.com/homelab/kubesynth/pkg/errors"
)

// PathSeparator separates node ids in a node path.
const PathSeparator = "/"

// Scope is anything that occupies a position in the construct tree.
type Scope interface {
	Node() *Node
}

// Node is a single position in the construct tree.
type Node struct {
	id       string
	parent   *Node
	children []*Node
	index    map[string]*Node
	context  map[string]any
	owner    Scope
}

// NewRoot returns a new, empty tree root.
func NewRoot() *Node {
	return &Node{}
}

// New creates a child node with the given id under parent.
// Ids must be non-empty, must not contain the path separator and must be
// unique among the parent's children.
func New(parent Scope, id string) (*Node, error) {
	if parent == nil || parent.Node() == nil {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"construct must have a parent scope", map[string]any{"id": id})
	}
	p := parent.Node()

	if id == "" || strings.Contains(id, PathSeparator) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"invalid construct id", map[string]any{"id": id, "scope": p.String()})
	}
	if _, exists := p.index[id]; exists {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"construct id already used in scope", map[string]any{"id": id, "scope": p.String()})
	}

	n := &Node{id: id, parent: p}
	if p.index == nil {
		p.index = make(map[string]*Node)
	}
	p.index[id] = n
	p.children = append(p.children, n)
	return n, nil
}

// Node implements Scope.
func (n *Node) Node() *Node { return n }

// ID returns the node id. The root id is empty.
func (n *Node) ID() string { return n.id }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Root returns the root of the tree n belongs to.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Children returns the direct children in creation order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the direct child with the given id.
func (n *Node) Child(id string) (*Node, bool) {
	c, ok := n.index[id]
	return c, ok
}

// Scopes returns the nodes from the root down to n, root first.
func (n *Node) Scopes() []*Node {
	var out []*Node
	for c := n; c != nil; c = c.parent {
		out = append(out, c)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Path returns the ids from the root down to n joined by PathSeparator.
// The root itself has an empty path.
func (n *Node) Path() string {
	return strings.Join(n.pathIDs(), PathSeparator)
}

func (n *Node) pathIDs() []string {
	var ids []string
	for _, s := range n.Scopes() {
		if s.parent == nil {
			continue
		}
		ids = append(ids, s.id)
	}
	return ids
}

// String returns the node path, or "<root>" for the root.
func (n *Node) String() string {
	if n.parent == nil {
		return "<root>"
	}
	return n.Path()
}

// Owner returns the construct that claimed this node, if any.
func (n *Node) Owner() Scope { return n.owner }

// Walk visits n and its descendants depth-first in creation order.
// Returning false from fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// SetContext stores value under key at exactly this node.
func (n *Node) SetContext(key string, value any) {
	if n.context == nil {
		n.context = make(map[string]any)
	}
	n.context[key] = value
}

// TryGetContext returns the value stored under key at n or its nearest
// ancestor that has one.
func (n *Node) TryGetContext(key string) (any, bool) {
	for c := n; c != nil; c = c.parent {
		if v, ok := c.context[key]; ok {
			return v, true
		}
	}
	return nil, false
}
