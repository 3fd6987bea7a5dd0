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
	"log/slog"
	"maps"
)

// ChartProps configures a chart.
type ChartProps struct {
	// Namespace is applied to every namespaced object in the chart that does
	// not set one itself.
	Namespace string

	// Labels are merged into every object in the chart. Labels set on the
	// object itself take precedence.
	Labels map[string]string

	// DisableNameHashes drops the hash suffix from the names generated for
	// objects added without one.
	DisableNameHashes bool
}

// Chart is a subtree of the construct tree that renders to one manifest.
type Chart struct {
	node    *Node
	props   ChartProps
	objects []Object
}

// NewChart creates a chart under scope.
func NewChart(scope Scope, id string, props ChartProps) (*Chart, error) {
	n, err := New(scope, id)
	if err != nil {
		return nil, err
	}

	c := &Chart{
		node: n,
		props: ChartProps{
			Namespace:         props.Namespace,
			Labels:            maps.Clone(props.Labels),
			DisableNameHashes: props.DisableNameHashes,
		},
	}
	n.owner = c

	slog.Debug("chart created", "path", n.Path(), "namespace", props.Namespace)
	return c, nil
}

// Node implements Scope.
func (c *Chart) Node() *Node { return c.node }

// ID returns the chart id.
func (c *Chart) ID() string { return c.node.id }

// Namespace returns the chart namespace, which may be empty.
func (c *Chart) Namespace() string { return c.props.Namespace }

// Labels returns a copy of the chart labels.
func (c *Chart) Labels() map[string]string {
	return maps.Clone(c.props.Labels)
}

// Objects returns the objects owned by the chart in the order they were added.
func (c *Chart) Objects() []Object {
	out := make([]Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// ChartOf returns the chart nearest to scope, including scope itself.
// The second result is false when scope is not inside any chart.
func ChartOf(scope Scope) (*Chart, bool) {
	if scope == nil {
		return nil, false
	}
	for n := scope.Node(); n != nil; n = n.parent {
		if c, ok := n.owner.(*Chart); ok {
			return c, true
		}
	}
	return nil, false
}

// NamespaceOf returns the namespace of the chart nearest to scope, or fallback
// when there is no chart or it has no namespace.
func NamespaceOf(scope Scope, fallback string) string {
	if c, ok := ChartOf(scope); ok && c.props.Namespace != "" {
		return c.props.Namespace
	}
	return fallback
}

// Charts returns every chart in the tree below n in depth-first order.
func Charts(n *Node) []*Chart {
	var out []*Chart
	n.Walk(func(c *Node) bool {
		if ch, ok := c.owner.(*Chart); ok {
			out = append(out, ch)
		}
		return true
	})
	return out
}
