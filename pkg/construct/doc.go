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

// Package construct provides the scope tree that every kubesynth resource is
// defined in.
//
// # Overview
//
// A tree of Nodes models how infrastructure is composed. The root is created
// with NewRoot; every other node is created with New under a parent scope and
// is identified by an id that is unique among its siblings. Anything that
// embeds or exposes a *Node implements Scope, so constructs from different
// packages can be nested freely.
//
// Charts are nodes that own Kubernetes API objects. Each chart maps to one
// rendered manifest file and carries an optional namespace and a set of labels
// that are applied to every object added beneath it:
//
//	root := construct.NewRoot()
//	chart, err := construct.NewChart(root, "debug", construct.ChartProps{
//	    Namespace: "debug",
//	    Labels:    map[string]string{"app": "whoami"},
//	})
//	if err != nil {
//	    return err
//	}
//	svc := &corev1.Service{}
//	if err := construct.AddObject(chart, "service", svc); err != nil {
//	    return err
//	}
//	// svc now has apiVersion/kind, a generated name, the chart namespace and labels.
//
// # Context
//
// Every node holds a small key/value table. TryGetContext walks from a node up
// through its ancestors and returns the nearest value. Package scopedctx builds
// typed, collision-free keys on top of this table.
//
// # Names
//
// ToDNSLabel derives a stable RFC 1123 label from a node path plus optional
// extra components. The same path always produces the same name, so rendered
// manifests diff cleanly between runs.
package construct
