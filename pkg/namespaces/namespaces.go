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

// Package namespaces declares every namespace used in the construct tree
// exactly once.
//
// Setup installs the registry near the root, NewChart attaches the chart
// that owns the Namespace objects, and Add may then be called from anywhere
// below. Repeated names are ignored and the built-in "default" namespace is
// never declared.
package namespaces

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/scopedctx"
)

// Builtin is the namespace every cluster already has.
const Builtin = "default"

const notSetup = "namespace chart has not been setup for this construct tree"

var registryContext = scopedctx.New[*Registry]("Namespaces", scopedctx.WithErrorOnMissing(notSetup))

// Metadata describes a namespace to declare. An empty Name selects the
// configured default namespace.
type Metadata struct {
	Name        string
	Labels      map[string]string
	Annotations map[string]string
}

// Registry tracks the declared namespaces of one construct tree.
type Registry struct {
	defaultName string
	chart       *Chart
	namespaces  map[string]*corev1.Namespace
	order       []string
}

// Chart owns the Namespace objects.
type Chart struct {
	*construct.Chart
	registry *Registry
}

// Setup installs an empty registry at scope.
func Setup(scope construct.Scope, defaultName string) (*Registry, error) {
	if _, ok := registryContext.TryGet(scope); ok {
		return nil, errors.NewWithContext(errors.ErrCodeAlreadySetup,
			"namespace registry has already been setup for this construct tree",
			map[string]any{"scope": scope.Node().String()})
	}

	r := &Registry{
		defaultName: defaultName,
		namespaces:  make(map[string]*corev1.Namespace),
	}
	registryContext.Set(scope, r)
	return r, nil
}

// FromScope returns the registry visible from scope.
func FromScope(scope construct.Scope) (*Registry, error) {
	return registryContext.Get(scope)
}

// NewChart creates the namespace chart and attaches it to the registry
// visible from scope.
func NewChart(scope construct.Scope, id string, props construct.ChartProps) (*Chart, error) {
	r, err := FromScope(scope)
	if err != nil {
		return nil, err
	}
	if r.chart != nil {
		return nil, errors.NewWithContext(errors.ErrCodeAlreadySetup,
			"namespace chart has already been setup for this construct tree",
			map[string]any{"existing": r.chart.Node().Path()})
	}

	c, err := construct.NewChart(scope, id, props)
	if err != nil {
		return nil, err
	}
	r.chart = &Chart{Chart: c, registry: r}
	return r.chart, nil
}

// Add declares a namespace on behalf of scope using the registry visible
// from scope.
func Add(scope construct.Scope, md Metadata) error {
	r, err := FromScope(scope)
	if err != nil {
		return err
	}
	return r.Add(scope, md)
}

// DefaultName returns the configured default namespace name.
func DefaultName(scope construct.Scope) (string, error) {
	r, err := FromScope(scope)
	if err != nil {
		return "", err
	}
	return r.defaultName, nil
}

// Add declares a namespace on behalf of scope. Labels of the chart enclosing
// scope are inherited when there is one; labels in md take precedence.
func (r *Registry) Add(scope construct.Scope, md Metadata) error {
	if r.chart == nil {
		return errors.New(errors.ErrCodeMissingContext, notSetup)
	}

	name := md.Name
	if name == "" {
		name = r.defaultName
	}
	if name == Builtin {
		return nil
	}
	if _, ok := r.namespaces[name]; ok {
		return nil
	}
	if msgs := validation.IsDNS1123Label(name); len(msgs) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid namespace name %q: %s", name, strings.Join(msgs, "; ")),
			map[string]any{"name": name})
	}

	var inherited map[string]string
	if c, ok := construct.ChartOf(scope); ok {
		inherited = c.Labels()
	}
	labels := maps.Clone(inherited)
	if labels == nil {
		labels = make(map[string]string, len(md.Labels))
	}
	maps.Copy(labels, md.Labels)

	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Labels:      labels,
			Annotations: maps.Clone(md.Annotations),
		},
	}
	if err := construct.AddObject(r.chart, name, ns); err != nil {
		return err
	}

	r.namespaces[name] = ns
	r.order = append(r.order, name)
	slog.Debug("namespace registered", "name", name, "requested_by", scope.Node().String())
	return nil
}

// DefaultName returns the configured default namespace name.
func (r *Registry) DefaultName() string { return r.defaultName }

// Names returns the declared namespace names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the declared namespace with the given name.
func (r *Registry) Get(name string) (*corev1.Namespace, bool) {
	ns, ok := r.namespaces[name]
	return ns, ok
}

// Chart returns the attached chart, or nil before NewChart.
func (r *Registry) Chart() *Chart { return r.chart }
