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

// Package dnsoverride collects in-cluster DNS rewrites for hostnames served
// by the cluster's own gateways.
//
// All rewrites end up in the CoreDNS coredns-custom ConfigMap so that pods
// resolve public hostnames to the internal gateway service instead of going
// out through the external load balancer.
package dnsoverride

import (
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/hostname"
	"github.com/homelab/kubesynth/pkg/scopedctx"
)

const (
	// Namespace is where CoreDNS reads its custom config from.
	Namespace = "kube-system"

	// ConfigMapName is the ConfigMap CoreDNS imports custom rules from.
	ConfigMapName = "coredns-custom"

	// ClusterDomain is the cluster DNS suffix for services.
	ClusterDomain = "svc.cluster.local"

	overrideSuffix = ".override"
	notSetup       = "DNS override chart has not been setup for this construct tree"
)

var registryContext = scopedctx.New[*Registry]("DNSOverrides", scopedctx.WithErrorOnMissing(notSetup))

// TargetResolver returns the in-cluster DNS name a hostname should resolve to.
type TargetResolver interface {
	ResolveTarget() (string, error)
}

// TargetFunc adapts a function to a TargetResolver.
type TargetFunc func() (string, error)

// ResolveTarget implements TargetResolver.
func (f TargetFunc) ResolveTarget() (string, error) { return f() }

// Registry holds the rewrites of one construct tree.
type Registry struct {
	chart     *Chart
	hostnames []string
	seen      map[string]struct{}
}

// Chart owns the CoreDNS ConfigMap.
type Chart struct {
	*construct.Chart
	configMap *corev1.ConfigMap
}

// Setup installs an empty registry at scope.
func Setup(scope construct.Scope) (*Registry, error) {
	if _, ok := registryContext.TryGet(scope); ok {
		return nil, errors.NewWithContext(errors.ErrCodeAlreadySetup,
			"DNS override registry has already been setup for this construct tree",
			map[string]any{"scope": scope.Node().String()})
	}
	r := &Registry{seen: make(map[string]struct{})}
	registryContext.Set(scope, r)
	return r, nil
}

// FromScope returns the registry visible from scope.
func FromScope(scope construct.Scope) (*Registry, error) {
	return registryContext.Get(scope)
}

// NewChart creates the chart owning the CoreDNS ConfigMap and attaches it to
// the registry visible from scope. The chart always lives in kube-system.
func NewChart(scope construct.Scope, id string, props construct.ChartProps) (*Chart, error) {
	r, err := FromScope(scope)
	if err != nil {
		return nil, err
	}
	if r.chart != nil {
		return nil, errors.NewWithContext(errors.ErrCodeAlreadySetup,
			"DNS override chart has already been setup for this construct tree",
			map[string]any{"existing": r.chart.Node().Path()})
	}

	props.Namespace = Namespace
	c, err := construct.NewChart(scope, id, props)
	if err != nil {
		return nil, err
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ConfigMapName,
			Namespace: Namespace,
		},
		Data: map[string]string{},
	}
	if err := construct.AddObject(c, "default", cm); err != nil {
		return nil, err
	}

	r.chart = &Chart{Chart: c, configMap: cm}
	return r.chart, nil
}

// Add adds a rewrite for h using the registry visible from scope.
func Add(scope construct.Scope, h string, target TargetResolver) error {
	r, err := FromScope(scope)
	if err != nil {
		return err
	}
	return r.Add(h, target)
}

// Add adds a rewrite for h. The first rewrite for a hostname wins and later
// ones are ignored without resolving their target.
func (r *Registry) Add(h string, target TargetResolver) error {
	if r.chart == nil {
		return errors.New(errors.ErrCodeMissingContext, notSetup)
	}
	if _, ok := r.seen[h]; ok {
		return nil
	}

	to, err := target.ResolveTarget()
	if err != nil {
		return err
	}

	r.seen[h] = struct{}{}
	r.hostnames = append(r.hostnames, h)
	r.chart.configMap.Data[h+overrideSuffix] = Rule(h, to)

	slog.Debug("dns override added", "hostname", h, "target", to)
	return nil
}

// Hostnames returns the overridden hostnames in the order they were added.
func (r *Registry) Hostnames() []string {
	out := make([]string, len(r.hostnames))
	copy(out, r.hostnames)
	return out
}

// ConfigMap returns the CoreDNS ConfigMap, or nil before NewChart.
func (r *Registry) ConfigMap() *corev1.ConfigMap {
	if r.chart == nil {
		return nil
	}
	return r.chart.configMap
}

// Rule returns the CoreDNS rewrite rule sending h to target.
func Rule(h, target string) string {
	return fmt.Sprintf("rewrite name regex %s %s answer auto", hostname.Regex(h), target)
}

// ServiceHostname returns the cluster DNS name of a service.
// An empty namespace means the default namespace.
func ServiceHostname(name, namespace string) string {
	if namespace == "" {
		namespace = "default"
	}
	return fmt.Sprintf("%s.%s.%s", name, namespace, ClusterDomain)
}
