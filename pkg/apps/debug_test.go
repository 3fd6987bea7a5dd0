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

package apps_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/defaults"
	"github.com/homelab/kubesynth/pkg/stack"
)

func TestNewDebugChart(t *testing.T) {
	r, err := stack.New(stack.Props{
		Config: &config.Config{
			Domains: map[string]config.Domain{"main": {Domain: "example.com"}},
			Images:  config.Images{Destination: "ghcr.io/example"},
		},
		Environment: config.Environment{Name: "local", Local: true},
	})
	require.NoError(t, err)
	d := r.Debug

	assert.Equal(t, defaults.Namespace, d.Namespace())
	assert.Equal(t, defaults.Namespace, d.Deployment.Namespace)

	spec := d.Deployment.Spec.Template.Spec
	require.Len(t, spec.Containers, 1)
	c := spec.Containers[0]
	assert.Equal(t, "traefik/whoami", c.Image)
	assert.Equal(t, corev1.PullIfNotPresent, c.ImagePullPolicy)
	assert.Equal(t, int32(10), c.StartupProbe.FailureThreshold)
	assert.Equal(t, int32(3), c.StartupProbe.PeriodSeconds)
	assert.Equal(t, int32(3), c.ReadinessProbe.FailureThreshold)
	assert.Equal(t, int32(30), c.LivenessProbe.FailureThreshold)
	assert.Equal(t, "/health", c.LivenessProbe.HTTPGet.Path)
	require.NotNil(t, spec.AutomountServiceAccountToken)
	assert.False(t, *spec.AutomountServiceAccountToken)

	assert.Equal(t, d.Deployment.Spec.Selector.MatchLabels, d.Service.Spec.Selector)
	assert.Equal(t, d.Deployment.Spec.Selector.MatchLabels, d.Deployment.Spec.Template.Labels)

	assert.Equal(t, []gatewayv1.Hostname{"debug.example.com"}, d.Route.Spec.Hostnames)
	assert.Equal(t, d.Gateway.Refs.HTTPS, d.Route.Spec.ParentRefs)
	backend := d.Route.Spec.Rules[0].BackendRefs[0]
	assert.Equal(t, gatewayv1.ObjectName(d.Service.Name), backend.Name)
	assert.Equal(t, gatewayv1.PortNumber(80), *backend.Port)
}
