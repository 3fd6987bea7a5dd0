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

package dnsoverride

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
)

func setup(t *testing.T) (*construct.Node, *Registry, *Chart) {
	t.Helper()
	root := construct.NewRoot()
	r, err := Setup(root)
	require.NoError(t, err)
	c, err := NewChart(root, "dns-overrides", construct.ChartProps{Namespace: "ignored"})
	require.NoError(t, err)
	return root, r, c
}

func staticTarget(calls *int, target string) TargetResolver {
	return TargetFunc(func() (string, error) {
		*calls++
		return target, nil
	})
}

func TestNewChart(t *testing.T) {
	_, r, c := setup(t)

	assert.Equal(t, Namespace, c.Namespace())
	cm := r.ConfigMap()
	require.NotNil(t, cm)
	assert.Equal(t, ConfigMapName, cm.Name)
	assert.Equal(t, Namespace, cm.Namespace)
	assert.Len(t, c.Objects(), 1)
}

func TestAdd_Dedup(t *testing.T) {
	root, r, _ := setup(t)
	child, _ := construct.New(root, "child")

	var calls int
	target := staticTarget(&calls, "envoy-internal.envoy-gateway-system.svc.cluster.local")
	require.NoError(t, Add(root, "x.example.com", target))
	require.NoError(t, Add(child, "x.example.com", staticTarget(&calls, "other.default.svc.cluster.local")))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"x.example.com"}, r.Hostnames())
	assert.Equal(t, map[string]string{
		"x.example.com.override": `rewrite name regex x\.example\.com envoy-internal.envoy-gateway-system.svc.cluster.local answer auto`,
	}, r.ConfigMap().Data)
}

func TestAdd_Order(t *testing.T) {
	root, r, _ := setup(t)
	var calls int
	for _, h := range []string{"b.example.com", "a.example.com", "b.example.com", "c.example.com"} {
		require.NoError(t, Add(root, h, staticTarget(&calls, "t")))
	}
	assert.Equal(t, []string{"b.example.com", "a.example.com", "c.example.com"}, r.Hostnames())
	assert.Len(t, r.ConfigMap().Data, 3)
}

func TestAdd_ResolverErrorPropagates(t *testing.T) {
	root, r, _ := setup(t)
	boom := stderrors.New("no internal class")

	err := Add(root, "x.example.com", TargetFunc(func() (string, error) { return "", boom }))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.Hostnames())
}

func TestLifecycleErrors(t *testing.T) {
	var calls int

	root := construct.NewRoot()
	err := Add(root, "x.example.com", staticTarget(&calls, "t"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingContext))

	_, err = Setup(root)
	require.NoError(t, err)
	err = Add(root, "x.example.com", staticTarget(&calls, "t"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingContext))

	_, err = Setup(root)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlreadySetup))

	_, err = NewChart(root, "dns", construct.ChartProps{})
	require.NoError(t, err)
	_, err = NewChart(root, "dns-2", construct.ChartProps{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlreadySetup))

	assert.Equal(t, 0, calls)
}

func TestServiceHostname(t *testing.T) {
	assert.Equal(t, "envoy.gw.svc.cluster.local", ServiceHostname("envoy", "gw"))
	assert.Equal(t, "whoami.default.svc.cluster.local", ServiceHostname("whoami", ""))
}
