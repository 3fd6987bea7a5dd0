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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/validation"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"github.com/homelab/kubesynth/pkg/errors"
)

func TestChartOf(t *testing.T) {
	root := NewRoot()
	chart, err := NewChart(root, "apps", ChartProps{Namespace: "apps"})
	require.NoError(t, err)
	inner, err := New(chart, "inner")
	require.NoError(t, err)

	got, ok := ChartOf(inner)
	require.True(t, ok)
	assert.Same(t, chart, got)
	assert.Same(t, chart, chart.Node().Owner())

	_, ok = ChartOf(root)
	assert.False(t, ok)

	assert.Equal(t, "apps", NamespaceOf(inner, "default"))
	assert.Equal(t, "default", NamespaceOf(root, "default"))
}

func TestChart_NestedChartWins(t *testing.T) {
	root := NewRoot()
	outer, _ := NewChart(root, "outer", ChartProps{Namespace: "outer"})
	nested, _ := NewChart(outer, "nested", ChartProps{Namespace: "nested"})

	got, ok := ChartOf(nested)
	require.True(t, ok)
	assert.Same(t, nested, got)

	assert.Equal(t, []*Chart{outer, nested}, Charts(root))
}

func TestAddObject(t *testing.T) {
	root := NewRoot()
	chart, err := NewChart(root, "debug", ChartProps{
		Namespace: "debug",
		Labels:    map[string]string{"managed": "true", "tier": "chart"},
	})
	require.NoError(t, err)

	svc := &corev1.Service{ObjectMeta: metav1.ObjectMeta{
		Labels: map[string]string{"tier": "web"},
	}}
	require.NoError(t, AddObject(chart, "service", svc))

	assert.Equal(t, "v1", svc.APIVersion)
	assert.Equal(t, "Service", svc.Kind)
	assert.Equal(t, "debug", svc.Namespace)
	assert.Empty(t, validation.IsDNS1123Label(svc.Name))
	if diff := cmp.Diff(map[string]string{"managed": "true", "tier": "web"}, svc.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, chart.Objects(), 1)
	assert.Equal(t, Ref{Name: svc.Name, Kind: "Service", Namespace: "debug"}, RefOf(svc))
}

func TestAddObject_ClusterScoped(t *testing.T) {
	root := NewRoot()
	chart, _ := NewChart(root, "gateway", ChartProps{Namespace: "envoy-gateway-system"})

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "apps"}}
	require.NoError(t, AddObject(chart, "apps", ns))
	assert.Empty(t, ns.Namespace)
	assert.Equal(t, "apps", ns.Name)

	gc := &gatewayv1.GatewayClass{}
	require.NoError(t, AddObject(chart, "class", gc))
	assert.Empty(t, gc.Namespace)
	assert.Equal(t, gatewayv1.SchemeGroupVersion.String(), gc.APIVersion)
}

func TestAddObject_Unstructured(t *testing.T) {
	root := NewRoot()
	chart, _ := NewChart(root, "proxy", ChartProps{Namespace: "envoy"})

	u := &unstructured.Unstructured{}
	u.SetAPIVersion("gateway.envoyproxy.io/v1alpha1")
	u.SetKind("EnvoyProxy")
	require.NoError(t, AddObject(chart, "proxy", u))

	assert.Equal(t, "envoy", u.GetNamespace())
	assert.NotEmpty(t, u.GetName())
}

func TestAddObject_Errors(t *testing.T) {
	root := NewRoot()

	err := AddObject(root, "orphan", &corev1.ConfigMap{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	chart, _ := NewChart(root, "c", ChartProps{})
	require.NoError(t, AddObject(chart, "cm", &corev1.ConfigMap{}))
	err = AddObject(chart, "cm", &corev1.ConfigMap{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	err = AddObject(chart, "unknown", &unstructured.Unstructured{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}
