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

package postgres

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
)

func newChart(t *testing.T) *construct.Chart {
	t.Helper()
	c, err := construct.NewChart(construct.NewRoot(), "db", construct.ChartProps{Namespace: "apps"})
	require.NoError(t, err)
	return c
}

func TestNewCluster_WithCredentials(t *testing.T) {
	chart := newChart(t)

	c, err := NewCluster(chart, "cluster", ClusterProps{
		Name:             "main",
		Instances:        3,
		Storage:          "10Gi",
		AppPassword:      "app-secret",
		PostgresPassword: "root-secret",
	})
	require.NoError(t, err)
	require.Len(t, chart.Objects(), 3)

	require.NotNil(t, c.AppCredentials)
	assert.Equal(t, corev1.SecretTypeBasicAuth, c.AppCredentials.Type)
	assert.Equal(t, map[string]string{"username": "app", "password": "app-secret"}, c.AppCredentials.StringData)
	assert.Equal(t, "apps", c.AppCredentials.Namespace)
	require.NotNil(t, c.PostgresCredentials)
	assert.Equal(t, "postgres", c.PostgresCredentials.StringData[corev1.BasicAuthUsernameKey])
	assert.NotEqual(t, c.AppCredentials.Name, c.PostgresCredentials.Name)
	assert.Equal(t, c.AppCredentials.Name, c.AppSecretName())
	assert.Equal(t, c.PostgresCredentials.Name, c.SuperuserSecretName())

	assert.Equal(t, "main", c.Object.GetName())
	assert.Equal(t, "apps", c.Object.GetNamespace())
	assert.Equal(t, APIVersion, c.Object.GetAPIVersion())
	assert.Equal(t, ClusterKind, c.Object.GetKind())

	spec, _, err := unstructured.NestedMap(c.Object.Object, "spec")
	require.NoError(t, err)
	want := map[string]any{
		"imageName":             DefaultImage,
		"instances":             int64(3),
		"storage":               map[string]any{"size": "10Gi"},
		"enableSuperuserAccess": true,
		"superuserSecret":       map[string]any{"name": c.PostgresCredentials.Name},
		"bootstrap": map[string]any{
			"initdb": map[string]any{"secret": map[string]any{"name": c.AppCredentials.Name}},
		},
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("cluster spec mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, map[ServiceKey]ServiceRef{
		ServiceRW: {Name: "main-rw", Kind: "Service"},
		ServiceR:  {Name: "main-r", Kind: "Service"},
		ServiceRO: {Name: "main-ro", Kind: "Service"},
	}, c.ServiceRefs)
}

func TestNewCluster_GeneratedCredentials(t *testing.T) {
	chart := newChart(t)

	c, err := NewCluster(chart, "cluster", ClusterProps{Name: "auth-db"})
	require.NoError(t, err)
	require.Len(t, chart.Objects(), 1)

	assert.Nil(t, c.AppCredentials)
	assert.Nil(t, c.PostgresCredentials)
	assert.Equal(t, "auth-db-app", c.AppSecretName())
	assert.Equal(t, "auth-db-superuser", c.SuperuserSecretName())

	instances, _, _ := unstructured.NestedInt64(c.Object.Object, "spec", "instances")
	assert.Equal(t, int64(DefaultInstances), instances)
	size, _, _ := unstructured.NestedString(c.Object.Object, "spec", "storage", "size")
	assert.Equal(t, DefaultStorage, size)
	_, found, _ := unstructured.NestedMap(c.Object.Object, "spec", "bootstrap")
	assert.False(t, found)
	_, found, _ = unstructured.NestedMap(c.Object.Object, "spec", "superuserSecret")
	assert.False(t, found)
}

func TestNewCluster_Errors(t *testing.T) {
	tests := []struct {
		name  string
		props ClusterProps
	}{
		{name: "missing name", props: ClusterProps{}},
		{name: "name starts with digit", props: ClusterProps{Name: "1db"}},
		{name: "name leaves no room for service suffix", props: ClusterProps{Name: strings.Repeat("a", 61)}},
		{name: "negative instances", props: ClusterProps{Name: "db", Instances: -1}},
		{name: "bad storage", props: ClusterProps{Name: "db", Storage: "lots"}},
		{name: "zero storage", props: ClusterProps{Name: "db", Storage: "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart := newChart(t)
			_, err := NewCluster(chart, "cluster", tt.props)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest), "got %v", err)
			assert.Empty(t, chart.Objects())
		})
	}
}

func TestNewCluster_OutsideChart(t *testing.T) {
	_, err := NewCluster(construct.NewRoot(), "cluster", ClusterProps{Name: "db", AppPassword: "x"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}
