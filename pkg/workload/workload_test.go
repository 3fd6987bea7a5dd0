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

package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
)

func TestApplyContainerDefaults(t *testing.T) {
	tests := []struct {
		name   string
		local  bool
		policy corev1.PullPolicy
	}{
		{name: "local cluster", local: true, policy: corev1.PullIfNotPresent},
		{name: "remote cluster", local: false, policy: corev1.PullAlways},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := construct.NewRoot()
			config.SetupEnvironment(root, config.Environment{Name: "x", Local: tt.local})

			var c corev1.Container
			require.NoError(t, ApplyContainerDefaults(root, &c))
			assert.Equal(t, tt.policy, c.ImagePullPolicy)
			assert.Equal(t, "1Gi", c.Resources.Limits.Memory().String())
			assert.Equal(t, "1m", c.Resources.Requests.Cpu().String())
		})
	}
}

func TestApplyContainerDefaults_NoEnvironment(t *testing.T) {
	var c corev1.Container
	err := ApplyContainerDefaults(construct.NewRoot(), &c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingContext))
}

func TestApplyPodDefaults(t *testing.T) {
	var spec corev1.PodSpec
	ApplyPodDefaults(&spec)
	require.NotNil(t, spec.AutomountServiceAccountToken)
	assert.False(t, *spec.AutomountServiceAccountToken)
	require.NotNil(t, spec.EnableServiceLinks)
	assert.False(t, *spec.EnableServiceLinks)
}

func TestHTTPGetProbe(t *testing.T) {
	p := HTTPGetProbe("/health", "http", 3)
	require.NotNil(t, p.HTTPGet)
	assert.Equal(t, "/health", p.HTTPGet.Path)
	assert.Equal(t, "http", p.HTTPGet.Port.StrVal)
	assert.EqualValues(t, 3, p.FailureThreshold)
}

func TestNewPersistentVolume(t *testing.T) {
	root := construct.NewRoot()
	chart, err := construct.NewChart(root, "data", construct.ChartProps{Namespace: "auth"})
	require.NoError(t, err)

	pv, err := NewPersistentVolume(chart, "pvc", PersistentVolumeProps{Size: resource.MustParse("1Gi")})
	require.NoError(t, err)

	require.Len(t, chart.Objects(), 1)
	assert.Same(t, pv.Claim, chart.Objects()[0])
	assert.Equal(t, "auth", pv.Claim.Namespace)
	assert.NotEmpty(t, pv.Claim.Name)
	assert.Equal(t, []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce}, pv.Claim.Spec.AccessModes)
	require.NotNil(t, pv.Claim.Spec.StorageClassName)
	assert.Equal(t, StorageClass, *pv.Claim.Spec.StorageClassName)
	assert.Equal(t, "1Gi", pv.Claim.Spec.Resources.Requests.Storage().String())

	require.NotNil(t, pv.Volume.PersistentVolumeClaim)
	assert.Equal(t, pv.Claim.Name, pv.Volume.PersistentVolumeClaim.ClaimName)
	assert.Equal(t, corev1.VolumeMount{Name: pv.Volume.Name, MountPath: "/data"}, pv.Mount("/data"))

	other, err := NewPersistentVolume(chart, "pvc2", PersistentVolumeProps{
		Size:        resource.MustParse("5Gi"),
		AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany},
	})
	require.NoError(t, err)
	assert.NotEqual(t, pv.Claim.Name, other.Claim.Name)
	assert.NotEqual(t, pv.Volume.Name, other.Volume.Name)
	assert.Equal(t, []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany}, other.Claim.Spec.AccessModes)
}

func TestNewPersistentVolume_Errors(t *testing.T) {
	root := construct.NewRoot()
	chart, err := construct.NewChart(root, "data", construct.ChartProps{})
	require.NoError(t, err)

	_, err = NewPersistentVolume(chart, "empty", PersistentVolumeProps{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	_, err = NewPersistentVolume(chart, "pvc", PersistentVolumeProps{Size: resource.MustParse("1Gi")})
	require.NoError(t, err)
	_, err = NewPersistentVolume(chart, "pvc", PersistentVolumeProps{Size: resource.MustParse("1Gi")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}
