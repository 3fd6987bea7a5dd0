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

// Package workload holds the container and pod settings shared by every
// workload kubesynth renders.
package workload

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
)

// StorageClass backs every persistent volume claim.
const StorageClass = "openebs-hostpath"

// ApplyContainerDefaults sets the pull policy and resource bounds on c.
// Local clusters reuse images already present on the node.
func ApplyContainerDefaults(scope construct.Scope, c *corev1.Container) error {
	env, err := config.EnvironmentFromScope(scope)
	if err != nil {
		return err
	}

	c.ImagePullPolicy = corev1.PullAlways
	if env.Local {
		c.ImagePullPolicy = corev1.PullIfNotPresent
	}
	c.Resources = corev1.ResourceRequirements{
		Requests: corev1.ResourceList{
			corev1.ResourceCPU:    resource.MustParse("1m"),
			corev1.ResourceMemory: resource.MustParse("32Mi"),
		},
		Limits: corev1.ResourceList{
			corev1.ResourceCPU:    resource.MustParse("1"),
			corev1.ResourceMemory: resource.MustParse("1Gi"),
		},
	}
	return nil
}

// ApplyPodDefaults disables service account token mounting and service
// environment variables on spec.
func ApplyPodDefaults(spec *corev1.PodSpec) {
	spec.AutomountServiceAccountToken = ptr.To(false)
	spec.EnableServiceLinks = ptr.To(false)
}

// HTTPGetProbe returns a probe hitting path on the named port.
func HTTPGetProbe(path, port string, failureThreshold int32) *corev1.Probe {
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path: path,
				Port: intstr.FromString(port),
			},
		},
		FailureThreshold: failureThreshold,
	}
}

// PersistentVolumeProps configures a persistent volume.
type PersistentVolumeProps struct {
	Size resource.Quantity

	// AccessModes defaults to ReadWriteOnce.
	AccessModes []corev1.PersistentVolumeAccessMode
}

// PersistentVolume is a claim and the pod volume that mounts it.
type PersistentVolume struct {
	Claim  *corev1.PersistentVolumeClaim
	Volume corev1.Volume
}

// NewPersistentVolume adds a claim on StorageClass as child id of scope.
func NewPersistentVolume(scope construct.Scope, id string, props PersistentVolumeProps) (*PersistentVolume, error) {
	if props.Size.Sign() <= 0 {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"persistent volume requires a positive size",
			map[string]any{"id": id, "size": props.Size.String()})
	}
	modes := props.AccessModes
	if len(modes) == 0 {
		modes = []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce}
	}

	n, err := construct.New(scope, id)
	if err != nil {
		return nil, err
	}
	claim := &corev1.PersistentVolumeClaim{
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes:      modes,
			StorageClassName: ptr.To(StorageClass),
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: props.Size},
			},
		},
	}
	if err := construct.AddObject(n, "pvc", claim); err != nil {
		return nil, err
	}

	return &PersistentVolume{
		Claim: claim,
		Volume: corev1.Volume{
			Name: construct.ToDNSLabel(n, "volume"),
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: claim.Name},
			},
		},
	}, nil
}

// Mount returns a mount of the volume at path.
func (v *PersistentVolume) Mount(path string) corev1.VolumeMount {
	return corev1.VolumeMount{Name: v.Volume.Name, MountPath: path}
}
