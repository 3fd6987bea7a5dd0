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

// Package postgres renders CloudNativePG database clusters.
//
// A cluster is a postgresql.cnpg.io/v1 Cluster object plus, when passwords
// are given, the basic-auth secrets holding the app and superuser
// credentials. Without a password the operator generates the secret itself
// and names it after the cluster.
package postgres

import (
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
)

const (
	// APIVersion and ClusterKind identify the CloudNativePG Cluster resource.
	APIVersion  = "postgresql.cnpg.io/v1"
	ClusterKind = "Cluster"

	DefaultImage     = "ghcr.io/cloudnative-pg/postgresql:17-minimal-trixie"
	DefaultStorage   = "1Gi"
	DefaultInstances = 1

	appUser       = "app"
	superuser     = "postgres"
	maxNameLength = validation.DNS1035LabelMaxLength - len("-rw")
)

// ServiceKey selects one of the services the operator creates per cluster.
type ServiceKey string

const (
	// ServiceRW points at the primary.
	ServiceRW ServiceKey = "rw"
	// ServiceR points at any instance.
	ServiceR ServiceKey = "r"
	// ServiceRO points at the replicas only.
	ServiceRO ServiceKey = "ro"
)

// ServiceKeys lists every service key.
var ServiceKeys = []ServiceKey{ServiceRW, ServiceR, ServiceRO}

// ServiceRef references a service of the cluster.
type ServiceRef struct {
	Name  string
	Kind  string
	Group string
}

// ClusterProps configures a cluster.
type ClusterProps struct {
	// Name of the Cluster object. Required.
	Name string

	// Instances defaults to DefaultInstances.
	Instances int32
	// Storage is the volume size of each instance. Defaults to DefaultStorage.
	Storage string
	// Image defaults to DefaultImage.
	Image string

	AppPassword      string
	PostgresPassword string
}

// Cluster is a rendered CloudNativePG cluster.
type Cluster struct {
	Name   string
	Object *unstructured.Unstructured

	// AppCredentials and PostgresCredentials are nil when the operator
	// generates the secret.
	AppCredentials      *corev1.Secret
	PostgresCredentials *corev1.Secret

	ServiceRefs map[ServiceKey]ServiceRef
}

// AppSecretName is the secret holding the app user credentials.
func (c *Cluster) AppSecretName() string {
	if c.AppCredentials != nil {
		return c.AppCredentials.Name
	}
	return c.Name + "-app"
}

// SuperuserSecretName is the secret holding the postgres user credentials.
func (c *Cluster) SuperuserSecretName() string {
	if c.PostgresCredentials != nil {
		return c.PostgresCredentials.Name
	}
	return c.Name + "-superuser"
}

// NewCluster adds a cluster as child id of scope, which must be inside a
// chart.
func NewCluster(scope construct.Scope, id string, props ClusterProps) (*Cluster, error) {
	if err := props.validate(); err != nil {
		return nil, err
	}

	n, err := construct.New(scope, id)
	if err != nil {
		return nil, err
	}
	c := &Cluster{Name: props.Name}

	if props.AppPassword != "" {
		if c.AppCredentials, err = addCredentials(n, "app-credentials", appUser, props.AppPassword); err != nil {
			return nil, err
		}
	}
	if props.PostgresPassword != "" {
		if c.PostgresCredentials, err = addCredentials(n, "postgres-credentials", superuser, props.PostgresPassword); err != nil {
			return nil, err
		}
	}

	spec := map[string]any{
		"imageName":             props.Image,
		"instances":             int64(props.Instances),
		"storage":               map[string]any{"size": props.Storage},
		"enableSuperuserAccess": true,
	}
	if c.PostgresCredentials != nil {
		spec["superuserSecret"] = map[string]any{"name": c.PostgresCredentials.Name}
	}
	if c.AppCredentials != nil {
		spec["bootstrap"] = map[string]any{
			"initdb": map[string]any{
				"secret": map[string]any{"name": c.AppCredentials.Name},
			},
		}
	}

	c.Object = &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": APIVersion,
		"kind":       ClusterKind,
		"metadata":   map[string]any{"name": props.Name},
		"spec":       spec,
	}}
	if err := construct.AddObject(n, "default", c.Object); err != nil {
		return nil, err
	}

	c.ServiceRefs = make(map[ServiceKey]ServiceRef, len(ServiceKeys))
	for _, k := range ServiceKeys {
		c.ServiceRefs[k] = ServiceRef{Name: fmt.Sprintf("%s-%s", props.Name, k), Kind: "Service", Group: ""}
	}

	slog.Debug("postgres cluster created", "name", props.Name, "instances", props.Instances)
	return c, nil
}

func (p *ClusterProps) validate() error {
	if msgs := validation.IsDNS1035Label(p.Name); len(msgs) > 0 || len(p.Name) > maxNameLength {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid postgres cluster name %q", p.Name),
			map[string]any{"name": p.Name, "problems": msgs, "maxLength": maxNameLength})
	}
	if p.Instances < 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"postgres cluster instances must not be negative", map[string]any{"name": p.Name})
	}
	if p.Instances == 0 {
		p.Instances = DefaultInstances
	}
	if p.Image == "" {
		p.Image = DefaultImage
	}
	if p.Storage == "" {
		p.Storage = DefaultStorage
	}
	if q, err := resource.ParseQuantity(p.Storage); err != nil || q.Sign() <= 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid postgres storage size %q", p.Storage), map[string]any{"name": p.Name})
	}
	return nil
}

func addCredentials(scope construct.Scope, id, username, password string) (*corev1.Secret, error) {
	s := &corev1.Secret{
		Type: corev1.SecretTypeBasicAuth,
		StringData: map[string]string{
			corev1.BasicAuthUsernameKey: username,
			corev1.BasicAuthPasswordKey: password,
		},
	}
	if err := construct.AddObject(scope, id, s); err != nil {
		return nil, err
	}
	return s, nil
}
