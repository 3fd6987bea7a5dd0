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

package gateway

import (
	"log/slog"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/namespaces"
	"github.com/homelab/kubesynth/pkg/scopedctx"
)

// Classes is the pair of classes every HTTPGateway attaches to.
type Classes struct {
	Internal *Class
	External *Class
}

func (c Classes) validate() error {
	if c.Internal == nil || c.External == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "both internal and external gateway classes are required")
	}
	return nil
}

var classesContext = scopedctx.New[Classes]("GatewayClasses",
	scopedctx.WithErrorOnMissing("gateway classes have not been setup for this construct tree"))

// SetDefaultClasses makes classes the default for gateways below scope.
func SetDefaultClasses(scope construct.Scope, classes Classes) error {
	if err := classes.validate(); err != nil {
		return err
	}
	classesContext.Set(scope, classes)
	return nil
}

// DefaultClasses returns the classes visible from scope.
func DefaultClasses(scope construct.Scope) (Classes, error) {
	return classesContext.Get(scope)
}

// Chart holds the Envoy Gateway classes.
type Chart struct {
	*construct.Chart
	Internal *Class
	External *Class
}

// NewChart creates the envoy gateway chart. props.Namespace is declared
// with the namespace registry and hosts the proxies.
func NewChart(scope construct.Scope, id string, props construct.ChartProps) (*Chart, error) {
	if props.Namespace == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "envoy gateway chart requires a namespace")
	}
	c, err := construct.NewChart(scope, id, props)
	if err != nil {
		return nil, err
	}
	if err := namespaces.Add(c, namespaces.Metadata{Name: props.Namespace}); err != nil {
		return nil, err
	}

	internal, err := NewClass(c, "internal", Internal)
	if err != nil {
		return nil, err
	}
	external, err := NewClass(c, "external", External)
	if err != nil {
		return nil, err
	}

	slog.Debug("gateway classes created",
		"internal", internal.Name(),
		"external", external.Name())

	return &Chart{Chart: c, Internal: internal, External: external}, nil
}

// Classes returns the chart's classes.
func (c *Chart) Classes() Classes {
	return Classes{Internal: c.Internal, External: c.External}
}
