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
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/dnsoverride"
	"github.com/homelab/kubesynth/pkg/errors"
)

const (
	// ControllerName is the Envoy Gateway controller.
	ControllerName = "gateway.envoyproxy.io/gatewayclass-controller"

	envoyGroup      = "gateway.envoyproxy.io"
	envoyAPIVersion = envoyGroup + "/v1alpha1"
	envoyProxyKind  = "EnvoyProxy"
)

// Mode selects how a class's proxies are exposed.
type Mode string

const (
	// Internal proxies are reachable from inside the cluster only.
	Internal Mode = "internal"
	// External proxies get a LoadBalancer service.
	External Mode = "external"
)

func (m Mode) serviceType() (corev1.ServiceType, error) {
	switch m {
	case Internal:
		return corev1.ServiceTypeClusterIP, nil
	case External:
		return corev1.ServiceTypeLoadBalancer, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown gateway class mode %q", m))
	}
}

// Class is an Envoy Gateway class: a GatewayClass whose parameters point at
// an EnvoyProxy that merges all gateways of the class into one deployment.
type Class struct {
	node *construct.Node

	Mode           Mode
	Namespace      string
	DeploymentName string
	ServiceName    string
	Proxy          *unstructured.Unstructured
	GatewayClass   *gatewayv1.GatewayClass
}

// NewClass creates a class under scope. Proxy resources live in the
// namespace of the enclosing chart.
func NewClass(scope construct.Scope, id string, mode Mode) (*Class, error) {
	serviceType, err := mode.serviceType()
	if err != nil {
		return nil, err
	}

	chart, ok := construct.ChartOf(scope)
	if !ok || chart.Namespace() == "" {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"gateway classes must be defined within a namespaced chart",
			map[string]any{"id": id, "scope": scope.Node().String()})
	}

	n, err := construct.New(scope, id)
	if err != nil {
		return nil, err
	}
	name := construct.ToDNSLabel(n, "default")

	proxy := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": envoyAPIVersion,
		"kind":       envoyProxyKind,
		"spec": map[string]any{
			"mergeGateways": true,
			"provider": map[string]any{
				"type": "Kubernetes",
				"kubernetes": map[string]any{
					"envoyDeployment": map[string]any{"name": name},
					"envoyService": map[string]any{
						"name": name,
						"type": string(serviceType),
					},
				},
			},
			"telemetry": map[string]any{
				"accessLog": map[string]any{
					"settings": []any{
						map[string]any{
							"format": map[string]any{"type": "JSON"},
							"sinks": []any{
								map[string]any{
									"type": "File",
									"file": map[string]any{"path": "/dev/stdout"},
								},
							},
						},
					},
				},
				"metrics": map[string]any{
					"enableRequestResponseSizesStats": true,
					"enableVirtualHostStats":          true,
				},
			},
		},
	}}
	if err := construct.AddObject(n, "proxy", proxy); err != nil {
		return nil, err
	}

	namespace := gatewayv1.Namespace(proxy.GetNamespace())
	class := &gatewayv1.GatewayClass{
		Spec: gatewayv1.GatewayClassSpec{
			ControllerName: ControllerName,
			ParametersRef: &gatewayv1.ParametersReference{
				Group:     envoyGroup,
				Kind:      envoyProxyKind,
				Name:      proxy.GetName(),
				Namespace: &namespace,
			},
		},
	}
	if err := construct.AddObject(n, "class", class); err != nil {
		return nil, err
	}

	return &Class{
		node:           n,
		Mode:           mode,
		Namespace:      proxy.GetNamespace(),
		DeploymentName: name,
		ServiceName:    name,
		Proxy:          proxy,
		GatewayClass:   class,
	}, nil
}

// Node implements construct.Scope.
func (c *Class) Node() *construct.Node { return c.node }

// Name returns the GatewayClass name gateways refer to.
func (c *Class) Name() string { return c.GatewayClass.Name }

// ServiceHostname returns the cluster DNS name of the proxy service.
func (c *Class) ServiceHostname() string {
	return dnsoverride.ServiceHostname(c.ServiceName, c.Namespace)
}
