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

// Package apps holds the application charts deployed on top of the system
// charts.
package apps

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/gateway"
	"github.com/homelab/kubesynth/pkg/workload"
)

const (
	debugImage    = "traefik/whoami"
	debugPort     = 80
	debugPortName = "http"
	healthPath    = "/health"

	selectorLabel = "kubesynth.dev/selector"
)

// DebugChart runs an echo server behind an HTTPGateway on debug.<main domain>.
type DebugChart struct {
	*construct.Chart
	Deployment *appsv1.Deployment
	Service    *corev1.Service
	Gateway    *gateway.HTTPGateway
	Route      *gatewayv1.HTTPRoute
}

// NewDebugChart creates the debug chart. An empty props.Namespace selects
// the default namespace.
func NewDebugChart(scope construct.Scope, id string, props construct.ChartProps) (*DebugChart, error) {
	c, err := newNamespacedChart(scope, id, props)
	if err != nil {
		return nil, err
	}
	chart := &DebugChart{Chart: c}

	container := corev1.Container{
		Name:  "main",
		Image: debugImage,
		Ports: []corev1.ContainerPort{{
			Name:          debugPortName,
			ContainerPort: debugPort,
			Protocol:      corev1.ProtocolTCP,
		}},
		StartupProbe:   workload.HTTPGetProbe(healthPath, debugPortName, 10),
		ReadinessProbe: workload.HTTPGetProbe(healthPath, debugPortName, 3),
		LivenessProbe:  workload.HTTPGetProbe(healthPath, debugPortName, 30),
	}
	container.StartupProbe.PeriodSeconds = 3
	if chart.Deployment, err = addDeployment(c, container); err != nil {
		return nil, err
	}

	chart.Service, err = addService(c, chart.Deployment, corev1.ServicePort{
		Name:       debugPortName,
		Port:       debugPort,
		TargetPort: intstr.FromInt32(debugPort),
	})
	if err != nil {
		return nil, err
	}

	host, err := config.MakeHostname(c, "debug", config.MainDomainKey)
	if err != nil {
		return nil, err
	}
	chart.Gateway, err = gateway.NewHTTPGateway(c, "gateway", gateway.HTTPGatewayProps{Hostnames: []string{host}})
	if err != nil {
		return nil, err
	}
	if chart.Route, err = addRoute(c, chart.Gateway, chart.Service, debugPort); err != nil {
		return nil, err
	}
	return chart, nil
}
