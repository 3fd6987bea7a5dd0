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

package apps

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/gateway"
	"github.com/homelab/kubesynth/pkg/namespaces"
	"github.com/homelab/kubesynth/pkg/workload"
)

// newNamespacedChart creates a chart and registers its namespace. An empty
// props.Namespace selects the default namespace.
func newNamespacedChart(scope construct.Scope, id string, props construct.ChartProps) (*construct.Chart, error) {
	if props.Namespace == "" {
		ns, err := namespaces.DefaultName(scope)
		if err != nil {
			return nil, err
		}
		props.Namespace = ns
	}
	c, err := construct.NewChart(scope, id, props)
	if err != nil {
		return nil, err
	}
	if err := namespaces.Add(c, namespaces.Metadata{Name: props.Namespace}); err != nil {
		return nil, err
	}
	return c, nil
}

// addDeployment adds a single replica deployment running container. The
// container and pod defaults are applied before the object is added.
func addDeployment(c *construct.Chart, container corev1.Container, volumes ...corev1.Volume) (*appsv1.Deployment, error) {
	if err := workload.ApplyContainerDefaults(c, &container); err != nil {
		return nil, err
	}

	selector := map[string]string{selectorLabel: construct.ToDNSLabel(c, "deployment")}
	d := &appsv1.Deployment{
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To[int32](1),
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: selector},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{container},
					Volumes:    volumes,
				},
			},
		},
	}
	// ReadWriteOnce claims cannot be attached to two pods during a rollout.
	if len(volumes) > 0 {
		d.Spec.Strategy = appsv1.DeploymentStrategy{Type: appsv1.RecreateDeploymentStrategyType}
	}
	workload.ApplyPodDefaults(&d.Spec.Template.Spec)
	if err := construct.AddObject(c, "deployment", d); err != nil {
		return nil, err
	}
	return d, nil
}

// addService adds a ClusterIP service selecting the pods of d.
func addService(c *construct.Chart, d *appsv1.Deployment, ports ...corev1.ServicePort) (*corev1.Service, error) {
	for i := range ports {
		if ports[i].Protocol == "" {
			ports[i].Protocol = corev1.ProtocolTCP
		}
	}
	s := &corev1.Service{
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: d.Spec.Selector.MatchLabels,
			Ports:    ports,
		},
	}
	if err := construct.AddObject(c, "service", s); err != nil {
		return nil, err
	}
	return s, nil
}

// addRoute adds an HTTPRoute sending every request on the HTTPS listeners
// of gw to port of svc.
func addRoute(c *construct.Chart, gw *gateway.HTTPGateway, svc *corev1.Service, port int32) (*gatewayv1.HTTPRoute, error) {
	r := &gatewayv1.HTTPRoute{
		Spec: gatewayv1.HTTPRouteSpec{
			CommonRouteSpec: gatewayv1.CommonRouteSpec{ParentRefs: gw.Refs.HTTPS},
			Hostnames:       gw.Hostnames(),
			Rules: []gatewayv1.HTTPRouteRule{{
				BackendRefs: []gatewayv1.HTTPBackendRef{{
					BackendRef: gatewayv1.BackendRef{
						BackendObjectReference: gatewayv1.BackendObjectReference{
							Name: gatewayv1.ObjectName(svc.Name),
							Port: ptr.To(gatewayv1.PortNumber(port)),
						},
					},
				}},
			}},
		},
	}
	if err := construct.AddObject(c, "route", r); err != nil {
		return nil, err
	}
	return r, nil
}
