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
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/gateway"
	"github.com/homelab/kubesynth/pkg/workload"
)

// AuthNamespace holds the directory service and its admin UI.
const AuthNamespace = "auth"

const (
	openLDAPImage   = "osixia/openldap:1.5.0"
	ldapPort        = 389
	ldapsPort       = 636
	ldapVolumeSize  = "1Gi"
	ldapDataPath    = "/var/lib/ldap"
	ldapConfigPath  = "/etc/ldap/slapd.d"
	ldapAdminImage  = "phpldapadmin/phpldapadmin:2.3.7"
	ldapAdminPort   = 8080
	ldapAdminSubdom = "ldapadmin"
)

// OpenLDAPChart runs a single OpenLDAP server with its database and its
// slapd config on persistent volumes.
type OpenLDAPChart struct {
	*construct.Chart
	Data       *workload.PersistentVolume
	Config     *workload.PersistentVolume
	Deployment *appsv1.Deployment
	Service    *corev1.Service
}

// NewOpenLDAPChart creates the OpenLDAP chart. An empty props.Namespace
// selects the default namespace.
func NewOpenLDAPChart(scope construct.Scope, id string, props construct.ChartProps) (*OpenLDAPChart, error) {
	c, err := newNamespacedChart(scope, id, props)
	if err != nil {
		return nil, err
	}
	chart := &OpenLDAPChart{Chart: c}

	size := resource.MustParse(ldapVolumeSize)
	if chart.Data, err = workload.NewPersistentVolume(c, "pvc", workload.PersistentVolumeProps{Size: size}); err != nil {
		return nil, err
	}
	if chart.Config, err = workload.NewPersistentVolume(c, "pvc2", workload.PersistentVolumeProps{Size: size}); err != nil {
		return nil, err
	}

	container := corev1.Container{
		Name:  "main",
		Image: openLDAPImage,
		Ports: []corev1.ContainerPort{
			{Name: "ldap", ContainerPort: ldapPort, Protocol: corev1.ProtocolTCP},
			{Name: "ldaps", ContainerPort: ldapsPort, Protocol: corev1.ProtocolTCP},
		},
		VolumeMounts: []corev1.VolumeMount{
			chart.Data.Mount(ldapDataPath),
			chart.Config.Mount(ldapConfigPath),
		},
	}
	chart.Deployment, err = addDeployment(c, container, chart.Data.Volume, chart.Config.Volume)
	if err != nil {
		return nil, err
	}

	chart.Service, err = addService(c, chart.Deployment,
		corev1.ServicePort{Name: "ldap", Port: ldapPort, TargetPort: intstr.FromInt32(ldapPort)},
		corev1.ServicePort{Name: "ldaps", Port: ldapsPort, TargetPort: intstr.FromInt32(ldapsPort)},
	)
	if err != nil {
		return nil, err
	}
	return chart, nil
}

// PHPLDAPAdminChartProps configures the phpLDAPadmin chart.
type PHPLDAPAdminChartProps struct {
	construct.ChartProps

	// LDAPService is the directory the UI connects to.
	LDAPService *corev1.Service
}

// PHPLDAPAdminChart runs phpLDAPadmin behind an HTTPGateway on
// ldapadmin.<main domain>.
type PHPLDAPAdminChart struct {
	*construct.Chart
	Deployment *appsv1.Deployment
	Service    *corev1.Service
	Gateway    *gateway.HTTPGateway
	Route      *gatewayv1.HTTPRoute
}

// NewPHPLDAPAdminChart creates the phpLDAPadmin chart.
func NewPHPLDAPAdminChart(scope construct.Scope, id string, props PHPLDAPAdminChartProps) (*PHPLDAPAdminChart, error) {
	if props.LDAPService == nil || props.LDAPService.Name == "" {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"phpldapadmin chart requires an LDAP service", map[string]any{"id": id})
	}
	c, err := newNamespacedChart(scope, id, props.ChartProps)
	if err != nil {
		return nil, err
	}
	chart := &PHPLDAPAdminChart{Chart: c}

	host := props.LDAPService.Name
	if ns := props.LDAPService.Namespace; ns != "" && ns != c.Namespace() {
		host += "." + ns
	}

	container := corev1.Container{
		Name:  "main",
		Image: ldapAdminImage,
		Ports: []corev1.ContainerPort{{Name: "http", ContainerPort: ldapAdminPort, Protocol: corev1.ProtocolTCP}},
		Env: []corev1.EnvVar{
			{Name: "LDAP_HOST", Value: host},
			{Name: "LDAP_CACHE", Value: "true"},
		},
	}
	if chart.Deployment, err = addDeployment(c, container); err != nil {
		return nil, err
	}

	chart.Service, err = addService(c, chart.Deployment, corev1.ServicePort{
		Name:       "http",
		Port:       80,
		TargetPort: intstr.FromInt32(ldapAdminPort),
	})
	if err != nil {
		return nil, err
	}

	hostname, err := config.MakeHostname(c, ldapAdminSubdom, config.MainDomainKey)
	if err != nil {
		return nil, err
	}
	chart.Gateway, err = gateway.NewHTTPGateway(c, "gateway", gateway.HTTPGatewayProps{Hostnames: []string{hostname}})
	if err != nil {
		return nil, err
	}
	if chart.Route, err = addRoute(c, chart.Gateway, chart.Service, 80); err != nil {
		return nil, err
	}
	return chart, nil
}
