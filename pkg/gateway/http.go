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
	"net/http"
	"slices"

	"k8s.io/utils/ptr"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	"github.com/homelab/kubesynth/pkg/certstore"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/dnsoverride"
	"github.com/homelab/kubesynth/pkg/errors"
)

const (
	httpPort  = 80
	httpsPort = 443
)

// HTTPGatewayProps configures an HTTPGateway.
type HTTPGatewayProps struct {
	Hostnames []string

	// Classes overrides the classes visible from the gateway's scope.
	Classes *Classes

	// DisableRedirect skips the HTTP to HTTPS redirect route.
	DisableRedirect bool
}

// ParentRefs are the attachment points an HTTPGateway offers to routes.
type ParentRefs struct {
	// Gateways reference each gateway without a section.
	Gateways []gatewayv1.ParentReference
	// HTTP reference the plain text listeners.
	HTTP []gatewayv1.ParentReference
	// HTTPS reference the TLS listeners.
	HTTPS []gatewayv1.ParentReference
}

// HTTPGateway is one internal and one external Gateway serving the same
// hostnames.
type HTTPGateway struct {
	node      *construct.Node
	classes   Classes
	hostnames []string

	Gateways      []*gatewayv1.Gateway
	Certificates  []*certstore.Entry
	Refs          ParentRefs
	RedirectRoute *gatewayv1.HTTPRoute
}

// NewHTTPGateway creates the gateways for props.Hostnames.
func NewHTTPGateway(scope construct.Scope, id string, props HTTPGatewayProps) (*HTTPGateway, error) {
	if len(props.Hostnames) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "http gateway requires at least one hostname")
	}

	var classes Classes
	if props.Classes != nil {
		classes = *props.Classes
	} else {
		var err error
		if classes, err = DefaultClasses(scope); err != nil {
			return nil, err
		}
	}
	if err := classes.validate(); err != nil {
		return nil, err
	}

	n, err := construct.New(scope, id)
	if err != nil {
		return nil, err
	}
	g := &HTTPGateway{
		node:      n,
		classes:   classes,
		hostnames: append([]string(nil), props.Hostnames...),
	}

	listeners, err := g.listeners()
	if err != nil {
		return nil, err
	}

	for _, class := range []*Class{classes.External, classes.Internal} {
		gw := &gatewayv1.Gateway{
			Spec: gatewayv1.GatewaySpec{
				GatewayClassName: gatewayv1.ObjectName(class.Name()),
				Listeners:        slices.Clone(listeners),
			},
		}
		if err := construct.AddObject(n, string(class.Mode), gw); err != nil {
			return nil, err
		}
		g.Gateways = append(g.Gateways, gw)
		g.Refs.Gateways = append(g.Refs.Gateways, parentRef(gw, ""))
		for _, l := range listeners {
			switch l.Protocol {
			case gatewayv1.HTTPProtocolType:
				g.Refs.HTTP = append(g.Refs.HTTP, parentRef(gw, l.Name))
			case gatewayv1.HTTPSProtocolType:
				g.Refs.HTTPS = append(g.Refs.HTTPS, parentRef(gw, l.Name))
			}
		}
	}

	if !props.DisableRedirect {
		if err := g.addRedirect(); err != nil {
			return nil, err
		}
	}

	for _, h := range g.hostnames {
		if err := dnsoverride.Add(n, h, g); err != nil {
			return nil, err
		}
	}

	slog.Debug("http gateway created", "path", n.Path(), "hostnames", g.hostnames)
	return g, nil
}

// listeners builds an HTTP and an HTTPS listener per hostname, looking up
// the certificate for each.
func (g *HTTPGateway) listeners() ([]gatewayv1.Listener, error) {
	out := make([]gatewayv1.Listener, 0, 2*len(g.hostnames))
	for _, h := range g.hostnames {
		entry, err := certstore.GetOrCreate(g, h)
		if err != nil {
			return nil, err
		}
		g.Certificates = append(g.Certificates, entry)

		host := gatewayv1.Hostname(h)
		out = append(out,
			gatewayv1.Listener{
				Name:     gatewayv1.SectionName("http-" + h),
				Hostname: ptr.To(host),
				Port:     httpPort,
				Protocol: gatewayv1.HTTPProtocolType,
			},
			gatewayv1.Listener{
				Name:     gatewayv1.SectionName("https-" + h),
				Hostname: ptr.To(host),
				Port:     httpsPort,
				Protocol: gatewayv1.HTTPSProtocolType,
				TLS: &gatewayv1.GatewayTLSConfig{
					Mode:            ptr.To(gatewayv1.TLSModeTerminate),
					CertificateRefs: []gatewayv1.SecretObjectReference{entry.SecretRef},
				},
			},
		)
	}
	return out, nil
}

func (g *HTTPGateway) addRedirect() error {
	route := &gatewayv1.HTTPRoute{
		Spec: gatewayv1.HTTPRouteSpec{
			CommonRouteSpec: gatewayv1.CommonRouteSpec{ParentRefs: g.Refs.HTTP},
			Hostnames:       g.Hostnames(),
			Rules: []gatewayv1.HTTPRouteRule{{
				Filters: []gatewayv1.HTTPRouteFilter{{
					Type: gatewayv1.HTTPRouteFilterRequestRedirect,
					RequestRedirect: &gatewayv1.HTTPRequestRedirectFilter{
						Scheme:     ptr.To("https"),
						StatusCode: ptr.To(http.StatusMovedPermanently),
					},
				}},
			}},
		},
	}
	if err := construct.AddObject(g.node, "http-redirector-route", route); err != nil {
		return err
	}
	g.RedirectRoute = route
	return nil
}

// Node implements construct.Scope.
func (g *HTTPGateway) Node() *construct.Node { return g.node }

// Hostnames returns the hostnames served by the gateway.
func (g *HTTPGateway) Hostnames() []gatewayv1.Hostname {
	out := make([]gatewayv1.Hostname, len(g.hostnames))
	for i, h := range g.hostnames {
		out[i] = gatewayv1.Hostname(h)
	}
	return out
}

// ResolveTarget implements dnsoverride.TargetResolver. In-cluster clients
// are sent to the internal class's proxy service.
func (g *HTTPGateway) ResolveTarget() (string, error) {
	if g.classes.Internal == nil {
		return "", errors.New(errors.ErrCodeInvalidRequest, "http gateway has no internal class")
	}
	return g.classes.Internal.ServiceHostname(), nil
}

func parentRef(gw *gatewayv1.Gateway, section gatewayv1.SectionName) gatewayv1.ParentReference {
	ref := gatewayv1.ParentReference{
		Group:     ptr.To(gatewayv1.Group(gatewayv1.GroupName)),
		Kind:      ptr.To(gatewayv1.Kind("Gateway")),
		Name:      gatewayv1.ObjectName(gw.Name),
	}
	if gw.Namespace != "" {
		ref.Namespace = ptr.To(gatewayv1.Namespace(gw.Namespace))
	}
	if section != "" {
		ref.SectionName = ptr.To(section)
	}
	return ref
}
