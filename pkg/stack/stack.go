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

// Package stack assembles the full construct tree for one environment.
//
// New installs the shared contexts at the root, then creates the system
// charts, the app charts and finally the image builder chart. The order is
// fixed: registries are set up before any chart that uses them, and the
// image builder chart is last so it sees every image build request.
package stack

import (
	"log/slog"
	"maps"

	"github.com/homelab/kubesynth/pkg/apps"
	"github.com/homelab/kubesynth/pkg/certstore"
	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/defaults"
	"github.com/homelab/kubesynth/pkg/dnsoverride"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/gateway"
	"github.com/homelab/kubesynth/pkg/imagebuild"
	"github.com/homelab/kubesynth/pkg/kbld"
	"github.com/homelab/kubesynth/pkg/namespaces"
	"github.com/homelab/kubesynth/pkg/pki"
)

// Props configures a stack.
type Props struct {
	Config      *config.Config
	Environment config.Environment

	// DefaultNamespace is the namespace app charts use when they do not
	// name one. Defaults to defaults.Namespace.
	DefaultNamespace string

	// ChartProps are the base props of every chart. The managed label is
	// always added.
	ChartProps construct.ChartProps
}

// Root is the construct tree of one environment.
type Root struct {
	node       *construct.Node
	chartProps construct.ChartProps

	Namespaces   *namespaces.Registry
	DNSOverrides *dnsoverride.Registry
	Certificates *certstore.Registry
	ImageBuilds  *imagebuild.Registry

	PKI          *pki.Chart
	ACME         *pki.ACMEChart
	Gateways     *gateway.Chart
	Debug        *apps.DebugChart
	OpenLDAP     *apps.OpenLDAPChart
	LDAPAdmin    *apps.PHPLDAPAdminChart
	Databases    []*apps.DatabaseChart
	Images       []imagebuild.Image
	ImageBuilder *imagebuild.Chart
}

// New builds the construct tree described by props.
func New(props Props) (*Root, error) {
	if props.Config == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "stack requires a config")
	}
	if props.DefaultNamespace == "" {
		props.DefaultNamespace = defaults.Namespace
	}

	base := props.ChartProps
	base.Labels = maps.Clone(base.Labels)
	if base.Labels == nil {
		base.Labels = make(map[string]string, 1)
	}
	base.Labels[defaults.ManagedLabel] = "true"

	r := &Root{node: construct.NewRoot(), chartProps: base}
	if err := r.setup(props); err != nil {
		return nil, err
	}
	if err := r.systemCharts(); err != nil {
		return nil, err
	}
	if err := r.appCharts(); err != nil {
		return nil, err
	}
	if err := r.imageBuilder(); err != nil {
		return nil, err
	}

	slog.Debug("stack created",
		"environment", props.Environment.Name,
		"charts", len(r.Charts()))
	return r, nil
}

func (r *Root) setup(props Props) error {
	config.Setup(r.node, props.Config)
	config.SetupEnvironment(r.node, props.Environment)

	var err error
	if r.ImageBuilds, err = imagebuild.Setup(r.node); err != nil {
		return err
	}
	if r.Namespaces, err = namespaces.Setup(r.node, props.DefaultNamespace); err != nil {
		return err
	}
	if r.DNSOverrides, err = dnsoverride.Setup(r.node); err != nil {
		return err
	}
	if r.Certificates, err = certstore.Setup(r.node); err != nil {
		return err
	}
	return nil
}

func (r *Root) systemCharts() error {
	if _, err := namespaces.NewChart(r.node, "namespaces", r.props("")); err != nil {
		return err
	}
	if _, err := dnsoverride.NewChart(r.node, "dns-overrides", r.props("")); err != nil {
		return err
	}

	var err error
	if r.PKI, err = pki.NewChart(r.node, "pki", r.props(defaults.CertManagerNamespace)); err != nil {
		return err
	}
	if r.ACME, err = pki.NewACMEChart(r.node, "acme", r.props(defaults.CertManagerNamespace), r.PKI.RootCA); err != nil {
		return err
	}
	if _, err = certstore.NewChart(r.node, "certificate-store", r.props(defaults.CertManagerNamespace), r.ACME.IssuerRef()); err != nil {
		return err
	}

	if r.Gateways, err = gateway.NewChart(r.node, "envoy-gateway", r.props(defaults.EnvoyGatewayNamespace)); err != nil {
		return err
	}
	return gateway.SetDefaultClasses(r.node, r.Gateways.Classes())
}

func (r *Root) appCharts() error {
	var err error
	if r.Debug, err = apps.NewDebugChart(r.node, "debug", r.props("")); err != nil {
		return err
	}
	if r.OpenLDAP, err = apps.NewOpenLDAPChart(r.node, "openldap", r.props(apps.AuthNamespace)); err != nil {
		return err
	}
	r.LDAPAdmin, err = apps.NewPHPLDAPAdminChart(r.node, "phpldapadmin", apps.PHPLDAPAdminChartProps{
		ChartProps:  r.props(apps.AuthNamespace),
		LDAPService: r.OpenLDAP.Service,
	})
	if err != nil {
		return err
	}

	cfg, err := config.FromScope(r.node)
	if err != nil {
		return err
	}
	for _, db := range cfg.Databases {
		chart, err := apps.NewDatabaseChart(r.node, "postgres-"+db.Name, r.props(""), db)
		if err != nil {
			return err
		}
		r.Databases = append(r.Databases, chart)
	}
	if len(cfg.Images.Builds) == 0 {
		return nil
	}
	images, err := construct.New(r.node, "images")
	if err != nil {
		return err
	}
	for _, b := range cfg.Images.Builds {
		img, err := imagebuild.Add(images, imagebuild.BuildOptions{
			Name:       b.Name,
			Context:    b.Context,
			Dockerfile: b.Dockerfile,
			Target:     b.Target,
			Args:       b.Args,
			NoCache:    b.NoCache,
			Pull:       b.Pull,
		})
		if err != nil {
			return err
		}
		r.Images = append(r.Images, img)
	}
	return nil
}

func (r *Root) imageBuilder() error {
	var err error
	r.ImageBuilder, err = imagebuild.NewChart(r.node, "kbld-config", r.props(""), kbld.ConfigProps{})
	return err
}

// props returns the base chart props with namespace set.
func (r *Root) props(namespace string) construct.ChartProps {
	p := r.chartProps
	p.Labels = maps.Clone(r.chartProps.Labels)
	p.Namespace = namespace
	return p
}

// Node implements construct.Scope.
func (r *Root) Node() *construct.Node { return r.node }

// Charts returns every chart in the tree in creation order.
func (r *Root) Charts() []*construct.Chart {
	return construct.Charts(r.node)
}
