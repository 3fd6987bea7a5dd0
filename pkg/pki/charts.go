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

package pki

import (
	"fmt"
	"log/slog"

	cmacme "github.com/cert-manager/cert-manager/pkg/apis/acme/v1"
	cmv1 "github.com/cert-manager/cert-manager/pkg/apis/certmanager/v1"
	cmmeta "github.com/cert-manager/cert-manager/pkg/apis/meta/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/homelab/kubesynth/pkg/certstore"
	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/namespaces"
)

const (
	rootCADuration         = 3650 * Day
	intermediateCADuration = 90 * Day

	cloudflareTokenKey = "apiToken"
)

// Chart holds the self-signed issuer and the root CA.
type Chart struct {
	*construct.Chart
	SelfSignedIssuer *cmv1.Issuer
	RootCA           *CA
}

// NewChart creates the PKI chart. props.Namespace is declared with the
// namespace registry.
func NewChart(scope construct.Scope, id string, props construct.ChartProps) (*Chart, error) {
	c, err := construct.NewChart(scope, id, props)
	if err != nil {
		return nil, err
	}
	if err := namespaces.Add(c, namespaces.Metadata{Name: props.Namespace}); err != nil {
		return nil, err
	}

	env, err := config.EnvironmentFromScope(c)
	if err != nil {
		return nil, err
	}

	selfSigned := &cmv1.Issuer{
		Spec: cmv1.IssuerSpec{
			IssuerConfig: cmv1.IssuerConfig{SelfSigned: &cmv1.SelfSignedIssuer{}},
		},
	}
	if err := construct.AddObject(c, "self-signed-issuer", selfSigned); err != nil {
		return nil, err
	}

	root, err := NewCA(c, "root-ca", CAProps{
		CommonName: caCommonName("Root CA", env.Name),
		Duration:   rootCADuration,
		Issuer:     issuerRefOf(selfSigned),
	})
	if err != nil {
		return nil, err
	}

	return &Chart{Chart: c, SelfSignedIssuer: selfSigned, RootCA: root}, nil
}

// ACMEChart provides the issuer for gateway certificates.
type ACMEChart struct {
	*construct.Chart
	Issuer *cmv1.ClusterIssuer

	// PrivateDomainCA is set when ACME is disabled.
	PrivateDomainCA *CA
	// PrivateKeySecretName is set when ACME is enabled.
	PrivateKeySecretName string
}

// NewACMEChart creates the issuer chart. With ACME enabled it renders a
// ClusterIssuer with one DNS-01 solver per configured domain; otherwise an
// intermediate CA signed by rootCA.
func NewACMEChart(scope construct.Scope, id string, props construct.ChartProps, rootCA *CA) (*ACMEChart, error) {
	c, err := construct.NewChart(scope, id, props)
	if err != nil {
		return nil, err
	}
	if err := namespaces.Add(c, namespaces.Metadata{Name: props.Namespace}); err != nil {
		return nil, err
	}

	cfg, err := config.FromScope(c)
	if err != nil {
		return nil, err
	}
	chart := &ACMEChart{Chart: c}

	acme, ok := cfg.ACME.Enabled()
	if !ok {
		env, err := config.EnvironmentFromScope(c)
		if err != nil {
			return nil, err
		}
		ca, err := NewCA(c, "private-domain-ca", CAProps{
			CommonName: caCommonName("Intermediate Domain CA", env.Name),
			Duration:   intermediateCADuration,
			Issuer:     rootCA.IssuerRef(),
		})
		if err != nil {
			return nil, err
		}
		chart.PrivateDomainCA = ca
		chart.Issuer = ca.Issuer
		slog.Debug("acme disabled, using private domain CA", "environment", env.Name)
		return chart, nil
	}

	if !cfg.DNS.IsEnabled() {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "DNS must be enabled in order to use ACME")
	}

	var solvers []cmacme.ACMEChallengeSolver
	for _, key := range cfg.DomainKeys() {
		d := cfg.Domains[key]
		if d.Credentials == nil {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("DNS credentials must be provided for domain %s when ACME is enabled", d.Domain))
		}
		solver, err := newSolver(c, d)
		if err != nil {
			return nil, err
		}
		solvers = append(solvers, solver)
	}

	chart.PrivateKeySecretName = construct.ToDNSLabel(c, "private-key")
	chart.Issuer = &cmv1.ClusterIssuer{
		Spec: cmv1.IssuerSpec{
			IssuerConfig: cmv1.IssuerConfig{
				ACME: &cmacme.ACMEIssuer{
					Email:  acme.Email,
					Server: acme.Server,
					PrivateKey: cmmeta.SecretKeySelector{
						LocalObjectReference: cmmeta.LocalObjectReference{Name: chart.PrivateKeySecretName},
					},
					Solvers: solvers,
				},
			},
		},
	}
	if err := construct.AddObject(c, "issuer", chart.Issuer); err != nil {
		return nil, err
	}
	return chart, nil
}

// IssuerRef returns a reference to the chart's issuer.
func (c *ACMEChart) IssuerRef() certstore.IssuerRef {
	return issuerRefOf(c.Issuer)
}

// newSolver renders the DNS-01 solver for d together with the secret
// holding its provider credentials.
func newSolver(scope construct.Scope, d config.Domain) (cmacme.ACMEChallengeSolver, error) {
	n, err := construct.New(scope, "solver-"+d.Domain)
	if err != nil {
		return cmacme.ACMEChallengeSolver{}, err
	}

	switch d.Credentials.Provider {
	case config.ProviderCloudflare:
		secret := &corev1.Secret{
			Type:       corev1.SecretTypeOpaque,
			StringData: map[string]string{cloudflareTokenKey: d.Credentials.APIToken},
		}
		if err := construct.AddObject(n, "cloudflare-credentials", secret); err != nil {
			return cmacme.ACMEChallengeSolver{}, err
		}
		return cmacme.ACMEChallengeSolver{
			Selector: &cmacme.CertificateDNSNameSelector{DNSZones: []string{d.Domain}},
			DNS01: &cmacme.ACMEChallengeSolverDNS01{
				Cloudflare: &cmacme.ACMEIssuerDNS01ProviderCloudflare{
					APIToken: &cmmeta.SecretKeySelector{
						LocalObjectReference: cmmeta.LocalObjectReference{Name: secret.Name},
						Key:                  cloudflareTokenKey,
					},
				},
			},
		}, nil
	default:
		return cmacme.ACMEChallengeSolver{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"unsupported DNS provider", map[string]any{"provider": d.Credentials.Provider, "domain": d.Domain})
	}
}
