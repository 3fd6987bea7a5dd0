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

// Package pki defines the certificate authorities and issuers the
// certificate store signs with.
//
// The PKI chart holds a self-signed root CA. The ACME chart provides the
// issuer used for gateway certificates: a public ACME ClusterIssuer solving
// DNS-01 challenges when ACME is enabled, otherwise an intermediate CA
// signed by the root.
package pki

import (
	"fmt"
	"time"

	cmv1 "github.com/cert-manager/cert-manager/pkg/apis/certmanager/v1"
	cmmeta "github.com/cert-manager/cert-manager/pkg/apis/meta/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/homelab/kubesynth/pkg/certstore"
	"github.com/homelab/kubesynth/pkg/construct"
)

// Day is the unit CA lifetimes are expressed in.
const Day = 24 * time.Hour

// CAProps configures a certificate authority.
type CAProps struct {
	CommonName string
	Duration   time.Duration
	Issuer     certstore.IssuerRef
}

// CA is a CA certificate plus the ClusterIssuer that signs with it.
type CA struct {
	node        *construct.Node
	SecretName  string
	Certificate *cmv1.Certificate
	Issuer      *cmv1.ClusterIssuer
}

// NewCA creates a CA under scope.
func NewCA(scope construct.Scope, id string, props CAProps) (*CA, error) {
	n, err := construct.New(scope, id)
	if err != nil {
		return nil, err
	}
	secretName := construct.ToDNSLabel(n, "secret")

	cert := &cmv1.Certificate{
		Spec: cmv1.CertificateSpec{
			IsCA:       true,
			CommonName: props.CommonName,
			SecretName: secretName,
			Duration:   &metav1.Duration{Duration: props.Duration},
			IssuerRef: cmmeta.ObjectReference{
				Name:  props.Issuer.Name,
				Kind:  props.Issuer.Kind,
				Group: props.Issuer.Group,
			},
			Usages: []cmv1.KeyUsage{cmv1.UsageCRLSign, cmv1.UsageCertSign},
			AdditionalOutputFormats: []cmv1.CertificateAdditionalOutputFormat{
				{Type: cmv1.CertificateOutputFormatCombinedPEM},
			},
		},
	}
	if err := construct.AddObject(n, "certificate", cert); err != nil {
		return nil, err
	}

	issuer := &cmv1.ClusterIssuer{
		Spec: cmv1.IssuerSpec{
			IssuerConfig: cmv1.IssuerConfig{
				CA: &cmv1.CAIssuer{SecretName: secretName},
			},
		},
	}
	if err := construct.AddObject(n, "issuer", issuer); err != nil {
		return nil, err
	}

	return &CA{node: n, SecretName: secretName, Certificate: cert, Issuer: issuer}, nil
}

// Node implements construct.Scope.
func (ca *CA) Node() *construct.Node { return ca.node }

// IssuerRef returns a reference to the CA's ClusterIssuer.
func (ca *CA) IssuerRef() certstore.IssuerRef {
	return issuerRefOf(ca.Issuer)
}

func issuerRefOf(obj construct.Object) certstore.IssuerRef {
	ref := construct.RefOf(obj)
	return certstore.IssuerRef{Name: ref.Name, Kind: ref.Kind, Group: ref.APIGroup}
}

func caCommonName(kind, environment string) string {
	return fmt.Sprintf("Homelab %s (%s)", kind, environment)
}
