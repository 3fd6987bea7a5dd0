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

package certstore

import (
	"log/slog"

	cmv1 "github.com/cert-manager/cert-manager/pkg/apis/certmanager/v1"
	cmmeta "github.com/cert-manager/cert-manager/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"
	gatewayv1beta1 "sigs.k8s.io/gateway-api/apis/v1beta1"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/hostname"
	"github.com/homelab/kubesynth/pkg/scopedctx"
)

// DefaultNamespace is used for scopes outside any namespaced chart.
const DefaultNamespace = "default"

const notSetup = "certificate store has not been setup for this construct tree"

var registryContext = scopedctx.New[*Registry]("CertificateStore", scopedctx.WithErrorOnMissing(notSetup))

// IssuerRef identifies the cert-manager issuer that signs store certificates.
type IssuerRef struct {
	Name  string
	Kind  string
	Group string
}

// Entry is the certificate shared by every hostname with the same
// canonical name.
type Entry struct {
	Names       hostname.Names
	SecretName  string
	SecretRef   gatewayv1.SecretObjectReference
	Certificate *cmv1.Certificate

	node       *construct.Node
	namespaces []string
	grants     []*gatewayv1beta1.ReferenceGrant
}

// Namespaces returns the namespaces granted access, in grant order.
func (e *Entry) Namespaces() []string {
	out := make([]string, len(e.namespaces))
	copy(out, e.namespaces)
	return out
}

// Grants returns the reference grants created for this entry.
func (e *Entry) Grants() []*gatewayv1beta1.ReferenceGrant {
	out := make([]*gatewayv1beta1.ReferenceGrant, len(e.grants))
	copy(out, e.grants)
	return out
}

func (e *Entry) granted(namespace string) bool {
	for _, ns := range e.namespaces {
		if ns == namespace {
			return true
		}
	}
	return false
}

// Registry holds the certificates of one construct tree.
type Registry struct {
	chart   *Chart
	entries map[string]*Entry
	order   []string
}

// Chart owns the certificates and reference grants.
type Chart struct {
	*construct.Chart
	issuer IssuerRef
}

// Setup installs an empty store at scope.
func Setup(scope construct.Scope) (*Registry, error) {
	if _, ok := registryContext.TryGet(scope); ok {
		return nil, errors.NewWithContext(errors.ErrCodeAlreadySetup,
			"certificate store has already been setup for this construct tree",
			map[string]any{"scope": scope.Node().String()})
	}
	r := &Registry{entries: make(map[string]*Entry)}
	registryContext.Set(scope, r)
	return r, nil
}

// FromScope returns the store visible from scope.
func FromScope(scope construct.Scope) (*Registry, error) {
	return registryContext.Get(scope)
}

// NewChart creates the store chart and attaches it to the store visible
// from scope. Certificates are issued by issuer and live in props.Namespace,
// which is required.
func NewChart(scope construct.Scope, id string, props construct.ChartProps, issuer IssuerRef) (*Chart, error) {
	r, err := FromScope(scope)
	if err != nil {
		return nil, err
	}
	if r.chart != nil {
		return nil, errors.NewWithContext(errors.ErrCodeAlreadySetup,
			"certificate store chart has already been setup for this construct tree",
			map[string]any{"existing": r.chart.Node().Path()})
	}
	if props.Namespace == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "certificate store chart requires a namespace")
	}
	if issuer.Name == "" || issuer.Kind == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "certificate store chart requires an issuer")
	}

	c, err := construct.NewChart(scope, id, props)
	if err != nil {
		return nil, err
	}
	r.chart = &Chart{Chart: c, issuer: issuer}
	return r.chart, nil
}

// GetOrCreate returns the certificate covering h on behalf of scope using
// the store visible from scope.
func GetOrCreate(scope construct.Scope, h string) (*Entry, error) {
	r, err := FromScope(scope)
	if err != nil {
		return nil, err
	}
	return r.GetOrCreate(scope, h)
}

// GetOrCreate returns the certificate covering h, creating it on first use,
// and makes sure the namespace of scope may reference its secret.
func (r *Registry) GetOrCreate(scope construct.Scope, h string) (*Entry, error) {
	if r.chart == nil {
		return nil, errors.New(errors.ErrCodeMissingContext, notSetup)
	}

	cfg, err := config.FromScope(r.chart)
	if err != nil {
		return nil, err
	}
	names, err := hostname.Canonicalize(h, cfg.DomainNames())
	if err != nil {
		return nil, err
	}

	namespace := construct.NamespaceOf(scope, DefaultNamespace)

	entry, ok := r.entries[names.Canonical]
	if !ok {
		entry, err = r.create(names)
		if err != nil {
			return nil, err
		}
		r.entries[names.Canonical] = entry
		r.order = append(r.order, names.Canonical)
	}

	if !entry.granted(namespace) {
		if err := r.grant(entry, namespace); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// Each entry gets its own node keyed by the canonical name, so object ids
// and generated names never collide between entries.
func (r *Registry) create(names hostname.Names) (*Entry, error) {
	node, err := construct.New(r.chart, names.Canonical)
	if err != nil {
		return nil, err
	}
	secretName := construct.ToDNSLabel(node, "secret")

	commonName := names.Parent
	if commonName == "" {
		commonName = names.Canonical
	}

	cert := &cmv1.Certificate{
		Spec: cmv1.CertificateSpec{
			IssuerRef: cmmeta.ObjectReference{
				Name:  r.chart.issuer.Name,
				Kind:  r.chart.issuer.Kind,
				Group: r.chart.issuer.Group,
			},
			SecretName: secretName,
			CommonName: commonName,
			DNSNames:   []string{names.Canonical},
		},
	}
	if err := construct.AddObject(node, "certificate", cert); err != nil {
		return nil, err
	}

	slog.Debug("certificate created", "canonical", names.Canonical, "secret", secretName)
	return &Entry{
		node:        node,
		Names:       names,
		SecretName:  secretName,
		Certificate: cert,
		SecretRef: gatewayv1.SecretObjectReference{
			Name:      gatewayv1.ObjectName(secretName),
			Namespace: ptr.To(gatewayv1.Namespace(r.chart.Namespace())),
			Group:     ptr.To(gatewayv1.Group("")),
			Kind:      ptr.To(gatewayv1.Kind("Secret")),
		},
	}, nil
}

func (r *Registry) grant(entry *Entry, namespace string) error {
	grant := &gatewayv1beta1.ReferenceGrant{
		Spec: gatewayv1beta1.ReferenceGrantSpec{
			From: []gatewayv1beta1.ReferenceGrantFrom{{
				Group:     gatewayv1.GroupName,
				Kind:      "Gateway",
				Namespace: gatewayv1.Namespace(namespace),
			}},
			To: []gatewayv1beta1.ReferenceGrantTo{{
				Group: "",
				Kind:  "Secret",
				Name:  ptr.To(gatewayv1.ObjectName(entry.SecretName)),
			}},
		},
	}
	if err := construct.AddObject(entry.node, "grant-"+namespace, grant); err != nil {
		return err
	}

	entry.grants = append(entry.grants, grant)
	entry.namespaces = append(entry.namespaces, namespace)
	slog.Debug("reference grant created", "canonical", entry.Names.Canonical, "namespace", namespace)
	return nil
}

// Entries returns the certificates created so far, in creation order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.entries[c])
	}
	return out
}

// Get returns the entry for a canonical name.
func (r *Registry) Get(canonical string) (*Entry, bool) {
	e, ok := r.entries[canonical]
	return e, ok
}
