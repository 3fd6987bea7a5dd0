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

// Package certstore shares TLS certificates between every gateway in the
// construct tree.
//
// # Overview
//
// Gateways ask the store for a certificate by hostname. The hostname is
// canonicalized against the configured base domains (see package hostname),
// so all first-level subdomains of a domain share one wildcard certificate:
//
//	api.example.com  -> *.example.com
//	web.example.com  -> *.example.com
//	example.com      -> example.com
//	a.b.example.com  -> *.b.example.com
//
// The store creates at most one cert-manager Certificate per canonical name,
// in the store chart's namespace. Gateways in other namespaces reference the
// backing secret across namespaces, so the store also creates one Gateway
// API ReferenceGrant per (certificate, requesting namespace) pair.
//
// # Usage
//
//	if _, err := certstore.Setup(root); err != nil {
//	    return err
//	}
//	if _, err := certstore.NewChart(root, "certificate-store",
//	    construct.ChartProps{Namespace: "cert-manager"}, issuer); err != nil {
//	    return err
//	}
//
//	// anywhere below root
//	entry, err := certstore.GetOrCreate(scope, "debug.example.com")
//	if err != nil {
//	    return err
//	}
//	listener.TLS.CertificateRefs = []gatewayv1.SecretObjectReference{entry.SecretRef}
//
// Hostnames outside every configured domain fail with
// errors.ErrCodeHostnameNotConfigured.
package certstore
