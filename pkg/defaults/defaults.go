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

package defaults

import "time"

// Namespaces of the system charts.
const (
	// Namespace is the default namespace for app charts.
	Namespace = "homelab"

	// CertManagerNamespace hosts issuers, CAs and gateway certificates.
	CertManagerNamespace = "cert-manager"

	// EnvoyGatewayNamespace hosts the Envoy proxies of both gateway classes.
	EnvoyGatewayNamespace = "envoy-gateway-system"
)

// Output settings.
const (
	// OutputDir is where rendered manifests are written.
	OutputDir = "dist"

	// ChecksumFileName lists the SHA256 of every rendered file.
	ChecksumFileName = "checksums.txt"

	// MetricsFileName is the default Prometheus textfile name.
	MetricsFileName = "kubesynth.prom"
)

// ManagedLabel marks every object rendered by kubesynth.
const ManagedLabel = "kubesynth.dev/managed"

// Synth and push timeouts.
const (
	// SynthTimeout bounds rendering and writing all charts.
	SynthTimeout = 1 * time.Minute

	// PushTimeout bounds uploading the output to an OCI registry.
	PushTimeout = 5 * time.Minute
)

// HTTP client timeouts for registry requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)
