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

// Package defaults provides centralized configuration constants for kubesynth.
//
// This package defines well-known namespaces, output locations, labels and
// the timeouts used by synth and push operations. Centralizing these values
// keeps the CLI, the stack and the tests in agreement.
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/homelab/kubesynth/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.PushTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Synth: 1m covers rendering and writing every chart
//   - Push: 5m for uploading the rendered output to an OCI registry
//   - HTTP client: 30s total, 5s connect and TLS handshake
package defaults
