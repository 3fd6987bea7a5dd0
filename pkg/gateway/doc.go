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

// Package gateway renders Envoy Gateway classes and the HTTP gateways apps
// expose themselves through.
//
// Two classes exist per cluster: an external one backed by a LoadBalancer
// service and an internal one backed by a ClusterIP service. An HTTPGateway
// attaches one Gateway to each class with an HTTP and an HTTPS listener per
// hostname. HTTPS listeners terminate TLS with certificates from the
// certificate store, and every hostname gets a DNS override pointing
// in-cluster clients at the internal class's service.
package gateway
