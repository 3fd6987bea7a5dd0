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

// Package header provides the Kubernetes-style envelope written at the top
// of every kubesynth command result.
//
// A Header carries a Kind, an APIVersion and free-form metadata. Result types
// embed it inline so serialized output reads like a Kubernetes resource:
//
//	kind: SynthResult
//	apiVersion: kubesynth.dev/v1alpha1
//	metadata:
//	  environment: prod
//	  timestamp: "2025-01-01T00:00:00Z"
//	  version: v1.2.0
//
// Usage:
//
//	var res Result
//	res.Init(header.KindSynthResult, version, header.WithMetadata("environment", env))
package header
