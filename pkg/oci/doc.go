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

// Package oci publishes rendered manifests as OCI artifacts using ORAS.
//
// The output directory of a synth run is packed into a single reproducible
// gzip layer and pushed to a registry such as ghcr.io. Consumers pull it
// with any ORAS compatible client:
//
//	oras pull ghcr.io/homelab/manifests:prod
//
// # Core Types
//
//   - Reference: Parsed oci://registry/repository:tag target
//   - PackageOptions: Configuration for local OCI packaging
//   - PackageResult: Result of local packaging (digest, reference, store path)
//   - PushOptions: Configuration for pushing to remote registries
//   - PushResult: Result of a successful push (digest, reference)
//
// # Usage
//
//	ref, err := oci.ParseReference("oci://ghcr.io/homelab/manifests:prod")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.PackageAndPush(ctx, oci.OutputConfig{
//	    SourceDir: "dist",
//	    OutputDir: tmp,
//	    Reference: ref,
//	})
//
// # Authentication
//
// Credentials are loaded from the standard Docker configuration
// (~/.docker/config.json) using the ORAS credentials package.
//
// # Artifact Type
//
// Artifacts are pushed with the media type
// "application/vnd.kubesynth.manifests.v1". Consumers that don't understand
// this type should treat the artifact as a non-executable blob.
package oci
