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

// Package cli implements the kubesynth command line.
//
// # Overview
//
// kubesynth turns an environment config file into a directory of Kubernetes
// manifests, one YAML file per chart, plus a checksums file. The output can
// optionally be pushed to an OCI registry as a single artifact.
//
// # Commands
//
// synth - Render manifests:
//
//	kubesynth synth [--env NAME | --config FILE] [--output DIR] [--push oci://REF]
//
// Loads the config for the environment, builds the construct tree and writes
// the rendered charts to the output directory (default: dist). A run summary
// is written to stdout or --summary in the selected format.
//
// validate - Check a config without writing anything:
//
//	kubesynth validate [--env NAME | --config FILE]
//
// Loads the config and builds the construct tree, reporting the charts and
// object counts that synth would produce.
//
// # Config Discovery
//
// Without --config, the file config.<env>.{yaml,yml,json} is looked up in
// --config-dir. Without --env the names local, prod, production, stg,
// staging, dev and development are tried in order.
//
// # Global Flags
//
//	--log-level    Logging verbosity: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid config, render or push failure)
//	2  Context canceled or timeout
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/homelab/kubesynth/pkg/cli.version=1.0.0'"
package cli
