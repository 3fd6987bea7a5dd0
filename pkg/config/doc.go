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

// Package config defines the kubesynth configuration file and the
// environment a synth run targets.
//
// # File format
//
// Configuration is read from YAML (JSON is accepted as well):
//
//	dns:
//	  enable: true
//	acme:
//	  enable: true
//	  email: admin@example.com
//	domains:
//	  main:
//	    domain: example.com
//	    credentials:
//	      provider: cloudflare
//	      zoneId: "0123"
//	      apiToken: "secret"
//	images:
//	  destination: ghcr.io/example
//	features:
//	  monitoring:
//	    enable: false
//
// Feature switches such as dns, acme and features.monitoring are Toggles:
// either {enable: false} or {enable: true, ...fields}. Fields of the enabled
// branch are only required when the toggle is enabled.
//
// # Discovery
//
// Find looks for config.<env>.yaml, config.<env>.yml and config.<env>.json in
// that order. When no environment is given, the common environment names are
// tried in order and the first file found wins.
//
// # Scoped access
//
// Setup and SetupEnvironment install the loaded values at a scope so that
// any construct below it can read them with FromScope and EnvironmentFromScope.
package config
