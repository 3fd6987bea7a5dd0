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

package config

import (
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/hostname"
	"github.com/homelab/kubesynth/pkg/scopedctx"
)

// Environment describes the cluster a synth run targets.
type Environment struct {
	// Name is the environment name, e.g. local or prod.
	Name string `json:"name" yaml:"name"`
	// Local is true for the local development cluster.
	Local bool `json:"local" yaml:"local"`
}

var (
	configContext = scopedctx.New[*Config]("Config",
		scopedctx.WithErrorOnMissing("config has not been setup for this construct tree"))
	environmentContext = scopedctx.New[Environment]("Environment",
		scopedctx.WithErrorOnMissing("environment has not been setup for this construct tree"))
)

// Setup makes cfg visible to scope and its descendants.
func Setup(scope construct.Scope, cfg *Config) {
	configContext.Set(scope, cfg)
}

// FromScope returns the config visible from scope.
func FromScope(scope construct.Scope) (*Config, error) {
	return configContext.Get(scope)
}

// SetupEnvironment makes env visible to scope and its descendants.
func SetupEnvironment(scope construct.Scope, env Environment) {
	environmentContext.Set(scope, env)
}

// EnvironmentFromScope returns the environment visible from scope.
func EnvironmentFromScope(scope construct.Scope) (Environment, error) {
	return environmentContext.Get(scope)
}

// MakeHostname joins name with the domain configured under domainKey.
// The name "@" refers to the domain itself.
func MakeHostname(scope construct.Scope, name, domainKey string) (string, error) {
	cfg, err := FromScope(scope)
	if err != nil {
		return "", err
	}
	d, ok := cfg.Domains[domainKey]
	if !ok {
		return "", errors.NewWithContext(errors.ErrCodeNotFound, "domain is not configured",
			map[string]any{"domain": domainKey})
	}
	return hostname.Join(name, d.Domain), nil
}
