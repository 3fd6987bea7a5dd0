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
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultACMEServer is the Let's Encrypt production directory.
	DefaultACMEServer = "https://acme-v02.api.letsencrypt.org/directory"

	// MainDomainKey is the key of the domain every install must configure.
	MainDomainKey = "main"

	// ProviderCloudflare is the only supported DNS provider.
	ProviderCloudflare = "cloudflare"
)

// Config is the validated kubesynth configuration.
type Config struct {
	DNS       Toggle[DNSConfig]  `yaml:"dns" json:"dns"`
	ACME      Toggle[ACMEConfig] `yaml:"acme" json:"acme"`
	Domains   map[string]Domain  `yaml:"domains" json:"domains"`
	Images    Images             `yaml:"images" json:"images"`
	Databases []Database         `yaml:"databases,omitempty" json:"databases,omitempty"`
	Features  Features           `yaml:"features" json:"features"`
}

// DNSConfig has no fields; DNS management is either on or off.
type DNSConfig struct{}

// ACMEConfig configures the public certificate issuer.
type ACMEConfig struct {
	Email  string `yaml:"email" json:"email"`
	Server string `yaml:"server,omitempty" json:"server,omitempty"`
}

// Domain is a base domain the install manages hostnames under.
type Domain struct {
	Domain      string       `yaml:"domain" json:"domain"`
	Credentials *Credentials `yaml:"credentials" json:"credentials"`
}

// Credentials for the DNS provider that serves a domain.
type Credentials struct {
	Provider string `yaml:"provider" json:"provider"`
	ZoneID   string `yaml:"zoneId" json:"zoneId"`
	APIToken string `yaml:"apiToken" json:"apiToken"`
}

// Images configures where built images are pushed.
type Images struct {
	Destination string `yaml:"destination" json:"destination"`
	Pull        bool   `yaml:"pull" json:"pull"`
	NoCache     bool   `yaml:"noCache" json:"noCache"`

	// Builds are images built from local sources on every synth.
	Builds []ImageBuild `yaml:"builds,omitempty" json:"builds,omitempty"`
}

// ImageBuild describes an image built with docker buildx. Nil NoCache and
// Pull fall back to the images section.
type ImageBuild struct {
	Name       string   `yaml:"name" json:"name"`
	Context    string   `yaml:"context" json:"context"`
	Dockerfile string   `yaml:"dockerfile,omitempty" json:"dockerfile,omitempty"`
	Target     string   `yaml:"target,omitempty" json:"target,omitempty"`
	Args       []string `yaml:"args,omitempty" json:"args,omitempty"`
	NoCache    *bool    `yaml:"noCache,omitempty" json:"noCache,omitempty"`
	Pull       *bool    `yaml:"pull,omitempty" json:"pull,omitempty"`
}

// Database is a PostgreSQL cluster managed by CloudNativePG. Empty
// passwords let the operator generate the credentials.
type Database struct {
	Name             string `yaml:"name" json:"name"`
	Namespace        string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Instances        int32  `yaml:"instances,omitempty" json:"instances,omitempty"`
	Storage          string `yaml:"storage,omitempty" json:"storage,omitempty"`
	AppPassword      string `yaml:"appPassword,omitempty" json:"-"`
	PostgresPassword string `yaml:"postgresPassword,omitempty" json:"-"`
}

// Features holds optional feature switches.
type Features struct {
	Monitoring Toggle[MonitoringConfig] `yaml:"monitoring" json:"monitoring"`
}

// MonitoringConfig has no fields yet.
type MonitoringConfig struct{}

// DomainKeys returns the configured domain keys, sorted.
func (c *Config) DomainKeys() []string {
	keys := make([]string, 0, len(c.Domains))
	for k := range c.Domains {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DomainNames returns the configured base domains ordered by key.
func (c *Config) DomainNames() []string {
	names := make([]string, 0, len(c.Domains))
	for _, k := range c.DomainKeys() {
		names = append(names, c.Domains[k].Domain)
	}
	return names
}

// applyDefaults fills in values that may be omitted from the file.
func (c *Config) applyDefaults() {
	if acme, ok := c.ACME.Enabled(); ok && acme.Server == "" {
		acme.Server = DefaultACMEServer
		c.ACME = Enable(*acme)
	}
}

// Toggle is either disabled or enabled with a value of T.
type Toggle[T any] struct {
	enabled bool
	value   T
}

// Enable returns an enabled toggle holding v.
func Enable[T any](v T) Toggle[T] {
	return Toggle[T]{enabled: true, value: v}
}

// Disable returns a disabled toggle.
func Disable[T any]() Toggle[T] {
	return Toggle[T]{}
}

// Enabled returns a copy of the value and true when the toggle is enabled.
func (t Toggle[T]) Enabled() (*T, bool) {
	if !t.enabled {
		return nil, false
	}
	v := t.value
	return &v, true
}

// IsEnabled reports whether the toggle is enabled.
func (t Toggle[T]) IsEnabled() bool { return t.enabled }

type toggleTag struct {
	Enable *bool `yaml:"enable"`
}

// UnmarshalYAML decodes {enable: false} or {enable: true, ...fields}.
// A missing toggle decodes as disabled.
func (t *Toggle[T]) UnmarshalYAML(node *yaml.Node) error {
	var tag toggleTag
	if err := node.Decode(&tag); err != nil {
		return fmt.Errorf("toggle must be a mapping with an enable field: %w", err)
	}
	if tag.Enable == nil {
		return fmt.Errorf("line %d: toggle is missing the enable field", node.Line)
	}
	if !*tag.Enable {
		*t = Toggle[T]{}
		return nil
	}

	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*t = Enable(v)
	return nil
}

// MarshalYAML encodes the toggle in the same shape UnmarshalYAML accepts.
func (t Toggle[T]) MarshalYAML() (any, error) {
	if !t.enabled {
		return map[string]bool{"enable": false}, nil
	}

	var n yaml.Node
	if err := n.Encode(t.value); err != nil {
		return nil, err
	}
	enable := []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "enable"},
		{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"},
	}
	if n.Kind != yaml.MappingNode {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: enable}, nil
	}
	n.Content = append(enable, n.Content...)
	return &n, nil
}

// MarshalJSON encodes the toggle in the same shape as MarshalYAML.
func (t Toggle[T]) MarshalJSON() ([]byte, error) {
	if !t.enabled {
		return []byte(`{"enable":false}`), nil
	}

	b, err := json.Marshal(t.value)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("toggle value must encode as an object: %w", err)
	}
	fields["enable"] = true
	return json.Marshal(fields)
}
