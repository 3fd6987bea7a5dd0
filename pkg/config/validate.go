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
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/homelab/kubesynth/pkg/errors"
)

// Validate checks the config for values a synth run cannot work with.
// All problems are reported together.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if acme, ok := c.ACME.Enabled(); ok {
		if !c.DNS.IsEnabled() {
			add("acme: DNS must be enabled in order to use ACME")
		}
		if _, err := mail.ParseAddress(acme.Email); err != nil {
			add("acme.email: %q is not a valid email address", acme.Email)
		}
		if u, err := url.ParseRequestURI(acme.Server); err != nil || (u.Scheme != "https" && u.Scheme != "http") {
			add("acme.server: %q is not a valid URL", acme.Server)
		}
	}

	if _, ok := c.Domains[MainDomainKey]; !ok {
		add("domains.%s: required", MainDomainKey)
	}
	for _, key := range c.DomainKeys() {
		d := c.Domains[key]
		if msgs := validation.IsDNS1123Subdomain(d.Domain); len(msgs) > 0 {
			add("domains.%s.domain: %q %s", key, d.Domain, strings.Join(msgs, "; "))
		}
		if d.Credentials == nil {
			if c.ACME.IsEnabled() {
				add("domains.%s.credentials: DNS credentials must be provided for domain %s when ACME is enabled", key, d.Domain)
			}
			continue
		}
		if d.Credentials.Provider != ProviderCloudflare {
			add("domains.%s.credentials.provider: unsupported provider %q", key, d.Credentials.Provider)
		}
		if d.Credentials.ZoneID == "" {
			add("domains.%s.credentials.zoneId: required", key)
		}
		if d.Credentials.APIToken == "" {
			add("domains.%s.credentials.apiToken: required", key)
		}
	}

	if strings.TrimSpace(c.Images.Destination) == "" {
		add("images.destination: required")
	}
	seen := make(map[string]bool, len(c.Images.Builds))
	for i, b := range c.Images.Builds {
		switch {
		case b.Name == "":
			add("images.builds[%d].name: required", i)
		case seen[b.Name]:
			add("images.builds[%d].name: duplicate image %q", i, b.Name)
		}
		seen[b.Name] = true
		if b.Context == "" {
			add("images.builds[%d].context: required", i)
		}
	}

	dbs := make(map[string]bool, len(c.Databases))
	for i, db := range c.Databases {
		if msgs := validation.IsDNS1035Label(db.Name); len(msgs) > 0 {
			add("databases[%d].name: %q %s", i, db.Name, strings.Join(msgs, "; "))
		}
		if dbs[db.Name] {
			add("databases[%d].name: duplicate database %q", i, db.Name)
		}
		dbs[db.Name] = true
		if db.Namespace != "" {
			if msgs := validation.IsDNS1123Label(db.Namespace); len(msgs) > 0 {
				add("databases[%d].namespace: %q %s", i, db.Namespace, strings.Join(msgs, "; "))
			}
		}
		if db.Instances < 0 {
			add("databases[%d].instances: must not be negative", i)
		}
		if db.Storage != "" {
			if q, err := resource.ParseQuantity(db.Storage); err != nil || q.Sign() <= 0 {
				add("databases[%d].storage: %q is not a valid size", i, db.Storage)
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.NewWithContext(errors.ErrCodeInvalidRequest,
		"config validation failed: "+strings.Join(problems, ", "),
		map[string]any{"problems": problems})
}
