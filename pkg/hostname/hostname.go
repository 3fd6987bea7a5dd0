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

// Package hostname canonicalizes hostnames into certificate identities.
package hostname

import (
	"fmt"
	"strings"

	"github.com/homelab/kubesynth/pkg/errors"
)

// Wildcard replaces the leftmost label of a subdomain in a canonical name.
const Wildcard = "*"

// Names is the certificate identity of a hostname.
type Names struct {
	// Canonical is the name the certificate is issued for.
	Canonical string
	// Parent is the domain under a wildcard canonical name. Empty when the
	// hostname is itself a configured domain.
	Parent string
}

// Canonicalize maps h onto the certificate identity that covers it.
// A configured domain is its own identity. A strict subdomain collapses to a
// wildcard over its first label, so a.example.com and b.example.com share
// *.example.com, while a.b.example.com becomes *.b.example.com.
func Canonicalize(h string, domains []string) (Names, error) {
	for _, d := range domains {
		if h == d {
			return Names{Canonical: h}, nil
		}
	}

	for _, d := range domains {
		if d == "" || !strings.HasSuffix(h, "."+d) {
			continue
		}
		first, rest, _ := strings.Cut(h, ".")
		if first == "" {
			break
		}
		return Names{
			Canonical: Join(Wildcard, rest),
			Parent:    rest,
		}, nil
	}

	return Names{}, errors.NewWithContext(errors.ErrCodeHostnameNotConfigured,
		fmt.Sprintf("hostname %s is not a subdomain of any configured domain: %s", h, strings.Join(domains, ", ")),
		map[string]any{"hostname": h, "domains": domains})
}

// LabelPart converts a hostname into text usable inside a resource name.
func LabelPart(h string) string {
	return strings.ReplaceAll(strings.ReplaceAll(h, Wildcard, "star"), ".", "-")
}

// Join joins hostname parts with dots. Empty parts and the zone apex marker
// "@" are skipped.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "@" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

// Regex returns h as a regular expression matching the literal hostname.
func Regex(h string) string {
	return strings.ReplaceAll(h, ".", `\.`)
}
