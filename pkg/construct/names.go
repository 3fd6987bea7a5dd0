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

package construct

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	maxDNSLabelLength = 63
	hashLength        = 8
)

// ToDNSLabel returns a stable RFC 1123 label for scope's path followed by
// the extra components. The label ends with a short hash of the full path so
// that different paths that sanitize to the same text still get distinct
// names.
func ToDNSLabel(scope Scope, extra ...string) string {
	return dnsLabel(append(scope.Node().pathIDs(), extra...), true)
}

// objectName is the name given to an object that was added without one.
func objectName(n *Node, chart *Chart) string {
	return dnsLabel(n.pathIDs(), !chart.props.DisableNameHashes)
}

func dnsLabel(components []string, withHash bool) string {
	var parts []string
	for _, c := range components {
		if s := sanitize(c); s != "" {
			parts = append(parts, s)
		}
	}
	base := strings.Join(parts, "-")

	if !withHash {
		return trimLabel(base, maxDNSLabelLength)
	}

	sum := sha256.Sum256([]byte(strings.Join(components, PathSeparator)))
	suffix := hex.EncodeToString(sum[:])[:hashLength]
	base = trimLabel(base, maxDNSLabelLength-hashLength-1)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return collapseDashes(strings.Trim(b.String(), "-"))
}

func collapseDashes(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

func trimLabel(s string, max int) string {
	if len(s) > max {
		s = s[:max]
	}
	return strings.TrimRight(s, "-")
}
