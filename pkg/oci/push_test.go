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

package oci

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"

	apperrors "github.com/homelab/kubesynth/pkg/errors"
)

func TestStripProtocol(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "https prefix", input: "https://ghcr.io", expected: "ghcr.io"},
		{name: "http prefix", input: "http://localhost:5000", expected: "localhost:5000"},
		{name: "no prefix", input: "registry.example.com", expected: "registry.example.com"},
		{name: "https with path", input: "https://ghcr.io/homelab", expected: "ghcr.io/homelab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripProtocol(tt.input); got != tt.expected {
				t.Errorf("stripProtocol(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func writeSource(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"0000-namespaces.k8s.yaml": "---\nkind: Namespace\n",
		"0001-debug.k8s.yaml":      "---\nkind: Deployment\n",
		"checksums.txt":            "abc  0000-namespaces.k8s.yaml\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestPackage_Validation(t *testing.T) {
	src := writeSource(t)

	tests := []struct {
		name string
		opts PackageOptions
	}{
		{
			name: "missing tag",
			opts: PackageOptions{SourceDir: src, OutputDir: t.TempDir(), Registry: "ghcr.io", Repository: "homelab/manifests"},
		},
		{
			name: "missing source",
			opts: PackageOptions{OutputDir: t.TempDir(), Registry: "ghcr.io", Repository: "homelab/manifests", Tag: "v1"},
		},
		{
			name: "invalid repository",
			opts: PackageOptions{SourceDir: src, OutputDir: t.TempDir(), Registry: "ghcr.io", Repository: "Homelab", Tag: "v1"},
		},
		{
			name: "output inside source",
			opts: PackageOptions{SourceDir: src, OutputDir: filepath.Join(src, "oci"), Registry: "ghcr.io", Repository: "homelab/manifests", Tag: "v1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Package(context.Background(), tt.opts); err == nil {
				t.Error("Package() expected error")
			}
		})
	}
}

func TestPackage_CreatesOCILayout(t *testing.T) {
	src := writeSource(t)
	out := t.TempDir()

	result, err := Package(context.Background(), PackageOptions{
		SourceDir:   src,
		OutputDir:   out,
		Registry:    "ghcr.io",
		Repository:  "homelab/manifests",
		Tag:         "prod",
		Annotations: map[string]string{ociv1.AnnotationTitle: "test"},
	})
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	if !strings.HasPrefix(result.Digest, "sha256:") {
		t.Errorf("Package() digest = %q", result.Digest)
	}
	if result.Reference != "ghcr.io/homelab/manifests:prod" {
		t.Errorf("Package() reference = %q", result.Reference)
	}

	if _, err := os.Stat(filepath.Join(result.StorePath, "oci-layout")); err != nil {
		t.Errorf("Package() did not create oci-layout: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(result.StorePath, "index.json"))
	if err != nil {
		t.Fatalf("failed to read index.json: %v", err)
	}
	var index ociv1.Index
	if err := json.Unmarshal(data, &index); err != nil {
		t.Fatalf("failed to parse index.json: %v", err)
	}
	if len(index.Manifests) != 1 {
		t.Fatalf("index has %d manifests, want 1", len(index.Manifests))
	}
	if got := index.Manifests[0].Annotations[ociv1.AnnotationRefName]; got != "prod" {
		t.Errorf("index ref name = %q, want %q", got, "prod")
	}
}

func TestPackage_Reproducible(t *testing.T) {
	src := writeSource(t)

	var digests []string
	for range 2 {
		result, err := Package(context.Background(), PackageOptions{
			SourceDir:             src,
			OutputDir:             t.TempDir(),
			Registry:              "ghcr.io",
			Repository:            "homelab/manifests",
			Tag:                   "repro",
			ReproducibleTimestamp: "2000-01-01T00:00:00Z",
		})
		if err != nil {
			t.Fatalf("Package() error = %v", err)
		}
		digests = append(digests, result.Digest)
	}

	if digests[0] != digests[1] {
		t.Errorf("reproducible builds produced different digests:\n  build 1: %s\n  build 2: %s", digests[0], digests[1])
	}
}

func TestPushFromStore_EmptyTag(t *testing.T) {
	_, err := PushFromStore(context.Background(), t.TempDir(), PushOptions{
		Registry:   "ghcr.io",
		Repository: "homelab/manifests",
	})
	if err == nil || !strings.Contains(err.Error(), "tag is required") {
		t.Errorf("PushFromStore() error = %v, want tag is required", err)
	}
}

func TestPushFromStore_InvalidReference(t *testing.T) {
	_, err := PushFromStore(context.Background(), t.TempDir(), PushOptions{
		Registry:   "ghcr.io",
		Repository: "UPPER/case",
		Tag:        "v1",
	})
	if err == nil || !strings.Contains(err.Error(), "invalid image reference") {
		t.Errorf("PushFromStore() error = %v, want invalid image reference", err)
	}
}

func TestPackageAndPush_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  OutputConfig
	}{
		{name: "nil reference", cfg: OutputConfig{SourceDir: t.TempDir()}},
		{name: "missing tag", cfg: OutputConfig{SourceDir: t.TempDir(), Reference: &Reference{Registry: "ghcr.io", Repository: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PackageAndPush(context.Background(), tt.cfg)
			if !apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest) {
				t.Errorf("PackageAndPush() error = %v, want %s", err, apperrors.ErrCodeInvalidRequest)
			}
		})
	}
}

func TestCreateAuthClient_InsecureTLS(t *testing.T) {
	tests := []struct {
		name         string
		plainHTTP    bool
		insecureTLS  bool
		wantInsecure bool
	}{
		{name: "secure", wantInsecure: false},
		{name: "insecure tls", insecureTLS: true, wantInsecure: true},
		{name: "plain http ignores tls", plainHTTP: true, insecureTLS: true, wantInsecure: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := createAuthClient(tt.plainHTTP, tt.insecureTLS)
			transport, ok := client.Client.Transport.(*http.Transport)
			if !ok {
				t.Fatalf("unexpected transport type %T", client.Client.Transport)
			}
			insecure := transport.TLSClientConfig != nil && transport.TLSClientConfig.InsecureSkipVerify
			if insecure != tt.wantInsecure {
				t.Errorf("InsecureSkipVerify = %v, want %v", insecure, tt.wantInsecure)
			}
			if client.Client.Timeout == 0 {
				t.Error("client has no timeout")
			}
		})
	}
}
