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

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

type testFile struct {
	Path    string `json:"path" yaml:"path"`
	Objects int    `json:"objects" yaml:"objects"`
}

type testResult struct {
	OutputDir string        `json:"output_dir" yaml:"output_dir"`
	Files     []testFile    `json:"files" yaml:"files"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Digest    *string       `json:"digest,omitempty" yaml:"digest,omitempty"`
}

func sample() testResult {
	return testResult{
		OutputDir: "dist",
		Files: []testFile{
			{Path: "0000-namespaces.k8s.yaml", Objects: 3},
			{Path: "0001-debug.k8s.yaml", Objects: 5},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatJSON, &buf).Serialize(context.Background(), sample()); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var got testResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	if len(got.Files) != 2 || got.Files[1].Objects != 5 {
		t.Errorf("Unexpected data: %+v", got)
	}
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatYAML, &buf).Serialize(context.Background(), sample()); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal YAML: %v", err)
	}
	if got["output_dir"] != "dist" {
		t.Errorf("output_dir = %v", got["output_dir"])
	}
	if !strings.Contains(buf.String(), "- path: 0000-namespaces.k8s.yaml") {
		t.Errorf("expected files list in YAML output:\n%s", buf.String())
	}
}

func TestWriter_SerializeTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), sample()); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"FIELD", "VALUE", "Files.[0].Path", "Files.[1].Objects", "Duration", "1.5s", "Digest"} {
		if !strings.Contains(output, want) {
			t.Errorf("table output missing %q:\n%s", want, output)
		}
	}
}

func TestWriter_SerializeTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), struct{}{}); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "<empty>" {
		t.Errorf("got %q, want <empty>", buf.String())
	}
}

func TestWriter_SerializeTable_Scalar(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), 42); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !strings.Contains(buf.String(), "value") || !strings.Contains(buf.String(), "42") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := NewWriter(FormatJSON, &buf).Serialize(ctx, sample()); err == nil {
		t.Error("expected error for cancelled context")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes after cancellation", buf.Len())
	}
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	w := NewWriter("xml", &bytes.Buffer{})
	if w.Format() != FormatYAML {
		t.Errorf("Format() = %q, want %q", w.Format(), FormatYAML)
	}
}

func TestFormat_IsUnknown(t *testing.T) {
	for _, f := range SupportedFormats() {
		if Format(f).IsUnknown() {
			t.Errorf("%q reported unknown", f)
		}
	}
	if !Format("xml").IsUnknown() {
		t.Error("xml reported known")
	}
}

func TestNewFileWriterOrStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	w := NewFileWriterOrStdout(FormatJSON, path)
	if err := w.Serialize(context.Background(), sample()); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "0001-debug.k8s.yaml") {
		t.Errorf("unexpected file content: %s", data)
	}
}

func TestNewFileWriterOrStdout_Fallback(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "empty", path: ""},
		{name: "dash", path: "-"},
		{name: "invalid", path: filepath.Join(t.TempDir(), "missing", "dir", "out.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewFileWriterOrStdout(FormatYAML, tt.path)
			if w.output != os.Stdout {
				t.Errorf("expected stdout fallback for %q", tt.path)
			}
			if err := w.Close(); err != nil {
				t.Errorf("Close failed: %v", err)
			}
		})
	}
}
