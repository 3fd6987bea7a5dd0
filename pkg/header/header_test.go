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

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestKind_IsValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindSynthResult, true},
		{KindValidationResult, true},
		{Kind("Snapshot"), false},
		{Kind(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.IsValid())
		})
	}
}

func TestHeader_Init(t *testing.T) {
	var h Header
	before := time.Now().UTC().Add(-time.Second)
	h.Init(KindSynthResult, "v1.2.0", WithMetadata("environment", "prod"), WithMetadata("empty", ""))

	assert.Equal(t, KindSynthResult, h.Kind)
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "v1.2.0", h.Metadata["version"])
	assert.Equal(t, "prod", h.Metadata["environment"])
	assert.NotContains(t, h.Metadata, "empty")

	ts, err := time.Parse(time.RFC3339, h.Metadata["timestamp"])
	assert.NoError(t, err)
	assert.False(t, ts.Before(before.Truncate(time.Second)))
}

func TestHeader_InitResetsMetadata(t *testing.T) {
	h := Header{Metadata: map[string]string{"stale": "x"}}
	h.Init(KindValidationResult, "")

	assert.NotContains(t, h.Metadata, "stale")
	assert.NotContains(t, h.Metadata, "version")
}

func TestHeader_Inline(t *testing.T) {
	type result struct {
		Header `yaml:",inline"`
		Files  int `yaml:"files"`
	}

	r := result{Files: 2}
	r.Init(KindSynthResult, "dev", WithTimestamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	out, err := yaml.Marshal(r)
	assert.NoError(t, err)
	want := `kind: SynthResult
apiVersion: kubesynth.dev/v1alpha1
metadata:
    timestamp: "2025-01-01T00:00:00Z"
    version: dev
files: 2
`
	assert.Equal(t, want, string(out))
}
