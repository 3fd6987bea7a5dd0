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

package kbld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/utils/ptr"
)

func TestConfigProps_Object(t *testing.T) {
	props := ConfigProps{
		Sources: []Source{{
			Image: "web",
			Path:  "apps/web",
			Docker: &DockerBuilder{Buildx: &DockerBuildOptions{
				File:    "Dockerfile.prod",
				NoCache: ptr.To(true),
				Pull:    ptr.To(false),
			}},
		}},
		Destinations: []Destination{{Image: "web", NewImage: "ghcr.io/example/web"}},
	}

	u, err := props.Object()
	require.NoError(t, err)

	assert.Equal(t, APIVersion, u.GetAPIVersion())
	assert.Equal(t, Kind, u.GetKind())

	sources, found, err := unstructured.NestedSlice(u.Object, "sources")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, sources, 1)

	src := sources[0].(map[string]any)
	assert.Equal(t, "web", src["image"])
	noCache, _, _ := unstructured.NestedBool(src, "docker", "buildx", "noCache")
	assert.True(t, noCache)
	pull, found, _ := unstructured.NestedBool(src, "docker", "buildx", "pull")
	assert.True(t, found)
	assert.False(t, pull)
	_, found, _ = unstructured.NestedFieldNoCopy(src, "ko")
	assert.False(t, found)

	_, found, _ = unstructured.NestedFieldNoCopy(u.Object, "overrides")
	assert.False(t, found)
}

func TestDefaultSearchRule(t *testing.T) {
	u, err := ConfigProps{SearchRules: []SearchRule{DefaultSearchRule()}}.Object()
	require.NoError(t, err)

	rules, _, err := unstructured.NestedSlice(u.Object, "searchRules")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	name, _, _ := unstructured.NestedString(rules[0].(map[string]any), "keyMatcher", "name")
	assert.Equal(t, "image", name)
	ev, found, _ := unstructured.NestedMap(rules[0].(map[string]any), "updateStrategy", "entireValue")
	assert.True(t, found)
	assert.Empty(t, ev)
}
