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

// Package kbld models the kbld Config document that tells kbld how to build
// and push the images referenced by rendered manifests.
//
// See https://carvel.dev/kbld/docs/latest/config/ for the format.
package kbld

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

const (
	// APIVersion of the kbld Config document.
	APIVersion = "kbld.k14s.io/v1alpha1"
	// Kind of the kbld Config document.
	Kind = "Config"
)

// ConfigProps is the body of a kbld Config.
type ConfigProps struct {
	MinimumRequiredVersion string        `json:"minimumRequiredVersion,omitempty"`
	SearchRules            []SearchRule  `json:"searchRules,omitempty"`
	Overrides              []Override    `json:"overrides,omitempty"`
	Sources                []Source      `json:"sources,omitempty"`
	Destinations           []Destination `json:"destinations,omitempty"`
}

// SearchRule locates image references in the input documents.
type SearchRule struct {
	KeyMatcher     *KeyMatcher     `json:"keyMatcher,omitempty"`
	ValueMatcher   *ValueMatcher   `json:"valueMatcher,omitempty"`
	UpdateStrategy *UpdateStrategy `json:"updateStrategy,omitempty"`
}

// KeyMatcher matches image references by key.
type KeyMatcher struct {
	Name string   `json:"name,omitempty"`
	Path []string `json:"path,omitempty"`
}

// ValueMatcher matches image references by value. Set one field.
type ValueMatcher struct {
	Image     string `json:"image,omitempty"`
	ImageRepo string `json:"imageRepo,omitempty"`
}

// UpdateStrategy says what kbld does with a matched value. Set one field.
type UpdateStrategy struct {
	EntireValue *Empty `json:"entireValue,omitempty"`
	None        *Empty `json:"none,omitempty"`
}

// Empty marks a strategy selected by presence only.
type Empty struct{}

// Override replaces a found image reference before resolution.
type Override struct {
	Image       string `json:"image"`
	NewImage    string `json:"newImage"`
	Preresolved bool   `json:"preresolved,omitempty"`
}

// Source describes how to build an image from a local path.
type Source struct {
	Image  string         `json:"image"`
	Path   string         `json:"path"`
	Docker *DockerBuilder `json:"docker,omitempty"`
	Ko     *KoBuilder     `json:"ko,omitempty"`
}

// DockerBuilder builds with the Docker CLI. Set Build or Buildx.
type DockerBuilder struct {
	Build  *DockerBuildOptions `json:"build,omitempty"`
	Buildx *DockerBuildOptions `json:"buildx,omitempty"`
}

// DockerBuildOptions are shared by docker build and docker buildx.
type DockerBuildOptions struct {
	Target     string   `json:"target,omitempty"`
	Pull       *bool    `json:"pull,omitempty"`
	NoCache    *bool    `json:"noCache,omitempty"`
	File       string   `json:"file,omitempty"`
	RawOptions []string `json:"rawOptions,omitempty"`
}

// KoBuilder builds Go images with ko.
type KoBuilder struct {
	Build *KoBuildOptions `json:"build,omitempty"`
}

// KoBuildOptions configures ko.
type KoBuildOptions struct {
	RawOptions []string `json:"rawOptions,omitempty"`
}

// Destination describes where a built image is pushed.
type Destination struct {
	Image    string   `json:"image"`
	NewImage string   `json:"newImage"`
	Tags     []string `json:"tags,omitempty"`
}

// DefaultSearchRule is the rule kbld applies when none is configured.
func DefaultSearchRule() SearchRule {
	return SearchRule{
		KeyMatcher:     &KeyMatcher{Name: "image"},
		UpdateStrategy: &UpdateStrategy{EntireValue: &Empty{}},
	}
}

// Object renders p as a kbld Config API object.
func (p ConfigProps) Object() (*unstructured.Unstructured, error) {
	body, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&p)
	if err != nil {
		return nil, fmt.Errorf("failed to convert kbld config: %w", err)
	}

	u := &unstructured.Unstructured{Object: body}
	u.SetAPIVersion(APIVersion)
	u.SetKind(Kind)
	return u, nil
}
