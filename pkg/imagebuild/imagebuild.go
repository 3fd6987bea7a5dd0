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

// Package imagebuild collects image build requests from anywhere in the
// construct tree into a single kbld Config.
//
// Constructs call Add while the tree is built. The image builder chart is
// created last; it reads every request once, emits the kbld Config and
// seals the registry so that late requests fail instead of going missing.
package imagebuild

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/distribution/reference"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
	"github.com/homelab/kubesynth/pkg/kbld"
	"github.com/homelab/kubesynth/pkg/scopedctx"
)

var registryContext = scopedctx.New[*Registry]("ImageBuilder",
	scopedctx.WithErrorOnMissing("image builder has not been setup for this construct tree"))

// BuildOptions describes one image to build. Nil NoCache and Pull fall back
// to the images section of the config.
type BuildOptions struct {
	Name       string
	Context    string
	Dockerfile string
	Target     string
	Args       []string
	NoCache    *bool
	Pull       *bool
}

// Build is one accumulated build request.
type Build struct {
	Source      kbld.Source
	Destination kbld.Destination
}

// Image is the reference to use in manifests for a built image. kbld
// replaces it with the pushed digest reference.
type Image struct {
	Name string
}

// Registry accumulates build requests.
type Registry struct {
	builds []Build
	sealed bool
}

// Chart owns the kbld Config.
type Chart struct {
	*construct.Chart
	config *kbld.ConfigProps
}

// Setup installs an empty registry at scope.
func Setup(scope construct.Scope) (*Registry, error) {
	if _, ok := registryContext.TryGet(scope); ok {
		return nil, errors.NewWithContext(errors.ErrCodeAlreadySetup,
			"image builder has already been setup for this construct tree",
			map[string]any{"scope": scope.Node().String()})
	}
	r := &Registry{}
	registryContext.Set(scope, r)
	return r, nil
}

// FromScope returns the registry visible from scope.
func FromScope(scope construct.Scope) (*Registry, error) {
	return registryContext.Get(scope)
}

// Add records a build request on behalf of scope, resolving defaults
// against the config visible from scope.
func Add(scope construct.Scope, opts BuildOptions) (Image, error) {
	r, err := FromScope(scope)
	if err != nil {
		return Image{}, err
	}
	cfg, err := config.FromScope(scope)
	if err != nil {
		return Image{}, err
	}
	return r.Add(cfg.Images, opts)
}

// Add records a build request. Every call appends one build; requests are
// not deduplicated by name.
func (r *Registry) Add(images config.Images, opts BuildOptions) (Image, error) {
	if r.sealed {
		return Image{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"image builds were already consumed by the image builder chart",
			map[string]any{"image": opts.Name})
	}

	dest := strings.TrimSuffix(images.Destination, "/")
	newImage := dest + "/" + opts.Name
	if _, err := reference.ParseNormalizedNamed(newImage); err != nil {
		return Image{}, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid image destination %q", newImage), err,
			map[string]any{"image": opts.Name})
	}

	noCache := images.NoCache
	if opts.NoCache != nil {
		noCache = *opts.NoCache
	}
	pull := images.Pull
	if opts.Pull != nil {
		pull = *opts.Pull
	}

	r.builds = append(r.builds, Build{
		Source: kbld.Source{
			Image: opts.Name,
			Path:  opts.Context,
			Docker: &kbld.DockerBuilder{Buildx: &kbld.DockerBuildOptions{
				File:       opts.Dockerfile,
				Target:     opts.Target,
				RawOptions: opts.Args,
				NoCache:    &noCache,
				Pull:       &pull,
			}},
		},
		Destination: kbld.Destination{
			Image:    opts.Name,
			NewImage: newImage,
		},
	})

	slog.Debug("image build registered", "image", opts.Name, "destination", newImage)
	return Image{Name: opts.Name}, nil
}

// Builds returns the accumulated requests in the order they were added.
func (r *Registry) Builds() []Build {
	out := make([]Build, len(r.builds))
	copy(out, r.builds)
	return out
}

// Sealed reports whether the builds have been consumed.
func (r *Registry) Sealed() bool { return r.sealed }

// NewChart creates the image builder chart. It consumes every build
// accumulated in the registry visible from scope, appended after those in
// extra, and seals the registry.
func NewChart(scope construct.Scope, id string, props construct.ChartProps, extra kbld.ConfigProps) (*Chart, error) {
	r, err := FromScope(scope)
	if err != nil {
		return nil, err
	}
	if r.sealed {
		return nil, errors.New(errors.ErrCodeAlreadySetup,
			"image builds were already consumed by another image builder chart")
	}

	c, err := construct.NewChart(scope, id, props)
	if err != nil {
		return nil, err
	}

	cfg := extra
	cfg.Sources = append([]kbld.Source(nil), extra.Sources...)
	cfg.Destinations = append([]kbld.Destination(nil), extra.Destinations...)
	for _, b := range r.builds {
		cfg.Sources = append(cfg.Sources, b.Source)
		cfg.Destinations = append(cfg.Destinations, b.Destination)
	}

	obj, err := cfg.Object()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to render kbld config", err)
	}
	if err := construct.AddObject(c, "default", obj); err != nil {
		return nil, err
	}

	r.sealed = true
	slog.Debug("image builder chart created", "images", len(r.builds))
	return &Chart{Chart: c, config: &cfg}, nil
}

// Config returns the kbld config the chart rendered.
func (c *Chart) Config() kbld.ConfigProps { return *c.config }
