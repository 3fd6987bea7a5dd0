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

// Package scopedctx provides typed values that are visible from a scope and
// everything below it in the construct tree.
//
// Each Context gets a process-unique storage key at creation time, so two
// contexts created with the same human-readable key never see each other's
// values.
package scopedctx

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/errors"
)

// Context is a typed value stored in the construct tree.
type Context[T any] struct {
	key       string
	uniqueKey string
	missing   string
}

// Option configures a Context.
type Option func(*options)

type options struct {
	missing string
}

// WithErrorOnMissing sets the message returned by Get when no value is set
// at or above the requesting scope.
func WithErrorOnMissing(message string) Option {
	return func(o *options) {
		o.missing = message
	}
}

// New creates a context with a human-readable key.
func New[T any](key string, opts ...Option) *Context[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Context[T]{
		key:       key,
		uniqueKey: key + ":" + uuid.NewString(),
		missing:   o.missing,
	}
}

// Key returns the human-readable key.
func (c *Context[T]) Key() string { return c.key }

// Set stores v at exactly scope, shadowing any value set further up.
func (c *Context[T]) Set(scope construct.Scope, v T) {
	scope.Node().SetContext(c.uniqueKey, v)
}

// Get returns the value set at scope or its nearest ancestor.
func (c *Context[T]) Get(scope construct.Scope) (T, error) {
	v, ok := c.TryGet(scope)
	if !ok {
		msg := c.missing
		if msg == "" {
			msg = fmt.Sprintf("context %q not found in scope %q", c.key, scope.Node().String())
		}
		return v, errors.NewWithContext(errors.ErrCodeMissingContext, msg, map[string]any{
			"key":   c.key,
			"scope": scope.Node().String(),
		})
	}
	return v, nil
}

// TryGet is like Get but reports absence with false instead of an error.
func (c *Context[T]) TryGet(scope construct.Scope) (T, bool) {
	var zero T
	raw, ok := scope.Node().TryGetContext(c.uniqueKey)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, true
	}
	return v, true
}
