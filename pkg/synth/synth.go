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

package synth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/defaults"
	"github.com/homelab/kubesynth/pkg/errors"
)

const fileSuffix = ".k8s.yaml"

// Option configures an App.
type Option func(*App)

// WithOutputDir sets the directory files are written to.
func WithOutputDir(dir string) Option {
	return func(a *App) {
		a.outputDir = dir
	}
}

// WithConcurrency bounds the number of charts rendered at once.
// Values below one mean unbounded.
func WithConcurrency(n int) Option {
	return func(a *App) {
		a.concurrency = n
	}
}

// App renders the charts of a construct tree.
type App struct {
	root        construct.Scope
	outputDir   string
	concurrency int
}

// NewApp returns an App rendering every chart below root.
func NewApp(root construct.Scope, opts ...Option) *App {
	a := &App{
		root:      root,
		outputDir: defaults.OutputDir,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OutputDir returns the directory files are written to.
func (a *App) OutputDir() string { return a.outputDir }

// Synth replaces the output directory with one file per non-empty chart
// plus checksums.txt.
func (a *App) Synth(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := a.synth(ctx)
	synthDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		synthTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	synthTotal.WithLabelValues("success").Inc()
	res.Duration = time.Since(start)

	slog.Info("synth complete",
		"output_dir", res.OutputDir,
		"files", len(res.Files),
		"objects", res.TotalObjects,
		"duration", res.Duration)
	return res, nil
}

func (a *App) synth(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "synth cancelled", err)
	}
	if a.outputDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "output directory is required")
	}

	if err := os.RemoveAll(a.outputDir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to clean output directory", err)
	}
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create output directory", err)
	}

	charts := construct.Charts(a.root.Node())
	files := make([]*File, len(charts))

	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, c := range charts {
		if len(c.Objects()) == 0 {
			continue
		}
		g.Go(func() error {
			f, err := a.writeChart(gctx, i, c)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{OutputDir: a.outputDir}
	for _, f := range files {
		if f == nil {
			continue
		}
		res.Files = append(res.Files, *f)
		res.TotalObjects += f.Objects
		res.TotalSize += f.Size
	}

	path, err := writeChecksums(ctx, a.outputDir, res.Files)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write checksums", err)
	}
	res.ChecksumFile = path
	synthBytes.Set(float64(res.TotalSize))
	return res, nil
}

func (a *App) writeChart(ctx context.Context, index int, c *construct.Chart) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "synth cancelled", err)
	}

	objs := c.Objects()
	rtObjs := make([]runtime.Object, len(objs))
	for i, o := range objs {
		rtObjs[i] = o
	}
	data, err := Render(rtObjs)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to render chart", err,
			map[string]any{"chart": c.Node().Path()})
	}

	name := FileName(index, c)
	if err := os.WriteFile(filepath.Join(a.outputDir, name), data, 0o600); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to write chart", err,
			map[string]any{"chart": c.Node().Path(), "file": name})
	}

	synthObjects.WithLabelValues(c.Node().Path()).Set(float64(len(objs)))
	slog.Debug("chart written", "chart", c.Node().Path(), "file", name, "objects", len(objs))

	return &File{
		Chart:    c.Node().Path(),
		Path:     name,
		Objects:  len(objs),
		Size:     int64(len(data)),
		Checksum: checksum(data),
	}, nil
}

// FileName returns the file a chart is written to. index is the chart's
// position in the tree.
func FileName(index int, c *construct.Chart) string {
	stem := strings.ReplaceAll(c.Node().Path(), construct.PathSeparator, "-")
	return fmt.Sprintf("%04d-%s%s", index, stem, fileSuffix)
}
