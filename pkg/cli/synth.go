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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/homelab/kubesynth/pkg/defaults"
	"github.com/homelab/kubesynth/pkg/header"
	"github.com/homelab/kubesynth/pkg/oci"
	"github.com/homelab/kubesynth/pkg/serializer"
	"github.com/homelab/kubesynth/pkg/synth"
)

const defaultPushTag = "latest"

// SynthResult is the output of the synth command.
type SynthResult struct {
	header.Header `json:",inline" yaml:",inline"`
	synth.Result  `json:",inline" yaml:",inline"`
}

func synthCmd() *cli.Command {
	return &cli.Command{
		Name:                  "synth",
		EnableShellCompletion: true,
		Usage:                 "Render the environment into Kubernetes manifests",
		Description: `Load the config for an environment, build the construct tree and write
one YAML file per chart to the output directory, together with a
checksums.txt file. The output directory is replaced on every run.

# Examples

Render the local environment into ./dist:
  kubesynth synth --env local

Render an explicit config file into a custom directory:
  kubesynth synth --config ./config.prod.yaml --output ./out/prod

Render and push the output as an OCI artifact:
  kubesynth synth --env prod --push oci://ghcr.io/homelab/manifests:v1

Write synth metrics for the node exporter textfile collector:
  kubesynth synth --env prod --metrics-file /var/lib/node_exporter/kubesynth.prom`,
		Flags: append(stackFlags(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   defaults.OutputDir,
				Usage:   "Directory the manifests are written to",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Maximum number of charts rendered in parallel (0 means unlimited)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.SynthTimeout,
				Usage: "Maximum time allowed to render and write the manifests",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write synth metrics in Prometheus text format to this path",
			},
			&cli.StringFlag{
				Name: "push",
				Usage: fmt.Sprintf("Push the output to an OCI registry (e.g. %sghcr.io/org/repo:tag, tag defaults to %q)",
					oci.URIScheme, defaultPushTag),
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the OCI registry",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for the OCI registry",
			},
			&cli.StringFlag{
				Name:  "reproducible-timestamp",
				Usage: "Fixed RFC 3339 created timestamp for the pushed artifact",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			var ref *oci.Reference
			if target := cmd.String("push"); target != "" {
				if ref, err = oci.ParseReference(target); err != nil {
					return err
				}
				if ref.Tag == "" {
					ref = ref.WithTag(defaultPushTag)
				}
			}

			root, env, err := buildStack(cmd)
			if err != nil {
				return err
			}

			synthCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			app := synth.NewApp(root,
				synth.WithOutputDir(cmd.String("output")),
				synth.WithConcurrency(cmd.Int("concurrency")),
			)
			res, err := app.Synth(synthCtx)
			if err != nil {
				return fmt.Errorf("synth failed: %w", err)
			}

			if ref != nil {
				if err := push(ctx, cmd, res, ref); err != nil {
					return err
				}
			}

			if path := cmd.String("metrics-file"); path != "" {
				if err := synth.WriteMetrics(path); err != nil {
					return err
				}
			}

			out := SynthResult{Result: *res}
			out.Init(header.KindSynthResult, version, header.WithMetadata("environment", env.Name))
			if err := writeSummary(ctx, outFormat, cmd.String("summary"), out); err != nil {
				return err
			}

			slog.Info(res.Summary(), "environment", env.Name, "output", res.OutputDir)
			return nil
		},
	}
}

func push(ctx context.Context, cmd *cli.Command, res *synth.Result, ref *oci.Reference) error {
	tmp, err := os.MkdirTemp("", "kubesynth-oci-*")
	if err != nil {
		return fmt.Errorf("failed to create OCI staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			slog.Warn("failed to remove OCI staging directory", "path", tmp, "error", err)
		}
	}()

	pushCtx, cancel := context.WithTimeout(ctx, defaults.PushTimeout)
	defer cancel()

	pushed, err := oci.PackageAndPush(pushCtx, oci.OutputConfig{
		SourceDir:             res.OutputDir,
		OutputDir:             tmp,
		Reference:             ref,
		Version:               version,
		PlainHTTP:             cmd.Bool("plain-http"),
		InsecureTLS:           cmd.Bool("insecure-tls"),
		ReproducibleTimestamp: cmd.String("reproducible-timestamp"),
	})
	if err != nil {
		return err
	}

	res.Reference = oci.URIScheme + pushed.Reference
	res.Digest = pushed.Digest
	return nil
}

func writeSummary(ctx context.Context, format serializer.Format, path string, v any) error {
	w := serializer.NewFileWriterOrStdout(format, path)
	defer func() {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	if err := w.Serialize(ctx, v); err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}
	return nil
}
