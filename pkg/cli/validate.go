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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/header"
)

// ChartSummary describes one chart synth would render.
type ChartSummary struct {
	Path      string `json:"path" yaml:"path"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Objects   int    `json:"objects" yaml:"objects"`
}

// ValidationResult is the output of the validate command.
type ValidationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Environment  config.Environment `json:"environment" yaml:"environment"`
	Domains      []string           `json:"domains" yaml:"domains"`
	Charts       []ChartSummary     `json:"charts" yaml:"charts"`
	TotalObjects int                `json:"total_objects" yaml:"total_objects"`
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate an environment config without writing manifests",
		Description: `Load the config for an environment and build the full construct tree.
Config and wiring errors are reported exactly as synth would report them,
but nothing is written to disk. The charts and their object counts are
printed in the selected format.

# Examples

Validate the production config:
  kubesynth validate --env prod

Validate an explicit file and print a table:
  kubesynth validate -c ./config.staging.yaml -t table`,
		Flags: stackFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			root, env, err := buildStack(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.FromScope(root)
			if err != nil {
				return err
			}

			result := ValidationResult{Environment: env, Domains: cfg.DomainNames()}
			result.Init(header.KindValidationResult, version, header.WithMetadata("environment", env.Name))
			for _, c := range root.Charts() {
				objs := len(c.Objects())
				if objs == 0 {
					continue
				}
				result.Charts = append(result.Charts, ChartSummary{
					Path:      c.Node().Path(),
					Namespace: c.Namespace(),
					Objects:   objs,
				})
				result.TotalObjects += objs
			}

			if err := writeSummary(ctx, outFormat, cmd.String("summary"), result); err != nil {
				return err
			}

			slog.Info("config is valid",
				"environment", env.Name,
				"charts", len(result.Charts),
				"objects", result.TotalObjects)
			return nil
		},
	}
}
