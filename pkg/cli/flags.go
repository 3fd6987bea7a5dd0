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
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/defaults"
	"github.com/homelab/kubesynth/pkg/serializer"
	"github.com/homelab/kubesynth/pkg/stack"
)

// stackFlags returns the flags shared by commands that build the stack.
// Flags keep parse state, so every command gets its own instances.
func stackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage: fmt.Sprintf("Environment name used to find config.<env>.yaml (tries %s when empty)",
				strings.Join(config.CommonEnvironmentNames, ", ")),
			Sources: cli.EnvVars("KUBESYNTH_ENV"),
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the config file. Overrides discovery by environment name",
		},
		&cli.StringFlag{
			Name:  "config-dir",
			Value: ".",
			Usage: "Directory searched for config.<env>.{yaml,yml,json}",
		},
		&cli.BoolFlag{
			Name:  "local",
			Usage: "Target the local development cluster (implied by --env local)",
		},
		&cli.StringFlag{
			Name:  "default-namespace",
			Value: defaults.Namespace,
			Usage: "Namespace used by app charts that do not name one",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"t"},
			Value:   string(serializer.FormatYAML),
			Usage:   fmt.Sprintf("Summary format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		},
		&cli.StringFlag{
			Name:  "summary",
			Usage: "Path of the summary file (default: stdout)",
		},
	}
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// loadConfig reads the config named by --config or discovered from --env.
func loadConfig(cmd *cli.Command) (*config.Config, config.Environment, error) {
	env := cmd.String("env")
	path := cmd.String("config")
	if path == "" {
		found, name, err := config.Find(cmd.String("config-dir"), env)
		if err != nil {
			return nil, config.Environment{}, err
		}
		path, env = found, name
	}
	if env == "" {
		env = "local"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, config.Environment{}, err
	}

	e := config.Environment{Name: env, Local: cmd.Bool("local") || env == "local"}
	slog.Info("config loaded", "path", path, "environment", e.Name, "local", e.Local)
	return cfg, e, nil
}

func buildStack(cmd *cli.Command) (*stack.Root, config.Environment, error) {
	cfg, env, err := loadConfig(cmd)
	if err != nil {
		return nil, env, err
	}
	root, err := stack.New(stack.Props{
		Config:           cfg,
		Environment:      env,
		DefaultNamespace: cmd.String("default-namespace"),
	})
	if err != nil {
		return nil, env, fmt.Errorf("failed to build stack: %w", err)
	}
	return root, env, nil
}
