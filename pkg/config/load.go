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

package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/homelab/kubesynth/pkg/errors"
)

// CommonEnvironmentNames are tried in order when no environment is named.
var CommonEnvironmentNames = []string{"local", "prod", "production", "stg", "staging", "dev", "development"}

var fileExtensions = []string{".yaml", ".yml", ".json"}

// FileName returns the config file base name for env without an extension.
func FileName(env string) string {
	return "config." + env
}

// Find locates the config file for env in dir. When env is empty the
// common environment names are tried in order. It returns the file path and
// the environment name the file belongs to.
func Find(dir, env string) (string, string, error) {
	if env != "" {
		path, err := findEnv(dir, env)
		return path, env, err
	}

	for _, name := range CommonEnvironmentNames {
		path, err := findEnv(dir, name)
		if err == nil {
			return path, name, nil
		}
		if !errors.IsCode(err, errors.ErrCodeNotFound) {
			return "", "", err
		}
	}

	return "", "", errors.NewWithContext(errors.ErrCodeNotFound,
		fmt.Sprintf("no available configs from common environment names (%s)", strings.Join(CommonEnvironmentNames, ", ")),
		map[string]any{"dir": dir})
}

func findEnv(dir, env string) (string, error) {
	for _, ext := range fileExtensions {
		path := filepath.Join(dir, FileName(env)+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeInternal, "failed to stat config file", err)
		}
	}
	return "", errors.NewWithContext(errors.ErrCodeNotFound,
		fmt.Sprintf("could not find configuration file for environment %q", env),
		map[string]any{"dir": dir, "environment": env})
}

// Load reads, defaults and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to read config file", err,
			map[string]any{"path": path})
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid config file", err,
			map[string]any{"path": path})
	}

	slog.Debug("config loaded", "path", path, "domains", cfg.DomainNames())
	return cfg, nil
}

// Parse decodes, defaults and validates a YAML or JSON config document.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
