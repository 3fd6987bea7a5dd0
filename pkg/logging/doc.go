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

// Package logging configures the process-wide slog logger.
//
// Records are written to stderr as JSON and always carry the "module" and
// "version" attributes of the binary. At debug level the source location of
// each call is added as well.
//
// The level comes from, in order: the explicit level argument (the CLI's
// --log-level flag), then the LOG_LEVEL environment variable, then info.
// Level names are case-insensitive: debug, info, warn (or warning), error.
// Anything else means info.
//
// Install the default logger once at startup and log through slog:
//
//	logging.SetDefaultStructuredLoggerWithLevel("kubesynth", version, level)
//	slog.Info("chart written", "chart", "certificate-store", "objects", 4)
package logging
