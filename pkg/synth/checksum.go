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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/homelab/kubesynth/pkg/defaults"
)

// checksum returns the hex SHA256 of data.
func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeChecksums writes checksums.txt into dir for files, whose paths are
// relative to dir.
func writeChecksums(ctx context.Context, dir string, files []File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s  %s", f.Checksum, f.Path))
	}

	path := filepath.Join(dir, defaults.ChecksumFileName)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write checksums: %w", err)
	}

	slog.Debug("checksums generated",
		"file_count", len(lines),
		"path", path,
	)
	return path, nil
}

// VerifyChecksums re-reads every file listed in dir's checksums.txt and
// reports the first mismatch.
func VerifyChecksums(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, defaults.ChecksumFileName))
	if err != nil {
		return fmt.Errorf("failed to read checksums: %w", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		want, name, ok := strings.Cut(line, "  ")
		if !ok {
			return fmt.Errorf("malformed checksum line %q", line)
		}
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s for checksum: %w", name, err)
		}
		if got := checksum(b); got != want {
			return fmt.Errorf("checksum mismatch for %s: want %s, got %s", name, want, got)
		}
	}
	return nil
}
