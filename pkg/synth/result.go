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
	"fmt"
	"time"
)

// File is one rendered chart.
type File struct {
	// Chart is the path of the chart in the construct tree.
	Chart string `json:"chart" yaml:"chart"`

	// Path is the file path relative to the output directory.
	Path string `json:"path" yaml:"path"`

	// Objects is the number of API objects in the file.
	Objects int `json:"objects" yaml:"objects"`

	// Size is the file size in bytes.
	Size int64 `json:"size_bytes" yaml:"size_bytes"`

	// Checksum is the hex SHA256 of the file.
	Checksum string `json:"checksum" yaml:"checksum"`
}

// Result summarizes a synth run.
type Result struct {
	// OutputDir is the directory the files were written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Files lists rendered charts in tree order.
	Files []File `json:"files" yaml:"files"`

	// ChecksumFile is the path of checksums.txt.
	ChecksumFile string `json:"checksum_file" yaml:"checksum_file"`

	// TotalObjects is the number of objects across all files.
	TotalObjects int `json:"total_objects" yaml:"total_objects"`

	// TotalSize is the total size in bytes of all files.
	TotalSize int64 `json:"total_size_bytes" yaml:"total_size_bytes"`

	// Duration is the time taken to render and write.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Reference is set when the output was pushed to a registry.
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`

	// Digest is the pushed manifest digest.
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Generated %d files with %d objects (%s) in %v.",
		len(r.Files),
		r.TotalObjects,
		formatBytes(r.TotalSize),
		r.Duration.Round(time.Millisecond),
	)
}

// formatBytes formats bytes into human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
