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
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/runtime"
)

// Render encodes objs as a multi-document YAML stream, each document
// preceded by "---".
func Render(objs []runtime.Object) ([]byte, error) {
	var buf bytes.Buffer
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		m, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj.DeepCopyObject())
		if err != nil {
			return nil, fmt.Errorf("to unstructured: %w", err)
		}
		clean(m)

		var doc bytes.Buffer
		enc := yaml.NewEncoder(&doc)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, fmt.Errorf("encode %s: %w", obj.GetObjectKind().GroupVersionKind().Kind, err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}

		b := doc.Bytes()
		buf.WriteString("---\n")
		buf.Write(b)
		if len(b) == 0 || b[len(b)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

// clean drops fields the API server owns or that carry no value. Empty
// maps are kept: an empty selfSigned issuer or entireValue strategy is
// meaningful.
func clean(m map[string]any) {
	prune(m)
	delete(m, "status")
	if meta, ok := m["metadata"].(map[string]any); ok {
		delete(meta, "creationTimestamp")
		if len(meta) == 0 {
			delete(m, "metadata")
		}
	}
}

// prune removes nil values in place.
func prune(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			if cv := prune(val); cv == nil {
				delete(x, k)
			} else {
				x[k] = cv
			}
		}
		return x
	case []any:
		for i, it := range x {
			x[i] = prune(it)
		}
		return x
	default:
		return x
	}
}
