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

// Package synth renders a construct tree into Kubernetes manifests.
//
// Every chart with at least one object becomes one multi-document YAML file
// in the output directory. Files are prefixed with the chart's position in
// the tree so that applying them in lexical order matches creation order:
//
//	0000-namespaces.k8s.yaml
//	0001-dns-overrides.k8s.yaml
//	...
//
// Objects are converted to plain maps before encoding. Null fields, status
// and the zero creationTimestamp are dropped so the output only holds what
// the charts set.
//
// Alongside the manifests, a checksums.txt file lists the SHA256 of every
// file in sha256sum format:
//
//	sha256sum -c checksums.txt
//
// # Usage
//
//	root, err := stack.New(stack.Props{Config: cfg, Environment: env})
//	if err != nil {
//	    return err
//	}
//	res, err := synth.NewApp(root, synth.WithOutputDir("dist")).Synth(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Summary())
//
// Synth metrics are recorded in the default Prometheus registry and can be
// written to a node-exporter textfile with WriteMetrics.
package synth
