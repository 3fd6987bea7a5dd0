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

package construct

import (
	"maps"

	cmv1 "github.com/cert-manager/cert-manager/pkg/apis/certmanager/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"
	gatewayv1beta1 "sigs.k8s.io/gateway-api/apis/v1beta1"

	"github.com/homelab/kubesynth/pkg/errors"
)

// Object is a Kubernetes API object that can be added to a chart.
type Object interface {
	runtime.Object
	metav1.Object
}

// Scheme knows every typed object kubesynth renders. Unstructured objects
// carry their own kind and do not need to be registered.
var Scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(Scheme))
	utilruntime.Must(gatewayv1.AddToScheme(Scheme))
	utilruntime.Must(gatewayv1beta1.AddToScheme(Scheme))
	utilruntime.Must(cmv1.AddToScheme(Scheme))
}

// clusterScoped lists the kinds that never receive a chart namespace.
var clusterScoped = map[schema.GroupKind]bool{
	{Group: "", Kind: "Namespace"}:                                       true,
	{Group: "", Kind: "PersistentVolume"}:                                true,
	{Group: "rbac.authorization.k8s.io", Kind: "ClusterRole"}:            true,
	{Group: "rbac.authorization.k8s.io", Kind: "ClusterRoleBinding"}:     true,
	{Group: "storage.k8s.io", Kind: "StorageClass"}:                      true,
	{Group: "apiextensions.k8s.io", Kind: "CustomResourceDefinition"}:    true,
	{Group: gatewayv1.GroupName, Kind: "GatewayClass"}:                   true,
	{Group: cmv1.SchemeGroupVersion.Group, Kind: cmv1.ClusterIssuerKind}: true,
	{Group: "kbld.k14s.io", Kind: "Config"}:                              true,
}

// IsNamespaced reports whether objects of kind gk live in a namespace.
func IsNamespaced(gk schema.GroupKind) bool {
	return !clusterScoped[gk]
}

// AddObject attaches obj to the tree as child id of scope and registers it
// with the nearest chart. Where obj leaves them empty, the chart fills in
// apiVersion and kind, a generated name and its namespace. Chart labels are
// merged under the object's own labels.
func AddObject(scope Scope, id string, obj Object) error {
	chart, ok := ChartOf(scope)
	if !ok {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"api objects must be defined within a chart",
			map[string]any{"id": id, "scope": scope.Node().String()})
	}

	gvk, err := KindOf(obj)
	if err != nil {
		return err
	}

	n, err := New(scope, id)
	if err != nil {
		return err
	}
	n.owner = objectScope{node: n}

	obj.GetObjectKind().SetGroupVersionKind(gvk)
	if obj.GetName() == "" {
		obj.SetName(objectName(n, chart))
	}
	if obj.GetNamespace() == "" && chart.props.Namespace != "" && IsNamespaced(gvk.GroupKind()) {
		obj.SetNamespace(chart.props.Namespace)
	}
	if labels := mergeLabels(chart.props.Labels, obj.GetLabels()); len(labels) > 0 {
		obj.SetLabels(labels)
	}

	chart.objects = append(chart.objects, obj)
	return nil
}

// KindOf resolves the group, version and kind of obj.
func KindOf(obj runtime.Object) (schema.GroupVersionKind, error) {
	if gvk := obj.GetObjectKind().GroupVersionKind(); gvk.Kind != "" {
		return gvk, nil
	}
	gvks, _, err := Scheme.ObjectKinds(obj)
	if err != nil {
		return schema.GroupVersionKind{}, errors.Wrap(errors.ErrCodeInvalidRequest, "unknown object kind", err)
	}
	return gvks[0], nil
}

type objectScope struct{ node *Node }

func (o objectScope) Node() *Node { return o.node }

func mergeLabels(inherited, own map[string]string) map[string]string {
	out := maps.Clone(inherited)
	if out == nil {
		out = make(map[string]string, len(own))
	}
	maps.Copy(out, own)
	return out
}

// Ref is the identity of an API object used in cross references.
type Ref struct {
	Name      string
	Kind      string
	APIGroup  string
	Namespace string
}

// RefOf returns the identity of an object already added to a chart.
func RefOf(obj Object) Ref {
	gvk := obj.GetObjectKind().GroupVersionKind()
	return Ref{
		Name:      obj.GetName(),
		Kind:      gvk.Kind,
		APIGroup:  gvk.Group,
		Namespace: obj.GetNamespace(),
	}
}
