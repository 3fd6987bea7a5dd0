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

package apps

import (
	"github.com/homelab/kubesynth/pkg/config"
	"github.com/homelab/kubesynth/pkg/construct"
	"github.com/homelab/kubesynth/pkg/postgres"
)

// DatabaseChart holds one configured PostgreSQL cluster.
type DatabaseChart struct {
	*construct.Chart
	Cluster *postgres.Cluster
}

// NewDatabaseChart creates the chart for db. The database namespace wins
// over props.Namespace; when both are empty the default namespace is used.
func NewDatabaseChart(scope construct.Scope, id string, props construct.ChartProps, db config.Database) (*DatabaseChart, error) {
	if db.Namespace != "" {
		props.Namespace = db.Namespace
	}
	c, err := newNamespacedChart(scope, id, props)
	if err != nil {
		return nil, err
	}

	cluster, err := postgres.NewCluster(c, "cluster", postgres.ClusterProps{
		Name:             db.Name,
		Instances:        db.Instances,
		Storage:          db.Storage,
		AppPassword:      db.AppPassword,
		PostgresPassword: db.PostgresPassword,
	})
	if err != nil {
		return nil, err
	}
	return &DatabaseChart{Chart: c, Cluster: cluster}, nil
}
