// Copyright 2025 Poiesic Systems
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

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency buckets in milliseconds, from cache hits to cold semantic queries.
var latencyBuckets = []float64{
	5, 10, 25,
	50, 100, 250,
	500, 1000, 2500,
	5000, 10000, 30000,
}

// Metrics holds the server's prometheus collectors. Each server carries its
// own registry so two instances in one process never collide on
// collector names.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	resultCounts prometheus.Histogram
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

// NewMetrics registers the server's collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registerer := prometheus.WrapRegistererWith(nil, registry)

	return &Metrics{
		registry: registry,

		requests: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "icdmap_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"route", "method", "status"},
		),

		latency: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "icdmap_request_latency_ms",
				Help:    "Request latency in milliseconds",
				Buckets: latencyBuckets,
			},
			[]string{"route"},
		),

		resultCounts: promauto.With(registerer).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "icdmap_search_results",
				Help:    "Number of suggestions returned per search",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 25},
			},
		),

		cacheHits: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "icdmap_query_cache_hits_total",
				Help: "Searches served from the query cache",
			},
		),

		cacheMisses: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "icdmap_query_cache_misses_total",
				Help: "Searches that missed the query cache",
			},
		),
	}
}

// Registry exposes the private registry so the metrics endpoint can serve it.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
