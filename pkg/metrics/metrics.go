// Package metrics exposes Prometheus counters for the load pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the loader.
type Registry struct {
	// Parse / build
	RecordsParsed  prometheus.Counter
	NodesBuilt     prometheus.Counter
	EdgesBuilt     prometheus.Counter
	MergeConflicts prometheus.Counter

	// Symbol resolution
	ResolverLookups  *prometheus.CounterVec // source: cache, map, service
	ResolutionMisses prometheus.Counter

	// Publishing
	NetworksCreated prometheus.Counter
	NetworksUpdated prometheus.Counter
	PublishRetries  prometheus.Counter
	PublishFailures prometheus.Counter

	// Run outcomes
	FilesProcessed *prometheus.CounterVec // status: ok, failed

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all loader metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.RecordsParsed = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_records_parsed_total",
		Help: "Total number of SIF records parsed",
	})
	r.NodesBuilt = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_nodes_built_total",
		Help: "Total number of nodes created across all networks",
	})
	r.EdgesBuilt = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_edges_built_total",
		Help: "Total number of edges created across all networks",
	})
	r.MergeConflicts = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_merge_conflicts_total",
		Help: "Total number of node attribute merge conflicts (first value kept)",
	})

	r.ResolverLookups = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "sifloader_resolver_lookups_total",
		Help: "Successful symbol lookups by source",
	}, []string{"source"})
	r.ResolutionMisses = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_resolution_misses_total",
		Help: "Symbol resolutions that fell back to the raw identifier",
	})

	r.NetworksCreated = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_networks_created_total",
		Help: "Remote networks created",
	})
	r.NetworksUpdated = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_networks_updated_total",
		Help: "Remote networks updated in place",
	})
	r.PublishRetries = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_publish_retries_total",
		Help: "Publish attempts retried after a transient failure",
	})
	r.PublishFailures = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "sifloader_publish_failures_total",
		Help: "Networks reported as not published after exhausting retries",
	})

	r.FilesProcessed = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "sifloader_files_processed_total",
		Help: "Input files processed by outcome",
	}, []string{"status"})

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry for
// exposition or push.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
