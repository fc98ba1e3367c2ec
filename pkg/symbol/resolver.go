// Package symbol maps raw interactor identifiers to canonical gene
// symbols. Resolution is best-effort enrichment: a miss never blocks
// network construction, the raw id stands in for the symbol instead.
package symbol

import (
	"context"
	"errors"

	"github.com/netpublish/sifloader/pkg/logging"
	"github.com/netpublish/sifloader/pkg/metrics"
)

// ErrNoMatch is returned by a Service when a query produces no usable hit.
var ErrNoMatch = errors.New("no matching gene symbol")

// Service is the external resolution collaborator queried for ids absent
// from the preloaded map. One round trip per miss.
type Service interface {
	ResolveSymbol(ctx context.Context, rawID string) (string, error)
}

// Resolver resolves raw interactor ids to canonical symbols. Lookup order:
// in-memory cache, preloaded map, external service. Service hits are
// written through into the cache, never into the map.
//
// Distinct ids may be resolved concurrently; the cache's idempotent
// overwrite makes same-id races harmless.
type Resolver struct {
	table   map[string]string // read-only after construction
	cache   Cache
	service Service
	log     logging.Logger
	metrics *metrics.Registry
}

// NewResolver creates a resolver. table and service may each be nil (no
// preloaded map, no external collaborator); cache must not be.
func NewResolver(table map[string]string, cache Cache, service Service, log logging.Logger, reg *metrics.Registry) *Resolver {
	if table == nil {
		table = make(map[string]string)
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.Default()
	}
	return &Resolver{
		table:   table,
		cache:   cache,
		service: service,
		log:     log.With(logging.Component("symbol-resolver")),
		metrics: reg,
	}
}

// Resolve returns the canonical symbol for rawID. When no source can
// produce one, rawID itself is returned and resolved is false so the
// caller can record the miss.
func (r *Resolver) Resolve(ctx context.Context, rawID string) (symbol string, resolved bool) {
	if sym, ok := r.cache.Get(rawID); ok {
		r.metrics.ResolverLookups.WithLabelValues("cache").Inc()
		if sym == "" {
			// Negative entry: the service definitively had no match.
			r.metrics.ResolutionMisses.Inc()
			return rawID, false
		}
		return sym, true
	}

	if sym, ok := r.table[rawID]; ok && usable(sym) {
		r.metrics.ResolverLookups.WithLabelValues("map").Inc()
		return sym, true
	}

	if r.service == nil {
		r.metrics.ResolutionMisses.Inc()
		return rawID, false
	}

	sym, err := r.service.ResolveSymbol(ctx, rawID)
	if err != nil || !usable(sym) {
		if err == nil || errors.Is(err, ErrNoMatch) {
			// Definitive no-match: cache it so the service is asked once per id.
			r.cache.Put(rawID, "")
		} else {
			r.log.Debug("resolver service lookup failed", logging.RawID(rawID), logging.Error(err))
		}
		r.metrics.ResolutionMisses.Inc()
		return rawID, false
	}

	r.metrics.ResolverLookups.WithLabelValues("service").Inc()
	r.cache.Put(rawID, sym)
	r.log.Debug("resolved symbol via service", logging.RawID(rawID), logging.Symbol(sym))
	return sym, true
}

// usable filters the placeholder values the curated mapping tables carry
// for ids with no known symbol.
func usable(sym string) bool {
	return sym != "" && sym != "-"
}
