package publish

import (
	"context"
	"time"

	"github.com/netpublish/sifloader/pkg/logging"
	"github.com/netpublish/sifloader/pkg/metrics"
	"github.com/netpublish/sifloader/pkg/network"
)

const (
	// DefaultMaxAttempts bounds retries of each remote operation.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the initial delay between attempts; it doubles
	// per retry.
	DefaultBackoff = 2 * time.Second
)

// Publisher upserts network documents by name: create when absent, update
// in place when exactly one match exists. Concurrent runs against the same
// name are the operator's problem, not ours; the tool assumes a single
// writer.
type Publisher struct {
	repo        Repository
	owner       string
	maxAttempts int
	backoff     time.Duration
	log         logging.Logger
	metrics     *metrics.Registry
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRetry overrides the retry bounds.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(p *Publisher) {
		if maxAttempts > 0 {
			p.maxAttempts = maxAttempts
		}
		if backoff > 0 {
			p.backoff = backoff
		}
	}
}

// NewPublisher creates a publisher scoped to the given repository owner.
func NewPublisher(repo Repository, owner string, log logging.Logger, reg *metrics.Registry, opts ...Option) *Publisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.Default()
	}
	p := &Publisher{
		repo:        repo,
		owner:       owner,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		log:         log.With(logging.Component("publisher")),
		metrics:     reg,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish upserts doc by name. An ambiguous target (more than one remote
// network with the document's name) fails before any write. Transient
// failures are retried up to the configured bound; exhausting it yields a
// PublishError and the document is reported as not published.
func (p *Publisher) Publish(ctx context.Context, doc *network.Document) (Handle, error) {
	log := p.log.With(logging.Network(doc.Name))

	var matches []Handle
	err := p.withRetry(ctx, log, "find", func() error {
		var err error
		matches, err = p.repo.FindNetworksByName(ctx, doc.Name, p.owner)
		return err
	})
	if err != nil {
		p.metrics.PublishFailures.Inc()
		return Handle{}, &PublishError{Name: doc.Name, Attempts: p.maxAttempts, Cause: err}
	}

	if len(matches) > 1 {
		return Handle{}, &AmbiguousTargetError{Name: doc.Name, Count: len(matches)}
	}

	var handle Handle
	if len(matches) == 0 {
		err = p.withRetry(ctx, log, "create", func() error {
			var err error
			handle, err = p.repo.CreateNetwork(ctx, doc)
			return err
		})
		if err == nil {
			p.metrics.NetworksCreated.Inc()
			log.Info("created remote network", logging.String("id", handle.ID))
		}
	} else {
		err = p.withRetry(ctx, log, "update", func() error {
			var err error
			handle, err = p.repo.UpdateNetwork(ctx, matches[0], doc)
			return err
		})
		if err == nil {
			p.metrics.NetworksUpdated.Inc()
			log.Info("updated remote network", logging.String("id", handle.ID))
		}
	}
	if err != nil {
		p.metrics.PublishFailures.Inc()
		return Handle{}, &PublishError{Name: doc.Name, Attempts: p.maxAttempts, Cause: err}
	}
	return handle, nil
}

// withRetry runs op up to maxAttempts times, backing off between attempts.
// Only transient errors are retried.
func (p *Publisher) withRetry(ctx context.Context, log logging.Logger, opName string, op func() error) error {
	var lastErr error
	backoff := p.backoff
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == p.maxAttempts {
			break
		}
		p.metrics.PublishRetries.Inc()
		log.Warn("transient failure, retrying",
			logging.String("operation", opName),
			logging.Attempt(attempt),
			logging.Error(lastErr))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}
