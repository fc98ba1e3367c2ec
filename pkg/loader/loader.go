// Package loader coordinates a full load run: it discovers SIF files,
// drives each one through parse, build, merge, and publish, and collects
// per-file outcomes. One file failing never stops the others.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/netpublish/sifloader/pkg/loadplan"
	"github.com/netpublish/sifloader/pkg/logging"
	"github.com/netpublish/sifloader/pkg/metrics"
	"github.com/netpublish/sifloader/pkg/netattrs"
	"github.com/netpublish/sifloader/pkg/network"
	"github.com/netpublish/sifloader/pkg/publish"
	"github.com/netpublish/sifloader/pkg/sif"
	"github.com/netpublish/sifloader/pkg/style"
	"github.com/netpublish/sifloader/pkg/symbol"
)

// ErrNoInput is returned by Run when the input directory holds no SIF files.
var ErrNoInput = errors.New("no sif files to load")

// ReleaseVersionAttribute names the network attribute carrying the
// release version stamp.
const ReleaseVersionAttribute = "version"

// Loader owns the shared pipeline pieces and runs them over a set of files.
type Loader struct {
	cfg      *Config
	plan     *loadplan.LoadPlan
	builder  *network.Builder
	table    *netattrs.Table
	styleRaw json.RawMessage
	pub      *publish.Publisher
	log      logging.Logger
	metrics  *metrics.Registry
}

// New assembles a loader from configuration. The repository and resolver
// service are injected so runs can target an in-memory repository or skip
// the external resolver entirely (pass nil).
func New(cfg *Config, repo publish.Repository, service symbol.Service, log logging.Logger, reg *metrics.Registry) (*Loader, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.Default()
	}
	log = log.With(logging.Component("loader"))

	planData, err := os.ReadFile(cfg.LoadPlan)
	if err != nil {
		return nil, fmt.Errorf("read load plan: %w", err)
	}
	plan, err := loadplan.Compile(planData)
	if err != nil {
		return nil, err
	}

	table, err := symbol.LoadSymbolMap(log, cfg.GeneSymbolMaps...)
	if err != nil {
		return nil, err
	}
	resolver := symbol.NewResolver(table, symbol.NewMemoryCache(), service, log, reg)

	var attrs *netattrs.Table
	if cfg.NetworkAttributes != "" {
		attrs, err = netattrs.LoadTable(cfg.NetworkAttributes)
		if err != nil {
			return nil, err
		}
	}

	var styleRaw json.RawMessage
	if cfg.Style != "" {
		styleRaw, err = style.Load(cfg.Style)
		if err != nil {
			return nil, err
		}
	}

	return &Loader{
		cfg:      cfg,
		plan:     plan,
		builder:  network.NewBuilder(plan, resolver, log, reg),
		table:    attrs,
		styleRaw: styleRaw,
		pub: publish.NewPublisher(repo, cfg.Owner, log, reg,
			publish.WithRetry(cfg.MaxAttempts, cfg.Backoff)),
		log:     log,
		metrics: reg,
	}, nil
}

// Run processes every discovered file over the worker pool and returns
// the collected outcomes. The returned error covers run-level problems
// only; per-file failures live in the report.
func (l *Loader) Run(ctx context.Context) (*RunReport, error) {
	files, err := l.discover()
	if err != nil {
		return nil, err
	}
	l.log.Info("starting run",
		logging.Count(len(files)),
		logging.Int("workers", l.cfg.Workers))

	report := newRunReport()
	pool := newFilePool(l.cfg.Workers, l.log)
	for _, path := range files {
		path := path
		pool.submit(func() {
			res := l.processFile(ctx, path)
			report.add(res)

			status := "ok"
			if res.Err != nil {
				status = "failed"
				l.log.Error("file failed",
					logging.File(path), logging.Error(res.Err))
			} else {
				l.log.Info("file published",
					logging.File(path),
					logging.Network(res.NetworkName),
					logging.Int("nodes", res.Nodes),
					logging.Int("edges", res.Edges),
					logging.Latency(res.Duration))
			}
			l.metrics.FilesProcessed.WithLabelValues(status).Inc()
		})
	}
	pool.wait()

	return report, nil
}

func (l *Loader) discover() ([]string, error) {
	if l.cfg.SingleFile != "" {
		path := filepath.Join(l.cfg.SIFDir, l.cfg.SingleFile)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("single file: %w", err)
		}
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(l.cfg.SIFDir, "*.sif"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", l.cfg.SIFDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, l.cfg.SIFDir)
	}
	sort.Strings(files)
	return files, nil
}

// processFile runs the pipeline for one file. Every error is captured in
// the result rather than propagated.
func (l *Loader) processFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	res := FileResult{Path: path}
	defer func() { res.Duration = time.Since(start) }()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.FileTimeout)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("open: %w", err)
		return res
	}
	defer f.Close()

	var opts []sif.Option
	if l.cfg.HasHeader {
		opts = append(opts, sif.WithHeader())
	}
	parser := sif.NewParser(f, opts...)

	name := netattrs.Stem(path)
	doc, issues, err := l.builder.Build(ctx, name, parser)
	if err != nil {
		res.Err = err
		return res
	}
	res.Issues = issues

	network.SetDirectedFlags(doc)
	network.NormalizeParticipantTypes(doc)
	if l.cfg.AdjudicateRedundantEdges {
		network.NewRedundantEdgeAdjudicator(l.log).Adjudicate(doc, issues)
	}

	if l.table != nil {
		if err := netattrs.Attach(doc, name, l.table); err != nil {
			res.Err = err
			return res
		}
	}
	if l.cfg.ReleaseVersion != "" {
		doc.SetAttribute(ReleaseVersionAttribute, l.cfg.ReleaseVersion)
	}
	if len(l.styleRaw) > 0 {
		if err := style.Attach(doc, l.styleRaw); err != nil {
			res.Err = err
			return res
		}
	}

	res.NetworkName = doc.Name
	res.Nodes = len(doc.Nodes)
	res.Edges = len(doc.Edges)

	handle, err := l.pub.Publish(ctx, doc)
	if err != nil {
		res.Err = err
		return res
	}
	res.Handle = handle
	return res
}
