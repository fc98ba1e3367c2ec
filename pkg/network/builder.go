package network

import (
	"context"
	"fmt"

	"github.com/netpublish/sifloader/pkg/loadplan"
	"github.com/netpublish/sifloader/pkg/logging"
	"github.com/netpublish/sifloader/pkg/metrics"
	"github.com/netpublish/sifloader/pkg/sif"
	"github.com/netpublish/sifloader/pkg/symbol"
)

// Builder assembles a Document from parsed records. Records are consumed
// strictly in file order: later records may merge attributes into nodes
// created by earlier ones, and the merge policy depends on encounter
// order. Attribute values are fully determined by the inputs; only
// node/edge enumeration order may vary.
type Builder struct {
	plan     *loadplan.LoadPlan
	resolver *symbol.Resolver
	log      logging.Logger
	metrics  *metrics.Registry
}

// NewBuilder creates a builder over a compiled plan and a resolver.
func NewBuilder(plan *loadplan.LoadPlan, resolver *symbol.Resolver, log logging.Logger, reg *metrics.Registry) *Builder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.Default()
	}
	return &Builder{
		plan:     plan,
		resolver: resolver,
		log:      log.With(logging.Component("builder")),
		metrics:  reg,
	}
}

// Build drains the parser and produces the network document plus its issue
// report. A malformed record or an uncoercible value aborts the whole
// file; partial documents are invalid.
func (b *Builder) Build(ctx context.Context, name string, p *sif.Parser) (*Document, *IssueReport, error) {
	doc := NewDocument(name)
	report := NewIssueReport(name)
	log := b.log.With(logging.Network(name))

	checkedColumns := false
	for p.Next() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rec := p.Record()
		b.metrics.RecordsParsed.Inc()

		if !checkedColumns {
			if err := b.plan.CheckColumns(p.Header(), len(rec.Extra)); err != nil {
				return nil, nil, err
			}
			checkedColumns = true
		}

		applied, err := b.plan.Apply(rec, p.Header())
		if err != nil {
			return nil, nil, err
		}

		src := b.getOrCreateNode(ctx, doc, rec.Source, report)
		tgt := b.getOrCreateNode(ctx, doc, rec.Target, report)
		b.mergeAttributes(src, applied.SourceNode, report, log)
		b.mergeAttributes(tgt, applied.TargetNode, report, log)

		doc.Edges = append(doc.Edges, &Edge{
			Source:      src.ID,
			Target:      tgt.ID,
			Interaction: rec.Interaction,
			Attributes:  applied.Edge,
		})
		b.metrics.EdgesBuilt.Inc()
	}
	if err := p.Err(); err != nil {
		return nil, nil, err
	}

	if report.Count() > 0 {
		log.Info("network built with issues", logging.Count(report.Count()))
	}
	return doc, report, nil
}

// getOrCreateNode resolves rawID and returns the node for its canonical
// identity, creating it on first reference. The first writer's base
// identity wins.
func (b *Builder) getOrCreateNode(ctx context.Context, doc *Document, rawID string, report *IssueReport) *Node {
	sym, resolved := b.resolver.Resolve(ctx, rawID)
	id := sym // canonical preferred; equals rawID when unresolved
	if node, ok := doc.Nodes[id]; ok {
		return node
	}

	if !resolved {
		report.Add(IssueResolutionMiss, rawID)
	}
	node := &Node{
		ID:         id,
		Name:       sym,
		Symbol:     sym,
		Represents: rawID,
		Attributes: make(map[string]loadplan.Value),
	}
	doc.Nodes[id] = node
	b.metrics.NodesBuilt.Inc()
	return node
}

// mergeAttributes folds newly derived attributes into a node. New
// non-empty values overwrite empty ones; conflicting non-empty values keep
// the first and record a conflict.
func (b *Builder) mergeAttributes(node *Node, attrs map[string]loadplan.Value, report *IssueReport, log logging.Logger) {
	for name, value := range attrs {
		existing, ok := node.Attributes[name]
		if !ok || existing.IsEmpty() {
			node.Attributes[name] = value
			continue
		}
		if value.IsEmpty() || existing.Equal(value) {
			continue
		}
		report.Add(IssueMergeConflict,
			fmt.Sprintf("node %s attribute %s: kept %q, dropped %q", node.ID, name, existing.String(), value.String()))
		b.metrics.MergeConflicts.Inc()
		log.Debug("node attribute conflict",
			logging.String("node", node.ID),
			logging.String("attribute", name),
			logging.String("kept", existing.String()),
			logging.String("dropped", value.String()))
	}
}
