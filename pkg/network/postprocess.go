package network

import (
	"github.com/netpublish/sifloader/pkg/loadplan"
	"github.com/netpublish/sifloader/pkg/logging"
)

// Interaction types that imply direction from source to target.
var directedInteractions = map[string]bool{
	"controls-state-change-of":      true,
	"controls-transport-of":         true,
	"controls-phosphorylation-of":   true,
	"controls-expression-of":        true,
	"catalysis-precedes":            true,
	"controls-production-of":        true,
	"controls-transport-of-chemical": true,
	"chemical-affects":              true,
	"used-to-produce":               true,
}

// participantTypes normalizes reference-level participant types to the
// display vocabulary.
var participantTypes = map[string]string{
	"ProteinReference":       "protein",
	"SmallMoleculeReference": "smallmolecule",
}

// SetDirectedFlags stamps every edge with a boolean "directed" attribute
// derived from its interaction type.
func SetDirectedFlags(doc *Document) {
	for _, e := range doc.Edges {
		if e.Attributes == nil {
			e.Attributes = make(map[string]loadplan.Value)
		}
		e.Attributes["directed"] = loadplan.BoolValue(directedInteractions[e.Interaction])
	}
}

// NormalizeParticipantTypes rewrites node "type" attributes from the
// reference vocabulary to the display one. Unknown types are left as-is.
func NormalizeParticipantTypes(doc *Document) {
	for _, n := range doc.Nodes {
		t, ok := n.Attributes["type"]
		if !ok || t.Type != loadplan.TypeString {
			continue
		}
		if mapped, known := participantTypes[t.Str]; known {
			n.Attributes["type"] = loadplan.StringValue(mapped)
		}
	}
}

// pairKey identifies an unordered node pair.
type pairKey struct {
	a, b string
}

func makePairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// RedundantEdgeAdjudicator drops low-information edges between node pairs
// that also carry a more specific interaction: a neighbor-of edge is
// redundant when any other edge exists for the pair, and a
// controls-state-change-of edge is redundant when an edge of any third
// interaction type exists. Nodes orphaned by the removals are dropped too.
//
// This runs as an optional pass after the build; the builder itself never
// deduplicates edges.
type RedundantEdgeAdjudicator struct {
	log logging.Logger
}

// NewRedundantEdgeAdjudicator creates the adjudication pass.
func NewRedundantEdgeAdjudicator(log logging.Logger) *RedundantEdgeAdjudicator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RedundantEdgeAdjudicator{log: log.With(logging.Component("edge-adjudicator"))}
}

// Adjudicate removes redundant edges and orphaned nodes in place,
// recording each removal in the report.
func (a *RedundantEdgeAdjudicator) Adjudicate(doc *Document, report *IssueReport) {
	hasOther := make(map[pairKey]bool)    // any interaction besides neighbor-of and controls-state-change-of
	hasSpecific := make(map[pairKey]bool) // anything besides neighbor-of
	for _, e := range doc.Edges {
		key := makePairKey(e.Source, e.Target)
		switch e.Interaction {
		case "neighbor-of":
		case "controls-state-change-of":
			hasSpecific[key] = true
		default:
			hasSpecific[key] = true
			hasOther[key] = true
		}
	}

	kept := doc.Edges[:0]
	removed := 0
	for _, e := range doc.Edges {
		key := makePairKey(e.Source, e.Target)
		redundant := (e.Interaction == "neighbor-of" && hasSpecific[key]) ||
			(e.Interaction == "controls-state-change-of" && hasOther[key])
		if redundant {
			removed++
			report.Add(IssueRedundantEdge, e.Source+" ("+e.Interaction+") "+e.Target)
			continue
		}
		kept = append(kept, e)
	}
	doc.Edges = kept

	if removed > 0 {
		a.removeOrphans(doc, report)
		a.log.Info("removed redundant edges",
			logging.Network(doc.Name), logging.Count(removed))
	}
}

// removeOrphans drops nodes no remaining edge references.
func (a *RedundantEdgeAdjudicator) removeOrphans(doc *Document, report *IssueReport) {
	referenced := make(map[string]bool, len(doc.Nodes))
	for _, e := range doc.Edges {
		referenced[e.Source] = true
		referenced[e.Target] = true
	}
	for id := range doc.Nodes {
		if !referenced[id] {
			report.Add(IssueOrphanNode, id)
			delete(doc.Nodes, id)
		}
	}
}
