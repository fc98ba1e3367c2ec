package network

import (
	"testing"

	"github.com/netpublish/sifloader/pkg/loadplan"
	"github.com/netpublish/sifloader/pkg/logging"
)

func docWithEdges(edges ...*Edge) *Document {
	doc := NewDocument("test")
	for _, e := range edges {
		for _, id := range []string{e.Source, e.Target} {
			if _, ok := doc.Nodes[id]; !ok {
				doc.Nodes[id] = &Node{ID: id, Name: id, Symbol: id, Represents: id, Attributes: make(map[string]loadplan.Value)}
			}
		}
		doc.Edges = append(doc.Edges, e)
	}
	return doc
}

func TestSetDirectedFlags(t *testing.T) {
	doc := docWithEdges(
		&Edge{Source: "A", Target: "B", Interaction: "controls-phosphorylation-of"},
		&Edge{Source: "B", Target: "C", Interaction: "in-complex-with"},
	)

	SetDirectedFlags(doc)

	if got := doc.Edges[0].Attributes["directed"]; !got.Bool {
		t.Errorf("controls-phosphorylation-of directed = %v, want true", got.Bool)
	}
	if got := doc.Edges[1].Attributes["directed"]; got.Bool {
		t.Errorf("in-complex-with directed = %v, want false", got.Bool)
	}
}

func TestNormalizeParticipantTypes(t *testing.T) {
	doc := NewDocument("types")
	doc.Nodes["A"] = &Node{ID: "A", Attributes: map[string]loadplan.Value{
		"type": loadplan.StringValue("ProteinReference"),
	}}
	doc.Nodes["B"] = &Node{ID: "B", Attributes: map[string]loadplan.Value{
		"type": loadplan.StringValue("SmallMoleculeReference"),
	}}
	doc.Nodes["C"] = &Node{ID: "C", Attributes: map[string]loadplan.Value{
		"type": loadplan.StringValue("RnaReference"),
	}}

	NormalizeParticipantTypes(doc)

	if got := doc.Nodes["A"].Attributes["type"].Str; got != "protein" {
		t.Errorf("A type = %q, want protein", got)
	}
	if got := doc.Nodes["B"].Attributes["type"].Str; got != "smallmolecule" {
		t.Errorf("B type = %q, want smallmolecule", got)
	}
	if got := doc.Nodes["C"].Attributes["type"].Str; got != "RnaReference" {
		t.Errorf("unknown type rewritten to %q, want left as-is", got)
	}
}

func TestAdjudicateRemovesRedundantNeighborOf(t *testing.T) {
	doc := docWithEdges(
		&Edge{Source: "A", Target: "B", Interaction: "neighbor-of"},
		&Edge{Source: "B", Target: "A", Interaction: "in-complex-with"}, // reversed direction still counts
		&Edge{Source: "B", Target: "C", Interaction: "neighbor-of"},
	)
	report := NewIssueReport("test")

	NewRedundantEdgeAdjudicator(logging.NewNopLogger()).Adjudicate(doc, report)

	if len(doc.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(doc.Edges))
	}
	for _, e := range doc.Edges {
		if e.Interaction == "neighbor-of" && makePairKey(e.Source, e.Target) == makePairKey("A", "B") {
			t.Error("redundant neighbor-of edge between A and B survived")
		}
	}
	if len(report.Instances(IssueRedundantEdge)) != 1 {
		t.Errorf("redundant edge instances = %v, want 1", report.Instances(IssueRedundantEdge))
	}
}

func TestAdjudicateRemovesRedundantControlsStateChange(t *testing.T) {
	doc := docWithEdges(
		&Edge{Source: "A", Target: "B", Interaction: "controls-state-change-of"},
		&Edge{Source: "A", Target: "B", Interaction: "controls-phosphorylation-of"},
	)
	report := NewIssueReport("test")

	NewRedundantEdgeAdjudicator(nil).Adjudicate(doc, report)

	if len(doc.Edges) != 1 || doc.Edges[0].Interaction != "controls-phosphorylation-of" {
		t.Errorf("edges after adjudication = %+v, want only controls-phosphorylation-of", doc.Edges)
	}
}

func TestAdjudicateKeepsLoneEdges(t *testing.T) {
	doc := docWithEdges(
		&Edge{Source: "A", Target: "B", Interaction: "neighbor-of"},
		&Edge{Source: "C", Target: "D", Interaction: "controls-state-change-of"},
	)
	report := NewIssueReport("test")

	NewRedundantEdgeAdjudicator(nil).Adjudicate(doc, report)

	if len(doc.Edges) != 2 {
		t.Errorf("got %d edges, want 2 (lone edges are not redundant)", len(doc.Edges))
	}
	if report.Count() != 0 {
		t.Errorf("report = %s, want empty", report)
	}
}

func TestAdjudicateRemovesOrphanedNodes(t *testing.T) {
	doc := docWithEdges(
		&Edge{Source: "A", Target: "C", Interaction: "in-complex-with"},
		&Edge{Source: "A", Target: "C", Interaction: "neighbor-of"},
	)
	doc.Nodes["LONER"] = &Node{ID: "LONER"}
	report := NewIssueReport("test")

	NewRedundantEdgeAdjudicator(nil).Adjudicate(doc, report)

	if _, ok := doc.Nodes["LONER"]; ok {
		t.Error("orphaned node survived adjudication")
	}
	if _, ok := doc.Nodes["A"]; !ok {
		t.Error("referenced node A was removed")
	}
	if len(report.Instances(IssueOrphanNode)) != 1 {
		t.Errorf("orphan instances = %v, want 1", report.Instances(IssueOrphanNode))
	}
}
