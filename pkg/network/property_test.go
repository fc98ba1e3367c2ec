package network

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestBuilderInvariants uses property-based testing to verify invariants
// that must hold for any valid input file.
func TestBuilderInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	idGen := gen.RegexMatch(`[A-Z][A-Z0-9_]{0,7}`)
	interactionGen := gen.OneConstOf(
		"neighbor-of", "in-complex-with", "controls-state-change-of", "controls-expression-of")

	rowGen := gopter.CombineGens(idGen, interactionGen, idGen).
		Map(func(vals []any) string {
			return fmt.Sprintf("%s\t%s\t%s", vals[0], vals[1], vals[2])
		})

	// Property: the node set is exactly the set of distinct endpoint ids.
	// No node without a referencing edge, no endpoint without a node.
	properties.Property("node set equals distinct edge endpoints", prop.ForAll(
		func(rows []string) bool {
			input := strings.Join(rows, "\n")
			b := newPropertyBuilder()
			doc, _, err := b.Build(context.Background(), "prop", newPropertyParser(input))
			if err != nil {
				return false
			}

			endpoints := make(map[string]bool)
			for _, e := range doc.Edges {
				endpoints[e.Source] = true
				endpoints[e.Target] = true
			}
			if len(endpoints) != len(doc.Nodes) {
				return false
			}
			for id := range endpoints {
				if _, ok := doc.Nodes[id]; !ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(rowGen),
	))

	// Property: edge count always equals input row count; the builder
	// never deduplicates.
	properties.Property("every row becomes exactly one edge", prop.ForAll(
		func(rows []string) bool {
			input := strings.Join(rows, "\n")
			b := newPropertyBuilder()
			doc, _, err := b.Build(context.Background(), "prop", newPropertyParser(input))
			if err != nil {
				return false
			}
			return len(doc.Edges) == len(rows)
		},
		gen.SliceOf(rowGen),
	))

	properties.TestingRun(t)
}
