// Package loadplan compiles and applies declarative column-to-attribute
// mapping documents. A plan entry names a source column (by header name or
// position), the node or edge attribute it populates, and the value type
// to coerce to. Plans are validated eagerly at compile time; the per-record
// Apply step only fails on values the declared type cannot represent.
package loadplan

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/netpublish/sifloader/pkg/sif"
)

// Entity identifies whether a plan entry targets a node or an edge
// attribute.
type Entity string

const (
	EntityNode Entity = "node"
	EntityEdge Entity = "edge"
)

// Endpoint narrows a node-entity entry to one end of the interaction.
// Empty means both endpoints.
type Endpoint string

const (
	EndpointSource Endpoint = "source"
	EndpointTarget Endpoint = "target"
)

// Entry is one mapping rule in a load plan document.
type Entry struct {
	Column    string    `yaml:"column"`    // column name, matched against the file header
	Index     *int      `yaml:"index"`     // 0-based column position, alternative to Column
	Attribute string    `yaml:"attribute"` // target attribute name
	Entity    Entity    `yaml:"entity"`    // node or edge
	Endpoint  Endpoint  `yaml:"endpoint"`  // source/target for node entries; empty = both
	Type      ValueType `yaml:"type"`
	Default   *string   `yaml:"default"`   // substituted when the raw value is empty or fails coercion
	Delimiter string    `yaml:"delimiter"` // list item separator, ";" when unset
	Ignore    bool      `yaml:"ignore"`    // explicitly drop this column
}

// Document is the on-disk shape of a load plan.
type Document struct {
	Columns []Entry `yaml:"columns"`
}

type compiledEntry struct {
	Entry
	def *Value // eagerly coerced default
}

// LoadPlan is a compiled, validated mapping ready to apply to records.
type LoadPlan struct {
	byName  map[string]*compiledEntry
	byIndex map[int]*compiledEntry
}

func (e *compiledEntry) key() string {
	if e.Column != "" {
		return e.Column
	}
	return fmt.Sprintf("#%d", *e.Index)
}

// Compile parses and validates a load plan document.
func Compile(data []byte) (*LoadPlan, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedPlanError{Reason: fmt.Sprintf("cannot parse document: %v", err)}
	}
	return CompileDocument(&doc)
}

// CompileDocument validates an already-decoded document.
func CompileDocument(doc *Document) (*LoadPlan, error) {
	plan := &LoadPlan{
		byName:  make(map[string]*compiledEntry),
		byIndex: make(map[int]*compiledEntry),
	}
	for i := range doc.Columns {
		entry := &compiledEntry{Entry: doc.Columns[i]}

		if entry.Column == "" && entry.Index == nil {
			return nil, &MalformedPlanError{Reason: fmt.Sprintf("entry %d names no source column", i)}
		}
		if !entry.Ignore {
			if entry.Attribute == "" {
				return nil, &MalformedPlanError{Column: entry.key(), Reason: "missing target attribute name"}
			}
			if entry.Entity != EntityNode && entry.Entity != EntityEdge {
				return nil, &MalformedPlanError{Column: entry.key(), Reason: fmt.Sprintf("missing or invalid target entity %q", entry.Entity)}
			}
			if !entry.Type.Valid() {
				return nil, &MalformedPlanError{Column: entry.key(), Reason: fmt.Sprintf("missing or invalid value type %q", entry.Type)}
			}
			if entry.Endpoint != "" && entry.Endpoint != EndpointSource && entry.Endpoint != EndpointTarget {
				return nil, &MalformedPlanError{Column: entry.key(), Reason: fmt.Sprintf("invalid endpoint %q", entry.Endpoint)}
			}
			if entry.Endpoint != "" && entry.Entity != EntityNode {
				return nil, &MalformedPlanError{Column: entry.key(), Reason: "endpoint is only valid for node entries"}
			}
			if entry.Default != nil {
				v, err := coerce(*entry.Default, entry.Type, entry.Delimiter)
				if err != nil {
					return nil, &MalformedPlanError{Column: entry.key(), Reason: fmt.Sprintf("default value: %v", err)}
				}
				entry.def = &v
			}
		}

		if entry.Column != "" {
			if _, dup := plan.byName[entry.Column]; dup {
				return nil, &MalformedPlanError{Column: entry.Column, Reason: "claimed by more than one entry"}
			}
			plan.byName[entry.Column] = entry
		}
		if entry.Index != nil {
			if *entry.Index < 0 {
				return nil, &MalformedPlanError{Column: entry.key(), Reason: "negative column index"}
			}
			if _, dup := plan.byIndex[*entry.Index]; dup {
				return nil, &MalformedPlanError{Column: entry.key(), Reason: "claimed by more than one entry"}
			}
			plan.byIndex[*entry.Index] = entry
		}
	}
	return plan, nil
}

// Applied carries the attribute maps derived from one record.
type Applied struct {
	SourceNode map[string]Value
	TargetNode map[string]Value
	Edge       map[string]Value
}

// CheckColumns verifies every extended column of a file is covered by a
// plan entry or an explicit ignore rule. Unmapped columns are an error,
// never silently dropped. header may be nil for headerless files; extras
// is the number of columns beyond the mandatory three.
func (p *LoadPlan) CheckColumns(header []string, extras int) error {
	for i := 0; i < extras; i++ {
		idx := sif.MinColumns + i
		if _, ok := p.byIndex[idx]; ok {
			continue
		}
		if header != nil && idx < len(header) {
			if _, ok := p.byName[header[idx]]; ok {
				continue
			}
			return &PlanApplicationError{Column: header[idx], Reason: "no load plan entry for this column"}
		}
		return &PlanApplicationError{Column: fmt.Sprintf("#%d", idx), Reason: "no load plan entry for this column"}
	}
	return nil
}

// lookup finds the entry for a column position, preferring a header-name
// match over a positional one.
func (p *LoadPlan) lookup(header []string, idx int) *compiledEntry {
	if header != nil && idx < len(header) {
		if e, ok := p.byName[header[idx]]; ok {
			return e
		}
	}
	return p.byIndex[idx]
}

// Apply derives node and edge attributes from one record. It is a pure
// function of its inputs. Coercion failures without a declared default
// produce a PlanApplicationError naming the offending column.
func (p *LoadPlan) Apply(rec sif.Record, header []string) (*Applied, error) {
	out := &Applied{
		SourceNode: make(map[string]Value),
		TargetNode: make(map[string]Value),
		Edge:       make(map[string]Value),
	}

	for i, raw := range rec.Extra {
		idx := sif.MinColumns + i
		entry := p.lookup(header, idx)
		if entry == nil || entry.Ignore {
			continue
		}

		var value Value
		if raw == "" {
			if entry.def == nil {
				continue
			}
			value = *entry.def
		} else {
			v, err := coerce(raw, entry.Type, entry.Delimiter)
			if err != nil {
				if entry.def == nil {
					return nil, &PlanApplicationError{
						Column: entry.key(),
						Value:  raw,
						Type:   entry.Type,
						Line:   rec.Line,
						Reason: err.Error(),
					}
				}
				v = *entry.def
			}
			value = v
		}

		switch entry.Entity {
		case EntityEdge:
			out.Edge[entry.Attribute] = value
		case EntityNode:
			switch entry.Endpoint {
			case EndpointSource:
				out.SourceNode[entry.Attribute] = value
			case EndpointTarget:
				out.TargetNode[entry.Attribute] = value
			default:
				out.SourceNode[entry.Attribute] = value
				out.TargetNode[entry.Attribute] = value
			}
		}
	}
	return out, nil
}
