// Package network holds the node/edge document model and the builder that
// assembles one styled, attributed network per input SIF file.
package network

import (
	"encoding/json"
	"sort"

	"github.com/netpublish/sifloader/pkg/loadplan"
)

// Node is one participant in a network. Identity is the canonical id
// (resolved symbol preferred over the raw interactor id); at most one Node
// exists per id per network.
type Node struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name"`
	Symbol     string                    `json:"symbol"`
	Represents string                    `json:"represents"` // raw source identifier
	Attributes map[string]loadplan.Value `json:"attributes,omitempty"`
}

// Edge connects two nodes with an interaction type. Multiple edges between
// the same pair with different interaction types are distinct and kept.
type Edge struct {
	Source      string                    `json:"source"`
	Target      string                    `json:"target"`
	Interaction string                    `json:"interaction"`
	Attributes  map[string]loadplan.Value `json:"attributes,omitempty"`
}

// Document aggregates the node set, edge list, network-level attributes
// and the attached style. One Document per input file; treated as
// immutable once handed to the publisher.
type Document struct {
	Name       string
	Nodes      map[string]*Node
	Edges      []*Edge
	Attributes map[string]string
	Style      json.RawMessage
}

// NewDocument creates an empty document with the given network name.
func NewDocument(name string) *Document {
	return &Document{
		Name:       name,
		Nodes:      make(map[string]*Node),
		Edges:      make([]*Edge, 0),
		Attributes: make(map[string]string),
	}
}

// NodeIDs returns all node ids sorted, for canonical serialization.
// Enumeration order of the underlying map is not otherwise guaranteed.
func (d *Document) NodeIDs() []string {
	ids := make([]string, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetAttribute sets a network-level attribute.
func (d *Document) SetAttribute(name, value string) {
	d.Attributes[name] = value
}

// wireDocument is the serialized shape pushed to the repository.
type wireDocument struct {
	Name       string            `json:"name"`
	Nodes      []*Node           `json:"nodes"`
	Edges      []*Edge           `json:"edges"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Style      json.RawMessage   `json:"style,omitempty"`
}

// MarshalJSON serializes the document with nodes in canonical id order.
func (d *Document) MarshalJSON() ([]byte, error) {
	nodes := make([]*Node, 0, len(d.Nodes))
	for _, id := range d.NodeIDs() {
		nodes = append(nodes, d.Nodes[id])
	}
	return json.Marshal(wireDocument{
		Name:       d.Name,
		Nodes:      nodes,
		Edges:      d.Edges,
		Attributes: d.Attributes,
		Style:      d.Style,
	})
}
