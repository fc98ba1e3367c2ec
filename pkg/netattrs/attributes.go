// Package netattrs loads the per-network descriptive attribute table and
// attaches matching entries to network documents. The table is
// tab-delimited, keyed by source filename stem, and every input file must
// have exactly one entry.
package netattrs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/netpublish/sifloader/pkg/network"
)

// MissingAttributesError reports an input file with no entry in the
// attribute table.
type MissingAttributesError struct {
	FileKey string
}

// Error implements the error interface.
func (e *MissingAttributesError) Error() string {
	return fmt.Sprintf("no network attributes entry for %q", e.FileKey)
}

// Attributes is the descriptive record for one network.
type Attributes struct {
	Name        string
	Description string
	Author      string
	Reviewers   string
	Labels      string
	Organism    string
}

// Table maps filename stems to attribute records.
type Table struct {
	entries map[string]Attributes
}

// Required table columns. Remaining columns are optional provenance.
const (
	colFile        = "file"
	colName        = "name"
	colDescription = "description"
	colAuthor      = "curated by"
	colReviewers   = "reviewed by"
	colLabels      = "labels"
	colOrganism    = "organism"
)

// LoadTable reads a tab-delimited attribute table. The header row names
// the columns; at minimum file, name and description must be present.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open network attributes table: %w", err)
	}
	defer f.Close()
	return ParseTable(f)
}

// ParseTable reads an attribute table from r.
func ParseTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read network attributes header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colFile, colName, colDescription} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("network attributes table is missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	t := &Table{entries: make(map[string]Attributes)}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read network attributes row %d: %w", line, err)
		}
		key := Stem(field(row, colFile))
		if key == "" {
			continue
		}
		if _, dup := t.entries[key]; dup {
			return nil, fmt.Errorf("network attributes row %d: duplicate entry for %q", line, key)
		}
		t.entries[key] = Attributes{
			Name:        field(row, colName),
			Description: field(row, colDescription),
			Author:      field(row, colAuthor),
			Reviewers:   field(row, colReviewers),
			Labels:      field(row, colLabels),
			Organism:    field(row, colOrganism),
		}
	}
	return t, nil
}

// Lookup returns the attributes for a filename stem.
func (t *Table) Lookup(fileKey string) (Attributes, error) {
	attrs, ok := t.entries[fileKey]
	if !ok {
		return Attributes{}, &MissingAttributesError{FileKey: fileKey}
	}
	return attrs, nil
}

// Len returns the number of table entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Stem strips the directory and .sif extension from a path, producing the
// key the table is indexed by.
func Stem(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".sif")
}

// Attach merges the table entry for fileKey into the document's
// network-level attributes. The document's name is set from the entry when
// the entry carries one, otherwise it stays the filename stem.
func Attach(doc *network.Document, fileKey string, table *Table) error {
	attrs, err := table.Lookup(fileKey)
	if err != nil {
		return err
	}
	if attrs.Name != "" {
		doc.Name = attrs.Name
	}
	if attrs.Description != "" {
		doc.SetAttribute("description", attrs.Description)
	}
	if attrs.Author != "" {
		doc.SetAttribute("author", attrs.Author)
	}
	if attrs.Reviewers != "" {
		doc.SetAttribute("reviewers", attrs.Reviewers)
	}
	if attrs.Labels != "" {
		doc.SetAttribute("labels", attrs.Labels)
	}
	if attrs.Organism != "" {
		doc.SetAttribute("organism", attrs.Organism)
	}
	return nil
}
