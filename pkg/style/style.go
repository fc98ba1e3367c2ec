// Package style attaches a pre-authored visual-properties document to
// network documents. The blob is opaque: it is validated structurally and
// attached verbatim, never interpreted.
package style

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/netpublish/sifloader/pkg/network"
)

// InvalidStyleError reports a style document that fails minimal
// structural validation.
type InvalidStyleError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidStyleError) Error() string {
	return fmt.Sprintf("invalid style document: %s", e.Reason)
}

// Load reads and validates a style document from disk.
func Load(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style document: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Validate performs minimal structural checks: the blob must be non-empty
// and parse as JSON. Content is not inspected further.
func Validate(blob []byte) error {
	if len(blob) == 0 {
		return &InvalidStyleError{Reason: "document is empty"}
	}
	if !json.Valid(blob) {
		return &InvalidStyleError{Reason: "document is not valid JSON"}
	}
	return nil
}

// Attach validates the blob and attaches it unmodified to the document.
func Attach(doc *network.Document, blob []byte) error {
	if err := Validate(blob); err != nil {
		return err
	}
	doc.Style = json.RawMessage(blob)
	return nil
}
