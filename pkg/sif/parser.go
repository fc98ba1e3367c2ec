// Package sif reads tab-delimited Simple Interaction Format records.
//
// A SIF row carries at minimum a source participant, an interaction type
// and a target participant. Files may carry additional columns; those are
// interpreted downstream by a load plan, not here.
package sif

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MinColumns is the mandatory column set: source, interaction, target.
const MinColumns = 3

// MalformedRecordError reports a line that cannot be parsed as a SIF record.
type MalformedRecordError struct {
	Line    int
	Columns int
	Want    int
	Reason  string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed record at line %d: got %d columns, want %d", e.Line, e.Columns, e.Want)
}

// Record is one parsed SIF line. It is immutable once parsed.
type Record struct {
	Source      string
	Interaction string
	Target      string
	Extra       []string // extended column values in file order
	Line        int      // 1-based line number in the source file
}

// Option configures a Parser.
type Option func(*Parser)

// WithHeader tells the parser to treat the first non-blank line as a
// column header rather than a record.
func WithHeader() Option {
	return func(p *Parser) {
		p.expectHeader = true
	}
}

// Parser lazily yields records from a tab-delimited stream. Usage follows
// bufio.Scanner: call Next until it returns false, then check Err.
type Parser struct {
	scanner      *bufio.Scanner
	expectHeader bool
	header       []string
	columns      int // column count fixed by the header or first record
	line         int
	record       Record
	err          error
	done         bool
}

// NewParser creates a parser over r.
func NewParser(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		scanner: bufio.NewScanner(r),
	}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Header returns the column names when the parser was created with
// WithHeader and at least one line has been read. Nil otherwise.
func (p *Parser) Header() []string {
	return p.header
}

// Next advances to the next record. It returns false at end of input or on
// the first malformed line; Err distinguishes the two.
func (p *Parser) Next() bool {
	if p.done {
		return false
	}
	for p.scanner.Scan() {
		p.line++
		line := strings.TrimRight(p.scanner.Text(), "\r\n")
		if line == "" {
			// Blank line terminates the record section. The extended SIF
			// dumps append a participant table after it, which we don't read.
			p.done = true
			return false
		}

		cols := strings.Split(line, "\t")
		if p.expectHeader && p.header == nil {
			p.header = trimAll(cols)
			p.columns = len(p.header)
			if p.columns < MinColumns {
				p.err = &MalformedRecordError{Line: p.line, Columns: p.columns, Want: MinColumns}
				p.done = true
				return false
			}
			continue
		}

		if p.columns == 0 {
			if len(cols) < MinColumns {
				p.err = &MalformedRecordError{Line: p.line, Columns: len(cols), Want: MinColumns}
				p.done = true
				return false
			}
			p.columns = len(cols)
		}
		if len(cols) != p.columns {
			p.err = &MalformedRecordError{Line: p.line, Columns: len(cols), Want: p.columns}
			p.done = true
			return false
		}

		src := strings.TrimSpace(cols[0])
		tgt := strings.TrimSpace(cols[2])
		if src == "" || tgt == "" {
			p.err = &MalformedRecordError{Line: p.line, Reason: "empty participant identifier"}
			p.done = true
			return false
		}

		p.record = Record{
			Source:      src,
			Interaction: strings.TrimSpace(cols[1]),
			Target:      tgt,
			Extra:       trimAll(cols[MinColumns:]),
			Line:        p.line,
		}
		return true
	}
	p.done = true
	p.err = p.scanner.Err()
	return false
}

// Record returns the record produced by the last successful Next call.
func (p *Parser) Record() Record {
	return p.record
}

// Err returns the first error encountered, or nil at clean end of input.
func (p *Parser) Err() error {
	return p.err
}

func trimAll(cols []string) []string {
	if len(cols) == 0 {
		return nil
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
