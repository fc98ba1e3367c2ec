package network

import (
	"fmt"
	"strings"
)

// Issue descriptions recorded by the builder and post-processors.
const (
	IssueResolutionMiss = "unable to resolve gene symbol, kept raw identifier"
	IssueMergeConflict  = "conflicting node attribute value, kept first"
	IssueRedundantEdge  = "removed redundant edge"
	IssueOrphanNode     = "removed orphaned node"
)

// IssueReport collects the non-fatal problems encountered while building
// one network. It is written by a single goroutine (construction within a
// file is sequential) and read after the build completes.
type IssueReport struct {
	NetworkName string
	order       []string
	issues      map[string][]string
}

// NewIssueReport creates an empty report for the named network.
func NewIssueReport(name string) *IssueReport {
	return &IssueReport{
		NetworkName: name,
		issues:      make(map[string][]string),
	}
}

// Add records one instance of an issue.
func (r *IssueReport) Add(description, detail string) {
	if _, seen := r.issues[description]; !seen {
		r.order = append(r.order, description)
	}
	r.issues[description] = append(r.issues[description], detail)
}

// Count returns the total number of recorded issue instances.
func (r *IssueReport) Count() int {
	n := 0
	for _, v := range r.issues {
		n += len(v)
	}
	return n
}

// Instances returns the recorded details for one issue description.
func (r *IssueReport) Instances(description string) []string {
	return r.issues[description]
}

// String renders the report for the run summary.
func (r *IssueReport) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d issue(s) found in network %s\n", r.Count(), r.NetworkName))
	for _, desc := range r.order {
		details := r.issues[desc]
		sb.WriteString(fmt.Sprintf("\t%s (%d)\n", desc, len(details)))
		for _, d := range details {
			sb.WriteString(fmt.Sprintf("\t\t%s\n", d))
		}
	}
	return sb.String()
}
