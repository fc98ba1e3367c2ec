package loader

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/netpublish/sifloader/pkg/network"
	"github.com/netpublish/sifloader/pkg/publish"
)

// FileResult records the outcome of one input file.
type FileResult struct {
	Path        string
	NetworkName string
	Handle      publish.Handle
	Nodes       int
	Edges       int
	Issues      *network.IssueReport
	Duration    time.Duration
	Err         error
}

// RunReport summarizes a whole load run.
type RunReport struct {
	mu      sync.Mutex
	results []FileResult
	started time.Time
}

func newRunReport() *RunReport {
	return &RunReport{started: time.Now()}
}

func (r *RunReport) add(res FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Results returns all file outcomes ordered by path.
func (r *RunReport) Results() []FileResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FileResult, len(r.results))
	copy(out, r.results)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Failed returns the outcomes of files that did not publish.
func (r *RunReport) Failed() []FileResult {
	var failed []FileResult
	for _, res := range r.Results() {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether every file published.
func (r *RunReport) OK() bool {
	return len(r.Failed()) == 0
}

// String renders a human-readable run summary.
func (r *RunReport) String() string {
	results := r.Results()
	failed := 0

	var b strings.Builder
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(&b, "FAIL %s: %v\n", res.Path, res.Err)
			continue
		}
		fmt.Fprintf(&b, "ok   %s -> %s (%d nodes, %d edges", res.Path, res.NetworkName, res.Nodes, res.Edges)
		if res.Issues != nil && res.Issues.Count() > 0 {
			fmt.Fprintf(&b, ", %d issues", res.Issues.Count())
		}
		b.WriteString(")\n")
	}
	fmt.Fprintf(&b, "%d file(s), %d failed, elapsed %s\n",
		len(results), failed, time.Since(r.started).Round(time.Millisecond))
	return b.String()
}
