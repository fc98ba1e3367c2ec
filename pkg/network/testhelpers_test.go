package network

import (
	"strings"

	"github.com/netpublish/sifloader/pkg/loadplan"
	"github.com/netpublish/sifloader/pkg/logging"
	"github.com/netpublish/sifloader/pkg/metrics"
	"github.com/netpublish/sifloader/pkg/sif"
	"github.com/netpublish/sifloader/pkg/symbol"
)

// newPropertyBuilder creates a builder with an empty plan and no external
// resolver, suitable for generated inputs.
func newPropertyBuilder() *Builder {
	plan, err := loadplan.CompileDocument(&loadplan.Document{})
	if err != nil {
		panic(err)
	}
	resolver := symbol.NewResolver(nil, symbol.NewMemoryCache(), nil, logging.NewNopLogger(), metrics.NewRegistry())
	return NewBuilder(plan, resolver, logging.NewNopLogger(), metrics.NewRegistry())
}

func newPropertyParser(input string) *sif.Parser {
	return sif.NewParser(strings.NewReader(input))
}
