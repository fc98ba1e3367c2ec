package symbol

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/netpublish/sifloader/pkg/logging"
)

// LoadSymbolMap reads one or more raw-id to gene-symbol mapping documents
// and merges them. Raw ids are unique keys; a collision between documents
// keeps the later value and logs a warning. The returned map is loaded once
// per run and read-only thereafter.
func LoadSymbolMap(log logging.Logger, paths ...string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read gene symbol map %s: %w", path, err)
		}
		var doc map[string]string
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse gene symbol map %s: %w", path, err)
		}
		for rawID, sym := range doc {
			if prev, ok := merged[rawID]; ok && prev != sym {
				log.Warn("gene symbol mapping collision, overwriting",
					logging.RawID(rawID),
					logging.String("previous", prev),
					logging.Symbol(sym))
			}
			merged[rawID] = sym
		}
	}
	return merged, nil
}
