package symbol

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/netpublish/sifloader/pkg/logging"
	"github.com/netpublish/sifloader/pkg/metrics"
)

// countingService records how many times the external collaborator is hit.
type countingService struct {
	calls   atomic.Int64
	symbols map[string]string
	err     error
}

func (s *countingService) ResolveSymbol(ctx context.Context, rawID string) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	sym, ok := s.symbols[rawID]
	if !ok {
		return "", ErrNoMatch
	}
	return sym, nil
}

func newTestResolver(table map[string]string, svc Service) *Resolver {
	return NewResolver(table, NewMemoryCache(), svc, logging.NewNopLogger(), metrics.NewRegistry())
}

func TestResolveFromMap(t *testing.T) {
	svc := &countingService{}
	r := newTestResolver(map[string]string{"CBP_HUMAN": "CREBBP"}, svc)

	sym, resolved := r.Resolve(context.Background(), "CBP_HUMAN")
	if !resolved || sym != "CREBBP" {
		t.Errorf("Resolve() = %q/%v, want CREBBP/true", sym, resolved)
	}
	if svc.calls.Load() != 0 {
		t.Errorf("service called %d times for a map hit, want 0", svc.calls.Load())
	}
}

func TestResolveServiceCachedOnSecondCall(t *testing.T) {
	svc := &countingService{symbols: map[string]string{"Q9Y6K9": "IKBKG"}}
	r := newTestResolver(nil, svc)

	for i := 0; i < 2; i++ {
		sym, resolved := r.Resolve(context.Background(), "Q9Y6K9")
		if !resolved || sym != "IKBKG" {
			t.Fatalf("Resolve() call %d = %q/%v, want IKBKG/true", i+1, sym, resolved)
		}
	}
	if svc.calls.Load() != 1 {
		t.Errorf("service called %d times, want exactly 1 (second call cache-served)", svc.calls.Load())
	}
}

func TestResolveMissFallsBackToRawID(t *testing.T) {
	svc := &countingService{}
	r := newTestResolver(nil, svc)

	sym, resolved := r.Resolve(context.Background(), "UNKNOWN_1")
	if resolved {
		t.Error("Resolve() reported success for an unresolvable id")
	}
	if sym != "UNKNOWN_1" {
		t.Errorf("Resolve() = %q, want the raw id back", sym)
	}
}

func TestResolveNoMatchNotRequeried(t *testing.T) {
	svc := &countingService{}
	r := newTestResolver(nil, svc)

	r.Resolve(context.Background(), "UNKNOWN_1")
	r.Resolve(context.Background(), "UNKNOWN_1")
	if svc.calls.Load() != 1 {
		t.Errorf("service called %d times for a definitive no-match, want 1", svc.calls.Load())
	}
}

func TestResolveServiceFailureNonFatal(t *testing.T) {
	svc := &countingService{err: errors.New("connection refused")}
	r := newTestResolver(nil, svc)

	sym, resolved := r.Resolve(context.Background(), "Q00001")
	if resolved || sym != "Q00001" {
		t.Errorf("Resolve() = %q/%v, want raw id/false on service failure", sym, resolved)
	}

	// Transport errors are not cached; the next call tries again
	r.Resolve(context.Background(), "Q00001")
	if svc.calls.Load() != 2 {
		t.Errorf("service called %d times, want 2 (failures are retried)", svc.calls.Load())
	}
}

func TestResolvePlaceholderInMapFallsThrough(t *testing.T) {
	svc := &countingService{symbols: map[string]string{"X_HUMAN": "XYZ1"}}
	r := newTestResolver(map[string]string{"X_HUMAN": "-"}, svc)

	sym, resolved := r.Resolve(context.Background(), "X_HUMAN")
	if !resolved || sym != "XYZ1" {
		t.Errorf("Resolve() = %q/%v, want XYZ1/true (placeholder must not win)", sym, resolved)
	}
}

func TestResolveConcurrentSameID(t *testing.T) {
	svc := &countingService{symbols: map[string]string{"P04637": "TP53"}}
	r := newTestResolver(nil, svc)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sym, resolved := r.Resolve(context.Background(), "P04637")
			if !resolved || sym != "TP53" {
				t.Errorf("Resolve() = %q/%v, want TP53/true", sym, resolved)
			}
		}()
	}
	wg.Wait()
	// Concurrent first lookups may each hit the service, but the value is
	// deterministic so overwrites are harmless.
	if svc.calls.Load() < 1 || svc.calls.Load() > 16 {
		t.Errorf("service calls = %d, want between 1 and 16", svc.calls.Load())
	}
}

func TestLoadSymbolMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesymbol.yaml")
	content := "CBP_HUMAN: CREBBP\n2AAA_HUMAN: PPP2R1A\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadSymbolMap(logging.NewNopLogger(), path)
	if err != nil {
		t.Fatalf("LoadSymbolMap() error = %v", err)
	}
	if m["CBP_HUMAN"] != "CREBBP" || m["2AAA_HUMAN"] != "PPP2R1A" {
		t.Errorf("map = %v", m)
	}
}

func TestLoadSymbolMapCollisionOverwrites(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yaml")
	second := filepath.Join(dir, "b.yaml")
	os.WriteFile(first, []byte("CBP_HUMAN: OLD\n"), 0o600)
	os.WriteFile(second, []byte("CBP_HUMAN: CREBBP\n"), 0o600)

	m, err := LoadSymbolMap(logging.NewNopLogger(), first, second)
	if err != nil {
		t.Fatalf("LoadSymbolMap() error = %v", err)
	}
	if m["CBP_HUMAN"] != "CREBBP" {
		t.Errorf("collision kept %q, want later value CREBBP", m["CBP_HUMAN"])
	}
}

func TestHTTPServiceResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("q") == "P04637" {
			json.NewEncoder(w).Encode(map[string]any{
				"total": 1,
				"hits":  []map[string]string{{"symbol": "TP53"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"total": 0})
	}))
	defer srv.Close()

	svc := NewHTTPService(srv.URL, "sifloader-test")

	sym, err := svc.ResolveSymbol(context.Background(), "P04637")
	if err != nil || sym != "TP53" {
		t.Errorf("ResolveSymbol() = %q, %v; want TP53, nil", sym, err)
	}

	_, err = svc.ResolveSymbol(context.Background(), "NOPE")
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("ResolveSymbol() error = %v, want ErrNoMatch", err)
	}
}
