package publish

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/netpublish/sifloader/pkg/network"
)

// InMemoryRepository is a Repository backed by process memory. Dry runs
// publish into it instead of the remote service; tests use it to observe
// write traffic.
type InMemoryRepository struct {
	mu       sync.Mutex
	networks map[string]storedNetwork // keyed by handle id

	// Call counters, readable after a run
	FindCalls   int
	CreateCalls int
	UpdateCalls int
}

type storedNetwork struct {
	handle Handle
	doc    json.RawMessage
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		networks: make(map[string]storedNetwork),
	}
}

// FindNetworksByName returns handles whose name matches, ignoring case the
// way the remote service does.
func (r *InMemoryRepository) FindNetworksByName(ctx context.Context, name, owner string) ([]Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FindCalls++

	var matches []Handle
	for _, stored := range r.networks {
		if strings.EqualFold(stored.handle.Name, name) {
			matches = append(matches, stored.handle)
		}
	}
	return matches, nil
}

// CreateNetwork stores the document under a fresh id.
func (r *InMemoryRepository) CreateNetwork(ctx context.Context, doc *network.Document) (Handle, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return Handle{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreateCalls++

	h := Handle{ID: uuid.New().String(), Name: doc.Name}
	r.networks[h.ID] = storedNetwork{handle: h, doc: data}
	return h, nil
}

// UpdateNetwork replaces the stored content, preserving the identifier.
func (r *InMemoryRepository) UpdateNetwork(ctx context.Context, h Handle, doc *network.Document) (Handle, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return Handle{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++

	updated := Handle{ID: h.ID, Name: doc.Name}
	r.networks[h.ID] = storedNetwork{handle: updated, doc: data}
	return updated, nil
}

// Seed inserts a network directly, bypassing the counters. Tests use it to
// pre-populate remote state.
func (r *InMemoryRepository) Seed(name string) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := Handle{ID: uuid.New().String(), Name: name}
	r.networks[h.ID] = storedNetwork{handle: h}
	return h
}

// Len returns the number of stored networks.
func (r *InMemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.networks)
}

// Document returns the stored content for a handle id.
func (r *InMemoryRepository) Document(id string) (json.RawMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.networks[id]
	return stored.doc, ok
}
