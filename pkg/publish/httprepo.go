package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/netpublish/sifloader/pkg/network"
)

// DefaultRequestTimeout bounds each repository round trip.
const DefaultRequestTimeout = 30 * time.Second

// HTTPRepository talks to the network repository's REST interface. It
// implements Repository.
type HTTPRepository struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	userAgent  string
}

// NewHTTPRepository creates a client for the repository at serverURL,
// authenticating with basic credentials.
func NewHTTPRepository(serverURL, username, password string) *HTTPRepository {
	return &HTTPRepository{
		baseURL:  serverURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		userAgent: "sifloader/" + uuid.New().String()[:8],
	}
}

func (r *HTTPRepository) do(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(r.username, r.password)
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.httpClient.Do(req)
	if err != nil {
		// Connection failures and client timeouts are worth retrying
		return nil, &TransientError{Err: err}
	}
	return resp, nil
}

// classify turns a non-2xx response into an error, marking 5xx transient.
func classify(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("%s: repository returned %d: %s", op, resp.StatusCode, bytes.TrimSpace(body))
	if resp.StatusCode >= 500 {
		return &TransientError{Err: err}
	}
	return err
}

// FindNetworksByName queries for networks with the given name owned by
// owner.
func (r *HTTPRepository) FindNetworksByName(ctx context.Context, name, owner string) ([]Handle, error) {
	u := fmt.Sprintf("%s/networks?name=%s&owner=%s",
		r.baseURL, url.QueryEscape(name), url.QueryEscape(owner))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := classify(resp, "find networks"); err != nil {
		return nil, err
	}

	var handles []Handle
	if err := json.NewDecoder(resp.Body).Decode(&handles); err != nil {
		return nil, fmt.Errorf("decode find response: %w", err)
	}
	return handles, nil
}

// CreateNetwork uploads the document as a new network.
func (r *HTTPRepository) CreateNetwork(ctx context.Context, doc *network.Document) (Handle, error) {
	return r.push(ctx, http.MethodPost, r.baseURL+"/networks", "create network", doc)
}

// UpdateNetwork replaces the content of an existing network, preserving
// its identifier.
func (r *HTTPRepository) UpdateNetwork(ctx context.Context, h Handle, doc *network.Document) (Handle, error) {
	return r.push(ctx, http.MethodPut, r.baseURL+"/networks/"+url.PathEscape(h.ID), "update network", doc)
}

func (r *HTTPRepository) push(ctx context.Context, method, u, op string, doc *network.Document) (Handle, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return Handle{}, fmt.Errorf("%s: marshal document: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return Handle{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.do(req)
	if err != nil {
		return Handle{}, err
	}
	defer resp.Body.Close()
	if err := classify(resp, op); err != nil {
		return Handle{}, err
	}

	var h Handle
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Handle{}, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return h, nil
}
