package symbol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultServiceURL is the public gene query service.
	DefaultServiceURL = "https://mygene.info/v3"

	// DefaultServiceTimeout bounds each lookup round trip.
	DefaultServiceTimeout = 10 * time.Second
)

// HTTPService queries a gene query REST endpoint for symbols. It
// implements Service.
type HTTPService struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewHTTPService creates a service client. An empty serverURL selects the
// public endpoint.
func NewHTTPService(serverURL, userAgent string) *HTTPService {
	if serverURL == "" {
		serverURL = DefaultServiceURL
	}
	return &HTTPService{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: DefaultServiceTimeout,
		},
		userAgent: userAgent,
	}
}

// queryResponse is the wire shape of a symbol query result.
type queryResponse struct {
	Total int `json:"total"`
	Hits  []struct {
		Symbol string `json:"symbol"`
	} `json:"hits"`
}

// ResolveSymbol queries the service for rawID. Returns ErrNoMatch when the
// query yields no hit carrying a symbol.
func (s *HTTPService) ResolveSymbol(ctx context.Context, rawID string) (string, error) {
	u := fmt.Sprintf("%s/query?q=%s&fields=symbol&species=human", s.baseURL, url.QueryEscape(rawID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build symbol query: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("symbol query for %s: %w", rawID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("symbol query for %s: unexpected status %d", rawID, resp.StatusCode)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return "", fmt.Errorf("decode symbol query response for %s: %w", rawID, err)
	}

	if qr.Total == 0 || len(qr.Hits) == 0 {
		return "", ErrNoMatch
	}
	// First hit wins when the query is ambiguous
	if qr.Hits[0].Symbol == "" {
		return "", ErrNoMatch
	}
	return qr.Hits[0].Symbol, nil
}
