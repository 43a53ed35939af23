// Package swapi reads the external Star Wars API (or a compatible mirror or
// fixture) that the importer populates the store from.
package swapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/logging"
)

// maxDocumentSize bounds a single response body.
const maxDocumentSize = 10 << 20

// Source fetches raw JSON documents by absolute URL.
type Source interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// StatusError is returned when the source answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPSource fetches documents over HTTP.
type HTTPSource struct {
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates an HTTP source from the swapi configuration.
func NewHTTPSource(cfg *config.SwapiConfig, logger *zap.Logger) *HTTPSource {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for mirrors with broken certificates
	}

	return &HTTPSource{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: transport,
		},
		logger: logger.Named("swapi"),
	}
}

// Get fetches url and returns the response body.
func (s *HTTPSource) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	s.logger.Debug("Fetched document",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("Source returned error",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.TruncateString(string(body), logging.MaxBodyLogLength)))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return body, nil
}
