// Package source acquires raw network metadata. Transport concerns end
// here; everything downstream works on raw bytes.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// networkDataPath is where the OpenStack-compatible metadata service
// exposes the network description.
const networkDataPath = "openstack/latest/network_data.json"

// ErrNotAvailable reports that the source carries no network metadata.
// It is a legitimate nothing-to-configure outcome, not a failure.
var ErrNotAvailable = errors.New("network metadata not available")

// Source supplies the raw network metadata bytes.
type Source interface {
	Name() string
	NetworkData(ctx context.Context) ([]byte, error)
}

// FileSource reads network metadata from a local file, typically a
// mounted config drive.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) NetworkData(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return data, nil
}

// HTTPSource fetches network metadata from an HTTP metadata service.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns a source for the metadata service at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Name() string { return "http:" + s.baseURL }

func (s *HTTPSource) NetworkData(ctx context.Context) ([]byte, error) {
	endpoint, err := url.JoinPath(s.baseURL, networkDataPath)
	if err != nil {
		return nil, fmt.Errorf("building metadata URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotAvailable
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %s", endpoint, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading metadata response: %w", err)
	}
	return data, nil
}
