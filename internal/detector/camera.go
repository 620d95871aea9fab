package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SnapshotSource pulls single JPEG frames from a camera's snapshot
// endpoint. Most IP cameras expose one (e.g., /snapshot.jpg).
type SnapshotSource struct {
	url        string
	httpClient *http.Client
}

// NewSnapshotSource creates a frame source for the given snapshot URL.
func NewSnapshotSource(url string) (*SnapshotSource, error) {
	if url == "" {
		return nil, errors.New("camera URL is required")
	}
	return &SnapshotSource{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Frame fetches one JPEG frame from the camera.
func (s *SnapshotSource) Frame(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch frame: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera returned status %d", resp.StatusCode)
	}

	frame, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read frame: %w", err)
	}
	return frame, nil
}
