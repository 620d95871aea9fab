// Package detector talks to the face detection sidecar. The sidecar runs
// the actual vision model and is treated as a black box: it takes a JPEG
// frame and returns zero or more face descriptors with expression
// probabilities.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kozaktomas/attendance-tracker/internal/config"
)

// Expressions holds per-expression probabilities in [0,1] for one face.
type Expressions struct {
	Happy     float64 `json:"happy"`
	Sad       float64 `json:"sad"`
	Angry     float64 `json:"angry"`
	Fearful   float64 `json:"fearful"`
	Disgusted float64 `json:"disgusted"`
	Surprised float64 `json:"surprised"`
	Neutral   float64 `json:"neutral"`
}

// Detection is one face found in a frame.
type Detection struct {
	Descriptor  []float32   `json:"descriptor"`
	Expressions Expressions `json:"expressions"`
	BBox        []float64   `json:"bbox,omitempty"`
	Score       float64     `json:"score,omitempty"`
}

// Client is an HTTP client for the detection sidecar.
type Client struct {
	baseURL       string
	dim           int
	maxFrameWidth int
	httpClient    *http.Client
}

// NewClient creates a detection client from config.
func NewClient(cfg *config.DetectorConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("detector URL is required")
	}
	return &Client{
		baseURL:       cfg.URL,
		dim:           cfg.Dim,
		maxFrameWidth: cfg.MaxFrameWidth,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Detect sends a JPEG frame to the sidecar and returns the detected faces.
// Frames wider than the configured maximum are downscaled first to keep
// upload sizes bounded. Detections with a descriptor of the wrong
// dimensionality are dropped; they cannot be matched against enrolled
// templates anyway.
func (c *Client) Detect(ctx context.Context, frame []byte) ([]Detection, error) {
	frame, err := DownscaleJPEG(frame, c.maxFrameWidth)
	if err != nil {
		return nil, fmt.Errorf("preparing frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("detector returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Faces []Detection `json:"faces"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not decode detector response: %w", err)
	}

	faces := result.Faces[:0]
	for _, d := range result.Faces {
		if len(d.Descriptor) == c.dim {
			faces = append(faces, d)
		}
	}
	return faces, nil
}
