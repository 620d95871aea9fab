package detector

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/attendance-tracker/internal/config"
)

// makeJPEG encodes a solid-color test frame of the given size.
func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test frame: %v", err)
	}
	return buf.Bytes()
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(&config.DetectorConfig{
		URL:           serverURL,
		Dim:           4,
		MaxFrameWidth: 1280,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestClient_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("expected image/jpeg content type, got %s", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"faces": [
			{"descriptor": [0.1, 0.2, 0.3, 0.4], "expressions": {"happy": 0.9, "neutral": 0.1}},
			{"descriptor": [0.5, 0.6, 0.7, 0.8], "expressions": {"sad": 0.8}}
		]}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	faces, err := client.Detect(context.Background(), makeJPEG(t, 320, 240))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if len(faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(faces))
	}
	if faces[0].Expressions.Happy != 0.9 {
		t.Errorf("expected happy=0.9, got %f", faces[0].Expressions.Happy)
	}
}

func TestClient_Detect_NoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"faces": []}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	faces, err := client.Detect(context.Background(), makeJPEG(t, 320, 240))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(faces) != 0 {
		t.Errorf("expected no faces, got %d", len(faces))
	}
}

func TestClient_Detect_DropsWrongDimensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"faces": [
			{"descriptor": [0.1, 0.2], "expressions": {}},
			{"descriptor": [0.1, 0.2, 0.3, 0.4], "expressions": {}}
		]}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	faces, err := client.Detect(context.Background(), makeJPEG(t, 320, 240))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(faces) != 1 {
		t.Errorf("expected wrong-dim descriptor to be dropped, got %d faces", len(faces))
	}
}

func TestClient_Detect_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	if _, err := client.Detect(context.Background(), makeJPEG(t, 320, 240)); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient(&config.DetectorConfig{}); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestDownscaleJPEG_PassThrough(t *testing.T) {
	frame := makeJPEG(t, 640, 480)

	out, err := DownscaleJPEG(frame, 1280)
	if err != nil {
		t.Fatalf("downscale: %v", err)
	}
	if !bytes.Equal(out, frame) {
		t.Error("expected small frame to pass through unchanged")
	}
}

func TestDownscaleJPEG_Shrinks(t *testing.T) {
	frame := makeJPEG(t, 1920, 1080)

	out, err := DownscaleJPEG(frame, 640)
	if err != nil {
		t.Fatalf("downscale: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if cfg.Width != 640 {
		t.Errorf("expected width 640, got %d", cfg.Width)
	}
	if cfg.Height != 360 {
		t.Errorf("expected height 360, got %d", cfg.Height)
	}
}

func TestDownscaleJPEG_Disabled(t *testing.T) {
	frame := []byte("not even a jpeg")

	out, err := DownscaleJPEG(frame, 0)
	if err != nil {
		t.Fatalf("downscale: %v", err)
	}
	if !bytes.Equal(out, frame) {
		t.Error("expected frame to pass through when disabled")
	}
}

func TestDownscaleJPEG_InvalidFrame(t *testing.T) {
	if _, err := DownscaleJPEG([]byte("garbage"), 640); err == nil {
		t.Error("expected error for invalid frame")
	}
}
