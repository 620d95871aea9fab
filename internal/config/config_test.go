package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default MaxOpenConns=25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Detector.Dim != 128 {
		t.Errorf("expected default descriptor dim=128, got %d", cfg.Detector.Dim)
	}
	if cfg.Recognition.SampleInterval != 2*time.Second {
		t.Errorf("expected default sample interval 2s, got %v", cfg.Recognition.SampleInterval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")
	t.Setenv("DETECTOR_DIM", "512")
	t.Setenv("SAMPLE_INTERVAL", "5s")

	cfg := Load()

	if cfg.Database.URL != "postgres://test" {
		t.Errorf("expected DATABASE_URL to be read, got '%s'", cfg.Database.URL)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("expected MaxOpenConns=10, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Detector.Dim != 512 {
		t.Errorf("expected detector dim=512, got %d", cfg.Detector.Dim)
	}
	if cfg.Recognition.SampleInterval != 5*time.Second {
		t.Errorf("expected sample interval 5s, got %v", cfg.Recognition.SampleInterval)
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("SAMPLE_INTERVAL", "-3s")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected fallback MaxOpenConns=25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Recognition.SampleInterval != 2*time.Second {
		t.Errorf("expected fallback sample interval 2s, got %v", cfg.Recognition.SampleInterval)
	}
}

func TestScoringConfig_EmbeddedPolicy(t *testing.T) {
	cfg := Load()

	if cfg.Scoring.MatchThreshold != 0.6 {
		t.Errorf("expected match threshold 0.6, got %f", cfg.Scoring.MatchThreshold)
	}
	if cfg.Scoring.ShortageThreshold != 75 {
		t.Errorf("expected shortage threshold 75, got %d", cfg.Scoring.ShortageThreshold)
	}

	ratings := map[string]int{"High": 90, "Medium": 60, "Low": 30, "None": 0}
	for label, want := range ratings {
		if got := cfg.Scoring.RatingScore(label); got != want {
			t.Errorf("rating %s: expected score %d, got %d", label, want, got)
		}
	}
}

func TestScoringConfig_UnknownRating(t *testing.T) {
	cfg := Load()

	if got := cfg.Scoring.RatingScore("Fantastic"); got != 0 {
		t.Errorf("unknown rating should score 0, got %d", got)
	}
}
