package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed scoring.yaml
var scoringYAML []byte

type Config struct {
	Database    DatabaseConfig
	MIS         MISConfig
	Detector    DetectorConfig
	Recognition RecognitionConfig
	Scoring     ScoringConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type MISConfig struct {
	DatabaseURL string // MariaDB DSN of the legacy school information system (roster import only)
}

type DetectorConfig struct {
	URL           string // face detection sidecar base URL (e.g., http://localhost:8500)
	Dim           int    // descriptor dimensionality, must match enrolled templates (default 128)
	MaxFrameWidth int    // frames wider than this are downscaled before upload (default 1280)
}

type RecognitionConfig struct {
	SampleInterval time.Duration // delay between camera samples (default 2s)
	CameraURL      string        // snapshot endpoint returning a JPEG frame
}

// ScoringConfig holds the fixed scoring policy shipped with the binary.
// The values come from the embedded scoring.yaml file.
type ScoringConfig struct {
	MatchThreshold    float64        `yaml:"match_threshold"`
	ShortageThreshold int            `yaml:"shortage_threshold"`
	RatingScores      map[string]int `yaml:"rating_scores"`
}

// RatingScore translates an engagement rating label to its numeric score.
// Unknown labels map to zero, same as an explicit "None" rating.
func (c *ScoringConfig) RatingScore(label string) int {
	return c.RatingScores[label]
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a duration.
// Returns the default value if the env var is unset, empty, or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func Load() *Config {
	var scoring ScoringConfig
	if err := yaml.Unmarshal(scoringYAML, &scoring); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded scoring.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		MIS: MISConfig{
			DatabaseURL: os.Getenv("MIS_DATABASE_URL"),
		},
		Detector: DetectorConfig{
			URL:           os.Getenv("DETECTOR_URL"),
			Dim:           envInt("DETECTOR_DIM", 128),
			MaxFrameWidth: envInt("DETECTOR_MAX_FRAME_WIDTH", 1280),
		},
		Recognition: RecognitionConfig{
			SampleInterval: envDuration("SAMPLE_INTERVAL", 2*time.Second),
			CameraURL:      os.Getenv("CAMERA_URL"),
		},
		Scoring: scoring,
	}
}
