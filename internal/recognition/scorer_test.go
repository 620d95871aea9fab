package recognition

import (
	"testing"

	"github.com/kozaktomas/attendance-tracker/internal/detector"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		expr detector.Expressions
		want int
	}{
		{"expressionless", detector.Expressions{}, 50},
		{"fully neutral", detector.Expressions{Neutral: 1}, 100},
		{"fully happy", detector.Expressions{Happy: 1}, 100},
		{"fully angry", detector.Expressions{Angry: 1}, 0},
		{"mixed mild", detector.Expressions{Happy: 0.3, Sad: 0.1}, 60},
		{"neutral with some sadness", detector.Expressions{Neutral: 0.5, Sad: 0.3}, 60},
		{"clamped high", detector.Expressions{Happy: 1, Surprised: 1, Neutral: 1}, 100},
		{"clamped low", detector.Expressions{Sad: 1, Angry: 1, Fearful: 1, Disgusted: 1}, 0},
		{"rounded", detector.Expressions{Happy: 0.105}, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.expr); got != tt.want {
				t.Errorf("Score(%+v) = %d, want %d", tt.expr, got, tt.want)
			}
		})
	}
}
