package recognition

import (
	"math"

	"github.com/kozaktomas/attendance-tracker/internal/detector"
)

// Score maps expression probabilities to an engagement score in [0,100].
// Positive expressions (happy, surprised, neutral) raise the score,
// negative ones (sad, angry, fearful, disgusted) lower it. A fully
// neutral face lands at 100, a fully negative one at 0, and an
// expressionless detection at the midpoint 50.
func Score(e detector.Expressions) int {
	positive := e.Happy + e.Surprised + e.Neutral
	negative := e.Sad + e.Angry + e.Fearful + e.Disgusted

	raw := (positive - negative + 1) * 50
	return int(math.Round(math.Min(100, math.Max(0, raw))))
}
