package performance

import "github.com/samber/lo"

const (
	// TrendWindow is the number of scores compared on each side.
	TrendWindow = 3

	// TrendThreshold is the mean difference, in percentage points, that
	// must be exceeded to call a trend.
	TrendThreshold = 10.0
)

// ClassifyTrend compares the mean of the last TrendWindow scores with the
// mean of up to TrendWindow scores before them.
func ClassifyTrend(scores []float64) Trend {
	if len(scores) < TrendWindow {
		return TrendStable
	}

	recent := scores[len(scores)-TrendWindow:]
	priorEnd := len(scores) - TrendWindow
	prior := scores[max(0, priorEnd-TrendWindow):priorEnd]
	if len(prior) == 0 {
		return TrendStable
	}

	diff := mean(recent) - mean(prior)
	switch {
	case diff > TrendThreshold:
		return TrendImproving
	case diff < -TrendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}
