package metrics

// Streaks finds the longest runs of consecutive wins (roi > 0) and losses
// (roi < 0) in a single left-to-right scan. Zero-ROI trades break both
// streaks. Input order matters and must match the CallSource return order.
func Streaks(rois []float64) (maxWins, maxLosses int) {
	curWins := 0
	curLosses := 0

	for _, r := range rois {
		switch {
		case r > 0:
			curWins++
			curLosses = 0
		case r < 0:
			curLosses++
			curWins = 0
		default:
			curWins = 0
			curLosses = 0
		}
		if curWins > maxWins {
			maxWins = curWins
		}
		if curLosses > maxLosses {
			maxLosses = curLosses
		}
	}
	return maxWins, maxLosses
}
