package progress

import "math"

// percent projects the overall completion percentage from the gate and
// the per-stage tickers. The gate counts as one fixed unit; each subtitle
// of a concurrent stage counts as one unit. Monotone over the
// coordinator's lifetime and 100 exactly when everything is done: with
// many units, rounding alone would show 100 a tick early (e.g. 199/200),
// so an unfinished breakdown is held at 99.
func percent(gateDone bool, tickers []ticker) int {
	total := 1
	done := 0
	if gateDone {
		done = 1
	}
	allDone := gateDone
	for _, t := range tickers {
		total += t.total
		done += min(t.revealed, t.total)
		if t.revealed < t.total {
			allDone = false
		}
	}
	if total < 1 {
		total = 1
	}
	p := int(math.Round(100 * float64(done) / float64(total)))
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if !allDone && p > 99 {
		p = 99
	}
	return p
}
