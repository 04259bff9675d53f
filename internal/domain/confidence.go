package domain

import "strconv"

// Confidence is the heuristic score attached to one answer. It is
// recomputed for every turn and never reused.
type Confidence struct {
	Score  float64
	Report string
}

// FormatScore prints the score without a trailing ".0", the way the
// activity log and chat replies show it.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
