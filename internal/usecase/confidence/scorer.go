// Package confidence scores answers with a length-ratio heuristic.
//
// The score is approximate by construction: it says nothing about
// whether an answer is semantically correct, only whether it looks like
// a substantive reply to the question. A jitter term of up to five
// points is added before clamping, so the result is deterministic only
// for a seeded random source.
package confidence

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"warehouse-assistant-bot/internal/domain"
)

const (
	ReportNoData  = "No data found to validate."
	ReportAligned = "Response aligns with available data."
	ReportVerify  = "Response may need verification."

	MinScore = 50.0
	MaxScore = 100.0

	lengthFactor   = 10.0
	jitterSpan     = 5
	alignThreshold = 70.0
)

// Source is the random source used for jitter. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

type Scorer struct {
	mu  sync.Mutex
	rnd Source
}

// NewScorer uses rnd for jitter, or a time-seeded source when rnd is nil.
func NewScorer(rnd Source) *Scorer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scorer{rnd: rnd}
}

// Score rates answer against question. records is accepted for the
// contract but does not influence the heuristic.
func (s *Scorer) Score(question, answer, records string) domain.Confidence {
	if strings.TrimSpace(answer) == "" || strings.Contains(answer, strings.TrimSuffix(domain.DataNotAvailable, ".")) {
		return domain.Confidence{Score: 0, Report: ReportNoData}
	}

	qLen := utf8.RuneCountInString(question)
	if qLen == 0 {
		qLen = 1
	}
	base := float64(utf8.RuneCountInString(answer)) / float64(qLen) * lengthFactor
	score := clamp(base+float64(s.jitter()), MinScore, MaxScore)
	score = math.Round(score*10) / 10

	report := ReportVerify
	if score > alignThreshold {
		report = ReportAligned
	}
	return domain.Confidence{Score: score, Report: report}
}

// jitter returns an integer in [-jitterSpan, jitterSpan].
func (s *Scorer) jitter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(2*jitterSpan+1) - jitterSpan
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
