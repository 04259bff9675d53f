package confidence_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"warehouse-assistant-bot/internal/domain"
	"warehouse-assistant-bot/internal/usecase/confidence"
)

// fixedSource always returns n, so jitter is n-5.
type fixedSource int

func (f fixedSource) Intn(int) int { return int(f) }

func TestScoreNoData(t *testing.T) {
	s := confidence.NewScorer(fixedSource(10))

	tests := []struct {
		name     string
		question string
		answer   string
	}{
		{name: "exact marker", question: "Where is shipment 99?", answer: domain.DataNotAvailable},
		{name: "marker inside answer", question: "x", answer: "Sorry. Data not available. Please upload."},
		{name: "empty answer", question: "Where is shipment 99?", answer: ""},
		{name: "blank answer", question: "Where is shipment 99?", answer: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.question, tt.answer, "")
			assert.Equal(t, 0.0, got.Score)
			assert.Equal(t, confidence.ReportNoData, got.Report)
		})
	}
}

func TestScoreHeuristic(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		answer     string
		jitter     fixedSource
		wantScore  float64
		wantReport string
	}{
		{
			// 20/10*10 = 20, clamped up
			name:     "short answer clamps to floor",
			question: strings.Repeat("q", 10), answer: strings.Repeat("a", 20),
			jitter: 5, wantScore: 50, wantReport: confidence.ReportVerify,
		},
		{
			// 60/10*10 = 60, +0
			name:     "middle band needs verification",
			question: strings.Repeat("q", 10), answer: strings.Repeat("a", 60),
			jitter: 5, wantScore: 60, wantReport: confidence.ReportVerify,
		},
		{
			// 75/10*10 = 75, -5
			name:     "jitter applied before clamp",
			question: strings.Repeat("q", 10), answer: strings.Repeat("a", 75),
			jitter: 0, wantScore: 70, wantReport: confidence.ReportVerify,
		},
		{
			// 72/9*10 = 80, +3
			name:     "aligned above seventy",
			question: strings.Repeat("q", 9), answer: strings.Repeat("a", 72),
			jitter: 8, wantScore: 83, wantReport: confidence.ReportAligned,
		},
		{
			// 20/3*10 = 66.66.., +5 = 71.66.. -> 71.7
			name:     "rounded to one decimal",
			question: "abc", answer: strings.Repeat("a", 20),
			jitter: 10, wantScore: 71.7, wantReport: confidence.ReportAligned,
		},
		{
			name:     "long answer clamps to ceiling",
			question: "hi", answer: strings.Repeat("a", 500),
			jitter: 10, wantScore: 100, wantReport: confidence.ReportAligned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidence.NewScorer(tt.jitter).Score(tt.question, tt.answer, "")
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantReport, got.Report)
		})
	}
}

func TestScoreStaysInRange(t *testing.T) {
	s := confidence.NewScorer(rand.New(rand.NewSource(42)))
	answers := []string{"ok", "SKU-123 has 45 units in aisle 4.", strings.Repeat("long ", 200)}

	for i := 0; i < 500; i++ {
		got := s.Score("What is SKU-123's quantity?", answers[i%len(answers)], "records")
		assert.GreaterOrEqual(t, got.Score, confidence.MinScore)
		assert.LessOrEqual(t, got.Score, confidence.MaxScore)
	}
}

func TestScoreEmptyQuestionDoesNotPanic(t *testing.T) {
	// question length counts as one
	got := confidence.NewScorer(fixedSource(5)).Score("", "answer", "")
	assert.Equal(t, 60.0, got.Score)
}
