package db

import (
	"time"

	"github.com/jonathan/interview-planner/internal/types"
)

// DefaultReportListLimit caps ListReports when no limit is given
const DefaultReportListLimit = 50

// MaxReportListLimit is the largest page ListReports will return
const MaxReportListLimit = 500

// Report is a persisted interview evaluation together with its transcript
type Report struct {
	types.Evaluation
	Transcript []types.TranscriptEntry `json:"transcript"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// NewReport builds a report row from an evaluation.
func NewReport(eval types.Evaluation, transcript []types.TranscriptEntry) *Report {
	if transcript == nil {
		transcript = []types.TranscriptEntry{}
	}
	return &Report{Evaluation: eval, Transcript: transcript}
}

// clampLimit normalizes a caller supplied page size
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultReportListLimit
	}
	if limit > MaxReportListLimit {
		return MaxReportListLimit
	}
	return limit
}
