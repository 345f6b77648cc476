// Package evaluation scores a finished interview transcript with deterministic heuristics.
package evaluation

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/jonathan/interview-planner/internal/skills"
	"github.com/jonathan/interview-planner/internal/types"
)

// Score weights and thresholds
const (
	baseScore           = 4.0
	participationWeight = 3.5
	depthWeight         = 1.5
	coverageWeight      = 1.0

	minScore = 1.0
	maxScore = 10.0

	// depthTarget is the average answer length (characters) that earns full depth credit
	depthTarget = 240.0
	// minExpectedTurns is the participation denominator floor for short plans
	minExpectedTurns = 4

	engagedTurns      = 4
	detailedLength    = 140.0
	conciseLength     = 90.0
	broadCoverage     = 0.8
	fewTurns          = 2
	shortLength       = 80.0
	partialCoverage   = 0.6
	defaultCompletion = "unknown"
)

// Strength and improvement wording
const (
	StrengthParticipation = "Stayed engaged throughout the interview and responded to the interviewer consistently."
	StrengthDetailed      = "Gave detailed answers with supporting context."
	StrengthConcise       = "Explained ideas with concise, focused answers."
	StrengthCoverage      = "Covered most of the planned interview topics."

	ImproveFollowUp = "Increase follow-up detail by responding to more of the interviewer's prompts."
	ImproveSpecific = "Expand answers with specific examples, numbers, and outcomes."
	ImproveProgress = "Progress further through the interview agenda before finishing."
	ImproveDefault  = "Close each answer with an explicit result or measurable outcome."
)

// Input is everything the evaluator reads. Phases and StepSkills are indexed by plan step.
type Input struct {
	Transcript       []types.TranscriptEntry
	Phases           []types.Phase
	StepSkills       []string
	Profile          types.CandidateProfile
	Skills           []string
	CreatedAt        time.Time
	Now              time.Time
	CompletionReason *string
	DurationSeconds  *int
}

// Metrics are the intermediate values the score is built from
type Metrics struct {
	TotalQuestions    int
	TotalResponses    int
	AvgResponseLength float64
	Coverage          float64
	Participation     float64
	Depth             float64
}

// Evaluate produces the evaluation report for a transcript.
func Evaluate(in Input) types.Evaluation {
	m := ComputeMetrics(in.Transcript, in.Phases)

	reason := defaultCompletion
	if in.CompletionReason != nil && *in.CompletionReason != "" {
		reason = *in.CompletionReason
	}

	return types.Evaluation{
		Role:                in.Profile.Role,
		Company:             in.Profile.Company,
		Score:               Score(m),
		Summary:             Summary(m),
		Strengths:           Strengths(m),
		Improvements:        Improvements(m),
		SkillsCovered:       skillsCovered(in.StepSkills, m.TotalQuestions),
		RequirementsSummary: skills.RequirementsSummary(in.Profile, in.Skills),
		CompletionReason:    reason,
		DurationSeconds:     duration(in.DurationSeconds, in.CreatedAt, in.Now),
		TotalQuestions:      m.TotalQuestions,
		TotalResponses:      m.TotalResponses,
		FinalizedAt:         in.Now,
	}
}

// ComputeMetrics counts turns and derives the participation, depth and coverage ratios.
// Coverage is the share of the plan's distinct phases that appear among interviewer turns.
func ComputeMetrics(transcript []types.TranscriptEntry, phases []types.Phase) Metrics {
	var m Metrics
	covered := make(map[types.Phase]bool)
	totalLength := 0

	for _, entry := range transcript {
		switch entry.Role {
		case types.RoleAI:
			m.TotalQuestions++
			if entry.Phase != "" {
				covered[entry.Phase] = true
			}
		case types.RoleUser:
			m.TotalResponses++
			totalLength += utf8.RuneCountInString(entry.Message)
		}
	}

	if m.TotalResponses > 0 {
		m.AvgResponseLength = float64(totalLength) / float64(m.TotalResponses)
	}

	planned := make(map[types.Phase]bool, len(phases))
	for _, phase := range phases {
		planned[phase] = true
	}
	if len(planned) > 0 {
		m.Coverage = math.Min(1.0, float64(len(covered))/float64(len(planned)))
	}

	m.Participation = math.Min(1.0, float64(m.TotalResponses)/float64(max(minExpectedTurns, len(phases))))
	m.Depth = math.Min(1.0, m.AvgResponseLength/depthTarget)
	return m
}

// Score combines the metrics into a 1.0-10.0 score rounded to one decimal.
func Score(m Metrics) float64 {
	raw := baseScore +
		participationWeight*m.Participation +
		depthWeight*m.Depth +
		coverageWeight*m.Coverage
	clamped := math.Max(minScore, math.Min(maxScore, raw))
	return math.Round(clamped*10) / 10
}

// Strengths lists every strength whose condition holds, in a fixed order. It may be empty.
func Strengths(m Metrics) []string {
	out := []string{}
	if m.TotalResponses >= engagedTurns {
		out = append(out, StrengthParticipation)
	}
	if m.AvgResponseLength >= detailedLength {
		out = append(out, StrengthDetailed)
	} else if m.AvgResponseLength >= conciseLength {
		out = append(out, StrengthConcise)
	}
	if m.Coverage >= broadCoverage {
		out = append(out, StrengthCoverage)
	}
	return out
}

// Improvements lists every triggered improvement, falling back to a default one.
// The result is never empty.
func Improvements(m Metrics) []string {
	out := []string{}
	if m.TotalResponses <= fewTurns {
		out = append(out, ImproveFollowUp)
	}
	if m.AvgResponseLength < shortLength {
		out = append(out, ImproveSpecific)
	}
	if m.Coverage < partialCoverage {
		out = append(out, ImproveProgress)
	}
	if len(out) == 0 {
		out = append(out, ImproveDefault)
	}
	return out
}

// Summary renders the one-paragraph performance summary.
func Summary(m Metrics) string {
	summary := fmt.Sprintf(
		"The candidate gave %d responses across %d interview prompts and covered %d%% of the planned agenda.",
		m.TotalResponses,
		max(m.TotalQuestions, m.TotalResponses),
		int(m.Coverage*100),
	)
	if avg := int(m.AvgResponseLength); avg != 0 {
		summary += fmt.Sprintf(" Average answer length was %d characters.", avg)
	}
	return summary
}

// skillsCovered returns the skills whose question was asked. Interviewer turns are produced
// in plan order, so the first asked steps are exactly the first plan steps.
func skillsCovered(stepSkills []string, asked int) []string {
	out := []string{}
	for i := 0; i < asked && i < len(stepSkills); i++ {
		if stepSkills[i] != "" {
			out = append(out, stepSkills[i])
		}
	}
	return out
}

func duration(supplied *int, createdAt, now time.Time) int {
	if supplied != nil {
		return *supplied
	}
	elapsed := int(now.Sub(createdAt).Seconds())
	return max(0, elapsed)
}
