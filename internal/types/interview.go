// Package types provides type definitions for structured data used throughout the interview planner.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Phase names a stage of the interview agenda
type Phase string

// Interview phases in agenda order
const (
	PhaseIntroduction          Phase = "introduction"
	PhaseTechnicalBasic        Phase = "technical-basic"
	PhaseTechnicalIntermediate Phase = "technical-intermediate"
	PhaseTechnicalAdvanced     Phase = "technical-advanced"
	PhaseBehavioral            Phase = "behavioral"
	PhaseClosing               Phase = "closing"
)

// Transcript roles
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// CandidateProfile is the candidate and job metadata supplied when an interview starts.
// Every field is optional; Skills is free text delimited by commas, semicolons or newlines.
type CandidateProfile struct {
	Role       string `json:"role" yaml:"role"`
	Experience string `json:"experience" yaml:"experience"`
	Company    string `json:"company" yaml:"company"`
	Skills     string `json:"skills" yaml:"skills"`
	Focus      string `json:"focus" yaml:"focus"`
	Industry   string `json:"industry" yaml:"industry"`
}

// TranscriptEntry is a single turn in the interview transcript
type TranscriptEntry struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Phase     Phase     `json:"phase,omitempty"`
}

// Turn is the interviewer output of one advance of the plan
type Turn struct {
	Message string `json:"message"`
	Phase   Phase  `json:"phase"`
	Done    bool   `json:"done"`
}

// Evaluation is the heuristic report produced when an interview is finalized
type Evaluation struct {
	SessionID           string    `json:"sessionId"`
	CandidateID         string    `json:"candidateId,omitempty"`
	Role                string    `json:"role"`
	Company             string    `json:"company"`
	Score               float64   `json:"score"`
	Summary             string    `json:"summary"`
	Strengths           []string  `json:"strengths"`
	Improvements        []string  `json:"improvements"`
	SkillsCovered       []string  `json:"skillsCovered"`
	RequirementsSummary string    `json:"requirementsSummary"`
	CompletionReason    string    `json:"completionReason"`
	DurationSeconds     int       `json:"durationSeconds"`
	TotalQuestions      int       `json:"totalQuestions"`
	TotalResponses      int       `json:"totalResponses"`
	FinalizedAt         time.Time `json:"finalizedAt"`
}
