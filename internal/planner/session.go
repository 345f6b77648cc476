package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-planner/internal/evaluation"
	"github.com/jonathan/interview-planner/internal/skills"
	"github.com/jonathan/interview-planner/internal/types"
)

// Session is the mutable state of one interview. It is plain data so that any store
// can hold it; all transitions go through an Engine.
type Session struct {
	ID string `json:"id"`
	// CandidateID owns the session; empty when the API runs without auth
	CandidateID string                  `json:"candidateId,omitempty"`
	Profile     types.CandidateProfile  `json:"profile"`
	Skills      []string                `json:"skills"`
	Plan        Plan                    `json:"plan"`
	StepIndex   int                     `json:"stepIndex"`
	Phase       types.Phase             `json:"phase"`
	Completed   bool                    `json:"completed"`
	CreatedAt   time.Time               `json:"createdAt"`
	Transcript  []types.TranscriptEntry `json:"transcript"`
}

// Brief returns the question context for the session's profile.
func (s *Session) Brief() Brief {
	return newBrief(s.Profile, s.Skills)
}

// Validate checks a session decoded from storage before the engine acts on it.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session has no id")
	}
	if s.StepIndex < 0 || s.StepIndex > len(s.Plan) {
		return fmt.Errorf("session %s: step index %d outside plan of %d steps", s.ID, s.StepIndex, len(s.Plan))
	}
	for i, step := range s.Plan {
		if !step.Kind.Valid() {
			return fmt.Errorf("session %s: step %d has unknown kind %q", s.ID, i, step.Kind)
		}
	}
	return nil
}

// Remaining returns how many plan steps have not been asked yet.
func (s *Session) Remaining() int {
	return len(s.Plan) - s.StepIndex
}

// FinalizeOptions carries the caller-supplied parts of an evaluation
type FinalizeOptions struct {
	CompletionReason *string
	DurationSeconds  *int
}

// Engine performs session transitions with an injected clock and id generator
type Engine struct {
	clock Clock
	newID func() string
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for timestamps.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithIDGenerator sets the session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine creates an engine using the system clock and random UUIDs unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock: SystemClock,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Start creates a session for the profile. No question is asked yet.
func (e *Engine) Start(profile types.CandidateProfile) *Session {
	skillList := skills.ParseSkillList(profile.Skills)
	return &Session{
		ID:         e.newID(),
		Profile:    profile,
		Skills:     skillList,
		Plan:       buildPlan(profile, skillList),
		Phase:      types.PhaseIntroduction,
		CreatedAt:  e.clock.Now(),
		Transcript: []types.TranscriptEntry{},
	}
}

// Advance asks the question of the current plan step and moves to the next one.
// Once the plan is exhausted the session is complete and every further call returns
// the closing acknowledgment without touching the session.
func (e *Engine) Advance(s *Session, latestUserMessage string) types.Turn {
	if s.Completed || s.StepIndex >= len(s.Plan) {
		s.Completed = true
		return types.Turn{
			Message: ClosingAcknowledgment(),
			Phase:   types.PhaseClosing,
			Done:    true,
		}
	}

	step := s.Plan[s.StepIndex]
	message := step.Question(s.Brief(), latestUserMessage)

	s.Transcript = append(s.Transcript, types.TranscriptEntry{
		Role:      types.RoleAI,
		Message:   message,
		Timestamp: e.clock.Now(),
		Phase:     step.Phase,
	})
	s.Phase = step.Phase
	s.StepIndex++
	if s.StepIndex >= len(s.Plan) {
		s.Completed = true
	}

	return types.Turn{Message: message, Phase: step.Phase, Done: s.Completed}
}

// RecordUserMessage appends a candidate answer tagged with the phase in effect.
// It does not advance the plan.
func (e *Engine) RecordUserMessage(s *Session, message string) {
	s.Transcript = append(s.Transcript, types.TranscriptEntry{
		Role:      types.RoleUser,
		Message:   message,
		Timestamp: e.clock.Now(),
		Phase:     s.Phase,
	})
}

// Finalize scores the session transcript. The session itself is left unchanged;
// removing it from storage is the caller's job.
func (e *Engine) Finalize(s *Session, opts FinalizeOptions) types.Evaluation {
	report := evaluation.Evaluate(evaluation.Input{
		Transcript:       s.Transcript,
		Phases:           s.Plan.Phases(),
		StepSkills:       s.Plan.StepSkills(),
		Profile:          s.Profile,
		Skills:           s.Skills,
		CreatedAt:        s.CreatedAt,
		Now:              e.clock.Now(),
		CompletionReason: opts.CompletionReason,
		DurationSeconds:  opts.DurationSeconds,
	})
	report.SessionID = s.ID
	return report
}
