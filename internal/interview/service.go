// Package interview runs interview sessions on top of the planner engine, a session
// store, and an optional report repository.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/interview-planner/internal/db"
	"github.com/jonathan/interview-planner/internal/logger"
	"github.com/jonathan/interview-planner/internal/planner"
	"github.com/jonathan/interview-planner/internal/schemas"
	"github.com/jonathan/interview-planner/internal/store"
	"github.com/jonathan/interview-planner/internal/types"
)

// ReportRepository persists finalized reports. An empty candidateID matches every report.
type ReportRepository interface {
	SaveReport(ctx context.Context, r *db.Report) error
	GetReport(ctx context.Context, sessionID string) (*db.Report, error)
	ListReports(ctx context.Context, candidateID string, limit int) ([]db.Report, error)
	DeleteReport(ctx context.Context, sessionID, candidateID string) error
}

// sweeper is implemented by stores that expire idle sessions themselves on request
type sweeper interface {
	Sweep(ttl time.Duration) []string
}

// Service provides the interview operations used by the HTTP API and the CLI
type Service struct {
	engine   *planner.Engine
	sessions store.Store
	reports  ReportRepository
	log      *logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithReports enables report persistence.
func WithReports(r ReportRepository) Option {
	return func(s *Service) {
		s.reports = r
	}
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a new Service with the given dependencies
func NewService(engine *planner.Engine, sessions store.Store, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		sessions: sessions,
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates a session owned by the candidate in ctx, asks the introduction, and
// stores the session.
func (s *Service) Start(ctx context.Context, profile types.CandidateProfile) (*planner.Session, types.Turn, error) {
	session := s.engine.Start(profile)
	session.CandidateID = CandidateFrom(ctx)
	turn := s.engine.Advance(session, "")

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, types.Turn{}, fmt.Errorf("failed to store session: %w", err)
	}

	s.log.Info("interview started",
		"session_id", session.ID,
		"candidate_id", session.CandidateID,
		"role", profile.Role,
		"company", profile.Company,
		"plan_steps", len(session.Plan),
		"skills", len(session.Skills),
	)
	return session, turn, nil
}

// Reply records the candidate's answer and returns the next question.
func (s *Service) Reply(ctx context.Context, id, message string) (types.Turn, error) {
	if strings.TrimSpace(message) == "" {
		return types.Turn{}, &ErrValidation{Field: "message", Message: "must not be blank"}
	}

	var turn types.Turn
	err := s.update(ctx, id, func(session *planner.Session) error {
		s.engine.RecordUserMessage(session, message)
		turn = s.engine.Advance(session, message)
		return nil
	})
	if err != nil {
		return types.Turn{}, err
	}

	s.log.Debug("interview turn", "session_id", id, "phase", turn.Phase, "done", turn.Done)
	return turn, nil
}

// Advance asks the next question without recording an answer.
func (s *Service) Advance(ctx context.Context, id, latestUserMessage string) (types.Turn, error) {
	var turn types.Turn
	err := s.update(ctx, id, func(session *planner.Session) error {
		turn = s.engine.Advance(session, latestUserMessage)
		return nil
	})
	return turn, err
}

// Record appends a candidate answer without advancing the plan.
func (s *Service) Record(ctx context.Context, id, message string) error {
	if strings.TrimSpace(message) == "" {
		return &ErrValidation{Field: "message", Message: "must not be blank"}
	}
	return s.update(ctx, id, func(session *planner.Session) error {
		s.engine.RecordUserMessage(session, message)
		return nil
	})
}

// Get returns a snapshot of the session.
func (s *Service) Get(ctx context.Context, id string) (*planner.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(id, err)
	}
	if !ownedBy(ctx, session) {
		return nil, &ErrSessionNotFound{SessionID: id}
	}
	return session, nil
}

// Finalize evaluates the session, persists the report when a repository is
// configured, and removes the session. Scoring and saving run under the session's
// store lock, so no answer can slip in between them. A failed save leaves the session
// in place.
func (s *Service) Finalize(ctx context.Context, id string, opts planner.FinalizeOptions) (types.Evaluation, error) {
	var eval types.Evaluation
	err := s.sessions.Take(ctx, id, func(session *planner.Session) error {
		if !ownedBy(ctx, session) {
			return store.ErrNotFound
		}

		eval = s.engine.Finalize(session, opts)
		eval.CandidateID = session.CandidateID

		if s.reports == nil {
			return nil
		}
		report := db.NewReport(eval, session.Transcript)
		if err := schemas.ValidateReport(report); err != nil {
			return fmt.Errorf("report failed schema validation: %w", err)
		}
		if err := s.reports.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Evaluation{}, &ErrSessionNotFound{SessionID: id}
		}
		s.log.Error("failed to finalize interview", "session_id", id, "error", err)
		return types.Evaluation{}, err
	}

	s.log.Info("interview finalized",
		"session_id", id,
		"candidate_id", eval.CandidateID,
		"score", eval.Score,
		"completion_reason", eval.CompletionReason,
		"duration_seconds", eval.DurationSeconds,
		"persisted", s.reports != nil,
	)
	return eval, nil
}

// Terminate ends a session without evaluating it.
func (s *Service) Terminate(ctx context.Context, id string) error {
	err := s.sessions.Take(ctx, id, func(session *planner.Session) error {
		if !ownedBy(ctx, session) {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return s.mapStoreErr(id, err)
	}
	s.log.Info("interview terminated", "session_id", id)
	return nil
}

// Report returns a stored report.
func (s *Service) Report(ctx context.Context, id string) (*db.Report, error) {
	if s.reports == nil {
		return nil, &ErrReportNotFound{SessionID: id}
	}
	r, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if r == nil || !ownsReport(ctx, r) {
		return nil, &ErrReportNotFound{SessionID: id}
	}
	return r, nil
}

// DeleteReport removes a stored report owned by the candidate in ctx.
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	if s.reports == nil {
		return &ErrReportNotFound{SessionID: id}
	}
	if err := s.reports.DeleteReport(ctx, id, CandidateFrom(ctx)); err != nil {
		if errors.Is(err, db.ErrReportNotFound) {
			return &ErrReportNotFound{SessionID: id}
		}
		return fmt.Errorf("failed to delete report: %w", err)
	}
	s.log.Info("interview report deleted", "session_id", id)
	return nil
}

// Reports lists stored reports of the candidate in ctx, newest first. Without a
// repository the list is empty.
func (s *Service) Reports(ctx context.Context, limit int) ([]db.Report, error) {
	if s.reports == nil {
		return []db.Report{}, nil
	}
	reports, err := s.reports.ListReports(ctx, CandidateFrom(ctx), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	if reports == nil {
		reports = []db.Report{}
	}
	return reports, nil
}

// SweepIdle removes sessions idle for longer than ttl. Stores that expire sessions
// on their own are left alone.
func (s *Service) SweepIdle(ctx context.Context, ttl time.Duration) []string {
	sw, ok := s.sessions.(sweeper)
	if !ok {
		return nil
	}
	removed := sw.Sweep(ttl)
	if len(removed) > 0 {
		remaining, _ := s.sessions.Len(ctx)
		s.log.Info("expired idle sessions", "count", len(removed), "remaining", remaining)
	}
	return removed
}

// update runs fn on a session owned by the candidate in ctx.
func (s *Service) update(ctx context.Context, id string, fn func(*planner.Session) error) error {
	err := s.sessions.Update(ctx, id, func(session *planner.Session) error {
		if !ownedBy(ctx, session) {
			return store.ErrNotFound
		}
		return fn(session)
	})
	if err != nil {
		return s.mapStoreErr(id, err)
	}
	return nil
}

func (s *Service) mapStoreErr(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &ErrSessionNotFound{SessionID: id}
	}
	s.log.Error("session store failure", "session_id", id, "error", err)
	return fmt.Errorf("session store: %w", err)
}
