package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/interview-planner/internal/interview"
	"github.com/jonathan/interview-planner/internal/planner"
	"github.com/jonathan/interview-planner/internal/types"
)

// StartResponse is returned by POST /api/interview/start
type StartResponse struct {
	SessionID string       `json:"sessionId"`
	Message   string       `json:"message"`
	Phase     types.Phase  `json:"phase"`
	Done      bool         `json:"done"`
	Plan      planner.Plan `json:"plan"`
}

// TurnResponse is returned by POST /api/interview/message
type TurnResponse struct {
	SessionID string      `json:"sessionId"`
	Message   string      `json:"message"`
	Phase     types.Phase `json:"phase"`
	Done      bool        `json:"done"`
}

// SessionResponse is the snapshot returned by GET /api/interview/{id}
type SessionResponse struct {
	SessionID  string                  `json:"sessionId"`
	Profile    types.CandidateProfile  `json:"profile"`
	Skills     []string                `json:"skills"`
	Plan       planner.Plan            `json:"plan"`
	StepIndex  int                     `json:"stepIndex"`
	Phase      types.Phase             `json:"phase"`
	Done       bool                    `json:"done"`
	CreatedAt  time.Time               `json:"createdAt"`
	Transcript []types.TranscriptEntry `json:"transcript"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "planner": "rule-based"})
}

// handleStart creates a session and returns the introduction
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req types.StartInterviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, turn, err := s.service.Start(r.Context(), req.Profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, StartResponse{
		SessionID: session.ID,
		Message:   turn.Message,
		Phase:     turn.Phase,
		Done:      turn.Done,
		Plan:      session.Plan,
	})
}

// handleMessage records an answer and returns the next question
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req types.MessageRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}

	turn, err := s.service.Reply(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, TurnResponse{
		SessionID: req.SessionID,
		Message:   turn.Message,
		Phase:     turn.Phase,
		Done:      turn.Done,
	})
}

// handleFinalize evaluates and closes a session
func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	var req types.FinalizeInterviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}

	eval, err := s.service.Finalize(r.Context(), req.SessionID, planner.FinalizeOptions{
		CompletionReason: req.CompletionReason,
		DurationSeconds:  req.DurationSeconds,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, eval)
}

// handleTerminate ends a session without a report
func (s *Server) handleTerminate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.Terminate(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "terminated", "sessionId": id})
}

// handleGetSession returns a session snapshot
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, SessionResponse{
		SessionID:  session.ID,
		Profile:    session.Profile,
		Skills:     session.Skills,
		Plan:       session.Plan,
		StepIndex:  session.StepIndex,
		Phase:      session.Phase,
		Done:       session.Completed,
		CreatedAt:  session.CreatedAt,
		Transcript: session.Transcript,
	})
}

// handleListReports lists persisted reports; ?limit= bounds the page
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, &interview.ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	reports, err := s.service.Reports(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"reports": reports, "count": len(reports)})
}

// handleGetReport returns one persisted report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleDeleteReport removes one persisted report
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteReport(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted", "sessionId": id})
}

// decodeBody reads a size-limited JSON body into dst
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrBadRequest{Message: "request body is empty"}
		}
		return &ErrBadRequest{Message: "invalid JSON body"}
	}
	return nil
}
