package interview

import (
	"context"

	"github.com/jonathan/interview-planner/internal/db"
	"github.com/jonathan/interview-planner/internal/planner"
)

type candidateKey struct{}

// WithCandidate returns a context whose service calls act on behalf of candidateID.
// Sessions started under it belong to that candidate and are invisible to others.
func WithCandidate(ctx context.Context, candidateID string) context.Context {
	return context.WithValue(ctx, candidateKey{}, candidateID)
}

// CandidateFrom returns the candidate set by WithCandidate, or "" when the API runs
// without auth.
func CandidateFrom(ctx context.Context) string {
	id, _ := ctx.Value(candidateKey{}).(string)
	return id
}

func ownedBy(ctx context.Context, session *planner.Session) bool {
	return session.CandidateID == CandidateFrom(ctx)
}

// ownsReport lets an anonymous caller read any report, matching ListReports with an
// empty candidate.
func ownsReport(ctx context.Context, r *db.Report) bool {
	caller := CandidateFrom(ctx)
	return caller == "" || r.CandidateID == caller
}
