package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Interview Report Methods
// -----------------------------------------------------------------------------

// ErrReportNotFound is returned by DeleteReport when no matching row exists
var ErrReportNotFound = errors.New("report not found")

const reportColumns = `session_id, candidate_id, role, company, score, summary, strengths,
		improvements, skills_covered, requirements_summary, completion_reason,
		duration_seconds, total_questions, total_responses, transcript, finalized_at, created_at`

// SaveReport stores a finalized report. Saving the same session twice replaces the row.
func (db *DB) SaveReport(ctx context.Context, r *Report) error {
	strengthsJSON, err := json.Marshal(nonNil(r.Strengths))
	if err != nil {
		return fmt.Errorf("failed to marshal strengths: %w", err)
	}
	improvementsJSON, err := json.Marshal(nonNil(r.Improvements))
	if err != nil {
		return fmt.Errorf("failed to marshal improvements: %w", err)
	}
	skillsJSON, err := json.Marshal(nonNil(r.SkillsCovered))
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}
	transcriptJSON, err := json.Marshal(r.Transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO interview_reports (session_id, candidate_id, role, company, score, summary,
		        strengths, improvements, skills_covered, requirements_summary, completion_reason,
		        duration_seconds, total_questions, total_responses, transcript, finalized_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (session_id) DO UPDATE SET
		     candidate_id = $2, role = $3, company = $4, score = $5, summary = $6,
		     strengths = $7, improvements = $8, skills_covered = $9,
		     requirements_summary = $10, completion_reason = $11, duration_seconds = $12,
		     total_questions = $13, total_responses = $14, transcript = $15, finalized_at = $16
		 RETURNING created_at`,
		r.SessionID, r.CandidateID, r.Role, r.Company, r.Score, r.Summary,
		strengthsJSON, improvementsJSON, skillsJSON, r.RequirementsSummary, r.CompletionReason,
		r.DurationSeconds, r.TotalQuestions, r.TotalResponses, transcriptJSON, r.FinalizedAt,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", r.SessionID, err)
	}
	return nil
}

// GetReport retrieves a report by session id. It returns nil, nil when none exists.
func (db *DB) GetReport(ctx context.Context, sessionID string) (*Report, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM interview_reports WHERE session_id = $1`,
		sessionID,
	)
	r, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return r, nil
}

// ListReports returns the most recently finalized reports first. A non-empty
// candidateID restricts the list to that candidate's reports.
func (db *DB) ListReports(ctx context.Context, candidateID string, limit int) ([]Report, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM interview_reports
		 WHERE ($1 = '' OR candidate_id = $1)
		 ORDER BY finalized_at DESC LIMIT $2`,
		candidateID, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// DeleteReport removes a stored report. A non-empty candidateID only deletes the
// report if it belongs to that candidate.
func (db *DB) DeleteReport(ctx context.Context, sessionID, candidateID string) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM interview_reports WHERE session_id = $1 AND ($2 = '' OR candidate_id = $2)`,
		sessionID, candidateID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrReportNotFound, sessionID)
	}
	return nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var r Report
	var strengthsJSON, improvementsJSON, skillsJSON, transcriptJSON []byte

	err := row.Scan(&r.SessionID, &r.CandidateID, &r.Role, &r.Company, &r.Score, &r.Summary,
		&strengthsJSON, &improvementsJSON, &skillsJSON, &r.RequirementsSummary,
		&r.CompletionReason, &r.DurationSeconds, &r.TotalQuestions, &r.TotalResponses,
		&transcriptJSON, &r.FinalizedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	// Parse JSONB fields
	if err := decodeJSONB(strengthsJSON, &r.Strengths); err != nil {
		return nil, err
	}
	if err := decodeJSONB(improvementsJSON, &r.Improvements); err != nil {
		return nil, err
	}
	if err := decodeJSONB(skillsJSON, &r.SkillsCovered); err != nil {
		return nil, err
	}
	if err := decodeJSONB(transcriptJSON, &r.Transcript); err != nil {
		return nil, err
	}
	return &r, nil
}

func decodeJSONB(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode jsonb column: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
