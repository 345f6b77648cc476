package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/interview-planner/internal/db"
	"github.com/jonathan/interview-planner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlScript = `profile:
  role: Backend Engineer
  company: Acme
  experience: senior
  skills: Go, PostgreSQL
answers:
  - I have spent eight years building payment systems in Go.
  - I led the migration of our ledger to PostgreSQL with zero downtime.
  - We used goroutines and bounded worker pools to keep latency flat.
  - I tuned indexes and partitioned the largest tables.
  - I would add tracing first, then shed load at the edge.
  - I once disagreed with a staff engineer and we ran a spike to decide.
  - Thank you for your time.
  - This answer arrives after the closing turn.
completionReason: completed
durationSeconds: 1500
`

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadScript(t *testing.T) {
	script, err := LoadScript(writeScript(t, "script.yaml", yamlScript))
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", script.Profile.Role)
	assert.Equal(t, "Go, PostgreSQL", script.Profile.Skills)
	assert.Len(t, script.Answers, 8)
	require.NotNil(t, script.DurationSeconds)
	assert.Equal(t, 1500, *script.DurationSeconds)
}

func TestLoadScript_JSON(t *testing.T) {
	path := writeScript(t, "script.json", `{"profile":{"role":"QA"},"answers":["hi"]}`)
	script, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "QA", script.Profile.Role)
	assert.Equal(t, []string{"hi"}, script.Answers)
	assert.Nil(t, script.CompletionReason)
}

func TestLoadScript_Errors(t *testing.T) {
	_, err := LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read script")

	_, err = LoadScript(writeScript(t, "bad.yaml", "answers: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse script")
}

func TestSimulateCommand_JSONReport(t *testing.T) {
	out, err := executeCommand(t, "simulate", "--script", writeScript(t, "script.yaml", yamlScript), "--json")
	require.NoError(t, err)

	var report db.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, "completed", report.CompletionReason)
	assert.Equal(t, 1500, report.DurationSeconds)
	assert.Equal(t, 7, report.TotalQuestions)
	assert.Equal(t, 6, report.TotalResponses, "answers after the closing turn are ignored")
	assert.Equal(t, []string{"Go", "PostgreSQL"}, report.SkillsCovered)
	assert.Equal(t, types.RoleAI, report.Transcript[0].Role)
	assert.Len(t, report.Transcript, 13)
}

func TestSimulateCommand_Text(t *testing.T) {
	out, err := executeCommand(t, "simulate", "-s", writeScript(t, "script.yaml", yamlScript))
	require.NoError(t, err)

	assert.Contains(t, out, "[1] interviewer <introduction>")
	assert.Contains(t, out, "[7] interviewer <closing> (done)")
	assert.NotContains(t, out, "arrives after the closing turn")
	assert.Contains(t, out, "Score:")
	assert.NotContains(t, out, "INTERVIEW PLAN")
}

func TestSimulateCommand_Verbose(t *testing.T) {
	out, err := executeCommand(t, "simulate", "-s", writeScript(t, "script.yaml", yamlScript), "--verbose")
	require.NoError(t, err)

	assert.Contains(t, out, "CANDIDATE PROFILE")
	assert.Contains(t, out, "INTERVIEW PLAN")
	assert.Contains(t, out, "INTERVIEW EVALUATION")
}

func TestSimulateCommand_EndsEarly(t *testing.T) {
	script := `profile:
  skills: Rust
answers:
  - Only one answer before leaving.
completionReason: candidate_left
`
	out, err := executeCommand(t, "simulate", "-s", writeScript(t, "short.yaml", script), "--json")
	require.NoError(t, err)

	var report db.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "candidate_left", report.CompletionReason)
	assert.Equal(t, 2, report.TotalQuestions)
	assert.Equal(t, 1, report.TotalResponses)
}

func TestSimulateCommand_RequiresScript(t *testing.T) {
	_, err := executeCommand(t, "simulate")
	assert.ErrorContains(t, err, "required")
}
