package skills

import (
	"testing"

	"github.com/jonathan/interview-planner/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestParseSkillList(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "empty",
			raw:      "",
			expected: []string{},
		},
		{
			name:     "only delimiters",
			raw:      " , ;\n ",
			expected: []string{},
		},
		{
			name:     "case-insensitive dedup keeps first spelling",
			raw:      "Python, python; Go\nGo",
			expected: []string{"Python", "Go"},
		},
		{
			name:     "capped at three",
			raw:      "Go, SQL, Docker, Kubernetes, Terraform",
			expected: []string{"Go", "SQL", "Docker"},
		},
		{
			name:     "duplicates do not count toward cap",
			raw:      "go, GO, Go, rust, sql, kafka",
			expected: []string{"go", "rust", "sql"},
		},
		{
			name:     "windows newlines",
			raw:      "React\r\nTypeScript",
			expected: []string{"React", "TypeScript"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSkillList(tt.raw))
		})
	}
}

func TestParseSkillList_StableOrder(t *testing.T) {
	raw := "SQL; Go, sql, Rust"
	first := ParseSkillList(raw)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ParseSkillList(raw))
	}
}

func TestJoinNatural(t *testing.T) {
	assert.Equal(t, "", JoinNatural(nil))
	assert.Equal(t, "Go", JoinNatural([]string{"Go"}))
	assert.Equal(t, "Go and SQL", JoinNatural([]string{"Go", "SQL"}))
	assert.Equal(t, "Go, SQL, and Redis", JoinNatural([]string{"Go", "SQL", "Redis"}))
}

func TestRequirementsSummary(t *testing.T) {
	profile := types.CandidateProfile{
		Role:     "Backend Engineer",
		Focus:    "APIs",
		Industry: "fintech",
	}
	summary := RequirementsSummary(profile, []string{"Go", "SQL"})
	assert.Equal(t, "Backend Engineer, APIs, Go and SQL, experience in fintech", summary)
}

func TestRequirementsSummary_Partial(t *testing.T) {
	summary := RequirementsSummary(types.CandidateProfile{Industry: "gaming"}, nil)
	assert.Equal(t, "experience in gaming", summary)
}

func TestRequirementsSummary_Fallback(t *testing.T) {
	summary := RequirementsSummary(types.CandidateProfile{Role: "   "}, nil)
	assert.Equal(t, FallbackRequirements, summary)
}
