package planner

import (
	"testing"

	"github.com/jonathan/interview-planner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan_Length(t *testing.T) {
	tests := []struct {
		name     string
		skills   string
		expected int
	}{
		{name: "no skills", skills: "", expected: 5},
		{name: "one skill", skills: "Go", expected: 6},
		{name: "three skills", skills: "Go, SQL, Redis", expected: 8},
		{name: "five skills capped", skills: "Go, SQL, Redis, Kafka, Docker", expected: 8},
		{name: "duplicates collapse", skills: "Go; go; GO", expected: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildPlan(types.CandidateProfile{Skills: tt.skills})
			assert.Len(t, plan, tt.expected)
		})
	}
}

func TestBuildPlan_PhaseOrder(t *testing.T) {
	plan := BuildPlan(scenarioProfile())

	assert.Equal(t, []types.Phase{
		types.PhaseIntroduction,
		types.PhaseTechnicalBasic,
		types.PhaseTechnicalIntermediate,
		types.PhaseTechnicalAdvanced,
		types.PhaseTechnicalAdvanced,
		types.PhaseBehavioral,
		types.PhaseClosing,
	}, plan.Phases())

	assert.Equal(t, []Kind{
		KindIntroduction,
		KindExperienceProbe,
		KindSkillQuestion,
		KindSkillQuestion,
		KindFocus,
		KindBehavioral,
		KindClosing,
	}, kinds(plan))

	assert.Equal(t, []string{"", "", "Go", "SQL", "", "", ""}, plan.StepSkills())
	assert.Equal(t, 1, plan[3].SkillIndex)
}

func TestBuildPlan_ScenarioWithoutFocus(t *testing.T) {
	plan := BuildPlan(types.CandidateProfile{Focus: "  "})
	require.Len(t, plan, 5)
	assert.Equal(t, KindScenario, plan[2].Kind)
	assert.Equal(t, types.PhaseTechnicalAdvanced, plan[2].Phase)
}

func TestBuildPlan_Deterministic(t *testing.T) {
	profile := scenarioProfile()
	first := BuildPlan(profile)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildPlan(profile))
	}
}

func kinds(plan Plan) []Kind {
	out := make([]Kind, len(plan))
	for i, step := range plan {
		out[i] = step.Kind
	}
	return out
}

func scenarioProfile() types.CandidateProfile {
	return types.CandidateProfile{
		Role:       "Backend Engineer",
		Experience: "junior",
		Company:    "Acme",
		Skills:     "Go, SQL",
		Focus:      "APIs",
		Industry:   "fintech",
	}
}

func TestKind_Valid(t *testing.T) {
	for _, step := range BuildPlan(scenarioProfile()) {
		assert.True(t, step.Kind.Valid(), step.Kind)
	}
	assert.False(t, Kind("").Valid())
	assert.False(t, Kind("trivia").Valid())
}
