// Package planner implements the deterministic, rule-based interview planner.
//
// A candidate profile is turned into a fixed plan of question steps. A Session walks the
// plan one step per Advance call and keeps an append-only transcript; Finalize scores the
// transcript. The package holds no session registry: callers own storage and must
// serialize operations on a single session.
package planner

import (
	"strings"

	"github.com/jonathan/interview-planner/internal/skills"
	"github.com/jonathan/interview-planner/internal/types"
)

// Kind identifies which question generator a plan step uses
type Kind string

// Question generator kinds
const (
	KindIntroduction    Kind = "introduction"
	KindExperienceProbe Kind = "experience_probe"
	KindSkillQuestion   Kind = "skill_question"
	KindFocus           Kind = "focus"
	KindScenario        Kind = "scenario"
	KindBehavioral      Kind = "behavioral"
	KindClosing         Kind = "closing"
)

// Valid reports whether k names a known question generator.
func (k Kind) Valid() bool {
	switch k {
	case KindIntroduction, KindExperienceProbe, KindSkillQuestion, KindFocus,
		KindScenario, KindBehavioral, KindClosing:
		return true
	}
	return false
}

// Step is one entry of an interview plan. Skill and SkillIndex are only set for
// KindSkillQuestion steps.
type Step struct {
	Phase      types.Phase `json:"phase"`
	Kind       Kind        `json:"kind"`
	Skill      string      `json:"skill,omitempty"`
	SkillIndex int         `json:"skillIndex,omitempty"`
}

// Plan is the ordered, immutable sequence of steps derived from a profile
type Plan []Step

// BuildPlan derives the interview plan for a profile.
// The plan always has 5 + len(skills) steps, where at most three skills are used.
func BuildPlan(profile types.CandidateProfile) Plan {
	return buildPlan(profile, skills.ParseSkillList(profile.Skills))
}

func buildPlan(profile types.CandidateProfile, skillList []string) Plan {
	plan := make(Plan, 0, 5+len(skillList))
	plan = append(plan,
		Step{Phase: types.PhaseIntroduction, Kind: KindIntroduction},
		Step{Phase: types.PhaseTechnicalBasic, Kind: KindExperienceProbe},
	)

	for i, skill := range skillList {
		phase := types.PhaseTechnicalAdvanced
		if i == 0 {
			phase = types.PhaseTechnicalIntermediate
		}
		plan = append(plan, Step{Phase: phase, Kind: KindSkillQuestion, Skill: skill, SkillIndex: i})
	}

	if strings.TrimSpace(profile.Focus) != "" {
		plan = append(plan, Step{Phase: types.PhaseTechnicalAdvanced, Kind: KindFocus})
	} else {
		plan = append(plan, Step{Phase: types.PhaseTechnicalAdvanced, Kind: KindScenario})
	}

	return append(plan,
		Step{Phase: types.PhaseBehavioral, Kind: KindBehavioral},
		Step{Phase: types.PhaseClosing, Kind: KindClosing},
	)
}

// Phases returns the phase of every step in order.
func (p Plan) Phases() []types.Phase {
	phases := make([]types.Phase, len(p))
	for i, step := range p {
		phases[i] = step.Phase
	}
	return phases
}

// StepSkills returns the skill asked about at every step, or "" for non-skill steps.
func (p Plan) StepSkills() []string {
	out := make([]string, len(p))
	for i, step := range p {
		if step.Kind == KindSkillQuestion {
			out[i] = step.Skill
		}
	}
	return out
}
