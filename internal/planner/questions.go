package planner

import (
	"fmt"
	"strings"

	"github.com/jonathan/interview-planner/internal/prompts"
	"github.com/jonathan/interview-planner/internal/skills"
	"github.com/jonathan/interview-planner/internal/types"
)

// Brief is the profile-derived data every question template draws from
type Brief struct {
	Profile      types.CandidateProfile
	Skills       []string
	Requirements string
}

// NewBrief derives the skill list and requirements summary for a profile.
func NewBrief(profile types.CandidateProfile) Brief {
	return newBrief(profile, skills.ParseSkillList(profile.Skills))
}

func newBrief(profile types.CandidateProfile, skillList []string) Brief {
	return Brief{
		Profile:      profile,
		Skills:       skillList,
		Requirements: skills.RequirementsSummary(profile, skillList),
	}
}

// ExperienceLevel maps an experience label to the wording used in the introduction.
func ExperienceLevel(experience string) string {
	return lookup("level", strings.ToLower(experience))
}

// Question renders the question for this step.
// latestUserMessage is accepted for every generator but no template reads it.
func (s Step) Question(b Brief, latestUserMessage string) string {
	_ = latestUserMessage

	switch s.Kind {
	case KindIntroduction:
		return render("introduction", map[string]string{
			"Role":    orDisplay(b.Profile.Role, "display.role"),
			"Company": orDisplay(b.Profile.Company, "display.company"),
			"Level":   ExperienceLevel(b.Profile.Experience),
		})
	case KindExperienceProbe:
		skill := prompts.MustGet(prompts.InterviewFile, "experience.no_skill")
		if len(b.Skills) > 0 {
			skill = b.Skills[0]
		}
		return prompts.Format(lookup("experience", strings.ToLower(b.Profile.Experience)), map[string]string{
			"Skill": skill,
		})
	case KindSkillQuestion:
		key := "skill.later"
		if s.SkillIndex == 0 {
			key = "skill.first"
		}
		return render(key, map[string]string{
			"Skill":        s.Skill,
			"Requirements": b.Requirements,
		})
	case KindFocus:
		return render("focus", map[string]string{"Focus": b.Profile.Focus})
	case KindScenario:
		return render("scenario", map[string]string{"Requirements": b.Requirements})
	case KindBehavioral:
		return lookup("behavioral", strings.ToLower(b.Profile.Industry))
	case KindClosing:
		return render("closing", map[string]string{
			"Company":      orDisplay(b.Profile.Company, "display.company"),
			"Requirements": b.Requirements,
		})
	default:
		panic(fmt.Sprintf("planner: unknown step kind %q", s.Kind))
	}
}

// ClosingAcknowledgment is returned by every Advance after the plan is exhausted.
func ClosingAcknowledgment() string {
	return prompts.MustGet(prompts.InterviewFile, "closing_ack")
}

func render(key string, data map[string]string) string {
	return prompts.Format(prompts.MustGet(prompts.InterviewFile, key), data)
}

func lookup(prefix, variant string) string {
	tmpl, err := prompts.Lookup(prompts.InterviewFile, prefix, variant)
	if err != nil {
		panic(fmt.Sprintf("planner: %v", err))
	}
	return tmpl
}

func orDisplay(value, fallbackKey string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return prompts.MustGet(prompts.InterviewFile, fallbackKey)
}
