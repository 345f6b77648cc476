// Package skills derives the ordered skill list and the requirements summary from a candidate profile.
package skills

import (
	"strings"

	"github.com/jonathan/interview-planner/internal/types"
)

// MaxSkills is the number of skills that receive a dedicated question
const MaxSkills = 3

// FallbackRequirements is used when a profile carries no role, focus, skills or industry
const FallbackRequirements = "core problem-solving and collaboration"

// ParseSkillList splits a free-text skill string on commas, semicolons and newlines.
// Entries are trimmed and de-duplicated case-insensitively, keeping the first spelling
// and order seen, and the result is capped at MaxSkills entries.
func ParseSkillList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, MaxSkills)
	for _, field := range fields {
		skill := strings.TrimSpace(field)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, skill)
		if len(out) == MaxSkills {
			break
		}
	}
	return out
}

// JoinNatural joins items the way a sentence lists them: "A", "A and B", "A, B, and C".
func JoinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// RequirementsSummary composes role, focus, skills and industry into one phrase.
func RequirementsSummary(profile types.CandidateProfile, skillList []string) string {
	fragments := make([]string, 0, 4)
	if role := strings.TrimSpace(profile.Role); role != "" {
		fragments = append(fragments, role)
	}
	if focus := strings.TrimSpace(profile.Focus); focus != "" {
		fragments = append(fragments, focus)
	}
	if joined := JoinNatural(skillList); joined != "" {
		fragments = append(fragments, joined)
	}
	if industry := strings.TrimSpace(profile.Industry); industry != "" {
		fragments = append(fragments, "experience in "+industry)
	}

	if len(fragments) == 0 {
		return FallbackRequirements
	}
	return strings.Join(fragments, ", ")
}
