package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/interview-planner/internal/observability"
	"github.com/jonathan/interview-planner/internal/planner"
	"github.com/jonathan/interview-planner/internal/types"
	"github.com/spf13/cobra"
)

// plannedQuestion is one step of the plan with its rendered question
type plannedQuestion struct {
	planner.Step
	Question string `json:"question"`
}

type planOptions struct {
	profile types.CandidateProfile
	asJSON  bool
}

func newPlanCmd() *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the interview plan for a candidate profile",
		Long:  "Builds the question plan for the profile given by flags and renders every question as it would be asked, without recording any answers.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, opts)
		},
	}
	addProfileFlags(cmd, &opts.profile)
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output the plan as JSON")
	return cmd
}

func addProfileFlags(cmd *cobra.Command, p *types.CandidateProfile) {
	cmd.Flags().StringVar(&p.Role, "role", "", "Role being interviewed for")
	cmd.Flags().StringVar(&p.Company, "company", "", "Hiring company")
	cmd.Flags().StringVar(&p.Experience, "experience", "", "Experience level (entry, mid, senior, lead)")
	cmd.Flags().StringVar(&p.Skills, "skills", "", "Comma-separated skills")
	cmd.Flags().StringVar(&p.Focus, "focus", "", "Focus area for the deep-dive question")
	cmd.Flags().StringVar(&p.Industry, "industry", "", "Industry for the scenario question")
}

// renderPlan renders each step's question for a fresh session of profile.
func renderPlan(engine *planner.Engine, profile types.CandidateProfile) (*planner.Session, []plannedQuestion) {
	session := engine.Start(profile)
	brief := session.Brief()
	out := make([]plannedQuestion, len(session.Plan))
	for i, step := range session.Plan {
		out[i] = plannedQuestion{Step: step, Question: step.Question(brief, "")}
	}
	return session, out
}

func runPlan(cmd *cobra.Command, opts *planOptions) error {
	session, questions := renderPlan(planner.NewEngine(), opts.profile)
	out := cmd.OutOrStdout()

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(questions)
	}

	printer := observability.NewPrinter(out)
	printer.PrintProfile(session.Profile, session.Skills)
	printer.PrintPlan(session.Plan)
	for i, q := range questions {
		if _, err := fmt.Fprintf(out, "\n%d. [%s] %s\n", i+1, q.Phase, q.Question); err != nil {
			return err
		}
	}
	return nil
}
