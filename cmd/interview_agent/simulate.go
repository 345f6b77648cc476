package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/interview-planner/internal/db"
	"github.com/jonathan/interview-planner/internal/interview"
	"github.com/jonathan/interview-planner/internal/observability"
	"github.com/jonathan/interview-planner/internal/planner"
	"github.com/jonathan/interview-planner/internal/schemas"
	"github.com/jonathan/interview-planner/internal/store"
	"github.com/jonathan/interview-planner/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Script is an offline interview: a profile and the candidate's answers in order.
// YAML and JSON are both accepted.
type Script struct {
	Profile          types.CandidateProfile `yaml:"profile"`
	Answers          []string               `yaml:"answers"`
	CompletionReason *string                `yaml:"completionReason"`
	DurationSeconds  *int                   `yaml:"durationSeconds"`
}

// LoadScript reads and parses a simulation script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	return &script, nil
}

type simulateOptions struct {
	scriptPath string
	verbose    bool
	asJSON     bool
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted interview offline",
		Long:  "Plays the answers from a YAML or JSON script against a fresh session, printing every turn and the final evaluation. Answers left over after the closing turn are ignored.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.scriptPath, "script", "s", "", "Path to the interview script (required)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show the profile, plan, and evaluation in boxes")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output the report with its transcript as JSON")
	if err := cmd.MarkFlagRequired("script"); err != nil {
		panic(fmt.Sprintf("failed to mark script flag as required: %v", err))
	}
	return cmd
}

// simulation is the outcome of playing a script
type simulation struct {
	Session *planner.Session
	Turns   []simulatedTurn
	Report  *db.Report
}

type simulatedTurn struct {
	Answer string
	Turn   types.Turn
}

// simulate plays script through svc and finalizes the session.
func simulate(cmd *cobra.Command, svc *interview.Service, script *Script) (*simulation, error) {
	ctx := cmd.Context()

	session, turn, err := svc.Start(ctx, script.Profile)
	if err != nil {
		return nil, err
	}
	turns := []simulatedTurn{{Turn: turn}}

	for _, answer := range script.Answers {
		if turn.Done {
			break
		}
		turn, err = svc.Reply(ctx, session.ID, answer)
		if err != nil {
			return nil, err
		}
		turns = append(turns, simulatedTurn{Answer: answer, Turn: turn})
	}

	final, err := svc.Get(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	eval, err := svc.Finalize(ctx, session.ID, planner.FinalizeOptions{
		CompletionReason: script.CompletionReason,
		DurationSeconds:  script.DurationSeconds,
	})
	if err != nil {
		return nil, err
	}

	report := db.NewReport(eval, final.Transcript)
	if err := schemas.ValidateReport(report); err != nil {
		return nil, fmt.Errorf("report failed schema validation: %w", err)
	}
	return &simulation{Session: final, Turns: turns, Report: report}, nil
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	script, err := LoadScript(opts.scriptPath)
	if err != nil {
		return err
	}

	svc := interview.NewService(planner.NewEngine(), store.NewMemoryStore())
	result, err := simulate(cmd, svc, script)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Report)
	}

	printer := observability.NewPrinter(out)
	if opts.verbose {
		printer.PrintProfile(result.Session.Profile, result.Session.Skills)
		printer.PrintPlan(result.Session.Plan)
	}
	for i, t := range result.Turns {
		printer.PrintTurn(i+1, t.Answer, t.Turn)
	}
	if opts.verbose {
		printer.PrintEvaluation(&result.Report.Evaluation)
		return nil
	}
	_, err = fmt.Fprintf(out, "\nScore: %.1f/10\n%s\n", result.Report.Score, result.Report.Summary)
	return err
}
