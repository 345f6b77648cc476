package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-planner/internal/config"
	"github.com/jonathan/interview-planner/internal/server"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	candidateID string
	asJSON      bool
}

func newTokenCmd() *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT for a candidate",
		Long:  "Signs a bearer token with JWT_SECRET for use against a server started with auth enabled. A random candidate id is used when --candidate-id is omitted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.candidateID, "candidate-id", "", "Candidate ID to embed in the token")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output token, candidate id, and expiry as JSON")
	return cmd
}

func runToken(cmd *cobra.Command, opts *tokenOptions) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	candidateID := opts.candidateID
	if candidateID == "" {
		candidateID = uuid.New().String()
	}

	token, expiresAt, err := server.NewJWTService(jwtConfig).GenerateToken(candidateID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		return json.NewEncoder(out).Encode(map[string]string{
			"token":       token,
			"candidateId": candidateID,
			"expiresAt":   expiresAt.UTC().Format(time.RFC3339),
		})
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
