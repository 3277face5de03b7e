// Package main implements the staffing_engine CLI for candidate ranking,
// rate resolution, and team plan optimization.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/staffing-engine/internal/config"
	"github.com/jonathan/staffing-engine/internal/fitscore"
	"github.com/jonathan/staffing-engine/internal/gateway"
	"github.com/jonathan/staffing-engine/internal/observability"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidates against a staffing request",
	Long:  "Scores the candidate pool against a staffing request's role template and produces a deterministic ranking with per-candidate fit reasons.",
	RunE:  runRank,
}

var (
	rankRequestID string
	rankFixture   string
	rankConfig    string
	rankOutput    string
	rankLimit     int
	rankVerbose   bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankRequestID, "request", "r", "", "Staffing request UUID (required)")
	rankCmd.Flags().StringVarP(&rankFixture, "fixture", "f", "", "Path to fixture bundle JSON (omit to use DATABASE_URL)")
	rankCmd.Flags().StringVarP(&rankConfig, "config", "c", "", "Path to scoring config JSON (defaults apply when omitted)")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Path to output FitResults JSON file (required)")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 0, "Maximum number of results (0 means all)")
	rankCmd.Flags().BoolVarP(&rankVerbose, "verbose", "v", false, "Print a ranking summary to stdout")

	if err := rankCmd.MarkFlagRequired("request"); err != nil {
		panic(fmt.Sprintf("failed to mark request flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	requestID, err := uuid.Parse(rankRequestID)
	if err != nil {
		return fmt.Errorf("invalid request id %q: %w", rankRequestID, err)
	}

	cfg, err := loadConfig(rankConfig)
	if err != nil {
		return err
	}

	gw, closeGw, err := openGateway(ctx, rankFixture)
	if err != nil {
		return err
	}
	defer closeGw()

	request, err := gw.GetStaffingRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to load staffing request: %w", err)
	}

	candidates, err := gw.ListCandidatePeople(ctx, request.OrgID, gateway.CandidateFilters{})
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}

	calculator := fitscore.New(gw, cfg)
	results, err := calculator.Rank(ctx, requestID, candidates, rankLimit)
	if err != nil {
		return fmt.Errorf("failed to rank candidates: %w", err)
	}

	if err := writeJSON(rankOutput, results); err != nil {
		return err
	}

	if rankVerbose {
		observability.NewPrinter(os.Stdout).PrintFitResults(results)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully ranked %d candidates to %s\n", len(results), rankOutput)

	return nil
}

// loadConfig loads the scoring configuration from path, falling back to
// defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// writeJSON marshals v with indentation and writes it to path, creating the
// output directory when needed.
func writeJSON(path string, v any) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(path, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
