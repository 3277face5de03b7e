package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/staffing-engine/internal/fitscore"
	"github.com/jonathan/staffing-engine/internal/observability"
	"github.com/jonathan/staffing-engine/internal/optimizer"
	"github.com/jonathan/staffing-engine/internal/rates"
	"github.com/jonathan/staffing-engine/internal/schemas"
	"github.com/jonathan/staffing-engine/internal/types"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize assignments across a batch of staffing requests",
	Long:  "Builds a team plan for a batch of open staffing requests under typed constraints, using greedy, optimal, or constrained assignment.",
	RunE:  runOptimize,
}

var (
	optimizePlanPath string
	optimizeFixture  string
	optimizeConfig   string
	optimizeOutput   string
	optimizeVerbose  bool
)

// planRequest is the input document shape for the optimize command.
type planRequest struct {
	RequestIDs  []uuid.UUID        `json:"request_ids"`
	Mode        types.PlanMode     `json:"mode"`
	Constraints []types.Constraint `json:"constraints,omitempty"`
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizePlanPath, "plan", "p", "", "Path to input plan request JSON file (required)")
	optimizeCmd.Flags().StringVarP(&optimizeFixture, "fixture", "f", "", "Path to fixture bundle JSON (omit to use DATABASE_URL)")
	optimizeCmd.Flags().StringVarP(&optimizeConfig, "config", "c", "", "Path to scoring config JSON (defaults apply when omitted)")
	optimizeCmd.Flags().StringVarP(&optimizeOutput, "out", "o", "", "Path to output TeamPlan JSON file (required)")
	optimizeCmd.Flags().BoolVarP(&optimizeVerbose, "verbose", "v", false, "Print a plan summary to stdout")

	if err := optimizeCmd.MarkFlagRequired("plan"); err != nil {
		panic(fmt.Sprintf("failed to mark plan flag as required: %v", err))
	}
	if err := optimizeCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	content, err := os.ReadFile(optimizePlanPath)
	if err != nil {
		return fmt.Errorf("failed to read plan request file %s: %w", optimizePlanPath, err)
	}

	schemaPath := schemas.ResolveSchemaPath("schemas/plan_request.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateDocument(schemaPath, content); err != nil {
			return fmt.Errorf("plan request validation failed: %w", err)
		}
	}

	var plan planRequest
	if err := json.Unmarshal(content, &plan); err != nil {
		return fmt.Errorf("failed to unmarshal plan request JSON: %w", err)
	}

	cfg, err := loadConfig(optimizeConfig)
	if err != nil {
		return err
	}

	gw, closeGw, err := openGateway(ctx, optimizeFixture)
	if err != nil {
		return err
	}
	defer closeGw()

	opt := optimizer.New(gw, fitscore.New(gw, cfg), rates.New(gw, cfg))
	teamPlan, err := opt.Optimize(ctx, plan.RequestIDs, plan.Constraints, plan.Mode)
	if err != nil {
		return fmt.Errorf("failed to optimize plan: %w", err)
	}

	if err := writeJSON(optimizeOutput, teamPlan); err != nil {
		return err
	}

	if optimizeVerbose {
		observability.NewPrinter(os.Stdout).PrintTeamPlan(teamPlan)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully planned %d assignments to %s\n", len(teamPlan.Assignments), optimizeOutput)

	return nil
}
