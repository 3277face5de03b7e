package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/staffing-engine/internal/observability"
	"github.com/jonathan/staffing-engine/internal/rates"
	"github.com/jonathan/staffing-engine/internal/schemas"
	"github.com/jonathan/staffing-engine/internal/types"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Resolve a bill rate for a rate context",
	Long:  "Resolves the applicable rate card through the scope precedence chain, applies skill premiums, scarcity, and currency conversion, and emits an audit-grade breakdown.",
	RunE:  runRate,
}

var (
	rateContextPath string
	rateFixture     string
	rateConfig      string
	rateOutput      string
	rateVerbose     bool
)

func init() {
	rateCmd.Flags().StringVarP(&rateContextPath, "context", "x", "", "Path to input RateContext JSON file (required)")
	rateCmd.Flags().StringVarP(&rateFixture, "fixture", "f", "", "Path to fixture bundle JSON (omit to use DATABASE_URL)")
	rateCmd.Flags().StringVarP(&rateConfig, "config", "c", "", "Path to scoring config JSON (defaults apply when omitted)")
	rateCmd.Flags().StringVarP(&rateOutput, "out", "o", "", "Path to output RateResolution JSON file (required)")
	rateCmd.Flags().BoolVarP(&rateVerbose, "verbose", "v", false, "Print the rate breakdown to stdout")

	if err := rateCmd.MarkFlagRequired("context"); err != nil {
		panic(fmt.Sprintf("failed to mark context flag as required: %v", err))
	}
	if err := rateCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	content, err := os.ReadFile(rateContextPath)
	if err != nil {
		return fmt.Errorf("failed to read rate context file %s: %w", rateContextPath, err)
	}

	schemaPath := schemas.ResolveSchemaPath("schemas/rate_context.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateDocument(schemaPath, content); err != nil {
			return fmt.Errorf("rate context validation failed: %w", err)
		}
	}

	var rateContext types.RateContext
	if err := json.Unmarshal(content, &rateContext); err != nil {
		return fmt.Errorf("failed to unmarshal rate context JSON: %w", err)
	}

	cfg, err := loadConfig(rateConfig)
	if err != nil {
		return err
	}

	gw, closeGw, err := openGateway(ctx, rateFixture)
	if err != nil {
		return err
	}
	defer closeGw()

	resolver := rates.New(gw, cfg)
	resolution, err := resolver.Resolve(ctx, rateContext)
	if err != nil {
		return fmt.Errorf("failed to resolve rate: %w", err)
	}

	if err := writeJSON(rateOutput, resolution); err != nil {
		return err
	}

	if rateVerbose {
		observability.NewPrinter(os.Stdout).PrintRateResolution(resolution)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully resolved rate %.2f %s to %s\n", resolution.FinalAmount, resolution.FinalCurrency, rateOutput)

	return nil
}
