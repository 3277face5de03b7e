// Package main provides the entry point for the staffing engine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "staffing_engine",
	Short: "Staffing resolution engine CLI",
	Long:  "Staffing engine ranks candidates against open staffing requests, resolves audit-grade bill rates, and optimizes multi-request team plans.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
