package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/run"
)

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List past runs and their outcomes",
	RunE:  runRunsCmd,
}

var runsDir string

func init() {
	runsCommand.Flags().StringVar(&runsDir, "runs-dir", "runs", "Base directory holding run output")

	rootCmd.AddCommand(runsCommand)
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	manager := run.NewManager(runsDir)
	infos, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintRunList(infos)
	return nil
}
