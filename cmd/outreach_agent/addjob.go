package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/jobs"
)

var addJobCommand = &cobra.Command{
	Use:   "addjob <url>",
	Short: "Fetch a job posting from a URL and append it to a jobs CSV",
	Long:  "Fetches the page, extracts the posting text, and appends a row to the jobs CSV so the next generate run picks it up. JavaScript-heavy job boards can be rendered with --use-browser.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddJobCmd,
}

var (
	addJobOutput     string
	addJobCompany    string
	addJobTitle      string
	addJobUseBrowser bool
	addJobVerbose    bool
)

func init() {
	addJobCommand.Flags().StringVarP(&addJobOutput, "output", "o", "jobs.csv", "CSV file to append the posting to")
	addJobCommand.Flags().StringVar(&addJobCompany, "company", "", "Company name (inferred from the URL if omitted)")
	addJobCommand.Flags().StringVar(&addJobTitle, "title", "", "Job title (extracted from the page if omitted)")
	addJobCommand.Flags().BoolVar(&addJobUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	addJobCommand.Flags().BoolVarP(&addJobVerbose, "verbose", "v", false, "Print detailed progress")

	rootCmd.AddCommand(addJobCommand)
}

func runAddJobCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	jobURL := args[0]

	fmt.Printf("Fetching job posting from %s...\n", jobURL)
	posting, err := fetch.JobPosting(ctx, jobURL, fetch.PostingOptions{
		Company:    addJobCompany,
		Title:      addJobTitle,
		UseBrowser: addJobUseBrowser,
		Verbose:    addJobVerbose,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch posting: %w", err)
	}

	if !posting.Usable() {
		return fmt.Errorf("posting at %s is missing a description or company; pass --company to fill it in", jobURL)
	}

	if err := jobs.AppendCSV(addJobOutput, posting); err != nil {
		return fmt.Errorf("failed to append posting: %w", err)
	}

	fmt.Printf("Added %q at %s to %s\n", posting.Title, posting.Company, addJobOutput)
	return nil
}
