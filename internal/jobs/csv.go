// Package jobs reads job postings from CSV files produced by scrapers or by
// the addjob command.
package jobs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

// CSVHeader is the column order written by WriteCSV. ReadCSV maps columns by
// header name, so files with extra or reordered columns still load.
var CSVHeader = []string{
	"job_id", "title", "company", "location", "description",
	"salary", "link", "source", "posted_date", "query", "region", "search_date",
}

// ReadCSV loads job postings from a CSV file with a header row. Rows are
// returned in file order; blank lines are skipped.
func ReadCSV(path string) ([]*types.JobPosting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file %s: %w", path, err)
	}
	defer f.Close()

	return readCSV(f)
}

func readCSV(r io.Reader) ([]*types.JobPosting, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("jobs file is empty")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["title"]; !ok {
		return nil, fmt.Errorf("jobs file has no 'title' column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var postings []*types.JobPosting
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read jobs row: %w", err)
		}

		job := &types.JobPosting{
			ID:          field(record, "job_id"),
			Title:       field(record, "title"),
			Company:     field(record, "company"),
			Location:    field(record, "location"),
			Description: field(record, "description"),
			Salary:      field(record, "salary"),
			Link:        field(record, "link"),
			Source:      field(record, "source"),
			PostedDate:  field(record, "posted_date"),
			Query:       field(record, "query"),
			Region:      field(record, "region"),
			SearchDate:  field(record, "search_date"),
		}
		if job.Title == "" && job.Company == "" && job.Description == "" {
			continue
		}
		postings = append(postings, job)
	}

	return postings, nil
}

// AppendCSV adds one posting to a CSV file, writing the header first when the
// file is new. Used by the addjob command.
func AppendCSV(path string, job *types.JobPosting) error {
	writeHeader := false
	if info, err := os.Stat(path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		writeHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open jobs file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(CSVHeader); err != nil {
			return fmt.Errorf("failed to write header row: %w", err)
		}
	}

	record := []string{
		job.ID, job.Title, job.Company, job.Location, job.Description,
		job.Salary, job.Link, job.Source, job.PostedDate, job.Query, job.Region, job.SearchDate,
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("failed to write jobs row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush jobs file: %w", err)
	}
	return nil
}
