package fetch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/outreach-agent/internal/types"
)

// PostingOptions configures JobPosting and influences how much the fetcher
// is willing to do to get content out of the page.
type PostingOptions struct {
	Company    string
	Title      string
	UseBrowser bool
	Verbose    bool
}

// JobPosting fetches a URL and assembles a JobPosting from the page. When
// the plain HTTP fetch yields too little text and UseBrowser is set, the
// page is re-rendered in a headless browser before extraction.
func JobPosting(ctx context.Context, jobURL string, opts PostingOptions) (*types.JobPosting, error) {
	result, err := URL(ctx, jobURL, nil)
	if err != nil {
		return nil, err
	}

	text, err := ExtractJobText(result.HTML)
	if err != nil {
		return nil, &Error{URL: jobURL, Message: "failed to extract posting text", Cause: err}
	}

	html := result.HTML
	if ShouldUseBrowser(text) && opts.UseBrowser {
		rendered, err := WithBrowser(ctx, jobURL, DefaultTimeout, opts.Verbose)
		if err != nil {
			return nil, &Error{URL: jobURL, Message: "browser fallback failed", Cause: err}
		}
		html = rendered
		text, err = ExtractJobText(html)
		if err != nil {
			return nil, &Error{URL: jobURL, Message: "failed to extract rendered text", Cause: err}
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, &Error{URL: jobURL, Message: "no posting text found"}
	}

	title := opts.Title
	if title == "" {
		title = ExtractTitle(html)
	}

	company := opts.Company
	if company == "" {
		company = companyFromURL(jobURL)
	}

	return &types.JobPosting{
		Title:       title,
		Company:     company,
		Description: text,
		Link:        jobURL,
		Source:      "url",
		SearchDate:  time.Now().UTC().Format("2006-01-02"),
	}, nil
}

// companyFromURL guesses the company from the host name, e.g.
// "jobs.acme.com" yields "acme".
func companyFromURL(jobURL string) string {
	parsed, err := url.Parse(jobURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return host
}
