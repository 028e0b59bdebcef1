package judge

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/rubric"
	"github.com/jonathan/outreach-agent/internal/types"
)

//go:embed verdict.schema.json
var verdictSchemaJSON string

// verdictSchema is compiled once; the schema is embedded and cannot fail to
// parse outside of a programming error.
var verdictSchema = gojsonschema.NewStringLoader(verdictSchemaJSON)

// Judge scores documents against a rubric through an Evaluator backed by a
// provider independent of the drafting model.
type Judge struct {
	evaluator llm.Evaluator
}

// New creates a Judge backed by the given evaluator.
func New(evaluator llm.Evaluator) *Judge {
	return &Judge{evaluator: evaluator}
}

// rawVerdict mirrors the JSON the evaluator is asked to produce.
type rawVerdict struct {
	Pass     bool `json:"pass"`
	Criteria []struct {
		CriterionID string `json:"criterion_id"`
		Pass        bool   `json:"pass"`
		Note        string `json:"note"`
	} `json:"criteria"`
	Feedback string `json:"feedback"`
}

// Evaluate scores a document against every rubric criterion. A malformed
// response is retried once with a stricter re-prompt; a second malformed
// response yields a ParseError, which callers must treat as fail-closed.
// Transport failures surface as the evaluator's error kinds.
func (j *Judge) Evaluate(ctx context.Context, doc *types.Document, job *types.JobPosting, r *rubric.Rubric) (*types.Verdict, error) {
	prompt := buildPrompt(doc, job, r, false)

	response, err := j.evaluator.EvaluateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	verdict, parseErr := j.parseVerdict(response, doc, r)
	if parseErr == nil {
		return verdict, nil
	}

	// One stricter re-prompt before giving up on parsing.
	strictPrompt := buildPrompt(doc, job, r, true)
	response, err = j.evaluator.EvaluateJSON(ctx, strictPrompt)
	if err != nil {
		return nil, err
	}

	verdict, parseErr = j.parseVerdict(response, doc, r)
	if parseErr != nil {
		return nil, parseErr
	}
	return verdict, nil
}

// parseVerdict cleans, schema-validates, and decodes an evaluator response.
func (j *Judge) parseVerdict(response string, doc *types.Document, r *rubric.Rubric) (*types.Verdict, *ParseError) {
	cleaned := llm.CleanJSONBlock(response)

	result, err := gojsonschema.Validate(verdictSchema, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, &ParseError{Message: "response is not valid JSON", Response: cleaned, Cause: err}
	}
	if !result.Valid() {
		return nil, &ParseError{
			Message:  fmt.Sprintf("response does not match verdict schema: %v", result.Errors()),
			Response: cleaned,
		}
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &ParseError{Message: "failed to decode verdict", Response: cleaned, Cause: err}
	}

	criteria := make([]types.CriterionResult, 0, len(raw.Criteria))
	allPass := true
	for _, c := range raw.Criteria {
		criteria = append(criteria, types.CriterionResult{
			CriterionID: c.CriterionID,
			Pass:        c.Pass,
			Note:        c.Note,
		})
		if !c.Pass {
			allPass = false
		}
	}

	// A verdict passes only if every criterion passes, regardless of the
	// model's top-level claim.
	return &types.Verdict{
		Pass:          raw.Pass && allPass,
		Criteria:      criteria,
		Feedback:      raw.Feedback,
		RubricVersion: r.Version,
		JobID:         doc.JobID,
		Stage:         doc.Stage,
		EvaluatedAt:   time.Now().UTC(),
	}, nil
}

// buildPrompt renders the judge prompt; strict selects the re-prompt variant.
func buildPrompt(doc *types.Document, job *types.JobPosting, r *rubric.Rubric, strict bool) string {
	key := "judge-cover-letter"
	if strict {
		key = "judge-cover-letter-strict"
	}

	template := prompts.MustGet("letters.json", key)
	return prompts.Format(template, map[string]string{
		"Criteria":   r.CriteriaText(),
		"JobTitle":   job.Title,
		"JobCompany": job.Company,
		"Content":    doc.Content,
	})
}

// FailClosedVerdict builds the failing verdict recorded when the judge's
// output stays unparseable. Every criterion is marked failed so the document
// is never silently passed.
func FailClosedVerdict(doc *types.Document, r *rubric.Rubric, cause error) *types.Verdict {
	criteria := make([]types.CriterionResult, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		criteria = append(criteria, types.CriterionResult{
			CriterionID: c.ID,
			Pass:        false,
			Note:        "judge response unparseable; failing closed",
		})
	}
	return &types.Verdict{
		Pass:          false,
		Criteria:      criteria,
		Feedback:      fmt.Sprintf("judge output could not be parsed: %v", cause),
		RubricVersion: r.Version,
		JobID:         doc.JobID,
		Stage:         doc.Stage,
		EvaluatedAt:   time.Now().UTC(),
	}
}
