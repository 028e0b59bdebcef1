package judge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/rubric"
	"github.com/jonathan/outreach-agent/internal/types"
)

// fakeEvaluator replays scripted responses in order.
type fakeEvaluator struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeEvaluator) EvaluateJSON(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	return f.responses[idx], nil
}

func (f *fakeEvaluator) Model() string { return "fake-judge" }

const passingVerdictJSON = `{
	"pass": true,
	"criteria": [
		{"criterion_id": "word-count", "pass": true},
		{"criterion_id": "tone", "pass": true, "note": "confident"}
	],
	"feedback": "Strong letter."
}`

const failingVerdictJSON = `{
	"pass": false,
	"criteria": [
		{"criterion_id": "word-count", "pass": false, "note": "too long"},
		{"criterion_id": "tone", "pass": true}
	],
	"feedback": "Trim the letter."
}`

func testDoc() *types.Document {
	return types.NewDocument("job-1", types.StageDraft, "the letter body")
}

func testJob() *types.JobPosting {
	return &types.JobPosting{Title: "Backend Engineer", Company: "Acme"}
}

func TestEvaluate(t *testing.T) {
	r := rubric.Default()

	t.Run("passing verdict", func(t *testing.T) {
		eval := &fakeEvaluator{responses: []string{passingVerdictJSON}}
		verdict, err := New(eval).Evaluate(context.Background(), testDoc(), testJob(), r)
		require.NoError(t, err)

		assert.True(t, verdict.Pass)
		assert.Len(t, verdict.Criteria, 2)
		assert.Equal(t, "v1", verdict.RubricVersion)
		assert.Equal(t, "job-1", verdict.JobID)
		assert.Equal(t, types.StageDraft, verdict.Stage)
		assert.Equal(t, 1, eval.calls)
	})

	t.Run("failing verdict", func(t *testing.T) {
		eval := &fakeEvaluator{responses: []string{failingVerdictJSON}}
		verdict, err := New(eval).Evaluate(context.Background(), testDoc(), testJob(), r)
		require.NoError(t, err)

		assert.False(t, verdict.Pass)
		require.Len(t, verdict.FailingCriteria(), 1)
		assert.Equal(t, "word-count", verdict.FailingCriteria()[0].CriterionID)
	})

	t.Run("top-level pass overridden by failing criterion", func(t *testing.T) {
		inconsistent := `{
			"pass": true,
			"criteria": [{"criterion_id": "tone", "pass": false, "note": "stiff"}],
			"feedback": "ok"
		}`
		eval := &fakeEvaluator{responses: []string{inconsistent}}
		verdict, err := New(eval).Evaluate(context.Background(), testDoc(), testJob(), r)
		require.NoError(t, err)
		assert.False(t, verdict.Pass)
	})

	t.Run("markdown-wrapped verdict parses", func(t *testing.T) {
		eval := &fakeEvaluator{responses: []string{"```json\n" + passingVerdictJSON + "\n```"}}
		verdict, err := New(eval).Evaluate(context.Background(), testDoc(), testJob(), r)
		require.NoError(t, err)
		assert.True(t, verdict.Pass)
	})

	t.Run("malformed then valid uses strict re-prompt", func(t *testing.T) {
		eval := &fakeEvaluator{responses: []string{"not json at all", passingVerdictJSON}}
		verdict, err := New(eval).Evaluate(context.Background(), testDoc(), testJob(), r)
		require.NoError(t, err)

		assert.True(t, verdict.Pass)
		assert.Equal(t, 2, eval.calls)
		assert.NotEqual(t, eval.prompts[0], eval.prompts[1])
	})

	t.Run("malformed twice yields parse error", func(t *testing.T) {
		eval := &fakeEvaluator{responses: []string{"garbage", "still garbage"}}
		_, err := New(eval).Evaluate(context.Background(), testDoc(), testJob(), r)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 2, eval.calls)
	})

	t.Run("schema violation is a parse error", func(t *testing.T) {
		// Valid JSON, but criteria entries are missing required fields.
		eval := &fakeEvaluator{responses: []string{`{"pass": true, "criteria": [{}], "feedback": "x"}`, `{"pass": true}`}}
		_, err := New(eval).Evaluate(context.Background(), testDoc(), testJob(), r)

		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("transport error passes through", func(t *testing.T) {
		eval := &fakeEvaluator{err: &llm.GenerationError{Provider: llm.ProviderGroq, Message: "down"}}
		_, err := New(eval).Evaluate(context.Background(), testDoc(), testJob(), r)

		var genErr *llm.GenerationError
		assert.ErrorAs(t, err, &genErr)
	})
}

func TestFailClosedVerdict(t *testing.T) {
	r := rubric.Default()
	verdict := FailClosedVerdict(testDoc(), r, assert.AnError)

	assert.False(t, verdict.Pass)
	require.Len(t, verdict.Criteria, len(r.Criteria))
	for _, c := range verdict.Criteria {
		assert.False(t, c.Pass)
	}
	assert.Equal(t, "job-1", verdict.JobID)
	assert.Contains(t, verdict.Feedback, "could not be parsed")
}
