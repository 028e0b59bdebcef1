package refiner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/types"
)

type fakeGenerator struct {
	response string
	err      error
	tiers    []llm.ModelTier
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, tier llm.ModelTier) (string, error) {
	f.tiers = append(f.tiers, tier)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeGenerator) Close() error                  { return nil }

func failingVerdict() *types.Verdict {
	return &types.Verdict{
		Pass:     false,
		Feedback: "The letter is too long and the tone drifts.",
		Criteria: []types.CriterionResult{
			{CriterionID: "word-count", Pass: false, Note: "380 words"},
			{CriterionID: "tone", Pass: true},
		},
	}
}

func TestRefine(t *testing.T) {
	doc := types.NewDocument("job-1", types.StageDraft, "original letter")
	job := &types.JobPosting{Title: "Backend Engineer", Company: "Acme"}

	t.Run("produces refine-stage document", func(t *testing.T) {
		gen := &fakeGenerator{response: "shorter letter"}
		refined, err := New(gen).Refine(context.Background(), doc, job, failingVerdict(), 1)
		require.NoError(t, err)

		assert.Equal(t, "job-1", refined.JobID)
		assert.Equal(t, types.RefineStage(1), refined.Stage)
		assert.Equal(t, "shorter letter", refined.Content)
	})

	t.Run("uses advanced tier", func(t *testing.T) {
		gen := &fakeGenerator{response: "letter"}
		_, err := New(gen).Refine(context.Background(), doc, job, failingVerdict(), 1)
		require.NoError(t, err)
		require.Len(t, gen.tiers, 1)
		assert.Equal(t, llm.TierAdvanced, gen.tiers[0])
	})

	t.Run("propagates generator error", func(t *testing.T) {
		gen := &fakeGenerator{err: &llm.GenerationError{Provider: llm.ProviderGemini, Message: "boom"}}
		_, err := New(gen).Refine(context.Background(), doc, job, failingVerdict(), 1)
		assert.Error(t, err)
	})
}

func TestBuildPrompt(t *testing.T) {
	doc := types.NewDocument("job-1", types.StageDraft, "original letter body")
	job := &types.JobPosting{Title: "Backend Engineer", Company: "Acme"}

	t.Run("itemizes failing criteria and feedback", func(t *testing.T) {
		prompt := BuildPrompt(doc, job, failingVerdict())

		assert.Contains(t, prompt, "original letter body")
		assert.Contains(t, prompt, "- word-count: 380 words")
		assert.NotContains(t, prompt, "- tone")
		assert.Contains(t, prompt, "tone drifts")
	})

	t.Run("handles verdict without itemized criteria", func(t *testing.T) {
		verdict := &types.Verdict{Pass: false, Feedback: "unusable"}
		prompt := BuildPrompt(doc, job, verdict)
		assert.Contains(t, prompt, "(none itemized)")
	})
}
