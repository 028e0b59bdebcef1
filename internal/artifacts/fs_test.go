package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/types"
)

func newTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()
	dir := t.TempDir()
	audit := NewAuditLog(filepath.Join(dir, AuditFileName), nil)
	store, err := NewFSStore(dir, audit)
	require.NoError(t, err)
	return store, dir
}

func TestSaveDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("writes deterministic file", func(t *testing.T) {
		store, dir := newTestStore(t)
		doc := types.NewDocument("job-1", types.StageDraft, "the letter")

		ref, err := store.SaveDocument(ctx, doc)
		require.NoError(t, err)

		expected := filepath.Join(dir, "cover_letters", "job-1_draft.txt")
		assert.Equal(t, expected, ref.Path)
		assert.Equal(t, "job-1", ref.JobID)

		content, err := os.ReadFile(expected)
		require.NoError(t, err)
		assert.Equal(t, "the letter", string(content))
	})

	t.Run("re-save overwrites", func(t *testing.T) {
		store, _ := newTestStore(t)

		first := types.NewDocument("job-1", types.StageDraft, "first")
		second := types.NewDocument("job-1", types.StageDraft, "second")

		ref1, err := store.SaveDocument(ctx, first)
		require.NoError(t, err)
		ref2, err := store.SaveDocument(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, ref1.Path, ref2.Path)

		content, err := os.ReadFile(ref2.Path)
		require.NoError(t, err)
		assert.Equal(t, "second", string(content))
	})

	t.Run("stages get distinct files", func(t *testing.T) {
		store, _ := newTestStore(t)

		draft := types.NewDocument("job-1", types.StageDraft, "draft")
		refined := types.NewDocument("job-1", types.RefineStage(1), "refined")

		ref1, err := store.SaveDocument(ctx, draft)
		require.NoError(t, err)
		ref2, err := store.SaveDocument(ctx, refined)
		require.NoError(t, err)
		assert.NotEqual(t, ref1.Path, ref2.Path)
	})

	t.Run("unsafe job IDs are sanitized", func(t *testing.T) {
		store, _ := newTestStore(t)
		doc := types.NewDocument("job/../../etc", types.StageDraft, "x")

		ref, err := store.SaveDocument(ctx, doc)
		require.NoError(t, err)
		assert.NotContains(t, filepath.Base(ref.Path), "/")
		assert.Contains(t, ref.Path, filepath.Join("cover_letters"))
	})
}

func TestLoadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store, _ := newTestStore(t)
		saved := types.NewDocument("job-1", types.StageDraft, "the letter body here")
		_, err := store.SaveDocument(ctx, saved)
		require.NoError(t, err)

		loaded, err := store.LoadDocument(ctx, "job-1", types.StageDraft)
		require.NoError(t, err)
		assert.Equal(t, saved.Content, loaded.Content)
		assert.Equal(t, saved.WordCount, loaded.WordCount)
	})

	t.Run("missing document is ErrNotFound", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.LoadDocument(ctx, "absent", types.StageDraft)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSaveVerdict(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	verdict := &types.Verdict{
		Pass:          false,
		JobID:         "job-1",
		Stage:         types.StageDraft,
		RubricVersion: "v1",
		Criteria:      []types.CriterionResult{{CriterionID: "tone", Pass: false}},
	}
	require.NoError(t, store.SaveVerdict(ctx, verdict))

	data, err := os.ReadFile(filepath.Join(dir, "verdicts", "job-1_draft.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rubric_version": "v1"`)
}

func TestAuditTrail(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	doc := types.NewDocument("job-1", types.StageDraft, "letter")
	_, err := store.SaveDocument(ctx, doc)
	require.NoError(t, err)

	verdict := &types.Verdict{Pass: true, JobID: "job-1", Stage: types.StageDraft}
	require.NoError(t, store.SaveVerdict(ctx, verdict))

	data, err := os.ReadFile(filepath.Join(dir, AuditFileName))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "document-saved")
	assert.Contains(t, lines[1], "verdict-pass")
}

func TestAuditLogFailureIsNonFatal(t *testing.T) {
	// Point the audit log at an unwritable path; saves must still succeed.
	dir := t.TempDir()
	audit := NewAuditLog(filepath.Join(dir, "missing-subdir", "audit.log"), nil)
	store, err := NewFSStore(dir, audit)
	require.NoError(t, err)

	doc := types.NewDocument("job-1", types.StageDraft, "letter")
	_, err = store.SaveDocument(context.Background(), doc)
	assert.NoError(t, err)
}
