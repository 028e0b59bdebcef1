//go:build integration

package artifacts

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/types"
)

func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	pool, err := ConnectPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	return pool
}

func TestIntegration_PostgresStore_CRUD(t *testing.T) {
	pool := getTestPool(t)
	defer pool.Close()
	ctx := context.Background()

	store := NewPostgresStore(pool, "test-run", nil)
	require.NoError(t, store.EnsureSchema(ctx))

	defer func() {
		_, _ = pool.Exec(ctx, "DELETE FROM documents WHERE run_id = 'test-run'")
		_, _ = pool.Exec(ctx, "DELETE FROM verdicts WHERE run_id = 'test-run'")
	}()

	t.Run("save and load document", func(t *testing.T) {
		doc := types.NewDocument("job-1", types.StageDraft, "the letter body")
		ref, err := store.SaveDocument(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, "job-1", ref.JobID)

		loaded, err := store.LoadDocument(ctx, "job-1", types.StageDraft)
		require.NoError(t, err)
		assert.Equal(t, doc.Content, loaded.Content)
		assert.Equal(t, doc.WordCount, loaded.WordCount)
	})

	t.Run("re-save overwrites", func(t *testing.T) {
		doc := types.NewDocument("job-1", types.StageDraft, "replacement body")
		_, err := store.SaveDocument(ctx, doc)
		require.NoError(t, err)

		loaded, err := store.LoadDocument(ctx, "job-1", types.StageDraft)
		require.NoError(t, err)
		assert.Equal(t, "replacement body", loaded.Content)
	})

	t.Run("missing document is ErrNotFound", func(t *testing.T) {
		_, err := store.LoadDocument(ctx, "absent", types.StageDraft)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save verdict twice upserts", func(t *testing.T) {
		verdict := &types.Verdict{
			Pass:          false,
			JobID:         "job-1",
			Stage:         types.StageDraft,
			RubricVersion: "v1",
			Criteria:      []types.CriterionResult{{CriterionID: "tone", Pass: false}},
		}
		require.NoError(t, store.SaveVerdict(ctx, verdict))

		verdict.Pass = true
		require.NoError(t, store.SaveVerdict(ctx, verdict))

		var pass bool
		err := pool.QueryRow(ctx,
			"SELECT pass FROM verdicts WHERE run_id = 'test-run' AND job_id = 'job-1' AND stage = 'draft'",
		).Scan(&pass)
		require.NoError(t, err)
		assert.True(t, pass)
	})
}
