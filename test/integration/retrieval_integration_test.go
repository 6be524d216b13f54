package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigernone/corpusqa/internal/model"
	"github.com/tigernone/corpusqa/internal/repository/implementation"
	"github.com/tigernone/corpusqa/pkg/database"
	"github.com/tigernone/corpusqa/pkg/retrieval"
)

func TestSentenceRepositoryPostgres(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "failed to connect to DB")
	require.NoError(t, database.Migrate(gormDB))

	ctx := context.Background()
	repo := implementation.NewSentenceRepository(gormDB)
	docID := uuid.NewString()

	rows := []model.Sentence{
		{ID: uuid.NewString(), DocumentID: docID, SentenceIndex: 0,
			Content: "In the beginning God created the heaven and the earth."},
		{ID: uuid.NewString(), DocumentID: docID, SentenceIndex: 1,
			Content: "And the earth was without form, and void."},
		{ID: uuid.NewString(), DocumentID: docID, SentenceIndex: 2,
			Content: "And God said, Let there be light: and there was light."},
	}
	require.NoError(t, repo.BulkInsert(ctx, rows))
	defer func() {
		assert.NoError(t, repo.DeleteByDocument(ctx, docID))
	}()

	t.Run("require-all term search", func(t *testing.T) {
		got, err := repo.Search(ctx, retrieval.Query{
			Terms:      []string{"heaven", "earth"},
			RequireAll: true,
			Limit:      10,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rows[0].ID, got[0].ID)
	})

	t.Run("stopwords survive the simple configuration", func(t *testing.T) {
		// "there was" is pure stopwords under the english config; the
		// simple config must still phrase-match it.
		got, err := repo.Search(ctx, retrieval.Query{
			Terms:       []string{"there", "was"},
			ExactPhrase: true,
			Limit:       10,
		})
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.Equal(t, rows[2].ID, got[0].ID)
	})

	t.Run("phrase requires adjacency", func(t *testing.T) {
		got, err := repo.Search(ctx, retrieval.Query{
			Terms:       []string{"earth", "heaven"},
			ExactPhrase: true,
			Limit:       10,
		})
		require.NoError(t, err)
		assert.Empty(t, got, "reversed phrase must not match")
	})

	t.Run("vector rank excludes ids", func(t *testing.T) {
		vec := make([]float32, 768)
		vec[0] = 1
		for _, row := range rows {
			require.NoError(t, repo.UpdateEmbedding(ctx, row.ID, vec))
		}

		got, err := repo.VectorRank(ctx, vec, []string{rows[0].ID}, 0, 10)
		require.NoError(t, err)
		for _, s := range got {
			assert.NotEqual(t, rows[0].ID, s.ID)
		}
	})
}
