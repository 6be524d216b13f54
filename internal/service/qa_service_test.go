package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigernone/corpusqa/internal/dto"
	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/internal/repository/memory"
	"github.com/tigernone/corpusqa/pkg/keywords"
	"github.com/tigernone/corpusqa/pkg/retrieval"
	"github.com/tigernone/corpusqa/pkg/store"
)

// memIndex serves a fixed corpus: term queries by containment, vector
// ranking by corpus order.
type memIndex struct {
	corpus []store.Sentence
}

func (m *memIndex) Search(_ context.Context, q retrieval.Query) ([]store.Sentence, error) {
	var out []store.Sentence
	for _, s := range m.corpus {
		text := " " + strings.ToLower(s.Text) + " "
		ok := true
		for _, term := range q.Terms {
			if !strings.Contains(text, strings.ToLower(term)) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, s)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (m *memIndex) VectorRank(_ context.Context, _ []float32, excludeIDs []string, offset, limit int) ([]store.Sentence, error) {
	excluded := make(map[string]bool)
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var ranked []store.Sentence
	for _, s := range m.corpus {
		if !excluded[s.ID] {
			ranked = append(ranked, s)
		}
	}
	if offset >= len(ranked) {
		return nil, nil
	}
	ranked = ranked[offset:]
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

type staticEmbedder struct{}

func (staticEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func newTestQAService(t *testing.T) IQAService {
	t.Helper()
	corpus := []store.Sentence{
		{ID: "s1", Text: "The grace of the Lord endures forever and ever amen."},
		{ID: "s2", Text: "By grace are ye saved through faith in all things."},
		{ID: "s3", Text: "My grace is sufficient for thee in every trial."},
		{ID: "s4", Text: "Let us therefore come boldly unto the throne."},
		{ID: "s5", Text: "The heavens declare the glory of God above."},
		{ID: "s6", Text: "Great is thy faithfulness morning by morning."},
	}
	engine, err := retrieval.NewEngine(&memIndex{corpus: corpus}, staticEmbedder{}, nil, retrieval.Config{
		BatchSize:     4,
		SemanticCount: 1,
		QueryTimeout:  time.Second,
	})
	require.NoError(t, err)

	sessions := memory.NewSessionStore(30 * time.Minute)
	extractor := keywords.NewExtractor(nil, []string{"what", "is", "the", "about"}, nil)
	return NewQAService(engine, sessions, extractor, nil, nil)
}

func TestQAServiceAskAndContinue(t *testing.T) {
	ctx := context.Background()
	svc := newTestQAService(t)

	first, err := svc.Ask(ctx, dto.AskRequest{Question: "What about grace?"})
	require.NoError(t, err)
	require.NotEmpty(t, first.SessionID)
	require.NotEmpty(t, first.Sentences)
	assert.Equal(t, 1, first.BatchNumber)

	seen := make(map[string]bool)
	for _, s := range first.Sentences {
		seen[s.ID] = true
	}

	second, err := svc.Continue(ctx, dto.ContinueRequest{SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, 2, second.BatchNumber)
	for _, s := range second.Sentences {
		assert.False(t, seen[s.ID], "sentence %s repeated across batches", s.ID)
	}
}

func TestQAServiceSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestQAService(t)

	first, err := svc.Ask(ctx, dto.AskRequest{Question: "What about grace?"})
	require.NoError(t, err)

	t.Run("get session", func(t *testing.T) {
		sess, err := svc.GetSession(ctx, first.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "What about grace?", sess.Question)
		assert.Contains(t, sess.Keywords, "grace")
		assert.Equal(t, 1, sess.BatchCount)
		assert.NotZero(t, sess.UsedCount)
	})

	t.Run("list sessions", func(t *testing.T) {
		all, err := svc.ListSessions(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("delete then continue fails", func(t *testing.T) {
		require.NoError(t, svc.DeleteSession(ctx, first.SessionID))
		_, err := svc.Continue(ctx, dto.ContinueRequest{SessionID: first.SessionID})
		assert.ErrorIs(t, err, contract.ErrSessionNotFound)
	})
}

func TestQAServiceUnknownSession(t *testing.T) {
	svc := newTestQAService(t)
	_, err := svc.Continue(context.Background(), dto.ContinueRequest{SessionID: "ghost"})
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}
