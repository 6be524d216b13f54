package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tigernone/corpusqa/internal/repository/memory"
	"github.com/tigernone/corpusqa/pkg/events"
	"github.com/tigernone/corpusqa/pkg/nats"
	"github.com/tigernone/corpusqa/pkg/store"
)

func TestSessionFlushHandler(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore(30 * time.Minute)
	require.NoError(t, sessions.Create(ctx,
		store.NewSessionState("a", "what is grace", []string{"grace"}, time.Now())))
	require.NoError(t, sessions.Create(ctx,
		store.NewSessionState("b", "what is truth", []string{"truth"}, time.Now())))

	handler := sessionFlushHandler(sessions, zap.NewNop())
	require.NoError(t, handler(ctx, events.CorpusReplaced("doc-1", "new corpus")))

	count, err := sessions.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "replacement must invalidate every session")
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "corpus.CORPUS_REPLACED", nats.SubjectFor(events.TypeCorpusReplaced))
}
