package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tigernone/corpusqa/internal/dto"
	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/pkg/keywords"
	"github.com/tigernone/corpusqa/pkg/llm"
	"github.com/tigernone/corpusqa/pkg/prompt"
	"github.com/tigernone/corpusqa/pkg/retrieval"
	"github.com/tigernone/corpusqa/pkg/store"
)

type IQAService interface {
	// Ask opens a session for a new question and returns its first batch.
	Ask(ctx context.Context, req dto.AskRequest) (*dto.BatchResponse, error)
	// Continue pulls the next batch for an existing session.
	Continue(ctx context.Context, req dto.ContinueRequest) (*dto.BatchResponse, error)
	GetSession(ctx context.Context, id string) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context) ([]dto.SessionResponse, error)
	DeleteSession(ctx context.Context, id string) error
	ClearSessions(ctx context.Context) error
}

type qaService struct {
	engine    *retrieval.Engine
	sessions  contract.SessionRepository
	extractor *keywords.Extractor
	llm       llm.Provider
	log       *zap.Logger
}

// NewQAService wires the retrieval engine to session storage. The LLM
// provider is optional; without it answers are never generated and callers
// receive raw sentences.
func NewQAService(
	engine *retrieval.Engine,
	sessions contract.SessionRepository,
	extractor *keywords.Extractor,
	provider llm.Provider,
	log *zap.Logger,
) IQAService {
	if log == nil {
		log = zap.NewNop()
	}
	return &qaService{
		engine:    engine,
		sessions:  sessions,
		extractor: extractor,
		llm:       provider,
		log:       log,
	}
}

func (s *qaService) Ask(ctx context.Context, req dto.AskRequest) (*dto.BatchResponse, error) {
	kws := s.extractor.Extract(ctx, req.Question)
	state := store.NewSessionState(uuid.NewString(), req.Question, kws, time.Now())

	if err := s.sessions.Create(ctx, state); err != nil {
		return nil, err
	}

	s.log.Info("session opened",
		zap.String("session", state.ID),
		zap.Strings("keywords", kws))

	resp, err := s.advance(ctx, state.ID, req.BatchSize, req.SemanticCount)
	if err != nil {
		return nil, err
	}
	if req.GenerateAnswer {
		resp.Answer = s.generateAnswer(ctx, req.Question, resp, false)
	}
	return resp, nil
}

func (s *qaService) Continue(ctx context.Context, req dto.ContinueRequest) (*dto.BatchResponse, error) {
	resp, err := s.advance(ctx, req.SessionID, req.BatchSize, req.SemanticCount)
	if err != nil {
		return nil, err
	}
	if req.GenerateAnswer {
		st, gerr := s.sessions.Get(ctx, req.SessionID)
		if gerr == nil {
			resp.Answer = s.generateAnswer(ctx, st.Question, resp, true)
		}
	}
	return resp, nil
}

// advance runs one engine step under the session lock. The engine works on
// a private copy; returning its state from the callback is what commits it.
func (s *qaService) advance(ctx context.Context, sessionID string, batchSize, semanticCount int) (*dto.BatchResponse, error) {
	if semanticCount == 0 {
		semanticCount = -1 // engine default
	}
	var batch *retrieval.Batch
	_, err := s.sessions.Advance(ctx, sessionID, func(st *store.SessionState) (*store.SessionState, error) {
		b, err := s.engine.GetNextBatch(ctx, st, batchSize, semanticCount)
		if err != nil {
			return nil, err
		}
		batch = b
		return b.State, nil
	})
	if err != nil {
		return nil, err
	}

	sentences := make([]dto.SentenceResponse, 0, len(batch.Sentences))
	for _, sent := range batch.Sentences {
		sentences = append(sentences, dto.SentenceResponse{
			ID:            sent.ID,
			Text:          sent.Text,
			SentenceIndex: sent.SentenceIndex,
			Score:         sent.Score,
			Level:         sent.Level,
			Source:        sent.Source,
		})
	}

	return &dto.BatchResponse{
		SessionID:    sessionID,
		BatchNumber:  batch.State.BatchCount,
		Sentences:    sentences,
		LevelsUsed:   batch.LevelsUsed,
		CurrentLevel: batch.State.CurrentLevel,
		Exhausted:    batch.Exhausted,
	}, nil
}

func (s *qaService) generateAnswer(ctx context.Context, question string, resp *dto.BatchResponse, continuation bool) string {
	if s.llm == nil || len(resp.Sentences) == 0 {
		return ""
	}
	batch := make([]store.Sentence, len(resp.Sentences))
	for i, sent := range resp.Sentences {
		batch[i] = store.Sentence{ID: sent.ID, Text: sent.Text}
	}
	var p string
	if continuation {
		p = prompt.Continuation(question, batch)
	} else {
		p = prompt.Answer(question, batch)
	}
	answer, err := s.llm.Generate(ctx, p, llm.WithTemperature(0.2))
	if err != nil {
		s.log.Warn("answer generation failed",
			zap.String("session", resp.SessionID), zap.Error(err))
		return ""
	}
	return answer
}

func (s *qaService) GetSession(ctx context.Context, id string) (*dto.SessionResponse, error) {
	st, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSessionResponse(st)
	return &resp, nil
}

func (s *qaService) ListSessions(ctx context.Context) ([]dto.SessionResponse, error) {
	states, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResponse, 0, len(states))
	for _, st := range states {
		out = append(out, toSessionResponse(st))
	}
	return out, nil
}

func (s *qaService) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

func (s *qaService) ClearSessions(ctx context.Context) error {
	return s.sessions.ClearAll(ctx)
}

func toSessionResponse(st *store.SessionState) dto.SessionResponse {
	return dto.SessionResponse{
		ID:           st.ID,
		Question:     st.Question,
		Keywords:     st.Keywords,
		CurrentLevel: st.CurrentLevel,
		Offsets:      st.Offsets,
		BatchCount:   st.BatchCount,
		UsedCount:    len(st.UsedIDs),
		CreatedAt:    st.CreatedAt,
		LastAccess:   st.LastAccess,
	}
}
