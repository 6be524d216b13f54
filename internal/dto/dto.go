package dto

import "time"

// --- Requests ---

type AskRequest struct {
	Question      string `json:"question" validate:"required,min=3,max=2000"`
	BatchSize     int    `json:"batch_size" validate:"omitempty,min=1,max=50"`
	SemanticCount int    `json:"semantic_count" validate:"omitempty,min=0,max=50"`
	// GenerateAnswer asks the LLM to answer from the batch; off, the caller
	// gets raw sentences only.
	GenerateAnswer bool `json:"generate_answer"`
}

type ContinueRequest struct {
	SessionID      string `json:"session_id" validate:"required,uuid4"`
	BatchSize      int    `json:"batch_size" validate:"omitempty,min=1,max=50"`
	SemanticCount  int    `json:"semantic_count" validate:"omitempty,min=0,max=50"`
	GenerateAnswer bool   `json:"generate_answer"`
}

type UploadCorpusRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	Text string `json:"text" validate:"required,min=10"`
	// Mode selects sentence splitting: auto, line, or sentence.
	Mode string `json:"mode" validate:"omitempty,oneof=auto line sentence"`
}

// --- Responses ---

type SentenceResponse struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	SentenceIndex int     `json:"sentence_index"`
	Score         float32 `json:"score,omitempty"`
	Level         int     `json:"level"`
	Source        string  `json:"source"`
}

type BatchResponse struct {
	SessionID    string             `json:"session_id"`
	BatchNumber  int                `json:"batch_number"`
	Sentences    []SentenceResponse `json:"sentences"`
	LevelsUsed   []int              `json:"levels_used"`
	CurrentLevel int                `json:"current_level"`
	Exhausted    bool               `json:"exhausted"`
	Answer       string             `json:"answer,omitempty"`
}

type SessionResponse struct {
	ID           string      `json:"id"`
	Question     string      `json:"question"`
	Keywords     []string    `json:"keywords"`
	CurrentLevel int         `json:"current_level"`
	Offsets      map[int]int `json:"offsets"`
	BatchCount   int         `json:"batch_count"`
	UsedCount    int         `json:"used_count"`
	CreatedAt    time.Time   `json:"created_at"`
	LastAccess   time.Time   `json:"last_access"`
}

type UploadCorpusResponse struct {
	DocumentID    string `json:"document_id"`
	Name          string `json:"name"`
	SentenceCount int    `json:"sentence_count"`
	Replaced      bool   `json:"replaced"`
}

type CorpusStatsResponse struct {
	Documents      int   `json:"documents"`
	Sentences      int64 `json:"sentences"`
	ActiveSessions int   `json:"active_sessions"`
}

// --- Messages ---

// EmbedSentenceMessage is the ingestion pipeline payload: one sentence
// awaiting an embedding.
type EmbedSentenceMessage struct {
	SentenceID string `json:"sentence_id"`
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
}
