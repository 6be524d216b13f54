package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CORPUS_UPLOADED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Corpus lifecycle event codes.
const (
	TypeCorpusUploaded  = "CORPUS_UPLOADED"
	TypeCorpusIndexed   = "CORPUS_INDEXED"
	TypeCorpusReplaced  = "CORPUS_REPLACED"
	TypeSessionsCleared = "SESSIONS_CLEARED"
)

// CorpusUploaded fires when a document's sentences have been stored, before
// embedding completes.
func CorpusUploaded(documentID, name string, sentenceCount int) Event {
	return BaseEvent{
		Type: TypeCorpusUploaded,
		Data: map[string]interface{}{
			"document_id":    documentID,
			"name":           name,
			"sentence_count": sentenceCount,
		},
		OccurredAt: time.Now(),
	}
}

// CorpusIndexed fires when every sentence of a document has an embedding.
func CorpusIndexed(documentID string, embedded int) Event {
	return BaseEvent{
		Type: TypeCorpusIndexed,
		Data: map[string]interface{}{
			"document_id": documentID,
			"embedded":    embedded,
		},
		OccurredAt: time.Now(),
	}
}

// CorpusReplaced fires when the whole corpus is swapped for a new document.
func CorpusReplaced(documentID, name string) Event {
	return BaseEvent{
		Type: TypeCorpusReplaced,
		Data: map[string]interface{}{
			"document_id": documentID,
			"name":        name,
		},
		OccurredAt: time.Now(),
	}
}

// SessionsCleared fires when sessions are dropped in bulk.
func SessionsCleared(count int) Event {
	return BaseEvent{
		Type: TypeSessionsCleared,
		Data: map[string]interface{}{
			"count": count,
		},
		OccurredAt: time.Now(),
	}
}
