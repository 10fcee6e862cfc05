package notify

import (
	"sync"

	"github.com/akolanti/DocPipeAPI/internal/metrics"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

type Stage string

const (
	StageExtracting  Stage = "extracting"
	StageClassifying Stage = "classifying"
	StageChunking    Stage = "chunking"
	StageEmbedding   Stage = "embedding"
	StageStoring     Stage = "storing"
	StageComplete    Stage = "complete"
	StageFailed      Stage = "failed"
)

// Event is the exact payload observers receive. Error is a pointer so the
// JSON carries "error": null rather than omitting the key.
type Event struct {
	Stage    Stage   `json:"stage"`
	Progress int     `json:"progress"`
	Error    *string `json:"error"`
}

// Conn is one observer connection. Send must not block indefinitely; a
// returned error means the connection is dead and gets removed.
type Conn interface {
	Send(event Event) error
}

// Registry maps a document id to the set of connections currently watching
// it. Many connections may watch one document; a connection watches exactly
// one document. There is no buffering: a publish reaches only the
// connections registered at the moment of the call.
type Registry struct {
	mu     sync.RWMutex
	subs   map[string]map[Conn]struct{}
	logger *logger_i.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		subs:   make(map[string]map[Conn]struct{}),
		logger: logger_i.NewLogger("SubscriptionRegistry"),
	}
}

// Join registers the connection under the document id. Idempotent.
func (r *Registry) Join(documentId string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subs[documentId]
	if !ok {
		set = make(map[Conn]struct{})
		r.subs[documentId] = set
	}
	if _, exists := set[conn]; !exists {
		set[conn] = struct{}{}
		metrics.IncrementActiveSubscribers()
	}
}

// Leave removes the registration. A leave for an unknown connection or
// document is a no-op. The document entry is dropped once its set empties so
// memory stays bounded to active work.
func (r *Registry) Leave(documentId string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(documentId, conn)
}

func (r *Registry) leaveLocked(documentId string, conn Conn) {
	set, ok := r.subs[documentId]
	if !ok {
		return
	}
	if _, exists := set[conn]; !exists {
		return
	}
	delete(set, conn)
	metrics.DecrementActiveSubscribers()
	if len(set) == 0 {
		delete(r.subs, documentId)
	}
}

// Publish delivers the event to every connection registered under the id at
// the moment of the call. A failed send removes that connection instead of
// propagating; one slow or dead subscriber never blocks the rest.
func (r *Registry) Publish(documentId string, event Event) {
	r.mu.RLock()
	set := r.subs[documentId]
	targets := make([]Conn, 0, len(set))
	for conn := range set {
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.Send(event); err != nil {
			r.logger.Debug("Dropping dead subscriber", "documentId", documentId, "error", err)
			r.Leave(documentId, conn)
		}
	}
}

// SubscriberCount is used by handlers and tests; not part of the publish path.
func (r *Registry) SubscriberCount(documentId string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[documentId])
}
