package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocPipeAPI/internal/adapter/utils"
	"github.com/akolanti/DocPipeAPI/internal/notify"
)

// sseConn adapts one streaming HTTP response to the registry's Conn
// interface. Send hands the event to a buffered channel; the write loop
// below owns the ResponseWriter. A full buffer counts as a dead subscriber
// so one stalled client never holds up a publish.
type sseConn struct {
	events chan notify.Event
}

func (c *sseConn) Send(event notify.Event) error {
	select {
	case c.events <- event:
		return nil
	default:
		return errors.New("subscriber buffer full")
	}
}

// GetProgressHandler godoc
// @Summary      Stream processing progress
// @Description  Server-sent events stream of {stage, progress, error} updates for one document. Events are live only; progress made before subscribing is not replayed. The stream ends after a complete or failed event.
// @Tags         Documents
// @Produce      text/event-stream
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.ProgressEvent
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Router       /documents/{id}/progress [get]
func GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	if _, found := GetDocument(r.Context(), documentId); !found {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	conn := &sseConn{events: make(chan notify.Event, 16)}
	handlerInstance.registry.Join(documentId, conn)
	defer handlerInstance.registry.Leave(documentId, conn)

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-conn.events:
			payload, err := json.Marshal(event)
			if err != nil {
				logRH.Error("Could not encode progress event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()

			if event.Stage == notify.StageComplete || event.Stage == notify.StageFailed {
				return
			}
		}
	}
}
