package jobs

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/erniesg/aidobe-sub002/internal/model/job"
	"github.com/erniesg/aidobe-sub002/internal/service/pipeline"
)

// WebSocketHandler streams job progress over a websocket connection.
type WebSocketHandler struct {
	jobs     *pipeline.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket progress handler.
func NewWebSocketHandler(jobs *pipeline.Service) *WebSocketHandler {
	return &WebSocketHandler{
		jobs: jobs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes registers the websocket route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/jobs/ws/{jobID}", h.handleJobSocket)
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	JobID     string      `json:"jobId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleJobSocket(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	history, events, cancelSub, err := h.jobs.Subscribe(jobID)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	defer cancelSub()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new progress connection for job: %s", jobID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn)
	go h.readLoop(cancel, conn)

	for _, event := range history {
		if !h.sendProgress(conn, event) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				h.sendClose(conn)
				return
			}
			if !h.sendProgress(conn, event) {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *WebSocketHandler) readLoop(cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
	}
}

func (h *WebSocketHandler) sendProgress(conn *websocket.Conn, event job.ProgressEvent) bool {
	msg := outgoingMessage{
		Type:      "progress",
		JobID:     event.JobID,
		Data:      event,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write progress failed: %v", err)
		return false
	}
	return true
}

func (h *WebSocketHandler) sendClose(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished")
	if err := conn.WriteControl(websocket.CloseMessage, message, deadline); err != nil {
		log.Printf("[websocket] write close failed: %v", err)
	}
}

// pingLoop keeps idle connections alive; control frames may be written
// concurrently with the progress writes.
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}
