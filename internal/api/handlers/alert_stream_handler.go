package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/infrastructure/observability"
)

const defaultHeartbeat = 30 * time.Second

// AlertStreamHandler streams triage alerts to clinicians over Server-Sent Events
type AlertStreamHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
}

// NewAlertStreamHandler creates a new alert stream handler
func NewAlertStreamHandler(eventBus providers.EventBus) *AlertStreamHandler {
	return &AlertStreamHandler{eventBus: eventBus, heartbeat: defaultHeartbeat}
}

// WithHeartbeat overrides the keep-alive interval
func (h *AlertStreamHandler) WithHeartbeat(d time.Duration) *AlertStreamHandler {
	h.heartbeat = d
	return h
}

// StreamAlerts handles GET /api/stream/alerts[?user_id=]
func (h *AlertStreamHandler) StreamAlerts(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	channel := providers.EventChannelTriageAlerts
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID != "" {
		channel = providers.GetUserChannel(userID)
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	events, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe to alert channel")
		respondWithError(w, http.StatusServiceUnavailable, "alert stream unavailable")
		return
	}

	// streams outlive the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sendEvent(w, "connected", map[string]interface{}{
		"channel":   channel,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("channel", channel).Msg("Client disconnected from alert stream")
			return
		case <-ticker.C:
			sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			sendEvent(w, "alert", event)
			flusher.Flush()
		}
	}
}

func sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Warn().Err(err).Str("event", eventType).Msg("Failed to marshal SSE payload")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}
