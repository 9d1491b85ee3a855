package handlers_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuvia/backend/internal/adapters/events"
	"github.com/neuvia/backend/internal/api/handlers"
	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
)

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			return event, data
		}
	}
}

func TestAlertStreamHandler_StreamsUserAlerts(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()

	h := handlers.NewAlertStreamHandler(bus).WithHeartbeat(time.Hour)
	server := httptest.NewServer(http.HandlerFunc(h.StreamAlerts))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"?user_id=u1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	event, data := readEvent(t, reader)
	assert.Equal(t, "connected", event)
	assert.Contains(t, data, providers.GetUserChannel("u1"))

	require.NoError(t, bus.Publish(ctx, providers.GetUserChannel("u1"), &entities.TriageAlertEvent{
		ID:         "evt-1",
		SessionID:  "s1",
		UserID:     "u1",
		Conditions: []entities.ConditionName{"preeclampsia"},
	}))

	event, data = readEvent(t, reader)
	assert.Equal(t, "alert", event)
	assert.Contains(t, data, "evt-1")
	assert.Contains(t, data, "preeclampsia")
}
