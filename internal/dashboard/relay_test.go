package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

func TestRelayBroadcastsNewMessages(t *testing.T) {
	relay := NewRelay(NewMemoryStore(), logging.Default())

	server := httptest.NewServer(http.HandlerFunc(relay.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for registration before broadcasting.
	require.Eventually(t, func() bool {
		relay.mu.Lock()
		defer relay.mu.Unlock()
		return len(relay.conns) == 1
	}, 2*time.Second, 10*time.Millisecond)

	relay.RecordInbound(context.Background(), "msg-1", "+5215512345678", "Hola")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "new-message", event.Event)
	assert.Equal(t, "msg-1", event.Data.ID)
	assert.Equal(t, "+5215512345678", event.Data.From)
	assert.Equal(t, "bot", event.Data.To)
	assert.Equal(t, "Hola", event.Data.Body)
	assert.Equal(t, "inbound", event.Data.Direction)
}

func TestRelayPersistsTranscript(t *testing.T) {
	store := NewMemoryStore()
	relay := NewRelay(store, logging.Default())

	relay.RecordInbound(context.Background(), "", "+521", "Hola")
	relay.RecordOutbound(context.Background(), "", "+521", "¡Hola! ¿En qué puedo ayudarte?")

	messages, err := store.List(context.Background(), "+521", 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.NotEmpty(t, messages[0].ID)
	assert.Equal(t, "inbound", messages[0].Direction)
	assert.Equal(t, "+521", messages[0].From)
	assert.Equal(t, "outbound", messages[1].Direction)
	assert.Equal(t, "bot", messages[1].From)
	assert.Equal(t, "+521", messages[1].To)
}
