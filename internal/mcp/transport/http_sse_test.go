package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRegistry captures registry calls for assertions.
type recordingRegistry struct {
	mu           sync.Mutex
	registered   []string
	unregistered []string
	activity     []string
}

func (r *recordingRegistry) RegisterClient(clientID string, transportType string, metadata map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = append(r.registered, clientID+"/"+transportType)
}

func (r *recordingRegistry) UnregisterClient(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregistered = append(r.unregistered, clientID)
}

func (r *recordingRegistry) UpdateClientActivity(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activity = append(r.activity, clientID)
}

func newSSETransport() *HTTPSSETransport {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHTTPSSETransport(logger, "localhost", 0)
}

func TestManager_CreateTransport_WiresClientRegistry(t *testing.T) {
	m := newTestManager()

	tr, err := m.CreateTransport(TransportHTTPSSE)
	require.NoError(t, err)
	sse, ok := tr.(*HTTPSSETransport)
	require.True(t, ok)
	assert.Same(t, m, sse.registry)

	tr, err = m.CreateTransport(TransportWebSocket)
	require.NoError(t, err)
	ws, ok := tr.(*WebSocketTransport)
	require.True(t, ok)
	assert.Same(t, m, ws.registry)
}

func TestSSEConnection_RegistersAndUnregistersClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sse := newSSETransport()
	registry := &recordingRegistry{}
	sse.SetClientRegistry(registry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/mcp/sse?client_id=agent-1", nil).WithContext(ctx)

	sse.handleSSEConnection(c)

	assert.Equal(t, []string{"agent-1/http-sse"}, registry.registered)
	assert.Equal(t, []string{"agent-1"}, registry.unregistered)
	assert.Equal(t, 0, sse.GetConnectedClients())
}

func TestSSEMessage_UpdatesClientActivity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sse := newSSETransport()
	registry := &recordingRegistry{}
	sse.SetClientRegistry(registry)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/mcp/message?client_id=agent-1",
		strings.NewReader(`{"jsonrpc":"2.0","method":"ping","id":1}`))
	c.Request.Header.Set("Content-Type", "application/json")

	sse.handleMessage(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"agent-1"}, registry.activity)

	data, err := sse.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ping"`)
}

func TestWebSocketRemoveClient_UnregistersClient(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ws := NewWebSocketTransport(logger, "localhost", 0)
	registry := &recordingRegistry{}
	ws.SetClientRegistry(registry)

	client := &wsClient{id: "agent-2", send: make(chan []byte, 1), done: make(chan struct{})}
	ws.clientsMu.Lock()
	ws.clients[client.id] = client
	ws.clientsMu.Unlock()

	ws.removeClient(client)

	assert.Equal(t, []string{"agent-2"}, registry.unregistered)
	assert.Equal(t, 0, ws.GetConnectedClients())
}
