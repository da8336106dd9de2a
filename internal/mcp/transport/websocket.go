package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// WebSocketTransport implements MCP communication over WebSocket connections
type WebSocketTransport struct {
	logger     *logrus.Logger
	server     *http.Server
	router     *gin.Engine
	upgrader   websocket.Upgrader
	host       string
	port       int
	clients    map[string]*wsClient
	clientsMu  sync.RWMutex
	registry   ClientRegistry
	messagesCh chan HTTPMessage
	closed     bool
	mu         sync.RWMutex
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// NewWebSocketTransport creates a new WebSocket transport for remote AI agents
func NewWebSocketTransport(logger *logrus.Logger, host string, port int) *WebSocketTransport {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	transport := &WebSocketTransport{
		logger: logger,
		router: router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		host:       host,
		port:       port,
		clients:    make(map[string]*wsClient),
		messagesCh: make(chan HTTPMessage, 100),
	}

	router.GET("/mcp/ws", transport.handleConnection)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"transport": string(TransportWebSocket),
			"clients":   transport.GetConnectedClients(),
		})
	})

	return transport
}

// SetClientRegistry wires the transport to a client connection registry
func (w *WebSocketTransport) SetClientRegistry(registry ClientRegistry) {
	w.registry = registry
}

// Start initializes the WebSocket transport
func (w *WebSocketTransport) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("transport is closed")
	}

	addr := fmt.Sprintf("%s:%d", w.host, w.port)
	w.server = &http.Server{
		Addr:    addr,
		Handler: w.router,
	}

	w.logger.WithFields(logrus.Fields{
		"address": addr,
		"type":    string(TransportWebSocket),
	}).Info("Starting WebSocket transport for MCP communication")

	go func() {
		if err := w.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			w.logger.WithError(err).Error("WebSocket server failed")
		}
	}()

	return nil
}

func (w *WebSocketTransport) handleConnection(c *gin.Context) {
	conn, err := w.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		w.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	client := &wsClient{
		id:   clientID,
		conn: conn,
		send: make(chan []byte, 50),
		done: make(chan struct{}),
	}

	w.clientsMu.Lock()
	w.clients[clientID] = client
	w.clientsMu.Unlock()

	if w.registry != nil {
		w.registry.RegisterClient(clientID, string(TransportWebSocket), map[string]string{
			"remote_addr": c.ClientIP(),
		})
	}

	w.logger.WithField("client_id", clientID).Info("WebSocket client connected")

	go w.writePump(client)
	w.readPump(client)
}

func (w *WebSocketTransport) readPump(client *wsClient) {
	defer w.removeClient(client)

	client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				w.logger.WithError(err).WithField("client_id", client.id).Warn("WebSocket read error")
			}
			return
		}

		select {
		case w.messagesCh <- HTTPMessage{ClientID: client.id, Data: message}:
			if w.registry != nil {
				w.registry.UpdateClientActivity(client.id)
			}
		default:
			w.logger.WithField("client_id", client.id).Error("Message queue full, dropping message")
		}
	}
}

func (w *WebSocketTransport) writePump(client *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case <-client.done:
			return
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				w.logger.WithError(err).WithField("client_id", client.id).Warn("WebSocket write error")
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (w *WebSocketTransport) removeClient(client *wsClient) {
	w.clientsMu.Lock()
	if _, exists := w.clients[client.id]; exists {
		delete(w.clients, client.id)
		close(client.done)
	}
	w.clientsMu.Unlock()

	if client.conn != nil {
		client.conn.Close()
	}
	if w.registry != nil {
		w.registry.UnregisterClient(client.id)
	}
	w.logger.WithField("client_id", client.id).Info("WebSocket client disconnected")
}

// ReadMessage reads the next queued client message
func (w *WebSocketTransport) ReadMessage() ([]byte, error) {
	msg, ok := <-w.messagesCh
	if !ok {
		return nil, fmt.Errorf("transport is closed")
	}

	w.logger.WithFields(logrus.Fields{
		"client_id":      msg.ClientID,
		"message_length": len(msg.Data),
	}).Debug("Received message via WebSocket")

	return msg.Data, nil
}

// WriteMessage sends a message to all connected clients
func (w *WebSocketTransport) WriteMessage(message []byte) error {
	w.clientsMu.RLock()
	defer w.clientsMu.RUnlock()

	if len(w.clients) == 0 {
		return fmt.Errorf("no connected clients")
	}

	for clientID, client := range w.clients {
		select {
		case client.send <- message:
			w.logger.WithField("client_id", clientID).Debug("Message queued for client")
		default:
			w.logger.WithField("client_id", clientID).Warn("Client send queue full, dropping message")
		}
	}

	return nil
}

// WriteJSONMessage writes a JSON object as a message
func (w *WebSocketTransport) WriteJSONMessage(obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return w.WriteMessage(data)
}

// Close closes the WebSocket transport
func (w *WebSocketTransport) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	w.clientsMu.Lock()
	for id, client := range w.clients {
		close(client.done)
		client.conn.Close()
		delete(w.clients, id)
	}
	w.clientsMu.Unlock()

	if w.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.server.Shutdown(ctx); err != nil {
			w.logger.WithError(err).Error("Error shutting down WebSocket server")
			return err
		}
	}

	close(w.messagesCh)
	w.logger.Info("WebSocket transport closed")
	return nil
}

// IsClosed returns whether the transport is closed
func (w *WebSocketTransport) IsClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}

// GetType returns the transport type
func (w *WebSocketTransport) GetType() string {
	return string(TransportWebSocket)
}

// GetConnectedClients returns the number of connected clients
func (w *WebSocketTransport) GetConnectedClients() int {
	w.clientsMu.RLock()
	defer w.clientsMu.RUnlock()
	return len(w.clients)
}
