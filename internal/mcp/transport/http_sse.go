package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HTTPSSETransport implements MCP communication over HTTP with Server-Sent Events
type HTTPSSETransport struct {
	logger     *logrus.Logger
	server     *http.Server
	router     *gin.Engine
	host       string
	port       int
	clients    map[string]*SSEClient
	clientsMu  sync.RWMutex
	registry   ClientRegistry
	messagesCh chan HTTPMessage
	closed     bool
	mu         sync.RWMutex
}

// SSEClient represents a connected MCP client via SSE
type SSEClient struct {
	ID       string
	Messages chan []byte
	Done     chan struct{}
}

// HTTPMessage represents a message received via HTTP
type HTTPMessage struct {
	ClientID string
	Data     []byte
}

// NewHTTPSSETransport creates a new HTTP SSE transport for remote AI agents
func NewHTTPSSETransport(logger *logrus.Logger, host string, port int) *HTTPSSETransport {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	transport := &HTTPSSETransport{
		logger:     logger,
		router:     router,
		host:       host,
		port:       port,
		clients:    make(map[string]*SSEClient),
		messagesCh: make(chan HTTPMessage, 100),
	}

	transport.setupRoutes()

	return transport
}

// SetClientRegistry wires the transport to a client connection registry
func (h *HTTPSSETransport) SetClientRegistry(registry ClientRegistry) {
	h.registry = registry
}

func (h *HTTPSSETransport) setupRoutes() {
	h.router.GET("/mcp/sse", h.handleSSEConnection)
	h.router.POST("/mcp/message", h.handleMessage)

	h.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"transport": string(TransportHTTPSSE),
			"clients":   h.GetConnectedClients(),
		})
	})
}

// Start initializes the HTTP SSE transport
func (h *HTTPSSETransport) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("transport is closed")
	}

	addr := fmt.Sprintf("%s:%d", h.host, h.port)
	h.server = &http.Server{
		Addr:    addr,
		Handler: h.router,
	}

	h.logger.WithFields(logrus.Fields{
		"address": addr,
		"type":    string(TransportHTTPSSE),
	}).Info("Starting HTTP SSE transport for MCP communication")

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.WithError(err).Error("HTTP server failed")
		}
	}()

	return nil
}

// handleSSEConnection handles Server-Sent Events connections
func (h *HTTPSSETransport) handleSSEConnection(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id parameter required"})
		return
	}

	h.logger.WithField("client_id", clientID).Info("New SSE client connecting")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	client := &SSEClient{
		ID:       clientID,
		Messages: make(chan []byte, 50),
		Done:     make(chan struct{}),
	}

	h.clientsMu.Lock()
	h.clients[clientID] = client
	h.clientsMu.Unlock()

	if h.registry != nil {
		h.registry.RegisterClient(clientID, string(TransportHTTPSSE), map[string]string{
			"remote_addr": c.ClientIP(),
		})
	}

	defer func() {
		h.clientsMu.Lock()
		if _, exists := h.clients[clientID]; exists {
			delete(h.clients, clientID)
			close(client.Done)
		}
		h.clientsMu.Unlock()
		if h.registry != nil {
			h.registry.UnregisterClient(clientID)
		}
		h.logger.WithField("client_id", clientID).Info("SSE client disconnected")
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-client.Done:
			return
		case message := <-client.Messages:
			fmt.Fprintf(c.Writer, "data: %s\n\n", string(message))
			c.Writer.Flush()
		case <-ticker.C:
			// keep-alive
			fmt.Fprintf(c.Writer, "data: {\"type\":\"ping\"}\n\n")
			c.Writer.Flush()
		}
	}
}

// handleMessage handles incoming HTTP messages
func (h *HTTPSSETransport) handleMessage(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id parameter required"})
		return
	}

	var message json.RawMessage
	if err := c.ShouldBindJSON(&message); err != nil {
		h.logger.WithError(err).Error("Failed to parse JSON message")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	select {
	case h.messagesCh <- HTTPMessage{ClientID: clientID, Data: message}:
		if h.registry != nil {
			h.registry.UpdateClientActivity(clientID)
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	default:
		h.logger.Error("Message queue full")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Message queue full"})
	}
}

// ReadMessage reads the next queued client message
func (h *HTTPSSETransport) ReadMessage() ([]byte, error) {
	msg, ok := <-h.messagesCh
	if !ok {
		return nil, fmt.Errorf("transport is closed")
	}

	h.logger.WithFields(logrus.Fields{
		"client_id":      msg.ClientID,
		"message_length": len(msg.Data),
	}).Debug("Received message via HTTP")

	return msg.Data, nil
}

// WriteMessage sends a message to all connected clients
func (h *HTTPSSETransport) WriteMessage(message []byte) error {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	if len(h.clients) == 0 {
		return fmt.Errorf("no connected clients")
	}

	for clientID, client := range h.clients {
		select {
		case client.Messages <- message:
			h.logger.WithField("client_id", clientID).Debug("Message queued for client")
		default:
			h.logger.WithField("client_id", clientID).Warn("Client message queue full, dropping message")
		}
	}

	return nil
}

// WriteJSONMessage writes a JSON object as a message
func (h *HTTPSSETransport) WriteJSONMessage(obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return h.WriteMessage(data)
}

// Close closes the HTTP SSE transport
func (h *HTTPSSETransport) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	h.closed = true

	h.clientsMu.Lock()
	for id, client := range h.clients {
		close(client.Done)
		delete(h.clients, id)
	}
	h.clientsMu.Unlock()

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.WithError(err).Error("Error shutting down HTTP server")
			return err
		}
	}

	close(h.messagesCh)
	h.logger.Info("HTTP SSE transport closed")
	return nil
}

// IsClosed returns whether the transport is closed
func (h *HTTPSSETransport) IsClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// GetType returns the transport type
func (h *HTTPSSETransport) GetType() string {
	return string(TransportHTTPSSE)
}

// GetConnectedClients returns the number of connected clients
func (h *HTTPSSETransport) GetConnectedClients() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
