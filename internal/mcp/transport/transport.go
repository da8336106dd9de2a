// Package transport provides the wire mechanisms an MCP server can speak
// over: stdio for local agents, HTTP SSE and WebSocket for remote ones.
package transport

import (
	"context"
)

// Transport defines the interface for MCP transport mechanisms
type Transport interface {
	// Start initializes the transport
	Start(ctx context.Context) error

	// ReadMessage reads a message from the transport
	ReadMessage() ([]byte, error)

	// WriteMessage sends a message via the transport
	WriteMessage(message []byte) error

	// WriteJSONMessage sends a JSON object as a message
	WriteJSONMessage(obj interface{}) error

	// Close closes the transport and cleans up resources
	Close() error

	// IsClosed returns whether the transport is closed
	IsClosed() bool

	// GetType returns the transport type identifier
	GetType() string
}

// TransportType represents the type of transport
type TransportType string

const (
	TransportStdio     TransportType = "stdio"
	TransportHTTPSSE   TransportType = "http-sse"
	TransportWebSocket TransportType = "websocket"
)

// ClientRegistry tracks client connections across transports. The Manager
// implements it; network transports report connect, disconnect and message
// activity through it.
type ClientRegistry interface {
	RegisterClient(clientID string, transportType string, metadata map[string]string)
	UnregisterClient(clientID string)
	UpdateClientActivity(clientID string)
}

// ClientInfo represents information about a connected MCP client
type ClientInfo struct {
	ID            string            `json:"id"`
	TransportType string            `json:"transport_type"`
	ConnectedAt   string            `json:"connected_at"`
	LastActivity  string            `json:"last_activity"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
