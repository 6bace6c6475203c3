package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/foomo/contentserver-docgraph/scrape"
	"github.com/foomo/contentserver-docgraph/service"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// SSEEvent represents an SSE event structure
type SSEEvent struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

func newSSEEvent(event string, data interface{}) SSEEvent {
	now := time.Now()
	return SSEEvent{
		ID:        fmt.Sprintf("%s_%d", event, now.UnixNano()),
		Event:     event,
		Data:      data,
		Timestamp: now,
	}
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID      string
	Writer  http.ResponseWriter
	Flusher http.Flusher
	Done    chan struct{}

	// mu serializes writes from the broadcast loop and the keepalive ticker
	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns the time of the last successful write
func (c *SSEClient) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// MCPSSEServer wraps the MCP server with SSE capabilities
type MCPSSEServer struct {
	logger       *zap.Logger
	mcpServer    *server.MCPServer
	service      service.Service
	httpClient   *http.Client
	config       *SSEServerConfig
	clients      map[string]*SSEClient
	clientsMutex sync.RWMutex
	broadcast    chan SSEEvent
	nextClientID int
	done         chan struct{}
	closeOnce    sync.Once
}

// SSEServerConfig holds configuration for the SSE server
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientTimeout     time.Duration
}

// DefaultSSEServerConfig returns the default configuration for SSE server
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientTimeout:     60 * time.Second,
	}
}

// NewMCPSSEServer creates a new MCP SSE server
func NewMCPSSEServer(logger *zap.Logger, mcpServer *server.MCPServer, serviceInstance service.Service, httpClient *http.Client, config *SSEServerConfig) *MCPSSEServer {
	defaults := DefaultSSEServerConfig()
	if config == nil {
		config = defaults
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = defaults.KeepaliveInterval
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.ClientTimeout <= 0 {
		config.ClientTimeout = defaults.ClientTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	sseServer := &MCPSSEServer{
		logger:     logger,
		mcpServer:  mcpServer,
		service:    serviceInstance,
		httpClient: httpClient,
		config:     config,
		clients:    make(map[string]*SSEClient),
		broadcast:  make(chan SSEEvent, config.BufferSize),
		done:       make(chan struct{}),
	}

	go sseServer.broadcastLoop()

	return sseServer
}

// Close stops the broadcast loop and disconnects all clients. It is safe to call more than once.
func (s *MCPSSEServer) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.clientsMutex.Lock()
		defer s.clientsMutex.Unlock()
		for id, client := range s.clients {
			close(client.Done)
			delete(s.clients, id)
		}
	})
}

// broadcastLoop handles broadcasting events to all connected clients
func (s *MCPSSEServer) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.broadcast:
			s.deliver(event)
		}
	}
}

// deliver writes event to every connected client and drops the clients that failed
func (s *MCPSSEServer) deliver(event SSEEvent) {
	var failed []string
	s.clientsMutex.RLock()
	for clientID, client := range s.clients {
		select {
		case <-client.Done:
			failed = append(failed, clientID)
		default:
			if err := s.sendEventToClient(client, event); err != nil {
				s.logger.Error("failed to send event to client", zap.String("clientID", clientID), zap.Error(err))
				failed = append(failed, clientID)
			}
		}
	}
	s.clientsMutex.RUnlock()
	for _, clientID := range failed {
		s.removeClient(clientID)
	}
}

// writeEvent writes one event in SSE framing and flushes it
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, string(eventJSON)); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// sendEventToClient sends an SSE event to a specific client
func (s *MCPSSEServer) sendEventToClient(client *SSEClient, event SSEEvent) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	if err := writeEvent(client.Writer, client.Flusher, event); err != nil {
		return err
	}
	client.lastSeen = time.Now()
	return nil
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")
}

// addClient adds a new SSE client
func (s *MCPSSEServer) addClient(w http.ResponseWriter) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	select {
	case <-s.done:
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return nil
	default:
	}

	s.nextClientID++
	clientID := fmt.Sprintf("client_%d_%d", time.Now().Unix(), s.nextClientID)

	client := &SSEClient{
		ID:       clientID,
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan struct{}),
		lastSeen: time.Now(),
	}

	s.clients[clientID] = client

	connectEvent := newSSEEvent("connected", map[string]string{"clientID": clientID, "message": "Connected to docs graph SSE server"})
	if err := s.sendEventToClient(client, connectEvent); err != nil {
		s.logger.Error("failed to send connection event", zap.String("clientID", clientID), zap.Error(err))
		delete(s.clients, clientID)
		return nil
	}

	s.logger.Info("SSE client connected", zap.String("clientID", clientID))
	return client
}

// removeClient removes a client from the server
func (s *MCPSSEServer) removeClient(clientID string) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	if client, exists := s.clients[clientID]; exists {
		close(client.Done)
		delete(s.clients, clientID)
		s.logger.Info("SSE client disconnected", zap.String("clientID", clientID))
	}
}

// broadcastEvent sends an event to all connected clients; events after Close are dropped
func (s *MCPSSEServer) broadcastEvent(event SSEEvent) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.broadcast <- event:
	case <-s.done:
	default:
		s.logger.Warn("broadcast channel full, dropping event", zap.String("eventID", event.ID))
	}
}

// HandleSSE handles SSE client connections
func (s *MCPSSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)

	client := s.addClient(w)
	if client == nil {
		return
	}

	ctx := r.Context()
	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.removeClient(client.ID)
			return
		case <-client.Done:
			return
		case <-ticker.C:
			if err := s.sendEventToClient(client, newSSEEvent("keepalive", map[string]interface{}{"timestamp": time.Now()})); err != nil {
				s.removeClient(client.ID)
				return
			}
		}
	}
}

// streamTask runs task and streams its start, result or error and completion events.
// The request blocks until the task finished so the response writer stays valid.
func (s *MCPSSEServer) streamTask(w http.ResponseWriter, r *http.Request, name string, params interface{}, task func(ctx context.Context) (interface{}, error)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	if err := writeEvent(w, flusher, newSSEEvent(name+"_start", params)); err != nil {
		s.logger.Error("failed to write event", zap.String("task", name), zap.Error(err))
		return
	}

	result, err := task(r.Context())
	if err != nil {
		s.logger.Warn("task failed", zap.String("task", name), zap.Error(err))
		_ = writeEvent(w, flusher, newSSEEvent(name+"_error", map[string]string{"error": err.Error()}))
		return
	}
	if err := writeEvent(w, flusher, newSSEEvent(name+"_result", result)); err != nil {
		s.logger.Error("failed to write event", zap.String("task", name), zap.Error(err))
		return
	}
	_ = writeEvent(w, flusher, newSSEEvent(name+"_complete", map[string]string{"status": "completed"}))
	s.broadcastEvent(newSSEEvent("activity", map[string]interface{}{"task": name, "params": params}))
}

// HandleScrapeSSE handles scrape requests via SSE
func (s *MCPSSEServer) HandleScrapeSSE(w http.ResponseWriter, r *http.Request) {
	var request ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.URL == "" || request.Selector == "" {
		http.Error(w, "url and selector are required", http.StatusBadRequest)
		return
	}

	s.streamTask(w, r, "scrape", request, func(ctx context.Context) (interface{}, error) {
		summary, markdown, err := scrape.Scrape(ctx, s.httpClient, request.URL, request.Selector)
		if err != nil {
			return nil, err
		}
		return ScrapeResponse{Summary: summary, Markdown: string(markdown)}, nil
	})
}

// HandleGetDocumentSSE handles getDocument requests via SSE
func (s *MCPSSEServer) HandleGetDocumentSSE(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "Document service not available", http.StatusServiceUnavailable)
		return
	}

	var request GetDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	s.streamTask(w, r, "document", request, func(ctx context.Context) (interface{}, error) {
		document, err := s.service.GetDocument(ctx, request.Path)
		if err != nil {
			return nil, err
		}
		return GetDocumentResponse{Document: document}, nil
	})
}

// HandleGraphSSE streams the docs graph
func (s *MCPSSEServer) HandleGraphSSE(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "Document service not available", http.StatusServiceUnavailable)
		return
	}

	s.streamTask(w, r, "graph", map[string]string{}, func(ctx context.Context) (interface{}, error) {
		graph, err := s.service.GetGraph(ctx)
		if err != nil {
			return nil, err
		}
		return GetGraphResponse{Graph: graph}, nil
	})
}

// GetConnectedClients returns information about connected clients
func (s *MCPSSEServer) GetConnectedClients() []map[string]interface{} {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	clients := make([]map[string]interface{}, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, map[string]interface{}{
			"id":        client.ID,
			"lastSeen":  client.LastSeen(),
			"connected": time.Since(client.LastSeen()) < s.config.ClientTimeout,
		})
	}
	return clients
}

// GetStats returns server statistics
func (s *MCPSSEServer) GetStats() map[string]interface{} {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return map[string]interface{}{
		"connectedClients": len(s.clients),
		"bufferSize":       len(s.broadcast),
		"serverVersion":    Version,
	}
}
