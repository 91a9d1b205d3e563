package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dsyorkd/assisted-console/internal/clusters"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/hosts"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
	"github.com/dsyorkd/assisted-console/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096

	// MaxWatches bounds the clusters one connection may follow at once
	MaxWatches = 16
)

// Server pushes cluster status changes to websocket clients. Every client
// follows its own clusters with the token it connected with.
type Server struct {
	watcher  *services.Watcher
	logger   logger.Interface
	upgrader websocket.Upgrader

	clients    map[*Client]bool
	clientsMux sync.Mutex
}

// Client represents a WebSocket client connection
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte
	id     string
	log    logger.Interface

	// ctx carries the caller's installer token and ends with the connection
	ctx    context.Context
	cancel context.CancelFunc

	watches  map[string]*watch
	watchMux sync.Mutex
}

type watch struct {
	cancel context.CancelFunc
}

// MessageType names a websocket message
type MessageType string

const (
	MessageTypeSubscribe     MessageType = "subscribe"
	MessageTypeUnsubscribe   MessageType = "unsubscribe"
	MessageTypeClusterStatus MessageType = "cluster_status"
	MessageTypeError         MessageType = "error"
	MessageTypePing          MessageType = "ping"
	MessageTypePong          MessageType = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
}

// SubscribeMessage starts or stops following a cluster
type SubscribeMessage struct {
	ClusterID string `json:"cluster_id"`
}

// ClusterStatusMessage is one status change of a followed cluster. Final is
// set on the last message, once the cluster has settled.
type ClusterStatusMessage struct {
	ClusterID   string               `json:"cluster_id"`
	Name        string               `json:"name"`
	Status      models.ClusterStatus `json:"status"`
	StatusLabel string               `json:"status_label"`
	StatusInfo  string               `json:"status_info"`
	Progress    string               `json:"progress,omitempty"`
	Hosts       int                  `json:"hosts"`
	Final       bool                 `json:"final"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ClusterID string `json:"cluster_id,omitempty"`
}

// New creates a websocket server polling followed clusters every interval
func New(api installer.API, interval time.Duration, log logger.Interface) *Server {
	log = log.WithField("component", "websocket")
	return &Server{
		watcher: services.NewWatcher(api, interval, log),
		logger:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*Client]bool),
	}
}

// Handle upgrades the request and serves the connection until it closes
func (s *Server) Handle(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to upgrade WebSocket connection")
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	client := &Client{
		server:  s,
		conn:    conn,
		send:    make(chan []byte, 256),
		id:      uuid.NewString(),
		ctx:     ctx,
		cancel:  cancel,
		watches: make(map[string]*watch),
	}
	client.log = s.logger.WithField("client_id", client.id)

	s.register(client)
	defer s.unregister(client)

	go client.writePump()
	client.readPump()
}

// Stop closes every client connection
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down WebSocket connections")

	s.clientsMux.Lock()
	for client := range s.clients {
		client.cancel()
		client.conn.Close()
	}
	s.clientsMux.Unlock()
	return nil
}

// Clients returns the number of open connections
func (s *Server) Clients() int {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()
	return len(s.clients)
}

func (s *Server) register(client *Client) {
	s.clientsMux.Lock()
	s.clients[client] = true
	s.clientsMux.Unlock()

	client.log.Debug("Client connected")
}

func (s *Server) unregister(client *Client) {
	client.cancel()
	client.conn.Close()

	s.clientsMux.Lock()
	delete(s.clients, client)
	s.clientsMux.Unlock()

	client.log.Debug("Client disconnected")
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("WebSocket read error")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(http.StatusBadRequest, "Invalid message format", "")
			continue
		}
		c.handleMessage(msg)
	}
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage processes incoming messages from clients
func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case MessageTypeSubscribe, MessageTypeUnsubscribe:
		var sub SubscribeMessage
		if err := json.Unmarshal(msg.Payload, &sub); err != nil {
			c.sendError(http.StatusBadRequest, "Invalid "+string(msg.Type)+" message", "")
			return
		}
		if msg.Type == MessageTypeSubscribe {
			c.subscribe(sub.ClusterID)
		} else {
			c.unsubscribe(sub.ClusterID)
		}

	case MessageTypePing:
		c.emit(Message{Type: MessageTypePong, Timestamp: time.Now(), RequestID: msg.RequestID})

	default:
		c.sendError(http.StatusBadRequest, "Unknown message type", "")
	}
}

// subscribe starts following a cluster. Subscribing twice is a no-op.
func (c *Client) subscribe(clusterID string) {
	if _, err := uuid.Parse(clusterID); err != nil {
		c.sendError(http.StatusBadRequest, "Invalid cluster id", clusterID)
		return
	}

	c.watchMux.Lock()
	if _, ok := c.watches[clusterID]; ok {
		c.watchMux.Unlock()
		return
	}
	if len(c.watches) >= MaxWatches {
		c.watchMux.Unlock()
		c.sendError(http.StatusTooManyRequests, "Too many followed clusters", clusterID)
		return
	}
	ctx, cancel := context.WithCancel(c.ctx)
	w := &watch{cancel: cancel}
	c.watches[clusterID] = w
	c.watchMux.Unlock()

	c.log.Debug("Client subscribed to cluster", "cluster_id", clusterID)
	go c.follow(ctx, clusterID, w)
}

// unsubscribe stops following a cluster
func (c *Client) unsubscribe(clusterID string) {
	c.watchMux.Lock()
	w, ok := c.watches[clusterID]
	delete(c.watches, clusterID)
	c.watchMux.Unlock()

	if ok {
		w.cancel()
		c.log.Debug("Client unsubscribed from cluster", "cluster_id", clusterID)
	}
}

func (c *Client) follow(ctx context.Context, clusterID string, w *watch) {
	defer func() {
		w.cancel()
		c.watchMux.Lock()
		if c.watches[clusterID] == w {
			delete(c.watches, clusterID)
		}
		c.watchMux.Unlock()
	}()

	_, err := c.server.watcher.Watch(ctx, clusterID, func(cluster *models.Cluster) {
		c.emitPayload(MessageTypeClusterStatus, statusMessage(cluster))
	})
	if err != nil && ctx.Err() == nil {
		c.log.WithError(err).Warn("Stopped following cluster", "cluster_id", clusterID)
		c.sendError(errorCode(err), errors.Message(err), clusterID)
	}
}

func statusMessage(cluster *models.Cluster) ClusterStatusMessage {
	msg := ClusterStatusMessage{
		ClusterID:   cluster.ID,
		Name:        cluster.Name,
		Status:      cluster.Status,
		StatusLabel: clusters.StatusLabel(cluster.Status),
		StatusInfo:  cluster.StatusInfo,
		Hosts:       hosts.ActiveCount(cluster.Hosts),
		Final:       cluster.Status.IsTerminal(),
	}
	if cluster.Progress != nil {
		msg.Progress = cluster.Progress.ProgressInfo
	}
	return msg
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func (c *Client) emitPayload(t MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.log.WithError(err).Error("Failed to marshal websocket payload")
		return
	}
	c.emit(Message{Type: t, Payload: data, Timestamp: time.Now()})
}

// emit queues a message for the client. A client too slow to drain its
// queue is disconnected.
func (c *Client) emit(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.WithError(err).Error("Failed to marshal websocket message")
		return
	}

	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		c.log.Warn("Dropping slow websocket client")
		c.cancel()
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(code int, message, clusterID string) {
	c.emitPayload(MessageTypeError, ErrorMessage{Code: code, Message: message, ClusterID: clusterID})
}
