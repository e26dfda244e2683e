package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
)

const (
	readLimit       = 4096
	shutdownTimeout = 5 * time.Second
)

type coordinator interface {
	CreateRoom(ctx context.Context, connID, displayName string) (*entity.Room, error)
	JoinRoom(ctx context.Context, connID, roomID, displayName string) (*entity.Room, error)
	MakeMove(ctx context.Context, connID, roomID string, cell int) (*entity.Room, error)
	PlayAgain(ctx context.Context, roomID string) (*entity.Room, error)
	Disconnect(ctx context.Context, connID string) (*entity.Room, error)
}

type handlerFunc func(ctx context.Context, client *client, payload json.RawMessage) error

// Server - WebSocket gateway: binds connections to participants, dispatches actions to the
// coordinator and delivers the resulting room snapshots.
type Server struct {
	logger      *slog.Logger
	coordinator coordinator

	originPatterns []string
	sendBuffer     int

	clientsMu sync.RWMutex
	clients   map[string]*client

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, coordinator coordinator, originPatterns []string, sendBuffer int) *Server {
	if sendBuffer < 1 {
		sendBuffer = 1
	}

	server := &Server{
		logger:      logger.With("component", "websocket"),
		coordinator: coordinator,

		originPatterns: originPatterns,
		sendBuffer:     sendBuffer,

		clients:  make(map[string]*client),
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionCreateRoom] = server.handleCreateRoom
	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionPlayAgain] = server.handlePlayAgain

	return server
}

// Handler - http handler serving the gateway on /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - serves the gateway until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) connectionCount() int {
	that.clientsMu.RLock()
	defer that.clientsMu.RUnlock()

	return len(that.clients)
}

func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := websocket.Accept(writer, req, &websocket.AcceptOptions{
		OriginPatterns: that.originPatterns,
	})
	if err != nil {
		log.Error("failed to accept websocket connection", "error", err)
		return
	}
	defer conn.CloseNow()

	conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	client := newClient(pkg.GenerateConnectionID(), conn, that.sendBuffer)
	that.register(client)

	log.Info("connection established", "connID", client.id, "connections", that.connectionCount())

	go client.writePump(ctx, that.logger)

	that.readLoop(ctx, client)

	that.unregister(client.id)
	that.disconnect(context.WithoutCancel(ctx), client.id)
}

// readLoop - reads frames until the connection fails or is closed.
func (that *Server) readLoop(ctx context.Context, client *client) {
	log := that.logger.With("method", "readLoop", "connID", client.id)

	for {
		typ, data, err := client.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				log.Info("connection closed", "status", status)
			} else {
				log.Warn("failed to read message", "error", err)
			}

			return
		}

		if typ != websocket.MessageText {
			that.unicastError(client, fmt.Errorf("%w: binary frame", ErrInvalidPayload))
			continue
		}

		that.dispatch(ctx, client, data)
	}
}

func (that *Server) dispatch(ctx context.Context, client *client, data []byte) {
	log := that.logger.With("method", "dispatch", "connID", client.id)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		that.unicastError(client, fmt.Errorf("%w: %w", ErrInvalidPayload, err))
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		that.unicastError(client, fmt.Errorf("%w: %q", ErrUnknownAction, message.Action))
		return
	}

	if err := handler(ctx, client, message.Payload); err != nil {
		log.Info("action rejected", "action", message.Action, "error", err)
		that.unicastError(client, err)
	}
}

func (that *Server) disconnect(ctx context.Context, connID string) {
	log := that.logger.With("method", "disconnect", "connID", connID)

	room, err := that.coordinator.Disconnect(ctx, connID)
	if err != nil {
		log.Error("failed to disconnect", "error", err)
		return
	}

	if room != nil {
		that.broadcast(room, actionPlayerDisconnected, nil)
	}

	log.Info("connection released", "connections", that.connectionCount())
}

func (that *Server) register(client *client) {
	that.clientsMu.Lock()
	defer that.clientsMu.Unlock()

	that.clients[client.id] = client
}

func (that *Server) unregister(connID string) {
	that.clientsMu.Lock()
	defer that.clientsMu.Unlock()

	delete(that.clients, connID)
}

func (that *Server) unicast(client *client, action string, payload any) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	if !client.enqueue(data) {
		that.logger.Warn("send buffer full, closing connection", "connID", client.id)
	}
}

func (that *Server) unicastError(client *client, err error) {
	that.unicast(client, actionError, ErrorPayload{Message: errorMessage(err)})
}

// broadcast - delivers the message to every participant of the room that is still connected.
// Snapshots committed earlier than one already queued for a participant are skipped.
func (that *Server) broadcast(room *entity.Room, action string, payload any) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	that.clientsMu.RLock()
	recipients := make([]*client, 0, len(room.Players))
	for _, player := range room.Players {
		if client, ok := that.clients[player.ID]; ok {
			recipients = append(recipients, client)
		}
	}
	that.clientsMu.RUnlock()

	for _, client := range recipients {
		if !client.enqueueSnapshot(room.ID, room.Version, data) {
			that.logger.Warn("send buffer full, closing connection", "connID", client.id, "roomID", room.ID)
		}
	}
}
