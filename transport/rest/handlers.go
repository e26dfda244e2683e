package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 1000
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
	RoomsHandler(w http.ResponseWriter, r *http.Request)
	EventsHandler(w http.ResponseWriter, r *http.Request)
}

type roomLister interface {
	Rooms(ctx context.Context) []*entity.Room
}

// EventReader - source of journaled room events.
type EventReader interface {
	Recent(ctx context.Context, limit int64) ([]entity.RoomEvent, error)
}

// RoomSummary - public view of an open room.
type RoomSummary struct {
	RoomID  string   `json:"roomId"`
	Status  string   `json:"status"`
	Players []string `json:"players"`
}

type handlers struct {
	logger *slog.Logger
	rooms  roomLister
	events EventReader
}

// NewHandlers - events may be nil when the room journal is disabled.
func NewHandlers(logger *slog.Logger, rooms roomLister, events EventReader) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		rooms:  rooms,
		events: events,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write ping response", "error", err)
	}
}

// RoomsHandler - lists open rooms with their status and player names.
func (that *handlers) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "RoomsHandler")

	rooms := that.rooms.Rooms(r.Context())

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		names := make([]string, 0, len(room.Players))
		for _, player := range room.Players {
			names = append(names, player.Name)
		}

		summaries = append(summaries, RoomSummary{
			RoomID:  room.ID,
			Status:  room.Status,
			Players: names,
		})
	}

	writeJSON(w, log, summaries)
}

// EventsHandler - newest journaled room events, oldest first. Accepts ?limit=1..1000.
func (that *handlers) EventsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "EventsHandler")

	if that.events == nil {
		http.Error(w, "room journal is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := int64(defaultEventsLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > maxEventsLimit {
			http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := that.events.Recent(r.Context(), limit)
	if err != nil {
		log.Error("failed to read room events", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, log, events)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, value any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}
