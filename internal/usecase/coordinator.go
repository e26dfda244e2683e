package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const maxNameLength = 32

type roomRepo interface {
	Create(ctx context.Context, id string, first entity.Participant) (*entity.Room, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error)
	ListAll(ctx context.Context) []*entity.Room
}

type roomJournal interface {
	Record(event entity.RoomEvent)
}

// CodeGenerator - produces candidate room codes.
type CodeGenerator func() (string, error)

// Coordinator - owns room lifecycle: creation, joining, moves, rematches and departures.
// Every operation on a room is applied atomically through the room repository.
type Coordinator struct {
	logger *slog.Logger

	roomRepo roomRepo
	journal  roomJournal

	generateCode CodeGenerator
	codeAttempts int

	bindingsMu sync.Mutex
	bindings   map[string]string // connection id -> room id
}

func NewCoordinator(logger *slog.Logger, roomRepo roomRepo, journal roomJournal, generateCode CodeGenerator, codeAttempts int) *Coordinator {
	if codeAttempts < 1 {
		codeAttempts = 1
	}

	return &Coordinator{
		logger: logger.With("component", "coordinator"),

		roomRepo: roomRepo,
		journal:  journal,

		generateCode: generateCode,
		codeAttempts: codeAttempts,

		bindings: make(map[string]string),
	}
}

// CreateRoom - opens a new room with the connection seated as X.
func (that *Coordinator) CreateRoom(ctx context.Context, connID, displayName string) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom", "connID", connID)

	name, err := normalizeName(displayName)
	if err != nil {
		return nil, err
	}

	if roomID, ok := that.RoomOf(connID); ok {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrAlreadyInRoom, roomID)
	}

	player := entity.Participant{ID: connID, Name: name}

	for attempt := 1; attempt <= that.codeAttempts; attempt++ {
		code, err := that.generateCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		room, err := that.roomRepo.Create(ctx, code, player)
		if errors.Is(err, apperror.ErrRoomExists) {
			log.Warn("room code collision", "roomID", code, "attempt", attempt)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		that.bind(connID, room.ID)
		that.journal.Record(entity.NewRoomEvent(entity.EventRoomCreated, connID, room))

		log.Info("room created", "roomID", room.ID)

		return room, nil
	}

	return nil, apperror.ErrRoomCodeUnavailable
}

// JoinRoom - seats the connection as O and starts the game.
func (that *Coordinator) JoinRoom(ctx context.Context, connID, roomID, displayName string) (*entity.Room, error) {
	log := that.logger.With("method", "JoinRoom", "connID", connID, "roomID", roomID)

	name, err := normalizeName(displayName)
	if err != nil {
		return nil, err
	}

	if boundID, ok := that.RoomOf(connID); ok {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrAlreadyInRoom, boundID)
	}

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		return room.Join(entity.Participant{ID: connID, Name: name})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	that.bind(connID, room.ID)
	that.journal.Record(entity.NewRoomEvent(entity.EventRoomJoined, connID, room))

	log.Info("player joined room")

	return room, nil
}

// MakeMove - places the connection's symbol on the cell if the rules allow it.
func (that *Coordinator) MakeMove(ctx context.Context, connID, roomID string, cell int) (*entity.Room, error) {
	log := that.logger.With("method", "MakeMove", "connID", connID, "roomID", roomID)

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		return room.MakeMove(connID, cell)
	})
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, roomID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	event := entity.NewRoomEvent(entity.EventMoveMade, connID, room)
	event.Cell = &cell
	that.journal.Record(event)

	log.Debug("move made", "cell", cell, "status", room.Status)

	return room, nil
}

// PlayAgain - clears the board for a rematch, players keep their symbols.
func (that *Coordinator) PlayAgain(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		room.Reset()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset room: %w", err)
	}

	that.journal.Record(entity.NewRoomEvent(entity.EventGameReset, "", room))

	that.logger.Info("room reset", "roomID", roomID)

	return room, nil
}

// Disconnect - removes the connection from its room. It returns the room as seen by the
// remaining players, or nil when there is nobody left to notify.
func (that *Coordinator) Disconnect(ctx context.Context, connID string) (*entity.Room, error) {
	log := that.logger.With("method", "Disconnect", "connID", connID)

	roomID, ok := that.unbind(connID)
	if !ok {
		return nil, nil
	}

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) error {
		if !room.Leave(connID) {
			return apperror.ErrPlayerNotInGame
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to leave room %s: %w", roomID, err)
	}

	if room.IsEmpty() {
		that.journal.Record(entity.NewRoomEvent(entity.EventRoomClosed, connID, room))
		log.Info("room closed", "roomID", roomID)
		return nil, nil
	}

	that.journal.Record(entity.NewRoomEvent(entity.EventPlayerLeft, connID, room))
	log.Info("player left room", "roomID", roomID)

	return room, nil
}

// GetRoom - snapshot of a single room.
func (that *Coordinator) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// Rooms - snapshots of every open room.
func (that *Coordinator) Rooms(ctx context.Context) []*entity.Room {
	return that.roomRepo.ListAll(ctx)
}

// RoomOf - the room the connection is seated in.
func (that *Coordinator) RoomOf(connID string) (string, bool) {
	that.bindingsMu.Lock()
	defer that.bindingsMu.Unlock()

	roomID, ok := that.bindings[connID]
	return roomID, ok
}

func (that *Coordinator) bind(connID, roomID string) {
	that.bindingsMu.Lock()
	defer that.bindingsMu.Unlock()

	that.bindings[connID] = roomID
}

func (that *Coordinator) unbind(connID string) (string, bool) {
	that.bindingsMu.Lock()
	defer that.bindingsMu.Unlock()

	roomID, ok := that.bindings[connID]
	delete(that.bindings, connID)

	return roomID, ok
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidName, name)
	}

	return name, nil
}
