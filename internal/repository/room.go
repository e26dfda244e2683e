package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type RoomRepository interface {
	Create(ctx context.Context, id string, first entity.Participant) (*entity.Room, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Replace(ctx context.Context, id string, room *entity.Room) error
	Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
	ListAll(ctx context.Context) []*entity.Room
	Len() int
}

// roomEntry - a stored room with its own lock. Lock order is entry -> store, never the reverse.
type roomEntry struct {
	mu      sync.Mutex
	room    *entity.Room
	deleted bool
}

type memoryRoom struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

// NewRoomRepository - in-memory room storage, rooms live as long as the process.
func NewRoomRepository() RoomRepository {
	return &memoryRoom{
		rooms: make(map[string]*roomEntry),
	}
}

func (that *memoryRoom) Create(_ context.Context, id string, first entity.Participant) (*entity.Room, error) {
	room := entity.NewRoom(id, first)

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[id]; ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomExists, id)
	}

	that.rooms[id] = &roomEntry{room: room}

	return room.Clone(), nil
}

func (that *memoryRoom) GetByID(_ context.Context, id string) (*entity.Room, error) {
	entry, err := that.lockEntry(id)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	return entry.room.Clone(), nil
}

func (that *memoryRoom) Replace(_ context.Context, id string, room *entity.Room) error {
	entry, err := that.lockEntry(id)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	version := entry.room.Version

	entry.room = room.Clone()
	entry.room.ID = id
	entry.room.Version = version + 1

	return nil
}

// Update - applies fn to a copy of the room while holding the room lock and stores the copy
// with the next version only when fn succeeds. A room left without players is removed.
func (that *memoryRoom) Update(_ context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error) {
	entry, err := that.lockEntry(id)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	room := entry.room.Clone()
	if err = fn(room); err != nil {
		return nil, err
	}

	room.Version = entry.room.Version + 1

	if room.IsEmpty() {
		that.remove(id, entry)
		return room, nil
	}

	entry.room = room

	return room.Clone(), nil
}

func (that *memoryRoom) DeleteByID(_ context.Context, id string) error {
	entry, err := that.lockEntry(id)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	that.remove(id, entry)

	return nil
}

// ListAll - snapshots of every live room ordered by id.
func (that *memoryRoom) ListAll(_ context.Context) []*entity.Room {
	that.mu.RLock()
	entries := make([]*roomEntry, 0, len(that.rooms))
	for _, entry := range that.rooms {
		entries = append(entries, entry)
	}
	that.mu.RUnlock()

	rooms := make([]*entity.Room, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted {
			rooms = append(rooms, entry.room.Clone())
		}
		entry.mu.Unlock()
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].ID < rooms[j].ID
	})

	return rooms
}

func (that *memoryRoom) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// lockEntry - finds the room entry and returns it locked.
func (that *memoryRoom) lockEntry(id string) (*roomEntry, error) {
	that.mu.RLock()
	entry, ok := that.rooms[id]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	entry.mu.Lock()

	// deleted while we were waiting for the lock
	if entry.deleted {
		entry.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	return entry, nil
}

// remove - must be called with entry.mu held.
func (that *memoryRoom) remove(id string, entry *roomEntry) {
	entry.deleted = true

	that.mu.Lock()
	if that.rooms[id] == entry {
		delete(that.rooms, id)
	}
	that.mu.Unlock()
}
