package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var errRejected = errors.New("rejected")

func alice() entity.Participant {
	return entity.Participant{ID: "conn-alice", Name: "Alice"}
}

func TestRoomRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Create_Success", func(t *testing.T) {
		roomRepo := NewRoomRepository()

		// When: a room is created
		room, err := roomRepo.Create(ctx, "123456", alice())

		// Then: it waits for a second player and can be read back
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWaiting, room.Status)

		stored, err := roomRepo.GetByID(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, room, stored)
	})

	t.Run("Create_Collision", func(t *testing.T) {
		roomRepo := NewRoomRepository()

		_, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)

		// When: the same code is used again
		_, err = roomRepo.Create(ctx, "123456", entity.Participant{ID: "conn-bob", Name: "Bob"})

		// Then: creation fails and the first room is untouched
		require.ErrorIs(t, err, apperror.ErrRoomExists)

		stored, err := roomRepo.GetByID(ctx, "123456")
		require.NoError(t, err)
		require.Len(t, stored.Players, 1)
		assert.Equal(t, "Alice", stored.Players[0].Name)
	})
}

func TestRoomRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("GetByID_NotFound", func(t *testing.T) {
		roomRepo := NewRoomRepository()

		room, err := roomRepo.GetByID(ctx, "999999")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.Nil(t, room)
	})

	t.Run("GetByID_ReturnsCopy", func(t *testing.T) {
		roomRepo := NewRoomRepository()
		_, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)

		// When: the caller mutates what it got back
		room, err := roomRepo.GetByID(ctx, "123456")
		require.NoError(t, err)
		room.Board[0] = entity.SymbolX
		room.Players[0].Name = "Eve"

		// Then: the stored room does not change
		stored, err := roomRepo.GetByID(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, entity.EmptyCell, stored.Board[0])
		assert.Equal(t, "Alice", stored.Players[0].Name)
	})
}

func TestRoomRepository_Replace(t *testing.T) {
	ctx := context.Background()
	roomRepo := NewRoomRepository()

	room, err := roomRepo.Create(ctx, "123456", alice())
	require.NoError(t, err)

	room.Status = entity.StatusPlaying
	require.NoError(t, roomRepo.Replace(ctx, "123456", room))

	stored, err := roomRepo.GetByID(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPlaying, stored.Status)
	assert.Equal(t, uint64(1), stored.Version)

	err = roomRepo.Replace(ctx, "654321", room)
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

func TestRoomRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Update_Success", func(t *testing.T) {
		roomRepo := NewRoomRepository()
		_, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)

		room, err := roomRepo.Update(ctx, "123456", func(room *entity.Room) error {
			return room.Join(entity.Participant{ID: "conn-bob", Name: "Bob"})
		})

		require.NoError(t, err)
		assert.Equal(t, entity.StatusPlaying, room.Status)

		stored, err := roomRepo.GetByID(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, room, stored)
	})

	t.Run("Update_BumpsVersion", func(t *testing.T) {
		roomRepo := NewRoomRepository()
		created, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)
		require.Zero(t, created.Version)

		// When: one update succeeds and one fails
		joined, err := roomRepo.Update(ctx, "123456", func(room *entity.Room) error {
			return room.Join(entity.Participant{ID: "conn-bob", Name: "Bob"})
		})
		require.NoError(t, err)

		_, err = roomRepo.Update(ctx, "123456", func(room *entity.Room) error {
			return room.MakeMove("conn-bob", 0)
		})
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)

		// Then: only the committed change counts
		assert.Equal(t, uint64(1), joined.Version)

		stored, err := roomRepo.GetByID(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), stored.Version)
	})

	t.Run("Update_ErrorKeepsRoom", func(t *testing.T) {
		roomRepo := NewRoomRepository()
		before, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)

		// When: fn changes the room and then fails
		_, err = roomRepo.Update(ctx, "123456", func(room *entity.Room) error {
			room.Board[4] = entity.SymbolX
			room.Status = entity.StatusFinished
			return errRejected
		})

		// Then: the error is passed through and nothing was stored
		require.ErrorIs(t, err, errRejected)

		stored, err := roomRepo.GetByID(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, before, stored)
	})

	t.Run("Update_EmptyRoomIsRemoved", func(t *testing.T) {
		roomRepo := NewRoomRepository()
		_, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)

		room, err := roomRepo.Update(ctx, "123456", func(room *entity.Room) error {
			room.Leave("conn-alice")
			return nil
		})

		require.NoError(t, err)
		assert.True(t, room.IsEmpty())
		assert.Equal(t, 0, roomRepo.Len())

		_, err = roomRepo.GetByID(ctx, "123456")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		roomRepo := NewRoomRepository()

		_, err := roomRepo.Update(ctx, "123456", func(*entity.Room) error { return nil })

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Update_ConcurrentWritesAreSerialized", func(t *testing.T) {
		roomRepo := NewRoomRepository()
		_, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)

		// When: every cell is written by its own goroutine
		var wg sync.WaitGroup
		for cell := range entity.BoardSize {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, updateErr := roomRepo.Update(ctx, "123456", func(room *entity.Room) error {
					room.Board[cell] = entity.SymbolX
					return nil
				})
				assert.NoError(t, updateErr)
			}()
		}
		wg.Wait()

		// Then: no write was lost
		stored, err := roomRepo.GetByID(ctx, "123456")
		require.NoError(t, err)
		assert.True(t, stored.Board.IsFull())
		assert.Equal(t, uint64(entity.BoardSize), stored.Version)
	})
}

func TestRoomRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("DeleteByID_Success", func(t *testing.T) {
		roomRepo := NewRoomRepository()
		_, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)

		require.NoError(t, roomRepo.DeleteByID(ctx, "123456"))

		_, err = roomRepo.GetByID(ctx, "123456")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		roomRepo := NewRoomRepository()

		err := roomRepo.DeleteByID(ctx, "9999999")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("DeleteByID_CodeCanBeReused", func(t *testing.T) {
		roomRepo := NewRoomRepository()
		_, err := roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)
		require.NoError(t, roomRepo.DeleteByID(ctx, "123456"))

		_, err = roomRepo.Create(ctx, "123456", alice())
		require.NoError(t, err)
	})
}

func TestRoomRepository_ListAll(t *testing.T) {
	ctx := context.Background()
	roomRepo := NewRoomRepository()

	// Given: rooms created in parallel
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := roomRepo.Create(ctx, fmt.Sprintf("%06d", 200000+i), alice())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// When: listing all rooms
	rooms := roomRepo.ListAll(ctx)

	// Then: every room is listed in id order
	require.Len(t, rooms, 20)
	assert.Equal(t, 20, roomRepo.Len())
	for i, room := range rooms {
		assert.Equal(t, fmt.Sprintf("%06d", 200000+i), room.ID)
	}
}
