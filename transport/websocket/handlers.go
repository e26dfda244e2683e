package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
)

func checkRoomID(roomID string) error {
	if !pkg.IsRoomCode(roomID) {
		return fmt.Errorf("%w: room id %q", ErrInvalidPayload, roomID)
	}

	return nil
}

func (that *Server) handleCreateRoom(ctx context.Context, client *client, raw json.RawMessage) error {
	var payload CreateRoomPayload
	if err := decodePayload(raw, &payload); err != nil {
		return err
	}

	room, err := that.coordinator.CreateRoom(ctx, client.id, payload.PlayerName)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.unicast(client, actionRoomCreated, RoomCreatedPayload{
		RoomID:     room.ID,
		PlayerName: room.Players[0].Name,
	})

	return nil
}

// handleJoinRoom - the joiner gets roomJoined, then both players get gameStart.
func (that *Server) handleJoinRoom(ctx context.Context, client *client, raw json.RawMessage) error {
	var payload JoinRoomPayload
	if err := decodePayload(raw, &payload); err != nil {
		return err
	}

	if err := checkRoomID(payload.RoomID); err != nil {
		return err
	}

	room, err := that.coordinator.JoinRoom(ctx, client.id, payload.RoomID, payload.PlayerName)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	that.unicast(client, actionRoomJoined, RoomJoinedPayload{RoomID: room.ID})
	that.broadcast(room, actionGameStart, room)

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, client *client, raw json.RawMessage) error {
	var payload MakeMovePayload
	if err := decodePayload(raw, &payload); err != nil {
		return err
	}

	if err := checkRoomID(payload.RoomID); err != nil {
		return err
	}

	if payload.Index == nil {
		return fmt.Errorf("%w: index is required", ErrInvalidPayload)
	}

	room, err := that.coordinator.MakeMove(ctx, client.id, payload.RoomID, *payload.Index)
	if err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	that.broadcast(room, actionGameUpdate, room)

	return nil
}

func (that *Server) handlePlayAgain(ctx context.Context, _ *client, raw json.RawMessage) error {
	var payload PlayAgainPayload
	if err := decodePayload(raw, &payload); err != nil {
		return err
	}

	if err := checkRoomID(payload.RoomID); err != nil {
		return err
	}

	room, err := that.coordinator.PlayAgain(ctx, payload.RoomID)
	if err != nil {
		return fmt.Errorf("failed to reset game: %w", err)
	}

	that.broadcast(room, actionGameReset, room)

	return nil
}
