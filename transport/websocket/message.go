package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const (
	actionCreateRoom = "createRoom"
	actionJoinRoom   = "joinRoom"
	actionMakeMove   = "makeMove"
	actionPlayAgain  = "playAgain"

	actionRoomCreated        = "roomCreated"
	actionRoomJoined         = "roomJoined"
	actionGameStart          = "gameStart"
	actionGameUpdate         = "gameUpdate"
	actionGameReset          = "gameReset"
	actionError              = "error"
	actionPlayerDisconnected = "playerDisconnected"
)

const internalErrorMessage = "internal error"

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Message - envelope for every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreateRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type MakeMovePayload struct {
	RoomID string `json:"roomId"`
	Index  *int   `json:"index"`
}

type PlayAgainPayload struct {
	RoomID string `json:"roomId"`
}

type RoomCreatedPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type RoomJoinedPayload struct {
	RoomID string `json:"roomId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

var errorMessages = []struct {
	err     error
	message string
}{
	{apperror.ErrGameNotFound, "Game not found"},
	{apperror.ErrRoomNotFound, "Room not found"},
	{apperror.ErrRoomFull, "Room is full"},
	{apperror.ErrInvalidState, "Game is not in playing status"},
	{apperror.ErrPlayerNotInGame, "Player not in game"},
	{apperror.ErrNotYourTurn, "Not your turn"},
	{apperror.ErrCellOccupied, "Cell already occupied"},
	{apperror.ErrInvalidCell, "Invalid cell"},
	{apperror.ErrInvalidName, "Invalid player name"},
	{apperror.ErrAlreadyInRoom, "Already in a room"},
	{apperror.ErrRoomCodeUnavailable, "Could not create a room, try again"},
	{ErrUnknownAction, "Unknown action"},
	{ErrInvalidPayload, "Invalid payload"},
}

// errorMessage - user facing text for an error returned by a handler.
func errorMessage(err error) string {
	for _, known := range errorMessages {
		if errors.Is(err, known.err) {
			return known.message
		}
	}

	return internalErrorMessage
}

func encodeMessage(action string, payload any) ([]byte, error) {
	message := Message{Action: action}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", action, err)
		}
		message.Payload = raw
	}

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func decodePayload(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", ErrInvalidPayload)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return nil
}
