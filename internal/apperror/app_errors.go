package apperror

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room already exists")
	ErrGameNotFound    = errors.New("game not found")
	ErrRoomFull        = errors.New("room is full")
	ErrInvalidState    = errors.New("game is not in playing status")
	ErrPlayerNotInGame = errors.New("player not in game")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrInvalidName     = errors.New("invalid player name")
	ErrAlreadyInRoom   = errors.New("player is already in a room")

	ErrRoomCodeUnavailable = errors.New("could not allocate a free room code")
)
