package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
	StatusDraw     = "draw"

	MaxPlayers = 2
)

// Room - a game room. Version grows by one with every committed change and orders snapshots.
type Room struct {
	ID          string         `json:"roomId"`
	Players     []*Participant `json:"players"`
	Board       Board          `json:"board"`
	CurrentTurn string         `json:"currentTurn"`
	Status      string         `json:"status"`
	Winner      string         `json:"winner,omitempty"`
	Version     uint64         `json:"version"`
}

// NewRoom - creates a waiting room seated with its first player, who always plays X.
func NewRoom(id string, first Participant) *Room {
	first.Symbol = SymbolX

	return &Room{
		ID:          id,
		Players:     []*Participant{&first},
		CurrentTurn: SymbolX,
		Status:      StatusWaiting,
	}
}

// Clone - deep copy, safe to hand out while the original keeps changing.
func (that *Room) Clone() *Room {
	clone := *that

	clone.Players = make([]*Participant, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}

	return &clone
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsDraw() bool {
	return that.Status == StatusDraw
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

// FindPlayer - returns the participant bound to the connection id, or nil.
func (that *Room) FindPlayer(id string) *Participant {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// Join - seats the second player and starts a fresh game. The joiner plays O unless the seat
// left behind by a departed X is the free one. A game left over by the departed player is reset.
func (that *Room) Join(player Participant) error {
	if that.IsFull() {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.ID)
	}

	if !that.IsWaiting() {
		that.Reset()
	}

	player.Symbol = SymbolO
	if len(that.Players) == 1 && that.Players[0].Symbol == SymbolO {
		player.Symbol = SymbolX
	}

	that.Players = append(that.Players, &player)
	that.Status = StatusPlaying

	return nil
}

// Leave - removes the participant bound to the connection id. Game state is left as it is.
func (that *Room) Leave(id string) bool {
	for i, player := range that.Players {
		if player.ID == id {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}

	return false
}

// MakeMove - validates and applies a move for the player bound to the connection id.
// On error the room is not modified.
func (that *Room) MakeMove(playerID string, cell int) error {
	if !that.IsPlaying() {
		return apperror.ErrInvalidState
	}

	player := that.FindPlayer(playerID)
	if player == nil {
		return apperror.ErrPlayerNotInGame
	}

	if player.Symbol != that.CurrentTurn {
		return apperror.ErrNotYourTurn
	}

	if !IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = player.Symbol
	that.CurrentTurn = ToggleSymbol(that.CurrentTurn)

	that.updateStatus()

	return nil
}

func (that *Room) updateStatus() {
	if winner := Evaluate(that.Board); winner != EmptyCell {
		that.Status = StatusFinished
		that.Winner = winner
		return
	}

	if that.Board.IsFull() {
		that.Status = StatusDraw
	}
}

// Reset - clears the board for a rematch, players and their symbols stay.
func (that *Room) Reset() {
	that.Board = Board{}
	that.CurrentTurn = SymbolX
	that.Status = StatusPlaying
	that.Winner = ""
}
