package entity

import "time"

const (
	EventRoomCreated = "roomCreated"
	EventRoomJoined  = "roomJoined"
	EventMoveMade    = "moveMade"
	EventGameReset   = "gameReset"
	EventPlayerLeft  = "playerLeft"
	EventRoomClosed  = "roomClosed"
)

// RoomEvent - journal record of a successful room mutation.
type RoomEvent struct {
	Type         string    `json:"type"`
	RoomID       string    `json:"room_id"`
	ConnectionID string    `json:"connection_id,omitempty"`
	Cell         *int      `json:"cell,omitempty"`
	Status       string    `json:"status"`
	Winner       string    `json:"winner,omitempty"`
	At           time.Time `json:"at"`
}

func NewRoomEvent(eventType, connectionID string, room *Room) RoomEvent {
	return RoomEvent{
		Type:         eventType,
		RoomID:       room.ID,
		ConnectionID: connectionID,
		Status:       room.Status,
		Winner:       room.Winner,
		At:           time.Now().UTC(),
	}
}
