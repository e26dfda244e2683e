package entity

// Participant - a connection seated in a room.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
