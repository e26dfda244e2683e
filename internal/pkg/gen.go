package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

const (
	roomCodeMin   = 100000
	roomCodeRange = 900000
)

// GenerateRoomCode - generates a random six digit room code in [100000, 999999].
func GenerateRoomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(roomCodeRange))
	if err != nil {
		return "", fmt.Errorf("failed to read random room code: %w", err)
	}

	return strconv.FormatInt(n.Int64()+roomCodeMin, 10), nil
}

// GenerateConnectionID - generates a unique id for an accepted connection.
func GenerateConnectionID() string {
	return uuid.NewString()
}

// IsRoomCode - reports whether the value looks like a room code.
func IsRoomCode(code string) bool {
	if len(code) != 6 {
		return false
	}

	n, err := strconv.Atoi(code)
	if err != nil {
		return false
	}

	return n >= roomCodeMin && n < roomCodeMin+roomCodeRange
}
