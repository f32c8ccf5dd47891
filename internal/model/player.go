package model

import (
	"strconv"
	"time"
)

// PlayerID uniquely identifies a player across the system.
// IDs are assigned by storage and start at 1; zero means unset.
type PlayerID int64

// String returns the decimal form of the ID
func (id PlayerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParsePlayerID parses a decimal player ID
func ParsePlayerID(s string) (PlayerID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidPlayerID
	}
	return PlayerID(n), nil
}

// Player represents a game participant
type Player struct {
	ID           PlayerID
	Username     string // login name, empty for guests and bots
	Email        string // optional
	DisplayName  string
	PasswordHash string // bcrypt hash, empty for guests and bots
	Level        int
	IsGuest      bool
	IsBot        bool
	BotStrategy  string
	CreatedAt    time.Time
}

// StartingLevel is the level assigned to newly created players
const StartingLevel = 1
