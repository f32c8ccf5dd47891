package model

import (
	"strconv"
	"time"
)

// MatchID uniquely identifies a match. Assigned by storage, starts at 1.
type MatchID int64

// String returns the decimal form of the ID
func (id MatchID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseMatchID parses a decimal match ID
func ParseMatchID(s string) (MatchID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrMatchNotFound
	}
	return MatchID(n), nil
}

// MatchStatus represents the lifecycle phase of a match
type MatchStatus string

const (
	MatchStatusWaiting    MatchStatus = "waiting"     // Player A present, no opponent yet
	MatchStatusInProgress MatchStatus = "in_progress" // Both players present, firing
	MatchStatusFinished   MatchStatus = "finished"    // Terminal, winner set
)

// Match is a single two-player game.
// Status only ever moves waiting -> in_progress -> finished.
type Match struct {
	ID         MatchID
	PlayerA    PlayerID
	PlayerB    *PlayerID
	Status     MatchStatus
	Winner     *PlayerID
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// NewMatch creates a waiting match owned by playerA
func NewMatch(playerA PlayerID, now time.Time) *Match {
	return &Match{
		PlayerA:   playerA,
		Status:    MatchStatusWaiting,
		CreatedAt: now,
	}
}

// IsParticipant reports whether the player occupies either slot
func (m *Match) IsParticipant(playerID PlayerID) bool {
	if playerID == 0 {
		return false
	}
	if m.PlayerA == playerID {
		return true
	}
	return m.PlayerB != nil && *m.PlayerB == playerID
}

// Opponent returns the other participant, if there is one
func (m *Match) Opponent(playerID PlayerID) (PlayerID, bool) {
	switch {
	case m.PlayerB == nil:
		return 0, false
	case m.PlayerA == playerID:
		return *m.PlayerB, true
	case *m.PlayerB == playerID:
		return m.PlayerA, true
	default:
		return 0, false
	}
}

// Participants returns the players currently in the match
func (m *Match) Participants() []PlayerID {
	if m.PlayerB == nil {
		return []PlayerID{m.PlayerA}
	}
	return []PlayerID{m.PlayerA, *m.PlayerB}
}

// Join seats playerB and starts the match
func (m *Match) Join(playerB PlayerID, now time.Time) error {
	if playerB == 0 {
		return ErrInvalidPlayerID
	}
	if m.PlayerA == playerB {
		return ErrCannotJoinOwnMatch
	}
	if m.Status != MatchStatusWaiting || m.PlayerB != nil {
		return ErrMatchNotJoinable
	}
	m.PlayerB = &playerB
	m.Status = MatchStatusInProgress
	m.StartedAt = &now
	return nil
}

// RequireInProgress returns the error describing why the match cannot be played
func (m *Match) RequireInProgress() error {
	switch m.Status {
	case MatchStatusInProgress:
		return nil
	case MatchStatusFinished:
		return ErrMatchFinished
	default:
		return ErrMatchNotInProgress
	}
}

// Finish ends the match with the given winner
func (m *Match) Finish(winner PlayerID, now time.Time) error {
	if err := m.RequireInProgress(); err != nil {
		return err
	}
	if !m.IsParticipant(winner) {
		return ErrNotParticipant
	}
	m.Status = MatchStatusFinished
	m.Winner = &winner
	m.FinishedAt = &now
	return nil
}

// Forfeit ends the match in favour of the other participant
func (m *Match) Forfeit(playerID PlayerID, now time.Time) error {
	if !m.IsParticipant(playerID) {
		return ErrNotParticipant
	}
	if err := m.RequireInProgress(); err != nil {
		return err
	}
	opponent, _ := m.Opponent(playerID)
	return m.Finish(opponent, now)
}

// Clone returns a deep copy of the match
func (m *Match) Clone() *Match {
	c := *m
	if m.PlayerB != nil {
		b := *m.PlayerB
		c.PlayerB = &b
	}
	if m.Winner != nil {
		w := *m.Winner
		c.Winner = &w
	}
	if m.StartedAt != nil {
		t := *m.StartedAt
		c.StartedAt = &t
	}
	if m.FinishedAt != nil {
		t := *m.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// MatchFilter selects matches in storage queries.
// Zero-valued fields do not constrain the result.
type MatchFilter struct {
	Statuses       []MatchStatus
	Participant    PlayerID // either slot
	ExcludeCreator PlayerID // drop matches created by this player
	CreatedBefore  time.Time
	Limit          int
}

// Matches reports whether m satisfies the filter
func (f MatchFilter) Matches(m *Match) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if m.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Participant != 0 && !m.IsParticipant(f.Participant) {
		return false
	}
	if f.ExcludeCreator != 0 && m.PlayerA == f.ExcludeCreator {
		return false
	}
	if !f.CreatedBefore.IsZero() && !m.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}
