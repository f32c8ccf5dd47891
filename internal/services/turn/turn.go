// Package turn derives whose turn it is from the shot log.
// Turn state is never stored; it is recomputed from the most recent shot.
package turn

import (
	"fmt"

	"github.com/mcoot/battleship/internal/model"
)

// Current returns the player who may fire next.
// The second result is false when nobody may fire: the match is not in
// progress, or the last shot came from someone outside the match.
func Current(match *model.Match, lastShot *model.Shot) (model.PlayerID, bool) {
	if match.Status != model.MatchStatusInProgress || match.PlayerB == nil {
		return 0, false
	}
	if lastShot == nil {
		return match.PlayerA, true
	}
	if lastShot.Hit {
		if !match.IsParticipant(lastShot.AttackerID) {
			return 0, false
		}
		return lastShot.AttackerID, true
	}
	return match.Opponent(lastShot.AttackerID)
}

// IsPlayersTurn reports whether playerID may fire next
func IsPlayersTurn(match *model.Match, lastShot *model.Shot, playerID model.PlayerID) bool {
	current, ok := Current(match, lastShot)
	return ok && current == playerID
}

// Replay walks an ordered shot log and checks every shot was fired in turn.
// A finished match is replayed as it was played. It returns who may fire
// after the last shot, with false when nobody may.
func Replay(match *model.Match, shots []model.Shot) (model.PlayerID, bool, error) {
	playing := match.Clone()
	playing.Status = model.MatchStatusInProgress

	var last *model.Shot
	for i := range shots {
		shot := &shots[i]
		if !IsPlayersTurn(playing, last, shot.AttackerID) {
			return 0, false, fmt.Errorf("%w: shot %d by player %s", model.ErrNotYourTurn, shot.Seq, shot.AttackerID)
		}
		last = shot
	}
	current, ok := Current(match, last)
	return current, ok, nil
}
