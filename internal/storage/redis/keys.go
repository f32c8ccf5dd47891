package redis

import (
	"fmt"

	"github.com/mcoot/battleship/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "bsgame"

// playerSeqKey returns the counter used to assign player IDs
func playerSeqKey() string {
	return fmt.Sprintf("%s:seq:player", keyPrefix)
}

// matchSeqKey returns the counter used to assign match IDs
func matchSeqKey() string {
	return fmt.Sprintf("%s:seq:match", keyPrefix)
}

func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%d", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// emailIndexKey returns the Redis key for the email -> player_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%d", keyPrefix, id)
}

// matchIndexKey returns the sorted set of all match IDs, scored by ID
func matchIndexKey() string {
	return fmt.Sprintf("%s:idx:matches", keyPrefix)
}

func fleetKey(matchID model.MatchID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:fleet:%d:%d", keyPrefix, matchID, playerID)
}

// shotsKey returns the list holding a match's shot log
func shotsKey(matchID model.MatchID) string {
	return fmt.Sprintf("%s:shots:%d", keyPrefix, matchID)
}

// shotCellsKey returns the SET of "row,col" targets an attacker has fired at
func shotCellsKey(matchID model.MatchID, attacker model.PlayerID) string {
	return fmt.Sprintf("%s:idx:shot_cells:%d:%d", keyPrefix, matchID, attacker)
}

func matchLockKey(matchID model.MatchID) string {
	return fmt.Sprintf("%s:lock:match:%d", keyPrefix, matchID)
}

// matchScopedKeys returns every key owned by the match for the given participants
func matchScopedKeys(matchID model.MatchID, participants []model.PlayerID) []string {
	keys := []string{matchKey(matchID), shotsKey(matchID)}
	for _, p := range participants {
		keys = append(keys, fleetKey(matchID, p), shotCellsKey(matchID, p))
	}
	return keys
}
