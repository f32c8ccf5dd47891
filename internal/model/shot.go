package model

import "time"

// Shot is one recorded fire action.
// Seq is assigned by storage and strictly increases within a match;
// it orders the log, CreatedAt is informational.
type Shot struct {
	MatchID    MatchID
	AttackerID PlayerID
	Target     Position
	Hit        bool
	Seq        int64
	CreatedAt  time.Time
}

// HitSet returns the cells hit by attacker across shots
func HitSet(shots []Shot, attacker PlayerID) map[Position]bool {
	hits := make(map[Position]bool)
	for _, s := range shots {
		if s.AttackerID == attacker && s.Hit {
			hits[s.Target] = true
		}
	}
	return hits
}

// HasFired reports whether attacker already has a shot at target
func HasFired(shots []Shot, attacker PlayerID, target Position) bool {
	for _, s := range shots {
		if s.AttackerID == attacker && s.Target == target {
			return true
		}
	}
	return false
}

// LastOf returns the shot with the highest Seq, or nil when there are none
func LastOf(shots []Shot) *Shot {
	var last *Shot
	for i := range shots {
		if last == nil || shots[i].Seq > last.Seq {
			last = &shots[i]
		}
	}
	return last
}
