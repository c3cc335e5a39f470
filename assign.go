package main

import (
	"crypto/rand"
	"log"
	"math/big"
)

// assignRoles builds the role vector for playerCount players. Roles are
// added cumulatively: a lone werewolf gets a packmate at 7 players, the
// seer, guard and witch appear at 4, the mayor at 9, and every remaining
// slot is a villager. The vector comes back shuffled.
func assignRoles(playerCount int) []Role {
	roles := []Role{RoleWerewolf}
	if playerCount >= 7 {
		roles = append(roles, RoleWerewolf)
	}
	if playerCount >= 4 {
		roles = append(roles, RoleSeer, RoleGuard, RoleWitch)
	}
	if playerCount >= 9 {
		roles = append(roles, RoleMayor)
	}
	for len(roles) < playerCount {
		roles = append(roles, RoleVillager)
	}

	shuffleRoles(roles)
	return roles
}

// shuffleRoles is a Fisher-Yates shuffle drawing from crypto/rand. The
// shuffle is the only fairness guarantee in the role lottery, so a biased
// or low-entropy source is not acceptable here.
func shuffleRoles(roles []Role) {
	for i := len(roles) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			// crypto/rand failing is effectively unrecoverable; degrade to
			// a neighbour swap rather than abort the whole assignment.
			roles[i], roles[i-1] = roles[i-1], roles[i]
			continue
		}
		j := int(jBig.Int64())
		roles[i], roles[j] = roles[j], roles[i]
	}
}

// historyDepth caps how many recent roles are remembered per player.
const historyDepth = 3

// reshuffleAttempts bounds the anti-repetition search before falling back
// to an unconstrained shuffle.
const reshuffleAttempts = 10

// RoleHistory remembers the most recent roles per connection so consecutive
// matches in the same process can nudge assignments away from repeats.
// Callers are expected to serialize access; the orchestrator owns the only
// instance.
type RoleHistory struct {
	recent map[string][]Role
}

func newRoleHistory() *RoleHistory {
	return &RoleHistory{recent: make(map[string][]Role)}
}

// Last returns the role a player held in their most recent match, or
// RoleNone if none is recorded.
func (h *RoleHistory) Last(playerID string) Role {
	roles := h.recent[playerID]
	if len(roles) == 0 {
		return RoleNone
	}
	return roles[len(roles)-1]
}

// Record appends a role to the player's history, trimming to historyDepth.
func (h *RoleHistory) Record(playerID string, role Role) {
	roles := append(h.recent[playerID], role)
	if len(roles) > historyDepth {
		roles = roles[len(roles)-historyDepth:]
	}
	h.recent[playerID] = roles
}

// Forget drops a player's history when their connection is torn down.
func (h *RoleHistory) Forget(playerID string) {
	delete(h.recent, playerID)
}

func (h *RoleHistory) empty() bool {
	return len(h.recent) == 0
}

// assignRolesWithHistory shuffles up to reshuffleAttempts times looking for
// a vector where no player repeats the role from their immediately
// preceding match. This is a best-effort fairness nudge: if no attempt
// satisfies it, the last unconstrained shuffle is used as-is.
func assignRolesWithHistory(players []*Player, history *RoleHistory) []Role {
	roles := assignRoles(len(players))
	if history == nil || history.empty() {
		return roles
	}

	for attempt := 0; attempt < reshuffleAttempts; attempt++ {
		repeat := false
		for i, p := range players {
			if last := history.Last(p.ID); last != RoleNone && last == roles[i] {
				repeat = true
				break
			}
		}
		if !repeat {
			if attempt > 0 {
				DebugLog("assignRolesWithHistory", "found repeat-free assignment on attempt %d", attempt+1)
			}
			return roles
		}
		shuffleRoles(roles)
	}

	log.Printf("Role assignment: could not avoid repeats after %d attempts, using unconstrained shuffle", reshuffleAttempts)
	fixConsecutiveWerewolf(players, history, roles)
	return roles
}

// fixConsecutiveWerewolf repairs a fallback assignment so that no player
// holds werewolf in two consecutive matches. Repeats of other roles are
// tolerated in the fallback, a repeated werewolf is not: the slot is
// swapped with a player who neither was nor became a werewolf.
func fixConsecutiveWerewolf(players []*Player, history *RoleHistory, roles []Role) {
	for i, p := range players {
		if roles[i] != RoleWerewolf || history.Last(p.ID) != RoleWerewolf {
			continue
		}
		for j, q := range players {
			if roles[j] != RoleWerewolf && history.Last(q.ID) != RoleWerewolf {
				roles[i], roles[j] = roles[j], roles[i]
				log.Printf("Role assignment: moved werewolf from %s to %s to break a repeat", p.Name, q.Name)
				break
			}
		}
	}
}
