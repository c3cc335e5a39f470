package main

import (
	"fmt"
	"log"
)

// Death causes reported in night results.
const (
	CauseWerewolf = "werewolf"
	CausePoison   = "poison"
)

// DeathRecord is one public death announcement. The dead player's role is
// revealed as part of the record.
type DeathRecord struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Cause string `json:"cause"`
}

// SeerResult is a private investigation outcome, delivered only to the
// seer who requested it.
type SeerResult struct {
	SeerID     string `json:"-"`
	TargetName string `json:"targetName"`
	TargetRole string `json:"targetRole"`
	IsWerewolf bool   `json:"isWerewolf"`
}

// NightResults is the resolved outcome of one night, shaped for the
// day-phase broadcast. SeerResults ride along for private delivery and are
// never part of the fan-out payload.
type NightResults struct {
	Deaths         []DeathRecord `json:"killedPlayers"`
	Saves          []string      `json:"saves,omitempty"`
	MultipleDeaths bool          `json:"multipleDeaths"`

	SeerResults []SeerResult `json:"-"`
}

// killTarget returns the werewolves' chosen victim. Only one werewolf
// confirmation is required so at most one kill entry is expected; if
// several are present the earliest submission wins.
func killTarget(g *Game) string {
	best := ""
	bestSeq := 0
	for _, a := range g.NightActions {
		if a.Kind != ActionKill {
			continue
		}
		if best == "" || a.Seq < bestSeq {
			best = a.Target
			bestSeq = a.Seq
		}
	}
	return best
}

func actionTarget(g *Game, kind ActionKind) string {
	for _, a := range g.NightActions {
		if a.Kind == kind {
			return a.Target
		}
	}
	return ""
}

// resolveNight consumes the night action ledger and applies its outcome to
// the session. Precedence is fixed: guard protection beats the kill, the
// witch's heal beats the kill, and poison resolves independently of both.
// Deaths are applied, then the ledger, confirmation set and active night
// role are cleared and the day counter advances, so invoking resolution a
// second time on the same session is a no-op rather than a double kill.
func resolveNight(g *Game) NightResults {
	var results NightResults

	kill := killTarget(g)
	protect := actionTarget(g, ActionProtect)
	heal := actionTarget(g, ActionHeal)
	poison := actionTarget(g, ActionPoison)

	if kill != "" {
		victim := g.FindPlayer(kill)
		switch {
		case kill == protect:
			if victim != nil {
				results.Saves = append(results.Saves, fmt.Sprintf("%s was attacked but the guard stood watch.", victim.Name))
				log.Printf("Night %d: guard saved %s from the werewolves", g.DayCount, victim.Name)
			}
		case kill == heal:
			if victim != nil {
				results.Saves = append(results.Saves, fmt.Sprintf("%s was attacked but saved by a healing potion.", victim.Name))
				log.Printf("Night %d: witch healed %s", g.DayCount, victim.Name)
			}
		default:
			if victim != nil && victim.Alive {
				victim.Alive = false
				results.Deaths = append(results.Deaths, DeathRecord{
					Name:  victim.Name,
					Role:  victim.Role.String(),
					Cause: CauseWerewolf,
				})
				log.Printf("Night %d: werewolves killed %s (%s)", g.DayCount, victim.Name, victim.Role)
			}
		}
	}

	// Poison is independent: neither the guard's protection nor the heal
	// potion stops it.
	if poison != "" {
		if victim := g.FindPlayer(poison); victim != nil && victim.Alive {
			victim.Alive = false
			results.Deaths = append(results.Deaths, DeathRecord{
				Name:  victim.Name,
				Role:  victim.Role.String(),
				Cause: CausePoison,
			})
			log.Printf("Night %d: witch poisoned %s (%s)", g.DayCount, victim.Name, victim.Role)
		}
	}

	for _, a := range g.NightActions {
		if a.Kind != ActionInvestigate {
			continue
		}
		target := g.FindPlayer(a.Target)
		if target == nil {
			continue
		}
		results.SeerResults = append(results.SeerResults, SeerResult{
			SeerID:     a.Actor,
			TargetName: target.Name,
			TargetRole: target.Role.String(),
			IsWerewolf: target.Role == RoleWerewolf,
		})
	}

	results.MultipleDeaths = len(results.Deaths) > 1

	g.clearNightState()
	g.CurrentNightRole = RoleNone
	g.DayCount++
	g.Phase = PhaseDay

	return results
}

// WitchDeathInfo tells the witch who is marked for death tonight so the
// heal decision can be made. Unicast to witches only.
type WitchDeathInfo struct {
	DeathTarget     *DeathTarget `json:"deathTarget"`
	Message         string       `json:"message"`
	HasHealPotion   bool         `json:"hasHealPotion"`
	HasPoisonPotion bool         `json:"hasPoisonPotion"`
}

type DeathTarget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func witchDeathInfo(g *Game, witch *Player) WitchDeathInfo {
	info := WitchDeathInfo{
		Message:         "No one is targeted for death tonight.",
		HasHealPotion:   witch.Potions.Heal,
		HasPoisonPotion: witch.Potions.Poison,
	}
	if target := g.FindPlayer(killTarget(g)); target != nil {
		info.DeathTarget = &DeathTarget{ID: target.ID, Name: target.Name}
		info.Message = fmt.Sprintf("%s will die tonight unless you heal them.", target.Name)
	}
	return info
}
