package main

import (
	"testing"
)

// nightGame builds a 4-player session in the night phase with one of each
// night role plus the werewolf's natural prey.
func nightGame() *Game {
	g := newGame("TEST", defaultSettings(), &Player{ID: "wolf", Name: "Wolf"})
	g.Players[0].Role = RoleWerewolf
	g.Players = append(g.Players,
		&Player{ID: "seer", Name: "Sara", Role: RoleSeer, Alive: true},
		&Player{ID: "guard", Name: "Greta", Role: RoleGuard, Alive: true},
		&Player{ID: "witch", Name: "Wanda", Role: RoleWitch, Alive: true, Potions: Potions{Heal: true, Poison: true}},
	)
	g.Phase = PhaseNight
	g.DayCount = 1
	return g
}

func TestResolveNightKill(t *testing.T) {
	g := nightGame()
	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)

	results := resolveNight(g)

	if len(results.Deaths) != 1 {
		t.Fatalf("deaths = %d, want 1", len(results.Deaths))
	}
	d := results.Deaths[0]
	if d.Name != "Sara" || d.Role != "seer" || d.Cause != CauseWerewolf {
		t.Errorf("death = %+v", d)
	}
	if g.FindPlayer("seer").Alive {
		t.Error("victim still alive after resolution")
	}
	if results.MultipleDeaths {
		t.Error("MultipleDeaths set for a single death")
	}
}

func TestResolveNightProtectBeatsKill(t *testing.T) {
	g := nightGame()
	g.recordNightAction("guard", ActionProtect, "seer", RoleGuard)
	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)

	results := resolveNight(g)

	if len(results.Deaths) != 0 {
		t.Fatalf("deaths = %d, want 0", len(results.Deaths))
	}
	if len(results.Saves) != 1 {
		t.Fatalf("saves = %d, want 1", len(results.Saves))
	}
	if !g.FindPlayer("seer").Alive {
		t.Error("protected victim died")
	}
}

func TestResolveNightHealBeatsKill(t *testing.T) {
	g := nightGame()
	g.recordNightAction("wolf", ActionKill, "guard", RoleWerewolf)
	g.recordNightAction("witch", ActionHeal, "guard", RoleWitch)

	results := resolveNight(g)

	if len(results.Deaths) != 0 {
		t.Fatalf("deaths = %d, want 0", len(results.Deaths))
	}
	if !g.FindPlayer("guard").Alive {
		t.Error("healed victim died")
	}
}

func TestResolveNightPoisonBypassesProtection(t *testing.T) {
	g := nightGame()
	g.recordNightAction("guard", ActionProtect, "seer", RoleGuard)
	g.recordNightAction("witch", ActionPoison, "seer", RoleWitch)

	results := resolveNight(g)

	if len(results.Deaths) != 1 {
		t.Fatalf("deaths = %d, want 1", len(results.Deaths))
	}
	if results.Deaths[0].Cause != CausePoison {
		t.Errorf("cause = %s, want poison", results.Deaths[0].Cause)
	}
	if g.FindPlayer("seer").Alive {
		t.Error("poisoned player survived despite protection")
	}
}

func TestResolveNightHealDoesNotStopPoison(t *testing.T) {
	g := nightGame()
	g.recordNightAction("wolf", ActionKill, "guard", RoleWerewolf)
	g.recordNightAction("witch", ActionHeal, "guard", RoleWitch)
	g.recordNightAction("witch", ActionPoison, "guard", RoleWitch)

	results := resolveNight(g)

	if len(results.Deaths) != 1 {
		t.Fatalf("deaths = %d, want 1", len(results.Deaths))
	}
	if results.Deaths[0].Cause != CausePoison {
		t.Errorf("cause = %s, want poison", results.Deaths[0].Cause)
	}
}

func TestResolveNightMultipleDeaths(t *testing.T) {
	g := nightGame()
	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)
	g.recordNightAction("witch", ActionPoison, "guard", RoleWitch)

	results := resolveNight(g)

	if len(results.Deaths) != 2 {
		t.Fatalf("deaths = %d, want 2", len(results.Deaths))
	}
	if !results.MultipleDeaths {
		t.Error("MultipleDeaths not set")
	}
}

func TestResolveNightSeerResults(t *testing.T) {
	g := nightGame()
	g.recordNightAction("seer", ActionInvestigate, "wolf", RoleSeer)

	results := resolveNight(g)

	if len(results.SeerResults) != 1 {
		t.Fatalf("seer results = %d, want 1", len(results.SeerResults))
	}
	r := results.SeerResults[0]
	if r.SeerID != "seer" || r.TargetName != "Wolf" || !r.IsWerewolf {
		t.Errorf("seer result = %+v", r)
	}
	if r.TargetRole != "werewolf" {
		t.Errorf("target role = %s, want werewolf", r.TargetRole)
	}
}

func TestResolveNightAdvancesDay(t *testing.T) {
	g := nightGame()
	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)

	resolveNight(g)

	if g.Phase != PhaseDay {
		t.Errorf("phase = %s, want day", g.Phase)
	}
	if g.DayCount != 2 {
		t.Errorf("dayCount = %d, want 2", g.DayCount)
	}
	if g.CurrentNightRole != RoleNone {
		t.Errorf("currentNightRole = %s, want none", g.CurrentNightRole)
	}
	if len(g.NightActions) != 0 || len(g.NightConfirms) != 0 {
		t.Error("night ledger not cleared after resolution")
	}
}

func TestResolveNightTwiceIsNoOp(t *testing.T) {
	g := nightGame()
	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)

	resolveNight(g)
	alive := len(g.AlivePlayers())

	results := resolveNight(g)
	if len(results.Deaths) != 0 {
		t.Errorf("second resolution produced %d deaths", len(results.Deaths))
	}
	if len(g.AlivePlayers()) != alive {
		t.Error("second resolution changed the roster")
	}
}

func TestKillTargetFirstRecordedWins(t *testing.T) {
	g := nightGame()
	g.Players = append(g.Players, &Player{ID: "wolf2", Name: "Wulf", Role: RoleWerewolf, Alive: true})
	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)
	g.recordNightAction("wolf2", ActionKill, "guard", RoleWerewolf)

	if got := killTarget(g); got != "seer" {
		t.Errorf("killTarget = %s, want the first submission's target", got)
	}
}

func TestWitchDeathInfo(t *testing.T) {
	g := nightGame()
	witch := g.FindPlayer("witch")

	info := witchDeathInfo(g, witch)
	if info.DeathTarget != nil {
		t.Errorf("death target = %+v, want nil with no kill recorded", info.DeathTarget)
	}
	if !info.HasHealPotion || !info.HasPoisonPotion {
		t.Error("fresh witch should hold both potions")
	}

	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)
	info = witchDeathInfo(g, witch)
	if info.DeathTarget == nil || info.DeathTarget.ID != "seer" {
		t.Errorf("death target = %+v, want seer", info.DeathTarget)
	}
}
