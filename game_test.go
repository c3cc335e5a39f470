package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeGameID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc123", "ABC123"},
		{"  Game42 ", "GAME42"},
		{"WOLF", "WOLF"},
	}
	for _, tt := range tests {
		if got := normalizeGameID(tt.in); got != tt.want {
			t.Errorf("normalizeGameID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestViewMasksLivingRoles(t *testing.T) {
	g := nightGame()
	g.FindPlayer("seer").Alive = false

	view := g.View()

	for _, pv := range view.Players {
		switch pv.ID {
		case "seer":
			if pv.Role != "seer" {
				t.Errorf("dead player's role = %q, want revealed", pv.Role)
			}
		default:
			if pv.Role != "" {
				t.Errorf("living player %s has visible role %q", pv.Name, pv.Role)
			}
		}
	}
}

func TestViewNeverLeaksPrivateState(t *testing.T) {
	g := nightGame()
	g.FindPlayer("guard").VotedFor = "wolf"
	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)

	raw, err := json.Marshal(g.View())
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	for _, secret := range []string{"votedFor", "potions", "nightActions", "kill"} {
		if strings.Contains(s, secret) {
			t.Errorf("broadcast view contains %q: %s", secret, s)
		}
	}
}

func TestPromoteHostFirstInJoinOrder(t *testing.T) {
	g := newGame("HOST", defaultSettings(), &Player{ID: "a", Name: "Alice"})
	g.Players = append(g.Players,
		&Player{ID: "b", Name: "Bob", Alive: true},
		&Player{ID: "c", Name: "Cara", Alive: true},
	)

	g.RemovePlayer("a")
	promoted := g.PromoteHost()

	if promoted == nil || promoted.ID != "b" {
		t.Fatalf("promoted = %+v, want Bob", promoted)
	}
	if g.PromoteHost() != nil {
		t.Error("second promotion should be a no-op while a host exists")
	}
}

func TestRemovePlayerKeepsOrder(t *testing.T) {
	g := newGame("ORD", defaultSettings(), &Player{ID: "a", Name: "Alice"})
	g.Players = append(g.Players,
		&Player{ID: "b", Name: "Bob", Alive: true},
		&Player{ID: "c", Name: "Cara", Alive: true},
	)

	if removed := g.RemovePlayer("b"); removed == nil || removed.ID != "b" {
		t.Fatalf("removed = %+v", removed)
	}
	if g.Players[0].ID != "a" || g.Players[1].ID != "c" {
		t.Error("join order not preserved after removal")
	}
	if g.RemovePlayer("zz") != nil {
		t.Error("removing an unknown ID should return nil")
	}
}

func TestResetToLobby(t *testing.T) {
	g := nightGame()
	g.recordNightAction("wolf", ActionKill, "seer", RoleWerewolf)
	g.NightConfirms["wolf"] = true
	g.Winner = WinnerWerewolves
	g.Phase = PhaseEnded
	g.DayCount = 3
	g.FindPlayer("seer").Alive = false
	g.FindPlayer("witch").Potions = Potions{Heal: false, Poison: true}

	g.ResetToLobby()

	if g.Phase != PhaseWaiting || g.DayCount != 0 || g.Winner != "" {
		t.Errorf("session fields not reset: phase=%s day=%d winner=%q", g.Phase, g.DayCount, g.Winner)
	}
	if len(g.NightActions) != 0 || len(g.NightConfirms) != 0 {
		t.Error("night ledger survived reset")
	}
	for _, p := range g.Players {
		if p.Role != RoleNone || !p.Alive {
			t.Errorf("%s not reset: role=%s alive=%v", p.Name, p.Role, p.Alive)
		}
		if p.Potions.Heal || p.Potions.Poison {
			t.Errorf("%s kept potions across matches", p.Name)
		}
	}
	if !g.Players[0].IsHost {
		t.Error("host flag lost on reset")
	}
}

func TestRoleJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(RoleWerewolf)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"werewolf"` {
		t.Errorf("marshal = %s", raw)
	}

	var r Role
	if err := json.Unmarshal([]byte(`"guard"`), &r); err != nil {
		t.Fatal(err)
	}
	if r != RoleGuard {
		t.Errorf("unmarshal = %v, want guard", r)
	}

	if err := json.Unmarshal([]byte(`null`), &r); err != nil {
		t.Fatal(err)
	}
	if r != RoleNone {
		t.Errorf("null unmarshal = %v, want none", r)
	}

	if err := json.Unmarshal([]byte(`"vampire"`), &r); err == nil {
		t.Error("unknown role accepted")
	}
}

func TestAllowsAction(t *testing.T) {
	tests := []struct {
		role Role
		kind ActionKind
		want bool
	}{
		{RoleWerewolf, ActionKill, true},
		{RoleWerewolf, ActionHeal, false},
		{RoleSeer, ActionInvestigate, true},
		{RoleGuard, ActionProtect, true},
		{RoleWitch, ActionHeal, true},
		{RoleWitch, ActionPoison, true},
		{RoleWitch, ActionKill, false},
		{RoleWitch, ActionSkip, true},
		{RoleVillager, ActionSkip, false},
		{RoleMayor, ActionKill, false},
	}
	for _, tt := range tests {
		if got := tt.role.AllowsAction(tt.kind); got != tt.want {
			t.Errorf("%s.AllowsAction(%s) = %v, want %v", tt.role, tt.kind, got, tt.want)
		}
	}
}

func TestFirstAliveNightRole(t *testing.T) {
	g := nightGame()
	if got := firstAliveNightRole(g); got != RoleGuard {
		t.Errorf("first role = %s, want guard", got)
	}

	g.FindPlayer("guard").Alive = false
	if got := firstAliveNightRole(g); got != RoleSeer {
		t.Errorf("first role with dead guard = %s, want seer", got)
	}

	for _, p := range g.Players {
		p.Alive = false
	}
	if got := firstAliveNightRole(g); got != RoleNone {
		t.Errorf("first role with empty roster = %s, want none", got)
	}
}
