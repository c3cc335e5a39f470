package main

import "strings"

// Phase is the macro-stage of a session.
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseNight   Phase = "night"
	PhaseDay     Phase = "day"
	PhaseVoting  Phase = "voting"
	PhaseEnded   Phase = "ended"
)

// Potions tracks the witch's single-use inventory. Both start true at role
// assignment and flip false permanently once used.
type Potions struct {
	Heal   bool `json:"heal"`
	Poison bool `json:"poison"`
}

// Player is one participant of a session. ID is the stable connection
// identity token; Name is unique within the session.
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Role     Role    `json:"role"`
	Alive    bool    `json:"isAlive"`
	IsHost   bool    `json:"isHost"`
	VotedFor string  `json:"votedFor,omitempty"`
	HasVoted bool    `json:"hasVoted"`
	Potions  Potions `json:"potions"`
}

// Settings is the total per-session settings value, resolved once at
// session creation rather than re-derived at every read site.
type Settings struct {
	MinPlayers       int  `json:"minPlayers"`
	MaxPlayers       int  `json:"maxPlayers"`
	AvoidRoleRepeats bool `json:"avoidRoleRepeats"`
}

func defaultSettings() Settings {
	return Settings{MinPlayers: 4, MaxPlayers: 10, AvoidRoleRepeats: true}
}

// ActionKey identifies one slot in the night action ledger: one actor may
// hold one entry per action kind. This lets the witch record a heal and a
// poison in the same night without key collisions.
type ActionKey struct {
	Actor string
	Kind  ActionKind
}

// NightAction is one submitted night action. Seq preserves submission
// order so "first recorded wins" is well defined when two werewolves
// manage to submit kills.
type NightAction struct {
	Actor  string     `json:"actor"`
	Kind   ActionKind `json:"kind"`
	Target string     `json:"target"`
	Role   Role       `json:"role"`
	Seq    int        `json:"seq"`
}

// Game is the authoritative in-memory state of one session.
type Game struct {
	ID               string                    `json:"gameId"`
	Players          []*Player                 `json:"players"`
	Phase            Phase                     `json:"phase"`
	DayCount         int                       `json:"dayCount"`
	Settings         Settings                  `json:"settings"`
	CurrentNightRole Role                      `json:"currentNightRole"`
	NightActions     map[ActionKey]NightAction `json:"-"`
	NightConfirms    map[string]bool           `json:"-"`
	Winner           string                    `json:"winner,omitempty"`

	nightSeq int
}

// normalizeGameID folds a human-chosen session code to its canonical form.
func normalizeGameID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func newGame(gameID string, settings Settings, host *Player) *Game {
	host.IsHost = true
	host.Alive = true
	return &Game{
		ID:            normalizeGameID(gameID),
		Players:       []*Player{host},
		Phase:         PhaseWaiting,
		Settings:      settings,
		NightActions:  make(map[ActionKey]NightAction),
		NightConfirms: make(map[string]bool),
	}
}

func (g *Game) FindPlayer(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) FindPlayerByName(name string) *Player {
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (g *Game) AlivePlayers() []*Player {
	var alive []*Player
	for _, p := range g.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// AliveWithRole returns the living holders of a role.
func (g *Game) AliveWithRole(role Role) []*Player {
	var holders []*Player
	for _, p := range g.Players {
		if p.Alive && p.Role == role {
			holders = append(holders, p)
		}
	}
	return holders
}

// RemovePlayer takes a player out of the session, preserving join order of
// the rest. Returns the removed player, or nil if absent.
func (g *Game) RemovePlayer(id string) *Player {
	for i, p := range g.Players {
		if p.ID == id {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return p
		}
	}
	return nil
}

// PromoteHost ensures exactly one host exists: the first remaining player
// in join order. Returns the promoted player, or nil when no promotion was
// needed or possible.
func (g *Game) PromoteHost() *Player {
	if len(g.Players) == 0 {
		return nil
	}
	for _, p := range g.Players {
		if p.IsHost {
			return nil
		}
	}
	g.Players[0].IsHost = true
	return g.Players[0]
}

// recordNightAction appends to the ledger in submission order.
func (g *Game) recordNightAction(actor string, kind ActionKind, target string, role Role) {
	g.nightSeq++
	g.NightActions[ActionKey{Actor: actor, Kind: kind}] = NightAction{
		Actor:  actor,
		Kind:   kind,
		Target: target,
		Role:   role,
		Seq:    g.nightSeq,
	}
}

// clearNightState wipes the action ledger and confirmation set. Called at
// the start of every night and again after resolution.
func (g *Game) clearNightState() {
	g.NightActions = make(map[ActionKey]NightAction)
	g.NightConfirms = make(map[string]bool)
	g.nightSeq = 0
}

// clearVotes resets every player's vote state. Runs after each tally and
// before each voting phase, regardless of outcome.
func (g *Game) clearVotes() {
	for _, p := range g.Players {
		p.HasVoted = false
		p.VotedFor = ""
	}
}

// ResetToLobby returns an ended (or in-progress) session to the waiting
// phase, clearing every per-match field while keeping identity, name and
// host flags.
func (g *Game) ResetToLobby() {
	g.Phase = PhaseWaiting
	g.DayCount = 0
	g.Winner = ""
	g.CurrentNightRole = RoleNone
	g.clearNightState()
	for _, p := range g.Players {
		p.Role = RoleNone
		p.Alive = true
		p.HasVoted = false
		p.VotedFor = ""
		p.Potions = Potions{}
	}
}

// PlayerView is the masked per-player record sent to clients. Vote targets
// and potions are never included; Role is populated only once the player is
// dead, whose role is public knowledge.
type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Alive    bool   `json:"isAlive"`
	IsHost   bool   `json:"isHost"`
	HasVoted bool   `json:"hasVoted"`
	Role     string `json:"role,omitempty"`
}

// GameView is the masked session payload broadcast to all participants.
// The night action ledger is never part of it; only resolved consequences
// reach clients.
type GameView struct {
	GameID           string       `json:"gameId"`
	Phase            Phase        `json:"phase"`
	DayCount         int          `json:"dayCount"`
	Winner           string       `json:"winner,omitempty"`
	Settings         Settings     `json:"settings"`
	CurrentNightRole string       `json:"currentNightRole,omitempty"`
	Players          []PlayerView `json:"players"`
}

// View builds the masked broadcast payload.
func (g *Game) View() GameView {
	view := GameView{
		GameID:           g.ID,
		Phase:            g.Phase,
		DayCount:         g.DayCount,
		Winner:           g.Winner,
		Settings:         g.Settings,
		CurrentNightRole: g.CurrentNightRole.String(),
	}
	for _, p := range g.Players {
		pv := PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Alive:    p.Alive,
			IsHost:   p.IsHost,
			HasVoted: p.HasVoted,
		}
		if !p.Alive {
			pv.Role = p.Role.String()
		}
		view.Players = append(view.Players, pv)
	}
	return view
}
