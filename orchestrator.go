package main

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Emitter is the outward fan-out surface of the orchestrator. The hub
// implements it over websockets; tests substitute a recording sink.
// Subscribe/Unsubscribe manage a client's membership in a session's
// multicast group.
type Emitter interface {
	ToSession(gameID, event string, data any)
	ToClient(clientID, event string, data any)
	Subscribe(clientID, gameID string)
	Unsubscribe(clientID, gameID string)
}

// Phase timer durations. Fields on the orchestrator so tests can shrink
// them; production always uses these values.
const (
	dayDiscussionWindow = 30 * time.Second
	endRevealDelay      = 5 * time.Second
	nightReturnDelay    = 10 * time.Second
)

// session pairs a Game with its runtime guard rails: a lock serializing
// every intent touching the session, the pending phase timer, and an
// epoch counter that invalidates stale timers across transitions.
type session struct {
	mu        sync.Mutex
	game      *Game
	timer     *time.Timer
	epoch     uint64
	gone      bool
	chronicle []string
}

// Orchestrator owns every live session, drives the phase state machine
// and fans resolved state out through the Emitter. Session state is only
// ever touched under the session lock, so intents for one session never
// interleave.
type Orchestrator struct {
	mu       sync.Mutex
	sessions map[string]*session
	byClient map[string]string // clientID -> gameID

	emitter  Emitter
	store    *GameStore // nil disables persistence
	history  *RoleHistory
	defaults Settings

	dayDiscussion time.Duration
	revealDelay   time.Duration
	nightDelay    time.Duration
}

func newOrchestrator(emitter Emitter, store *GameStore, defaults Settings) *Orchestrator {
	return &Orchestrator{
		sessions:      make(map[string]*session),
		byClient:      make(map[string]string),
		emitter:       emitter,
		store:         store,
		history:       newRoleHistory(),
		defaults:      defaults,
		dayDiscussion: dayDiscussionWindow,
		revealDelay:   endRevealDelay,
		nightDelay:    nightReturnDelay,
	}
}

func (o *Orchestrator) clientError(clientID, message string) {
	o.emitter.ToClient(clientID, EvError, errorPayload{Message: message})
}

// lookup finds a live session, falling back to the persistent store on a
// memory miss. Returns nil when the session does not exist anywhere.
func (o *Orchestrator) lookup(gameID string) *session {
	id := normalizeGameID(gameID)
	o.mu.Lock()
	if s, ok := o.sessions[id]; ok {
		o.mu.Unlock()
		return s
	}
	if o.store == nil {
		o.mu.Unlock()
		return nil
	}
	game, err := o.store.Load(id)
	if err != nil || game == nil {
		o.mu.Unlock()
		return nil
	}
	s := &session{game: game}
	o.sessions[id] = s
	o.mu.Unlock()

	s.mu.Lock()
	o.resumeRestored(s)
	s.mu.Unlock()
	DebugLog("lookup", "session %s restored from store", id)
	return s
}

// resumeRestored puts a freshly loaded session back at a safe point in its
// phase. The night ledger is not persisted, so a restored night restarts at
// its first live sub-turn; a restored day or voting round re-arms the timer
// or restarts the round rather than waiting on a trigger that already fired.
func (o *Orchestrator) resumeRestored(s *session) {
	g := s.game
	switch g.Phase {
	case PhaseNight:
		g.clearNightState()
		g.CurrentNightRole = firstAliveNightRole(g)
	case PhaseDay:
		o.schedule(s, o.dayDiscussion, PhaseDay, o.beginVoting)
	case PhaseVoting:
		g.clearVotes()
	}
}

// removeSession drops an emptied session from memory and the store.
// gone is set under the session lock so a join racing this removal sees a
// dead session instead of resurrecting it. The store delete is synchronous:
// a join arriving right after the memory delete must miss the store fallback
// too, not reload the stale snapshot.
func (o *Orchestrator) removeSession(s *session) {
	s.gone = true
	o.cancelTimer(s)
	o.mu.Lock()
	delete(o.sessions, s.game.ID)
	o.mu.Unlock()
	if o.store != nil {
		if err := o.store.Delete(s.game.ID); err != nil {
			logError("removeSession: store delete "+s.game.ID, err)
		}
	}
	log.Printf("Game %s has no players left and was deleted", s.game.ID)
}

// persist snapshots the session for the store. Fire-and-forget: the
// in-memory copy stays the source of truth and a failed write never
// affects game semantics. Must be called with the session lock held so
// the snapshot is consistent. The deferred write re-takes the session
// lock and bails on a removed session, so a save already in flight can
// never land after removeSession's store delete and resurrect the row.
func (o *Orchestrator) persist(s *session) {
	if o.store == nil {
		return
	}
	rec, err := snapshotGame(s.game)
	if err != nil {
		logError("persist: snapshot "+s.game.ID, err)
		return
	}
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gone {
			return
		}
		if err := o.store.Save(rec); err != nil {
			logError("persist: store save "+rec.GameID, err)
		}
	}()
}

// schedule arms the session's phase timer. The callback only fires if the
// session still exists, no later transition bumped the epoch, and the
// phase is still the one the timer was armed for. A stale timer must
// never corrupt a later phase.
func (o *Orchestrator) schedule(s *session, d time.Duration, expect Phase, fn func(*session)) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.epoch++
	epoch := s.epoch
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gone || s.epoch != epoch || s.game.Phase != expect {
			DebugLog("schedule", "stale timer for game %s dropped (phase %s, expected %s)", s.game.ID, s.game.Phase, expect)
			return
		}
		fn(s)
	})
}

func (o *Orchestrator) cancelTimer(s *session) {
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func validPlayerName(name string) string {
	if name == "" {
		return "Name is required"
	}
	if len(name) > 20 {
		return "Name must be 20 characters or fewer"
	}
	return ""
}

// CreateGame makes a new session with the creator as host.
func (o *Orchestrator) CreateGame(clientID, gameID, playerName string) {
	id := normalizeGameID(gameID)
	if id == "" {
		o.clientError(clientID, "Game ID is required")
		return
	}
	if msg := validPlayerName(playerName); msg != "" {
		o.clientError(clientID, msg)
		return
	}
	if existing := o.lookup(id); existing != nil {
		o.clientError(clientID, "Game ID already exists")
		return
	}

	host := &Player{ID: clientID, Name: playerName}
	game := newGame(id, o.defaults, host)
	s := &session{game: game}

	o.mu.Lock()
	if _, taken := o.sessions[id]; taken {
		o.mu.Unlock()
		o.clientError(clientID, "Game ID already exists")
		return
	}
	o.sessions[id] = s
	o.byClient[clientID] = id
	o.mu.Unlock()

	o.emitter.Subscribe(clientID, id)
	s.mu.Lock()
	o.persist(s)
	view := game.View()
	s.mu.Unlock()

	o.emitter.ToClient(clientID, EvGameCreated, gamePayload{Game: view})
	log.Printf("Game created: %s by %s", id, playerName)
}

// JoinGame adds a player to a waiting session.
func (o *Orchestrator) JoinGame(clientID, gameID, playerName string) {
	if msg := validPlayerName(playerName); msg != "" {
		o.clientError(clientID, msg)
		return
	}
	s := o.lookup(gameID)
	if s == nil {
		o.clientError(clientID, "Game not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	switch {
	case s.gone:
		o.clientError(clientID, "Game not found")
		return
	case g.Phase != PhaseWaiting:
		o.clientError(clientID, "Game has already started")
		return
	case len(g.Players) >= g.Settings.MaxPlayers:
		o.clientError(clientID, "Game is full")
		return
	case g.FindPlayerByName(playerName) != nil:
		o.clientError(clientID, "Player name already taken")
		return
	}

	g.Players = append(g.Players, &Player{ID: clientID, Name: playerName, Alive: true})
	o.mu.Lock()
	o.byClient[clientID] = g.ID
	o.mu.Unlock()
	o.emitter.Subscribe(clientID, g.ID)

	o.persist(s)
	o.emitter.ToSession(g.ID, EvPlayerJoined, gamePayload{Game: g.View()})
	log.Printf("%s joined game %s (%d players)", playerName, g.ID, len(g.Players))
}

// StartGame assigns roles and opens the first night. Host only.
func (o *Orchestrator) StartGame(clientID, gameID string) {
	s := o.lookup(gameID)
	if s == nil {
		o.clientError(clientID, "Game not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	player := g.FindPlayer(clientID)
	switch {
	case player == nil || !player.IsHost:
		o.clientError(clientID, "Only the host can start the game")
		return
	case g.Phase != PhaseWaiting:
		o.clientError(clientID, "Game has already started")
		return
	case len(g.Players) < g.Settings.MinPlayers:
		o.clientError(clientID, fmt.Sprintf("Need at least %d players", g.Settings.MinPlayers))
		return
	}

	var roles []Role
	o.mu.Lock()
	if g.Settings.AvoidRoleRepeats {
		roles = assignRolesWithHistory(g.Players, o.history)
	} else {
		roles = assignRoles(len(g.Players))
	}
	for i, p := range g.Players {
		p.Role = roles[i]
		o.history.Record(p.ID, roles[i])
	}
	o.mu.Unlock()

	for _, p := range g.Players {
		p.Alive = true
		if p.Role == RoleWitch {
			p.Potions = Potions{Heal: true, Poison: true}
		}
	}

	g.Phase = PhaseNight
	g.DayCount = 1
	g.clearNightState()
	g.CurrentNightRole = firstAliveNightRole(g)

	view := g.View()
	for _, p := range g.Players {
		o.emitter.ToClient(p.ID, EvRoleAssigned, roleAssignedPayload{Role: p.Role.String(), GameState: view})
	}
	o.emitter.ToSession(g.ID, EvGameStarted, gameStartedPayload{
		Game:        view,
		CurrentRole: g.CurrentNightRole.String(),
		Message:     g.CurrentNightRole.TurnMessage(),
	})
	if g.CurrentNightRole == RoleWitch {
		o.sendWitchDeathInfo(g)
	}

	o.persist(s)
	log.Printf("Game %s started with %d players, night 1 begins with %s", g.ID, len(g.Players), g.CurrentNightRole)
}

// firstAliveNightRole walks the fixed night ordering and returns the first
// role that has a living holder, or RoleNone when none does.
func firstAliveNightRole(g *Game) Role {
	for _, role := range nightRoleOrder {
		if len(g.AliveWithRole(role)) > 0 {
			return role
		}
	}
	return RoleNone
}

func actionMessage(kind ActionKind, targetName string) string {
	messages := map[ActionKind]string{
		ActionKill:        "You chose to kill %s",
		ActionInvestigate: "You chose to investigate %s",
		ActionProtect:     "You chose to protect %s",
		ActionHeal:        "You chose to heal %s",
		ActionPoison:      "You chose to poison %s",
	}
	if m, ok := messages[kind]; ok {
		return fmt.Sprintf(m, targetName)
	}
	return fmt.Sprintf("You chose to %s %s", kind, targetName)
}

// SubmitNightAction validates and records a night action for the actor's
// current sub-turn. The action stays private: only the actor gets an ack.
func (o *Orchestrator) SubmitNightAction(clientID, gameID, action, targetID string) {
	s := o.lookup(gameID)
	if s == nil {
		o.clientError(clientID, "Game not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	if g.Phase != PhaseNight {
		o.clientError(clientID, "Invalid action or game phase")
		return
	}
	player := g.FindPlayer(clientID)
	if player == nil || !player.Alive {
		o.clientError(clientID, "Dead players cannot perform night actions")
		return
	}
	if player.Role != g.CurrentNightRole {
		o.clientError(clientID, "Not your turn")
		return
	}

	kind := ActionKind(action)
	if kind == ActionSkip {
		DebugLog("SubmitNightAction", "%s (%s) skipped their turn", player.Name, player.Role)
		o.emitter.ToClient(clientID, EvNightSubmitted, nightSubmittedPayload{
			Message: "You chose to skip your turn",
			Action:  string(ActionSkip),
		})
		return
	}
	if !player.Role.AllowsAction(kind) {
		o.clientError(clientID, "Invalid action for your role")
		return
	}

	// Potions are single-use for the whole match.
	if kind == ActionHeal && !player.Potions.Heal {
		o.clientError(clientID, "You have already used your heal potion")
		return
	}
	if kind == ActionPoison && !player.Potions.Poison {
		o.clientError(clientID, "You have already used your poison potion")
		return
	}

	target := g.FindPlayer(targetID)
	if target == nil || !target.Alive {
		o.clientError(clientID, "Cannot target dead players")
		return
	}
	if targetID == clientID && kind != ActionHeal {
		o.clientError(clientID, "You cannot target yourself")
		return
	}
	// The heal potion only works on whoever the werewolves marked for
	// death tonight.
	if kind == ActionHeal {
		marked := killTarget(g)
		if marked == "" {
			o.clientError(clientID, "No one is marked for death tonight")
			return
		}
		if targetID != marked {
			o.clientError(clientID, "You can only heal the werewolves' victim")
			return
		}
	}

	g.recordNightAction(clientID, kind, targetID, player.Role)
	switch kind {
	case ActionHeal:
		player.Potions.Heal = false
	case ActionPoison:
		player.Potions.Poison = false
	}

	ack := nightSubmittedPayload{
		Message:    actionMessage(kind, target.Name),
		Action:     string(kind),
		TargetName: target.Name,
	}
	if player.Role == RoleSeer {
		ack.TargetRole = target.Role.String()
	}
	if player.Role == RoleWitch {
		heal, poison := player.Potions.Heal, player.Potions.Poison
		ack.HasHealPotion = &heal
		ack.HasPoisonPotion = &poison
	}
	o.emitter.ToClient(clientID, EvNightSubmitted, ack)

	LogWSMessage("ACTION", player.Name, fmt.Sprintf("%s -> %s", kind, target.Name))
	o.persist(s)
}

// ConfirmNightAction marks the actor's sub-turn as done and advances the
// night when the active role is fully confirmed.
func (o *Orchestrator) ConfirmNightAction(clientID, gameID string) {
	s := o.lookup(gameID)
	if s == nil {
		o.clientError(clientID, "Game not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	if g.Phase != PhaseNight {
		o.clientError(clientID, "Invalid phase")
		return
	}
	player := g.FindPlayer(clientID)
	if player == nil {
		o.clientError(clientID, "Player not found")
		return
	}
	if !player.Alive {
		o.clientError(clientID, "Dead players cannot act")
		return
	}
	if player.Role != g.CurrentNightRole {
		o.clientError(clientID, "Not your turn")
		return
	}

	g.NightConfirms[clientID] = true
	o.emitter.ToClient(clientID, EvNightConfirmed, nightConfirmedPayload{Message: "Your action has been confirmed"})
	DebugLog("ConfirmNightAction", "%s (%s) confirmed", player.Name, player.Role)

	o.checkNightProgress(s)
}

// checkNightProgress advances the active night role once its required
// confirmations are in. Werewolves act as a pack: one confirmation from
// any living werewolf suffices. A role with no living holders auto-skips.
func (o *Orchestrator) checkNightProgress(s *session) {
	g := s.game
	role := g.CurrentNightRole
	if role == RoleNone {
		return
	}
	holders := g.AliveWithRole(role)
	if len(holders) == 0 {
		o.advanceNightRole(s)
		return
	}

	confirmed := 0
	for _, p := range holders {
		if g.NightConfirms[p.ID] {
			confirmed++
		}
	}
	required := len(holders)
	if role == RoleWerewolf {
		required = 1
	}
	if confirmed >= required {
		o.advanceNightRole(s)
	}
}

// advanceNightRole moves to the next role in the fixed ordering that has a
// living holder, or resolves the night when the ordering is exhausted.
func (o *Orchestrator) advanceNightRole(s *session) {
	g := s.game
	idx := -1
	for i, role := range nightRoleOrder {
		if role == g.CurrentNightRole {
			idx = i
			break
		}
	}
	for next := idx + 1; next < len(nightRoleOrder); next++ {
		role := nightRoleOrder[next]
		if len(g.AliveWithRole(role)) == 0 {
			DebugLog("advanceNightRole", "no living %s in game %s, skipping", role, g.ID)
			continue
		}
		g.CurrentNightRole = role
		if role == RoleWitch {
			o.sendWitchDeathInfo(g)
		}
		o.emitter.ToSession(g.ID, EvNightRoleTurn, nightRoleTurnPayload{
			CurrentRole: role.String(),
			Message:     role.TurnMessage(),
			Game:        g.View(),
		})
		o.persist(s)
		return
	}
	o.finishNight(s)
}

func (o *Orchestrator) sendWitchDeathInfo(g *Game) {
	for _, witch := range g.AliveWithRole(RoleWitch) {
		o.emitter.ToClient(witch.ID, EvWitchDeathInfo, witchDeathInfo(g, witch))
	}
}

// finishNight resolves the ledger, announces the day, and either ends the
// game or arms the discussion timer.
func (o *Orchestrator) finishNight(s *session) {
	g := s.game
	results := resolveNight(g)

	for _, r := range results.SeerResults {
		o.emitter.ToClient(r.SeerID, EvSeerResult, r)
	}
	o.emitter.ToSession(g.ID, EvDayPhaseStarted, dayPhasePayload{Game: g.View(), NightResults: results})

	for _, d := range results.Deaths {
		s.chronicle = append(s.chronicle, fmt.Sprintf("Night %d: %s the %s died (%s).", g.DayCount-1, d.Name, d.Role, d.Cause))
	}
	for _, save := range results.Saves {
		s.chronicle = append(s.chronicle, save)
	}
	if len(results.Deaths) > 0 {
		o.tellStory(s)
	}

	o.persist(s)

	if winner := evaluateWinner(g); winner != "" {
		o.schedule(s, o.revealDelay, PhaseDay, func(s *session) { o.endGame(s, winner) })
		return
	}
	o.schedule(s, o.dayDiscussion, PhaseDay, o.beginVoting)
}

// beginVoting is the day-to-voting transition, normally timer-driven.
func (o *Orchestrator) beginVoting(s *session) {
	g := s.game
	g.Phase = PhaseVoting
	g.clearVotes()
	o.emitter.ToSession(g.ID, EvVotingPhaseStarted, gamePayload{Game: g.View()})
	o.persist(s)
}

// SubmitVote records a living player's elimination vote. Resubmitting
// replaces the earlier choice until the round resolves.
func (o *Orchestrator) SubmitVote(clientID, gameID, targetID string) {
	s := o.lookup(gameID)
	if s == nil {
		o.clientError(clientID, "Game not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	if g.Phase != PhaseVoting {
		o.clientError(clientID, "Not in voting phase")
		return
	}
	voter := g.FindPlayer(clientID)
	if voter == nil || !voter.Alive {
		o.clientError(clientID, "Dead players cannot vote")
		return
	}
	if targetID == clientID {
		o.clientError(clientID, "You cannot vote for yourself")
		return
	}
	target := g.FindPlayer(targetID)
	if target == nil || !target.Alive {
		o.clientError(clientID, "Cannot vote for dead players")
		return
	}

	voter.VotedFor = targetID
	voter.HasVoted = true

	alive := g.AlivePlayers()
	voted := 0
	for _, p := range alive {
		if p.HasVoted {
			voted++
		}
	}
	o.emitter.ToSession(g.ID, EvVoteUpdate, voteUpdatePayload{VotedCount: voted, TotalCount: len(alive)})
	log.Printf("Game %s: %s voted for %s (%d/%d)", g.ID, voter.Name, target.Name, voted, len(alive))
	o.persist(s)

	if voted == len(alive) {
		o.finishVoting(s)
	}
}

// finishVoting tallies the round, reveals the eliminated role, and either
// ends the game or arms the return-to-night timer.
func (o *Orchestrator) finishVoting(s *session) {
	g := s.game
	result := tallyVotes(g)

	payload := votingResultsPayload{
		WasTie:     result.WasTie,
		VoteCounts: result.Counts,
		Game:       g.View(),
	}
	if result.Eliminated != nil {
		payload.EliminatedPlayer = &eliminatedPlayerPayload{
			Name: result.Eliminated.Name,
			Role: result.Eliminated.Role.String(),
		}
		s.chronicle = append(s.chronicle, fmt.Sprintf("Day %d: the village eliminated %s the %s.", g.DayCount-1, result.Eliminated.Name, result.Eliminated.Role))
	}
	o.emitter.ToSession(g.ID, EvVotingResults, payload)
	if result.Eliminated != nil {
		o.tellStory(s)
	}
	o.persist(s)

	if winner := evaluateWinner(g); winner != "" {
		o.schedule(s, o.revealDelay, PhaseVoting, func(s *session) { o.endGame(s, winner) })
		return
	}
	o.schedule(s, o.nightDelay, PhaseVoting, o.beginNight)
}

// beginNight opens a fresh night: clean ledger, first role in the fixed
// ordering with a living holder.
func (o *Orchestrator) beginNight(s *session) {
	g := s.game
	g.Phase = PhaseNight
	g.clearNightState()
	g.CurrentNightRole = firstAliveNightRole(g)

	o.emitter.ToSession(g.ID, EvNightRoleTurn, nightRoleTurnPayload{
		CurrentRole: g.CurrentNightRole.String(),
		Message:     g.CurrentNightRole.TurnMessage(),
		Game:        g.View(),
	})
	if g.CurrentNightRole == RoleWitch {
		o.sendWitchDeathInfo(g)
	}
	o.persist(s)
	log.Printf("Game %s: night %d begins with %s", g.ID, g.DayCount, g.CurrentNightRole)
}

func (o *Orchestrator) endGame(s *session, winner string) {
	g := s.game
	g.Phase = PhaseEnded
	g.Winner = winner

	payload := gameEndedPayload{Winner: winner, Game: g.View()}
	for _, p := range g.Players {
		payload.AllPlayerRoles = append(payload.AllPlayerRoles, playerRolePayload{
			Name:    p.Name,
			Role:    p.Role.String(),
			IsAlive: p.Alive,
		})
	}
	o.emitter.ToSession(g.ID, EvGameEnded, payload)
	o.persist(s)
	log.Printf("Game %s ended, winner: %s", g.ID, winner)
}

// ReturnToLobby resets an ended (or stuck) match back to the waiting
// phase. Host only. Cancels any pending phase timer first so a stale
// discussion or reveal timer cannot fire into the fresh lobby.
func (o *Orchestrator) ReturnToLobby(clientID, gameID string) {
	s := o.lookup(gameID)
	if s == nil {
		o.clientError(clientID, "Game not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	player := g.FindPlayer(clientID)
	if player == nil || !player.IsHost {
		o.clientError(clientID, "Only the host can restart the game")
		return
	}

	o.cancelTimer(s)
	g.ResetToLobby()
	s.chronicle = nil
	o.emitter.ToSession(g.ID, EvReturnedToLobby, gamePayload{Game: g.View()})
	o.persist(s)
	log.Printf("Game %s returned to lobby with %d players", g.ID, len(g.Players))
}

// LeaveGame is the explicit departure intent.
func (o *Orchestrator) LeaveGame(clientID, gameID string) {
	s := o.lookup(gameID)
	if s == nil {
		o.clientError(clientID, "Game not found")
		return
	}
	o.removeFromSession(s, clientID, EvPlayerLeft)
	o.mu.Lock()
	delete(o.byClient, clientID)
	o.mu.Unlock()
}

// Disconnect handles a torn-down connection: an implicit leave, plus
// role-history cleanup for that identity.
func (o *Orchestrator) Disconnect(clientID string) {
	o.mu.Lock()
	gameID := o.byClient[clientID]
	delete(o.byClient, clientID)
	o.history.Forget(clientID)
	o.mu.Unlock()

	if gameID == "" {
		return
	}
	s := o.lookup(gameID)
	if s == nil {
		return
	}
	o.removeFromSession(s, clientID, EvPlayerDisconnected)
}

// removeFromSession takes a player out of a session, promotes a new host
// if needed, and lets the phase progress rather than stall on a missing
// actor. An emptied session is removed atomically with respect to joins.
func (o *Orchestrator) removeFromSession(s *session, clientID, event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	player := g.RemovePlayer(clientID)
	if player == nil {
		return
	}
	o.emitter.Unsubscribe(clientID, g.ID)
	log.Printf("%s left game %s", player.Name, g.ID)

	if len(g.Players) == 0 {
		o.removeSession(s)
		return
	}

	payload := playerGonePayload{PlayerName: player.Name}
	if promoted := g.PromoteHost(); promoted != nil {
		payload.NewHost = promoted.Name
		log.Printf("Game %s: new host is %s", g.ID, promoted.Name)
	}
	payload.Players = g.View().Players
	o.emitter.ToSession(g.ID, event, payload)

	// The departure may have been the last required actor of the current
	// sub-turn or voting round.
	switch g.Phase {
	case PhaseNight:
		o.checkNightProgress(s)
	case PhaseVoting:
		alive := g.AlivePlayers()
		voted := 0
		for _, p := range alive {
			if p.HasVoted {
				voted++
			}
		}
		if len(alive) > 0 && voted == len(alive) {
			o.finishVoting(s)
		}
	}
	o.persist(s)
}
