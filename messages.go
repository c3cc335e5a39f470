package main

// Client-to-server events.
const (
	EvCreateGame    = "create-game"
	EvJoinGame      = "join-game"
	EvStartGame     = "start-game"
	EvVote          = "vote"
	EvNightAction   = "night-action"
	EvNightConfirm  = "night-action-confirm"
	EvReturnToLobby = "return-to-lobby"
	EvLeaveGame     = "leave-game"
)

// Server-to-client events.
const (
	EvWelcome            = "welcome"
	EvError              = "error"
	EvGameCreated        = "game-created"
	EvPlayerJoined       = "player-joined"
	EvGameStarted        = "game-started"
	EvRoleAssigned       = "role-assigned"
	EvNightRoleTurn      = "night-role-turn"
	EvNightSubmitted     = "night-action-submitted"
	EvNightConfirmed     = "night-action-confirmed"
	EvWitchDeathInfo     = "witch-death-info"
	EvSeerResult         = "seer-result"
	EvDayPhaseStarted    = "day-phase-started"
	EvVotingPhaseStarted = "voting-phase-started"
	EvVoteUpdate         = "vote-update"
	EvVotingResults      = "voting-results"
	EvGameEnded          = "game-ended"
	EvReturnedToLobby    = "returned-to-lobby"
	EvPlayerLeft         = "player-left"
	EvPlayerDisconnected = "player-disconnected"
	EvStoryUpdate        = "story-update"
)

// ClientMessage is the flat inbound frame. Fields beyond Event are
// populated per event type.
type ClientMessage struct {
	Event      string `json:"event"`
	GameID     string `json:"gameId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Action     string `json:"action,omitempty"`
	TargetID   string `json:"targetId,omitempty"`
}

// ServerMessage is the outbound frame: an event name plus its payload.
type ServerMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Payload shapes for the richer server events.

type welcomePayload struct {
	PlayerID string `json:"playerId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type gamePayload struct {
	Game GameView `json:"game"`
}

type gameStartedPayload struct {
	Game        GameView `json:"game"`
	CurrentRole string   `json:"currentRole"`
	Message     string   `json:"message"`
}

type roleAssignedPayload struct {
	Role      string   `json:"role"`
	GameState GameView `json:"gameState"`
}

type nightRoleTurnPayload struct {
	CurrentRole string   `json:"currentRole"`
	Message     string   `json:"message"`
	Game        GameView `json:"game"`
}

type nightConfirmedPayload struct {
	Message string `json:"message"`
}

type nightSubmittedPayload struct {
	Message    string `json:"message"`
	Action     string `json:"action"`
	TargetName string `json:"targetName,omitempty"`
	TargetRole string `json:"targetRole,omitempty"`
	// Potion flags are present only when the actor is the witch.
	HasHealPotion   *bool `json:"hasHealPotion,omitempty"`
	HasPoisonPotion *bool `json:"hasPoisonPotion,omitempty"`
}

type dayPhasePayload struct {
	Game         GameView     `json:"game"`
	NightResults NightResults `json:"nightResults"`
}

type voteUpdatePayload struct {
	VotedCount int `json:"votedCount"`
	TotalCount int `json:"totalCount"`
}

type eliminatedPlayerPayload struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type votingResultsPayload struct {
	EliminatedPlayer *eliminatedPlayerPayload `json:"eliminatedPlayer"`
	WasTie           bool                     `json:"wasTie"`
	VoteCounts       []VoteCount              `json:"voteCounts"`
	Game             GameView                 `json:"game"`
}

type playerRolePayload struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsAlive bool   `json:"isAlive"`
}

type gameEndedPayload struct {
	Winner         string              `json:"winner"`
	Game           GameView            `json:"game"`
	AllPlayerRoles []playerRolePayload `json:"allPlayerRoles"`
}

type playerGonePayload struct {
	PlayerName string       `json:"playerName"`
	Players    []PlayerView `json:"players"`
	NewHost    string       `json:"newHost,omitempty"`
}

type storyPayload struct {
	Story string `json:"story"`
}
