package main

import (
	"encoding/json"
	"fmt"
)

// Role is the closed set of roles a player can hold. RoleNone means the
// game has not been started yet (roles are only assigned when the session
// leaves the waiting phase).
type Role int

const (
	RoleNone Role = iota
	RoleVillager
	RoleWerewolf
	RoleSeer
	RoleGuard
	RoleWitch
	RoleMayor
)

// ActionKind is a night action a role may submit.
type ActionKind string

const (
	ActionKill        ActionKind = "kill"
	ActionInvestigate ActionKind = "investigate"
	ActionProtect     ActionKind = "protect"
	ActionHeal        ActionKind = "heal"
	ActionPoison      ActionKind = "poison"
	ActionSkip        ActionKind = "skip"
)

// nightRoleOrder is the fixed sub-turn ordering within a night. Roles with
// no living holder are skipped automatically.
var nightRoleOrder = []Role{RoleGuard, RoleSeer, RoleWerewolf, RoleWitch}

type roleInfo struct {
	name        string
	team        string // "werewolf" or "villager"
	description string
	turnMessage string       // shown when this role's night sub-turn begins
	nightKinds  []ActionKind // legal night actions, nil for day-only roles
}

var roleCatalog = map[Role]roleInfo{
	RoleVillager: {
		name:        "villager",
		team:        "villager",
		description: "No special powers, relies on deduction and discussion.",
	},
	RoleWerewolf: {
		name:        "werewolf",
		team:        "werewolf",
		description: "Knows other werewolves, votes to kill villagers at night.",
		turnMessage: "Werewolves, choose your victim...",
		nightKinds:  []ActionKind{ActionKill},
	},
	RoleSeer: {
		name:        "seer",
		team:        "villager",
		description: "Can investigate one player per night to learn if they are a werewolf.",
		turnMessage: "Seer, choose someone to investigate...",
		nightKinds:  []ActionKind{ActionInvestigate},
	},
	RoleGuard: {
		name:        "guard",
		team:        "villager",
		description: "Can protect one player from the werewolf attack each night.",
		turnMessage: "Guard, choose someone to protect...",
		nightKinds:  []ActionKind{ActionProtect},
	},
	RoleWitch: {
		name:        "witch",
		team:        "villager",
		description: "Has one heal potion and one poison potion to use during the game.",
		turnMessage: "Witch, use your potions wisely...",
		nightKinds:  []ActionKind{ActionHeal, ActionPoison},
	},
	RoleMayor: {
		name:        "mayor",
		team:        "villager",
		description: "A respected villager whose word carries weight in the village square.",
	},
}

func (r Role) String() string {
	if info, ok := roleCatalog[r]; ok {
		return info.name
	}
	return ""
}

// Team returns "werewolf" or "villager". RoleNone has no team.
func (r Role) Team() string {
	return roleCatalog[r].team
}

func (r Role) TurnMessage() string {
	return roleCatalog[r].turnMessage
}

// ActsAtNight reports whether the role takes part in the night sub-turn order.
func (r Role) ActsAtNight() bool {
	return len(roleCatalog[r].nightKinds) > 0
}

// AllowsAction reports whether kind is a legal night action for the role.
// Skip is legal for any role that acts at night.
func (r Role) AllowsAction(kind ActionKind) bool {
	if kind == ActionSkip {
		return r.ActsAtNight()
	}
	for _, k := range roleCatalog[r].nightKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func parseRole(s string) (Role, bool) {
	for r, info := range roleCatalog {
		if info.name == s {
			return r, true
		}
	}
	if s == "" {
		return RoleNone, true
	}
	return RoleNone, false
}

// MarshalJSON encodes the role as its wire name; RoleNone encodes as null so
// clients see an unassigned role, matching the persisted layout.
func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*r = RoleNone
		return nil
	}
	role, ok := parseRole(*s)
	if !ok {
		return fmt.Errorf("unknown role %q", *s)
	}
	*r = role
	return nil
}
