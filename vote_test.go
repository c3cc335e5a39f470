package main

import "testing"

func votingGame() *Game {
	g := newGame("VOTE", defaultSettings(), &Player{ID: "a", Name: "Alice"})
	g.Players[0].Role = RoleWerewolf
	g.Players = append(g.Players,
		&Player{ID: "b", Name: "Bob", Role: RoleVillager, Alive: true},
		&Player{ID: "c", Name: "Cara", Role: RoleVillager, Alive: true},
		&Player{ID: "d", Name: "Dan", Role: RoleSeer, Alive: true},
	)
	g.Phase = PhaseVoting
	return g
}

func TestTallyVotesMajority(t *testing.T) {
	g := votingGame()
	g.FindPlayer("b").VotedFor = "a"
	g.FindPlayer("c").VotedFor = "a"
	g.FindPlayer("d").VotedFor = "a"
	g.FindPlayer("a").VotedFor = "b"

	result := tallyVotes(g)

	if result.WasTie {
		t.Fatal("majority vote reported as tie")
	}
	if result.Eliminated == nil || result.Eliminated.ID != "a" {
		t.Fatalf("eliminated = %+v, want Alice", result.Eliminated)
	}
	if g.FindPlayer("a").Alive {
		t.Error("eliminated player still alive")
	}
}

func TestTallyVotesTie(t *testing.T) {
	g := votingGame()
	g.FindPlayer("a").VotedFor = "b"
	g.FindPlayer("c").VotedFor = "b"
	g.FindPlayer("b").VotedFor = "a"
	g.FindPlayer("d").VotedFor = "a"

	result := tallyVotes(g)

	if !result.WasTie {
		t.Fatal("2-2 split not reported as tie")
	}
	if result.Eliminated != nil {
		t.Errorf("eliminated = %+v, want nobody on a tie", result.Eliminated)
	}
	for _, p := range g.Players {
		if !p.Alive {
			t.Errorf("%s died on a tied vote", p.Name)
		}
	}
}

func TestTallyVotesIgnoresDeadVoters(t *testing.T) {
	g := votingGame()
	dead := g.FindPlayer("d")
	dead.Alive = false
	dead.VotedFor = "a"
	g.FindPlayer("b").VotedFor = "c"
	g.FindPlayer("c").VotedFor = "b"
	g.FindPlayer("a").VotedFor = "b"

	result := tallyVotes(g)

	// Without the dead vote it is b:2 c:1, not a three-way mess.
	if result.WasTie {
		t.Fatal("unexpected tie")
	}
	if result.Eliminated == nil || result.Eliminated.ID != "b" {
		t.Fatalf("eliminated = %+v, want Bob", result.Eliminated)
	}
}

func TestTallyVotesClearsVoteState(t *testing.T) {
	g := votingGame()
	g.FindPlayer("b").VotedFor = "a"
	g.FindPlayer("b").HasVoted = true
	g.FindPlayer("c").VotedFor = "a"
	g.FindPlayer("c").HasVoted = true

	tallyVotes(g)

	for _, p := range g.Players {
		if p.VotedFor != "" || p.HasVoted {
			t.Errorf("%s vote state not cleared", p.Name)
		}
	}
}

func TestTallyVotesNoVotes(t *testing.T) {
	g := votingGame()
	result := tallyVotes(g)
	if result.Eliminated != nil || result.WasTie {
		t.Errorf("empty round: %+v", result)
	}
}
