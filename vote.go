package main

import "log"

// VoteCount is one tallied target for the voting-results broadcast.
type VoteCount struct {
	PlayerName string `json:"playerName"`
	Votes      int    `json:"votes"`
}

// VoteResult is the outcome of one voting round.
type VoteResult struct {
	Eliminated *Player
	WasTie     bool
	Counts     []VoteCount
}

// tallyVotes computes the plurality elimination over the living voters'
// current vote targets. The target with strictly more votes than every
// other is eliminated; a shared maximum is a tie and nobody is eliminated.
// Vote state is cleared for all players regardless of outcome; the caller
// applies the death and reveals the role in its broadcast.
func tallyVotes(g *Game) VoteResult {
	counts := make(map[string]int)
	for _, p := range g.Players {
		if p.Alive && p.VotedFor != "" {
			counts[p.VotedFor]++
		}
	}

	maxVotes := 0
	eliminatedID := ""
	tie := false
	for targetID, votes := range counts {
		switch {
		case votes > maxVotes:
			maxVotes = votes
			eliminatedID = targetID
			tie = false
		case votes == maxVotes && votes > 0:
			tie = true
		}
	}

	result := VoteResult{WasTie: tie}
	for targetID, votes := range counts {
		name := targetID
		if p := g.FindPlayer(targetID); p != nil {
			name = p.Name
		}
		result.Counts = append(result.Counts, VoteCount{PlayerName: name, Votes: votes})
	}

	if !tie && eliminatedID != "" {
		if p := g.FindPlayer(eliminatedID); p != nil {
			p.Alive = false
			result.Eliminated = p
			log.Printf("Game %s: village eliminated %s (%s) with %d votes", g.ID, p.Name, p.Role, maxVotes)
		}
	} else if tie {
		log.Printf("Game %s: vote tied at %d, no elimination", g.ID, maxVotes)
	}

	g.clearVotes()
	return result
}
