package game

import (
	"math/rand"

	"whodunit/internal/store"
)

// SaboteurCount returns how many saboteurs a round deals for the given
// number of non-host players: a quarter, rounded down, never fewer than one.
func SaboteurCount(playerCount int) int {
	count := playerCount / 4
	if count < 1 {
		count = 1
	}
	return count
}

// DealRoles splits the players into saboteurs and genuine token holders.
// Saboteurs are drawn uniformly; everyone else shares one secret word from
// the pool. The input slice is not modified.
func DealRoles(players []store.Player, words []string, rng *rand.Rand) map[string]Role {
	ids := make([]string, 0, len(players))
	for _, player := range players {
		ids = append(ids, player.ID)
	}
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	token := ""
	if len(words) > 0 {
		token = words[rng.Intn(len(words))]
	}
	roles := make(map[string]Role, len(ids))
	saboteurs := SaboteurCount(len(ids))
	for i, id := range ids {
		if i < saboteurs {
			roles[id] = SaboteurRole()
		} else {
			roles[id] = GenuineRole(token)
		}
	}
	return roles
}

// Tally counts votes per candidate and finds the leaders. Leaders holds every
// candidate whose count equals the maximum; more than one leader is a tie.
type Tally struct {
	Counts  map[string]int
	Max     int
	Leaders []string
}

func TallyVotes(votes []store.Vote) Tally {
	tally := Tally{Counts: make(map[string]int)}
	for _, vote := range votes {
		tally.Counts[vote.VotedForID]++
	}
	for candidate, count := range tally.Counts {
		switch {
		case count > tally.Max:
			tally.Max = count
			tally.Leaders = []string{candidate}
		case count == tally.Max:
			tally.Leaders = append(tally.Leaders, candidate)
		}
	}
	return tally
}

// Winner identifies the faction that has won, if any.
type Winner string

const (
	WinnerNone      Winner = ""
	WinnerSaboteurs Winner = "saboteurs"
	WinnerGenuine   Winner = "genuine"
)

// CheckWin evaluates the win conditions over the full player list. Genuine
// players win as soon as no saboteur is alive. Saboteurs win either when they
// are not outnumbered by living genuine players (strict) or when the number
// of eliminated genuine players has reached the initial saboteur count
// (the default configuration).
func CheckWin(players []store.Player, strict bool) Winner {
	var saboteursAlive, saboteursTotal, genuineAlive, genuineDead int
	for _, player := range players {
		if player.IsHost {
			continue
		}
		switch RoleKind(player.RoleKind) {
		case RoleSaboteur:
			saboteursTotal++
			if player.Alive {
				saboteursAlive++
			}
		case RoleGenuine:
			if player.Alive {
				genuineAlive++
			} else {
				genuineDead++
			}
		}
	}
	if saboteursTotal == 0 {
		return WinnerNone
	}
	if saboteursAlive == 0 {
		return WinnerGenuine
	}
	if strict {
		if saboteursAlive >= genuineAlive {
			return WinnerSaboteurs
		}
	} else if genuineDead >= saboteursTotal {
		return WinnerSaboteurs
	}
	return WinnerNone
}

// Elimination is the outcome of finalizing one voting round.
type Elimination struct {
	Tally      Tally
	Eliminated string
	Tie        bool
	Winner     Winner
	NextPhase  string
	NextRound  int
}

// ResolveElimination runs the voting algorithm for the current round. A tie
// for the lead (including a round with no votes at all) eliminates nobody and
// sends the game back to VOTING for a revote; a unique leader is eliminated
// and the game either finishes or returns to PLAYING. The round counter
// advances in every case.
func ResolveElimination(players []store.Player, votes []store.Vote, round int, strict bool) Elimination {
	result := Elimination{
		Tally:     TallyVotes(votes),
		NextRound: round + 1,
	}
	if len(result.Tally.Leaders) != 1 {
		result.Tie = true
		result.NextPhase = PhaseVoting
		return result
	}
	result.Eliminated = result.Tally.Leaders[0]
	adjusted := make([]store.Player, len(players))
	copy(adjusted, players)
	for i := range adjusted {
		if adjusted[i].ID == result.Eliminated {
			adjusted[i].Alive = false
		}
	}
	result.Winner = CheckWin(adjusted, strict)
	if result.Winner != WinnerNone {
		result.NextPhase = PhaseFinished
	} else {
		result.NextPhase = PhasePlaying
	}
	return result
}
