package server

import (
	"whodunit/internal/game"
	"whodunit/internal/store"

	"github.com/gin-gonic/gin"
)

// snapshotJSON is the polling payload. Clients are trusted to honor role
// confidentiality; hiding roles server-side is a non-goal.
func snapshotJSON(snap store.Snapshot) gin.H {
	players := make([]gin.H, 0, len(snap.Players))
	for _, player := range snap.Players {
		players = append(players, playerJSON(player))
	}
	clues := snap.Clues
	if clues == nil {
		clues = []string{}
	}
	votes := make([]gin.H, 0, len(snap.Votes))
	for _, vote := range snap.Votes {
		votes = append(votes, gin.H{
			"round":      vote.Round,
			"voterId":    vote.VoterID,
			"votedForId": vote.VotedForID,
		})
	}
	return gin.H{
		"gameId":        snap.Game.ID,
		"gameType":      snap.Game.GameType,
		"phase":         snap.Game.Phase,
		"minPlayers":    snap.Game.MinPlayers,
		"round":         snap.Game.Round,
		"players":       players,
		"revealedClues": clues,
		"votes":         votes,
	}
}

func playerJSON(player store.Player) gin.H {
	role := game.RoleOf(player.RoleKind, player.RoleValue)
	var characterID any
	if role.Kind == game.RoleCharacter {
		characterID = role.Value
	}
	entry := gin.H{
		"id":          player.ID,
		"name":        player.Name,
		"isHost":      player.IsHost,
		"isAlive":     player.Alive,
		"characterId": characterID,
		"avatarUrl":   player.AvatarURL,
	}
	if role.Assigned() {
		entry["role"] = gin.H{
			"kind":  string(role.Kind),
			"value": role.Value,
		}
	}
	return entry
}
