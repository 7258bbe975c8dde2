package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"whodunit/internal/content"
	"whodunit/internal/game"
	"whodunit/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	actionCreateSession = "CREATE_SESSION"
	actionJoin          = "JOIN"
	actionAdmin         = "ADMIN_ACTION"
	actionKick          = "KICK"
	actionCastVote      = "CAST_VOTE"

	subActionSetPhase        = "SET_PHASE"
	subActionAssignCharacter = "ASSIGN_CHARACTER"
	subActionRevealClue      = "REVEAL_CLUE"
	subActionReset           = "RESET"
	subActionStartRound      = "START_ROUND"
	subActionFinalizeVoting  = "FINALIZE_VOTING"
)

type actionRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type createSessionPayload struct {
	GameType   string `json:"gameType"`
	MinPlayers int    `json:"minPlayers"`
	Name       string `json:"name"`
}

type joinPayload struct {
	GameID    string `json:"gameId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

type adminPayload struct {
	GameID      string `json:"gameId"`
	Pin         string `json:"pin"`
	SubAction   string `json:"subAction"`
	Phase       string `json:"phase"`
	PlayerID    string `json:"playerId"`
	CharacterID string `json:"characterId"`
	ClueID      string `json:"clueId"`
}

type kickPayload struct {
	GameID   string `json:"gameId"`
	Pin      string `json:"pin"`
	PlayerID string `json:"playerId"`
}

type castVotePayload struct {
	GameID     string `json:"gameId"`
	VoterID    string `json:"voterId"`
	VotedForID string `json:"votedForId"`
}

func (s *Server) handleGetGame(c *gin.Context) {
	gameID := c.Query("gameId")
	if gameID == "" {
		writeError(c, game.ErrInvalidInput, "gameId is required")
		return
	}
	snap, err := s.sessions.Snapshot(gameID)
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, snapshotJSON(snap))
}

func (s *Server) handlePostGame(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, game.ErrInvalidInput, "malformed request body")
		return
	}
	if !s.limiter.allow(c.ClientIP() + ":" + req.Action) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}
	switch req.Action {
	case actionCreateSession:
		s.handleCreateSession(c, req.Payload)
	case actionJoin:
		s.handleJoin(c, req.Payload)
	case actionAdmin:
		s.handleAdminAction(c, req.Payload)
	case actionKick:
		s.handleKick(c, req.Payload)
	case actionCastVote:
		s.handleCastVote(c, req.Payload)
	default:
		writeError(c, game.ErrInvalidInput, "unknown action")
	}
}

func (s *Server) handleCreateSession(c *gin.Context, raw json.RawMessage) {
	var payload createSessionPayload
	if err := bindPayload(raw, &payload); err != nil {
		writeError(c, game.ErrInvalidInput, "malformed payload")
		return
	}
	result, err := s.sessions.Create(payload.GameType, payload.MinPlayers, payload.Name, c.ClientIP())
	if err != nil {
		writeError(c, err, "")
		return
	}
	log.Printf("session created game_id=%s game_type=%s", result.Game.ID, result.Game.GameType)
	c.JSON(http.StatusCreated, gin.H{
		"gameId":  result.Game.ID,
		"hostPin": result.Game.HostPin,
		"player":  playerJSON(result.Host),
	})
}

func (s *Server) handleJoin(c *gin.Context, raw json.RawMessage) {
	var payload joinPayload
	if err := bindPayload(raw, &payload); err != nil {
		writeError(c, game.ErrInvalidInput, "malformed payload")
		return
	}
	player, err := s.sessions.Join(payload.GameID, payload.Name, c.ClientIP(), payload.AvatarURL)
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": playerJSON(player)})
}

func (s *Server) handleAdminAction(c *gin.Context, raw json.RawMessage) {
	var payload adminPayload
	if err := bindPayload(raw, &payload); err != nil {
		writeError(c, game.ErrInvalidInput, "malformed payload")
		return
	}
	switch payload.SubAction {
	case subActionSetPhase:
		if err := s.sessions.SetPhase(payload.GameID, payload.Pin, payload.Phase); err != nil {
			writeError(c, err, "")
			return
		}
	case subActionAssignCharacter:
		if err := s.sessions.AssignCharacter(payload.GameID, payload.Pin, payload.PlayerID, payload.CharacterID); err != nil {
			writeError(c, err, "")
			return
		}
	case subActionRevealClue:
		if err := s.sessions.RevealClue(payload.GameID, payload.Pin, payload.ClueID); err != nil {
			writeError(c, err, "")
			return
		}
	case subActionReset:
		if err := s.sessions.Reset(payload.GameID, payload.Pin); err != nil {
			writeError(c, err, "")
			return
		}
	case subActionStartRound:
		if err := s.sessions.StartRound(payload.GameID, payload.Pin); err != nil {
			writeError(c, err, "")
			return
		}
	case subActionFinalizeVoting:
		result, err := s.sessions.FinalizeVoting(payload.GameID, payload.Pin)
		if err != nil {
			writeError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"eliminated": result.Eliminated,
			"tie":        result.Tie,
			"winner":     string(result.Winner),
			"phase":      result.NextPhase,
			"round":      result.NextRound,
		})
		return
	default:
		writeError(c, game.ErrInvalidInput, "unknown subAction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleKick(c *gin.Context, raw json.RawMessage) {
	var payload kickPayload
	if err := bindPayload(raw, &payload); err != nil {
		writeError(c, game.ErrInvalidInput, "malformed payload")
		return
	}
	if err := s.sessions.Kick(payload.GameID, payload.Pin, payload.PlayerID); err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCastVote(c *gin.Context, raw json.RawMessage) {
	var payload castVotePayload
	if err := bindPayload(raw, &payload); err != nil {
		writeError(c, game.ErrInvalidInput, "malformed payload")
		return
	}
	if err := s.sessions.CastVote(payload.GameID, payload.VoterID, payload.VotedForID); err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func bindPayload(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return errors.New("payload is required")
	}
	return json.Unmarshal(raw, dest)
}

// writeError maps the error taxonomy onto status codes and surfaces the
// message verbatim; the UI shows it and leaves prior state untouched.
func writeError(c *gin.Context, err error, message string) {
	if message == "" && err != nil {
		message = err.Error()
	}
	c.JSON(errorStatus(err), gin.H{"error": message})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidInput), errors.Is(err, content.ErrUnknownGameType):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrIDCollision), errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
