package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"whodunit/internal/config"
	"whodunit/internal/content"
	"whodunit/internal/ident"
	"whodunit/internal/store"
)

const createRetries = 5

// Sessions drives the game session state machine on top of the durable
// store. Handlers construct one per process; all methods are safe for
// concurrent use as long as the store is.
type Sessions struct {
	store   store.Store
	content content.Source
	cfg     config.Config
	rng     *rand.Rand
	now     func() time.Time
}

func NewSessions(st store.Store, src content.Source, cfg config.Config) *Sessions {
	return &Sessions{
		store:   st,
		content: src,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type CreateResult struct {
	Game store.Game
	Host store.Player
}

// Create starts a new session: a game row plus its host player. Game id
// collisions are rare and retried with a fresh id rather than overwriting.
func (s *Sessions) Create(gameType string, minPlayers int, hostName, hostIP string) (CreateResult, error) {
	def, err := DefinitionFor(gameType, s.content)
	if err != nil {
		return CreateResult{}, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	name, err := ValidateName(hostName)
	if err != nil {
		return CreateResult{}, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	if minPlayers <= 0 {
		minPlayers = s.cfg.DefaultMinPlayers
	}
	now := s.now()
	for attempt := 0; attempt < createRetries; attempt++ {
		game := store.Game{
			ID:         ident.NewGameID(),
			GameType:   gameType,
			Phase:      def.Initial,
			HostPin:    ident.NewPin(),
			MinPlayers: minPlayers,
			ExpiresAt:  now.Add(time.Duration(s.cfg.GameTTLHours) * time.Hour),
		}
		host := store.Player{
			ID:        ident.NewPlayerID(),
			GameID:    game.ID,
			Name:      name,
			IsHost:    true,
			Alive:     true,
			IPAddress: hostIP,
			JoinedAt:  now,
		}
		err := s.store.CreateGame(game, host)
		if errors.Is(err, store.ErrIDCollision) {
			continue
		}
		if err != nil {
			return CreateResult{}, err
		}
		_ = s.store.AppendEvent(game.ID, "session_created", map[string]any{
			"game_type": gameType,
			"host":      name,
		})
		return CreateResult{Game: game, Host: host}, nil
	}
	return CreateResult{}, store.ErrIDCollision
}

// Snapshot is the read side of the polling contract.
func (s *Sessions) Snapshot(gameID string) (store.Snapshot, error) {
	return s.store.GetSnapshot(gameID)
}

// Join adds a player, or hands back the player already registered for this
// name and address. A name held by a different identity is a conflict; a
// kicked name stays out until the host resets.
func (s *Sessions) Join(gameID, name, ip, avatarURL string) (store.Player, error) {
	trimmed, err := ValidateName(name)
	if err != nil {
		return store.Player{}, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	game, err := s.store.GetGame(gameID)
	if err != nil {
		return store.Player{}, err
	}
	if existing, err := s.store.FindPlayerByName(gameID, trimmed); err == nil {
		if existing.IPAddress == ip {
			return existing, nil
		}
		return store.Player{}, fmt.Errorf("name %q is taken: %w", trimmed, store.ErrConflict)
	}
	if s.cfg.JoinIPOnce {
		if existing, err := s.store.FindPlayerByIP(gameID, ip); err == nil {
			return existing, nil
		}
	}
	if kicked, err := s.store.IsKicked(gameID, trimmed); err == nil && kicked {
		return store.Player{}, fmt.Errorf("player was removed: %w", store.ErrConflict)
	}
	def, err := DefinitionFor(game.GameType, s.content)
	if err != nil {
		return store.Player{}, err
	}
	if game.Phase != def.Initial {
		return store.Player{}, fmt.Errorf("game already started: %w", store.ErrConflict)
	}
	player := store.Player{
		ID:        ident.NewPlayerID(),
		GameID:    gameID,
		Name:      trimmed,
		Alive:     true,
		IPAddress: ip,
		AvatarURL: avatarURL,
		JoinedAt:  s.now(),
	}
	if err := s.store.AddPlayer(player); err != nil {
		return store.Player{}, err
	}
	_ = s.store.AppendEvent(gameID, "player_joined", map[string]any{
		"player_id": player.ID,
		"name":      trimmed,
	})
	return player, nil
}

// SetPhase persists a host-declared phase. For narrative game types the
// manifest owns transition legality and the engine only refuses phases the
// manifest never names; the imposter graph is enforced because its
// elimination step is computed, not declared.
func (s *Sessions) SetPhase(gameID, pin, phase string) error {
	game, err := s.requireHost(gameID, pin)
	if err != nil {
		return err
	}
	def, err := DefinitionFor(game.GameType, s.content)
	if err != nil {
		return err
	}
	if !def.CanTransition(game.Phase, phase) {
		return fmt.Errorf("phase %q not reachable from %q: %w", phase, game.Phase, ErrInvalidInput)
	}
	if err := s.store.SetPhase(gameID, phase); err != nil {
		return err
	}
	_ = s.store.AppendEvent(gameID, "phase_set", map[string]any{
		"from": game.Phase,
		"to":   phase,
	})
	return nil
}

// AssignCharacter pins a narrative character onto a player. Repeat calls
// with the same arguments are no-ops by construction.
func (s *Sessions) AssignCharacter(gameID, pin, playerID, characterID string) error {
	if _, err := s.requireHost(gameID, pin); err != nil {
		return err
	}
	if strings.TrimSpace(characterID) == "" {
		return fmt.Errorf("character id is required: %w", ErrInvalidInput)
	}
	role := CharacterRole(characterID)
	if err := s.store.AssignRole(gameID, playerID, string(role.Kind), role.Value); err != nil {
		return err
	}
	_ = s.store.AppendEvent(gameID, "character_assigned", map[string]any{
		"player_id":    playerID,
		"character_id": characterID,
	})
	return nil
}

// RevealClue marks a clue revealed. Reveals are one-way and idempotent;
// duplicates leave exactly one row.
func (s *Sessions) RevealClue(gameID, pin, clueID string) error {
	if _, err := s.requireHost(gameID, pin); err != nil {
		return err
	}
	if strings.TrimSpace(clueID) == "" {
		return fmt.Errorf("clue id is required: %w", ErrInvalidInput)
	}
	if err := s.store.RevealClue(gameID, clueID); err != nil {
		return err
	}
	_ = s.store.AppendEvent(gameID, "clue_revealed", map[string]any{
		"clue_id": clueID,
	})
	return nil
}

// Kick removes a player and blocks the name from rejoining. The host cannot
// be kicked.
func (s *Sessions) Kick(gameID, pin, playerID string) error {
	if _, err := s.requireHost(gameID, pin); err != nil {
		return err
	}
	player, err := s.store.GetPlayer(gameID, playerID)
	if err != nil {
		return err
	}
	if player.IsHost {
		return fmt.Errorf("cannot kick the host: %w", ErrInvalidInput)
	}
	if err := s.store.DeletePlayer(gameID, playerID); err != nil {
		return err
	}
	_ = s.store.RecordKick(gameID, player.Name)
	_ = s.store.AppendEvent(gameID, "player_kicked", map[string]any{
		"player_id": playerID,
		"name":      player.Name,
	})
	return nil
}

// Reset returns the session to the lobby: non-host players, clues, votes,
// and kick records are cleared while the game row, its id, its pin, and the
// host player survive.
func (s *Sessions) Reset(gameID, pin string) error {
	game, err := s.requireHost(gameID, pin)
	if err != nil {
		return err
	}
	def, err := DefinitionFor(game.GameType, s.content)
	if err != nil {
		return err
	}
	if err := s.store.Reset(gameID, def.Initial); err != nil {
		return err
	}
	_ = s.store.AppendEvent(gameID, "session_reset", nil)
	return nil
}

// StartRound deals imposter roles for a fresh round: a quarter of the
// non-host players (at least one) become saboteurs, the rest share a secret
// word, and everyone comes back alive with the game in PLAYING.
func (s *Sessions) StartRound(gameID, pin string) error {
	game, err := s.requireHost(gameID, pin)
	if err != nil {
		return err
	}
	if game.GameType != content.GameTypeImposter {
		return fmt.Errorf("round start applies to the imposter variant: %w", ErrInvalidInput)
	}
	players, err := s.store.ListPlayers(gameID)
	if err != nil {
		return err
	}
	candidates := make([]store.Player, 0, len(players))
	for _, player := range players {
		if !player.IsHost {
			candidates = append(candidates, player)
		}
	}
	if len(candidates) < game.MinPlayers {
		return fmt.Errorf("need at least %d players: %w", game.MinPlayers, ErrInvalidInput)
	}
	words, err := s.content.Words(game.GameType)
	if err != nil {
		return err
	}
	roles := DealRoles(candidates, words, s.rng)
	for _, player := range candidates {
		role := roles[player.ID]
		if err := s.store.AssignRole(gameID, player.ID, string(role.Kind), role.Value); err != nil {
			return err
		}
		if err := s.store.SetAlive(gameID, player.ID, true); err != nil {
			return err
		}
	}
	if err := s.store.SetRound(gameID, game.Round+1); err != nil {
		return err
	}
	if err := s.store.SetPhase(gameID, PhasePlaying); err != nil {
		return err
	}
	_ = s.store.AppendEvent(gameID, "round_started", map[string]any{
		"round":     game.Round + 1,
		"saboteurs": SaboteurCount(len(candidates)),
	})
	return nil
}

// CastVote records or replaces the voter's vote for the current round. The
// voter and the target must both be living non-host players, and voting is
// only open during the VOTING phase.
func (s *Sessions) CastVote(gameID, voterID, votedForID string) error {
	game, err := s.store.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.Phase != PhaseVoting {
		return fmt.Errorf("voting is not open: %w", ErrInvalidInput)
	}
	voter, err := s.store.GetPlayer(gameID, voterID)
	if err != nil {
		return err
	}
	if voter.IsHost || !voter.Alive {
		return fmt.Errorf("voter cannot vote: %w", ErrInvalidInput)
	}
	target, err := s.store.GetPlayer(gameID, votedForID)
	if err != nil {
		return err
	}
	if target.IsHost || !target.Alive {
		return fmt.Errorf("vote target is not a living player: %w", ErrInvalidInput)
	}
	return s.store.UpsertVote(store.Vote{
		GameID:     gameID,
		Round:      game.Round,
		VoterID:    voterID,
		VotedForID: votedForID,
	})
}

// FinalizeVoting runs the elimination algorithm over the current round's
// votes and advances the game accordingly. A tie for the lead eliminates
// nobody and reopens voting; ties are never broken automatically. The host
// may finalize from VOTING directly or after declaring ELIMINATION.
func (s *Sessions) FinalizeVoting(gameID, pin string) (Elimination, error) {
	game, err := s.requireHost(gameID, pin)
	if err != nil {
		return Elimination{}, err
	}
	if game.Phase != PhaseVoting && game.Phase != PhaseElimination {
		return Elimination{}, fmt.Errorf("voting is not open: %w", ErrInvalidInput)
	}
	players, err := s.store.ListPlayers(gameID)
	if err != nil {
		return Elimination{}, err
	}
	votes, err := s.store.VotesForRound(gameID, game.Round)
	if err != nil {
		return Elimination{}, err
	}
	result := ResolveElimination(players, votes, game.Round, s.cfg.StrictSaboteurWin)
	if result.Eliminated != "" {
		if err := s.store.SetAlive(gameID, result.Eliminated, false); err != nil {
			return Elimination{}, err
		}
	}
	if err := s.store.SetRound(gameID, result.NextRound); err != nil {
		return Elimination{}, err
	}
	if err := s.store.SetPhase(gameID, result.NextPhase); err != nil {
		return Elimination{}, err
	}
	_ = s.store.AppendEvent(gameID, "voting_finalized", map[string]any{
		"round":      game.Round,
		"eliminated": result.Eliminated,
		"tie":        result.Tie,
		"winner":     string(result.Winner),
	})
	return result, nil
}

// DeleteExpired is the cleanup sweeper's single pass.
func (s *Sessions) DeleteExpired(now time.Time) (int, error) {
	return s.store.DeleteExpired(now)
}
