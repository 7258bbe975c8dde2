package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memGame struct {
	game    Game
	players []Player
	clues   map[string]time.Time
	votes   map[string]Vote
	kicked  map[string]struct{}
}

// Memory is the in-process Store used by tests and by dev runs without a
// database. All methods take the single mutex; games are tiny.
type Memory struct {
	mu    sync.Mutex
	games map[string]*memGame
}

func NewMemory() *Memory {
	return &Memory{games: make(map[string]*memGame)}
}

func voteKey(round int, voterID string) string {
	return fmt.Sprintf("%d:%s", round, voterID)
}

func (m *Memory) CreateGame(game Game, host Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[game.ID]; ok {
		return ErrIDCollision
	}
	m.games[game.ID] = &memGame{
		game:    game,
		players: []Player{host},
		clues:   make(map[string]time.Time),
		votes:   make(map[string]Vote),
		kicked:  make(map[string]struct{}),
	}
	return nil
}

func (m *Memory) GetGame(gameID string) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return Game{}, ErrNotFound
	}
	return entry.game, nil
}

func (m *Memory) GetSnapshot(gameID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	snap := Snapshot{
		Game:    entry.game,
		Players: append([]Player(nil), entry.players...),
	}
	for clueID := range entry.clues {
		snap.Clues = append(snap.Clues, clueID)
	}
	sort.Strings(snap.Clues)
	for _, vote := range entry.votes {
		snap.Votes = append(snap.Votes, vote)
	}
	sort.Slice(snap.Votes, func(i, j int) bool {
		if snap.Votes[i].Round != snap.Votes[j].Round {
			return snap.Votes[i].Round < snap.Votes[j].Round
		}
		return snap.Votes[i].VoterID < snap.Votes[j].VoterID
	})
	return snap, nil
}

func (m *Memory) ListPlayers(gameID string) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]Player(nil), entry.players...), nil
}

func (m *Memory) GetPlayer(gameID, playerID string) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return Player{}, ErrNotFound
	}
	for _, player := range entry.players {
		if player.ID == playerID {
			return player, nil
		}
	}
	return Player{}, ErrNotFound
}

func (m *Memory) FindPlayerByName(gameID, name string) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return Player{}, ErrNotFound
	}
	for _, player := range entry.players {
		if strings.EqualFold(player.Name, name) {
			return player, nil
		}
	}
	return Player{}, ErrNotFound
}

func (m *Memory) FindPlayerByIP(gameID, ip string) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return Player{}, ErrNotFound
	}
	if ip == "" {
		return Player{}, ErrNotFound
	}
	for _, player := range entry.players {
		if player.IPAddress == ip {
			return player, nil
		}
	}
	return Player{}, ErrNotFound
}

func (m *Memory) AddPlayer(player Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[player.GameID]
	if !ok {
		return ErrNotFound
	}
	for _, existing := range entry.players {
		if strings.EqualFold(existing.Name, player.Name) {
			return ErrConflict
		}
	}
	entry.players = append(entry.players, player)
	return nil
}

func (m *Memory) DeletePlayer(gameID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	for i, player := range entry.players {
		if player.ID == playerID {
			entry.players = append(entry.players[:i], entry.players[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) SetPhase(gameID, phase string) error {
	return m.updateGame(gameID, func(game *Game) {
		game.Phase = phase
	})
}

func (m *Memory) SetRound(gameID string, round int) error {
	return m.updateGame(gameID, func(game *Game) {
		game.Round = round
	})
}

func (m *Memory) updateGame(gameID string, update func(game *Game)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	update(&entry.game)
	return nil
}

func (m *Memory) AssignRole(gameID, playerID, kind, value string) error {
	return m.updatePlayer(gameID, playerID, func(player *Player) {
		player.RoleKind = kind
		player.RoleValue = value
	})
}

func (m *Memory) SetAlive(gameID, playerID string, alive bool) error {
	return m.updatePlayer(gameID, playerID, func(player *Player) {
		player.Alive = alive
	})
}

func (m *Memory) updatePlayer(gameID, playerID string, update func(player *Player)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	for i := range entry.players {
		if entry.players[i].ID == playerID {
			update(&entry.players[i])
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) RevealClue(gameID, clueID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := entry.clues[clueID]; !ok {
		entry.clues[clueID] = time.Now().UTC()
	}
	return nil
}

func (m *Memory) RecordKick(gameID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	entry.kicked[strings.ToLower(name)] = struct{}{}
	return nil
}

func (m *Memory) IsKicked(gameID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return false, ErrNotFound
	}
	_, kicked := entry.kicked[strings.ToLower(name)]
	return kicked, nil
}

func (m *Memory) UpsertVote(vote Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[vote.GameID]
	if !ok {
		return ErrNotFound
	}
	entry.votes[voteKey(vote.Round, vote.VoterID)] = vote
	return nil
}

func (m *Memory) VotesForRound(gameID string, round int) ([]Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	var votes []Vote
	for _, vote := range entry.votes {
		if vote.Round == round {
			votes = append(votes, vote)
		}
	}
	sort.Slice(votes, func(i, j int) bool {
		return votes[i].VoterID < votes[j].VoterID
	})
	return votes, nil
}

func (m *Memory) Reset(gameID, lobbyPhase string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	var host []Player
	for _, player := range entry.players {
		if player.IsHost {
			player.RoleKind = ""
			player.RoleValue = ""
			player.Alive = true
			host = append(host, player)
		}
	}
	entry.players = host
	entry.clues = make(map[string]time.Time)
	entry.votes = make(map[string]Vote)
	entry.kicked = make(map[string]struct{})
	entry.game.Phase = lobbyPhase
	entry.game.Round = 0
	return nil
}

func (m *Memory) DeleteGame(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return ErrNotFound
	}
	delete(m.games, gameID)
	return nil
}

func (m *Memory) DeleteExpired(now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, entry := range m.games {
		if entry.game.ExpiresAt.Before(now) {
			delete(m.games, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) AppendEvent(gameID, eventType string, payload map[string]any) error {
	return nil
}
