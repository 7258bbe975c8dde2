// Package store is the durable query layer for games, players, revealed
// clues, and votes. Two implementations exist: a Postgres-backed one for
// production and a mutex-guarded in-memory one for tests and DATABASE_URL-less
// development runs.
package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound reports a missing game or player.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a duplicate player name within a game.
	ErrConflict = errors.New("already exists")
	// ErrIDCollision reports a game id insert collision; callers retry with
	// a fresh id rather than overwriting.
	ErrIDCollision = errors.New("game id collision")
	// ErrUnavailable reports an underlying store failure.
	ErrUnavailable = errors.New("store unavailable")
)

type Game struct {
	ID         string
	GameType   string
	Phase      string
	HostPin    string
	MinPlayers int
	Round      int
	ExpiresAt  time.Time
}

type Player struct {
	ID        string
	GameID    string
	Name      string
	IsHost    bool
	RoleKind  string
	RoleValue string
	Alive     bool
	IPAddress string
	AvatarURL string
	JoinedAt  time.Time
}

type Vote struct {
	GameID     string
	Round      int
	VoterID    string
	VotedForID string
}

// Snapshot is the consistent read unit handed to pollers: the game row plus
// all dependent rows, assembled without a cross-table transaction.
type Snapshot struct {
	Game    Game
	Players []Player
	Clues   []string
	Votes   []Vote
}

type Store interface {
	// CreateGame inserts the game row and its host player. A duplicate game
	// id surfaces as ErrIDCollision.
	CreateGame(game Game, host Player) error
	GetGame(gameID string) (Game, error)
	GetSnapshot(gameID string) (Snapshot, error)
	ListPlayers(gameID string) ([]Player, error)
	GetPlayer(gameID, playerID string) (Player, error)
	// FindPlayerByName matches case-insensitively within the game.
	FindPlayerByName(gameID, name string) (Player, error)
	FindPlayerByIP(gameID, ip string) (Player, error)
	// AddPlayer inserts a player; a name already taken in the game surfaces
	// as ErrConflict.
	AddPlayer(player Player) error
	DeletePlayer(gameID, playerID string) error

	SetPhase(gameID, phase string) error
	SetRound(gameID string, round int) error
	AssignRole(gameID, playerID, kind, value string) error
	SetAlive(gameID, playerID string, alive bool) error

	// RevealClue is idempotent: revealing the same clue twice leaves one row.
	RevealClue(gameID, clueID string) error

	RecordKick(gameID, name string) error
	IsKicked(gameID, name string) (bool, error)

	// UpsertVote overwrites a voter's previous vote within the same round.
	UpsertVote(vote Vote) error
	VotesForRound(gameID string, round int) ([]Vote, error)

	// Reset deletes all non-host players, clues, votes, and kick records,
	// and returns the game to phase LOBBY at round zero. The game row, its
	// id, its pin, and the host player survive.
	Reset(gameID, lobbyPhase string) error
	DeleteGame(gameID string) error
	// DeleteExpired removes games whose ExpiresAt is before now, cascading
	// to dependents. Returns the number of games removed.
	DeleteExpired(now time.Time) (int, error)

	// AppendEvent records an audit event; failures are the caller's to
	// ignore, the game state is already committed.
	AppendEvent(gameID, eventType string, payload map[string]any) error
}
