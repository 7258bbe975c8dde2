package store

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"whodunit/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is the Postgres-backed Store. Every method is a single logical
// mutation or a snapshot read; only Reset and CreateGame span multiple
// statements and those run in a transaction.
type Gorm struct {
	conn *gorm.DB
}

func NewGorm(conn *gorm.DB) *Gorm {
	return &Gorm{conn: conn}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func gameFromRecord(record db.Game) Game {
	return Game{
		ID:         record.ID,
		GameType:   record.GameType,
		Phase:      record.Phase,
		HostPin:    record.HostPin,
		MinPlayers: record.MinPlayers,
		Round:      record.Round,
		ExpiresAt:  record.ExpiresAt,
	}
}

func playerFromRecord(record db.Player) Player {
	return Player{
		ID:        record.ID,
		GameID:    record.GameID,
		Name:      record.Name,
		IsHost:    record.IsHost,
		RoleKind:  record.RoleKind,
		RoleValue: record.RoleValue,
		Alive:     record.Alive,
		IPAddress: record.IPAddress,
		AvatarURL: record.AvatarURL,
		JoinedAt:  record.JoinedAt,
	}
}

func playerRecord(player Player) db.Player {
	return db.Player{
		ID:        player.ID,
		GameID:    player.GameID,
		Name:      player.Name,
		IsHost:    player.IsHost,
		RoleKind:  player.RoleKind,
		RoleValue: player.RoleValue,
		Alive:     player.Alive,
		IPAddress: player.IPAddress,
		AvatarURL: player.AvatarURL,
		JoinedAt:  player.JoinedAt,
	}
}

func (g *Gorm) CreateGame(game Game, host Player) error {
	return g.conn.Transaction(func(tx *gorm.DB) error {
		record := db.Game{
			ID:         game.ID,
			GameType:   game.GameType,
			Phase:      game.Phase,
			HostPin:    game.HostPin,
			MinPlayers: game.MinPlayers,
			Round:      game.Round,
			ExpiresAt:  game.ExpiresAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrIDCollision
			}
			return err
		}
		return tx.Create(playerRecordPtr(host)).Error
	})
}

func playerRecordPtr(player Player) *db.Player {
	record := playerRecord(player)
	return &record
}

func (g *Gorm) GetGame(gameID string) (Game, error) {
	var record db.Game
	if err := g.conn.First(&record, "id = ?", gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Game{}, ErrNotFound
		}
		return Game{}, err
	}
	return gameFromRecord(record), nil
}

func (g *Gorm) GetSnapshot(gameID string) (Snapshot, error) {
	game, err := g.GetGame(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Game: game}
	if snap.Players, err = g.ListPlayers(gameID); err != nil {
		return Snapshot{}, err
	}
	var clues []db.RevealedClue
	if err := g.conn.Where("game_id = ?", gameID).Order("clue_id").Find(&clues).Error; err != nil {
		return Snapshot{}, err
	}
	for _, clue := range clues {
		snap.Clues = append(snap.Clues, clue.ClueID)
	}
	var votes []db.Vote
	if err := g.conn.Where("game_id = ?", gameID).Order("round, voter_id").Find(&votes).Error; err != nil {
		return Snapshot{}, err
	}
	for _, vote := range votes {
		snap.Votes = append(snap.Votes, Vote{
			GameID:     vote.GameID,
			Round:      vote.Round,
			VoterID:    vote.VoterID,
			VotedForID: vote.VotedForID,
		})
	}
	return snap, nil
}

func (g *Gorm) ListPlayers(gameID string) ([]Player, error) {
	var records []db.Player
	if err := g.conn.Where("game_id = ?", gameID).Order("joined_at, id").Find(&records).Error; err != nil {
		return nil, err
	}
	players := make([]Player, 0, len(records))
	for _, record := range records {
		players = append(players, playerFromRecord(record))
	}
	return players, nil
}

func (g *Gorm) GetPlayer(gameID, playerID string) (Player, error) {
	var record db.Player
	err := g.conn.Where("game_id = ? AND id = ?", gameID, playerID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Player{}, ErrNotFound
		}
		return Player{}, err
	}
	return playerFromRecord(record), nil
}

func (g *Gorm) FindPlayerByName(gameID, name string) (Player, error) {
	var record db.Player
	err := g.conn.Where("game_id = ? AND LOWER(name) = LOWER(?)", gameID, name).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Player{}, ErrNotFound
		}
		return Player{}, err
	}
	return playerFromRecord(record), nil
}

func (g *Gorm) FindPlayerByIP(gameID, ip string) (Player, error) {
	if ip == "" {
		return Player{}, ErrNotFound
	}
	var record db.Player
	err := g.conn.Where("game_id = ? AND ip_address = ?", gameID, ip).
		Order("joined_at").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Player{}, ErrNotFound
		}
		return Player{}, err
	}
	return playerFromRecord(record), nil
}

func (g *Gorm) AddPlayer(player Player) error {
	if err := g.conn.Create(playerRecordPtr(player)).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (g *Gorm) DeletePlayer(gameID, playerID string) error {
	result := g.conn.Where("game_id = ? AND id = ?", gameID, playerID).Delete(&db.Player{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) SetPhase(gameID, phase string) error {
	return g.updateGameColumn(gameID, "phase", phase)
}

func (g *Gorm) SetRound(gameID string, round int) error {
	return g.updateGameColumn(gameID, "round", round)
}

func (g *Gorm) updateGameColumn(gameID, column string, value any) error {
	result := g.conn.Model(&db.Game{}).Where("id = ?", gameID).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) AssignRole(gameID, playerID, kind, value string) error {
	result := g.conn.Model(&db.Player{}).
		Where("game_id = ? AND id = ?", gameID, playerID).
		Updates(map[string]any{"role_kind": kind, "role_value": value})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) SetAlive(gameID, playerID string, alive bool) error {
	result := g.conn.Model(&db.Player{}).
		Where("game_id = ? AND id = ?", gameID, playerID).
		Update("alive", alive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) RevealClue(gameID, clueID string) error {
	record := db.RevealedClue{GameID: gameID, ClueID: clueID}
	return g.conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}

func (g *Gorm) RecordKick(gameID, name string) error {
	record := db.KickedName{GameID: gameID, Name: normalizeKickedName(name)}
	return g.conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}

func (g *Gorm) IsKicked(gameID, name string) (bool, error) {
	var count int64
	err := g.conn.Model(&db.KickedName{}).
		Where("game_id = ? AND name = ?", gameID, normalizeKickedName(name)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (g *Gorm) UpsertVote(vote Vote) error {
	record := db.Vote{
		GameID:     vote.GameID,
		Round:      vote.Round,
		VoterID:    vote.VoterID,
		VotedForID: vote.VotedForID,
	}
	return g.conn.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "game_id"},
			{Name: "round"},
			{Name: "voter_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"voted_for_id", "updated_at"}),
	}).Create(&record).Error
}

func (g *Gorm) VotesForRound(gameID string, round int) ([]Vote, error) {
	var records []db.Vote
	err := g.conn.Where("game_id = ? AND round = ?", gameID, round).
		Order("voter_id").Find(&records).Error
	if err != nil {
		return nil, err
	}
	votes := make([]Vote, 0, len(records))
	for _, record := range records {
		votes = append(votes, Vote{
			GameID:     record.GameID,
			Round:      record.Round,
			VoterID:    record.VoterID,
			VotedForID: record.VotedForID,
		})
	}
	return votes, nil
}

func (g *Gorm) Reset(gameID, lobbyPhase string) error {
	return g.conn.Transaction(func(tx *gorm.DB) error {
		var game db.Game
		if err := tx.First(&game, "id = ?", gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("game_id = ? AND is_host = false", gameID).Delete(&db.Player{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.Player{}).Where("game_id = ?", gameID).
			Updates(map[string]any{"role_kind": "", "role_value": "", "alive": true}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&db.RevealedClue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&db.KickedName{}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Game{}).Where("id = ?", gameID).
			Updates(map[string]any{"phase": lobbyPhase, "round": 0}).Error
	})
}

func (g *Gorm) DeleteGame(gameID string) error {
	result := g.conn.Delete(&db.Game{}, "id = ?", gameID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) DeleteExpired(now time.Time) (int, error) {
	result := g.conn.Where("expires_at < ?", now).Delete(&db.Game{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (g *Gorm) AppendEvent(gameID, eventType string, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		GameID:  gameID,
		Type:    eventType,
		Payload: datatypes.JSON(raw),
	}
	return g.conn.Create(&record).Error
}

func normalizeKickedName(name string) string {
	return strings.ToLower(name)
}
