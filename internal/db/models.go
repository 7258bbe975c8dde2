package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID         string         `gorm:"primaryKey;size:12"`
	GameType   string         `gorm:"size:32;not null"`
	Phase      string         `gorm:"size:32;not null"`
	HostPin    string         `gorm:"size:8;not null"`
	MinPlayers int            `gorm:"not null;default:3"`
	Round      int            `gorm:"not null;default:0"`
	ExpiresAt  time.Time      `gorm:"index;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
	Players    []Player       `gorm:"constraint:OnDelete:CASCADE"`
	Clues      []RevealedClue `gorm:"constraint:OnDelete:CASCADE"`
	Votes      []Vote         `gorm:"constraint:OnDelete:CASCADE"`
	Kicks      []KickedName   `gorm:"constraint:OnDelete:CASCADE"`
	Events     []Event        `gorm:"constraint:OnDelete:CASCADE"`
}

type Player struct {
	ID        string    `gorm:"primaryKey;size:64"`
	GameID    string    `gorm:"size:12;index;not null;uniqueIndex:idx_players_game_name"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_name,expression:lower(name)"`
	IsHost    bool      `gorm:"not null;default:false"`
	RoleKind  string    `gorm:"size:16;not null;default:''"`
	RoleValue string    `gorm:"size:280;not null;default:''"`
	Alive     bool      `gorm:"not null;default:true"`
	IPAddress string    `gorm:"size:64;not null;default:''"`
	AvatarURL string    `gorm:"size:512;not null;default:''"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// RevealedClue rows are append-only until a reset; the composite key makes
// a repeated reveal a no-op insert.
type RevealedClue struct {
	GameID    string    `gorm:"primaryKey;size:12"`
	ClueID    string    `gorm:"primaryKey;size:64"`
	CreatedAt time.Time `gorm:"not null"`
}

type Vote struct {
	ID         uint      `gorm:"primaryKey"`
	GameID     string    `gorm:"size:12;index;not null;uniqueIndex:idx_votes_game_round_voter"`
	Round      int       `gorm:"not null;uniqueIndex:idx_votes_game_round_voter"`
	VoterID    string    `gorm:"size:64;not null;uniqueIndex:idx_votes_game_round_voter"`
	VotedForID string    `gorm:"size:64;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// KickedName blocks a removed player's name from rejoining until a reset.
type KickedName struct {
	GameID    string    `gorm:"primaryKey;size:12"`
	Name      string    `gorm:"primaryKey;size:64"`
	CreatedAt time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    string         `gorm:"size:12;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
