package db

import (
	"time"

	"gorm.io/datatypes"
)

type GameState struct {
	SessionCode      string `gorm:"primaryKey;size:12"`
	AdminID          string `gorm:"size:64"`
	Phase            string `gorm:"size:32;not null"`
	CurrentRound     string `gorm:"size:16"`
	RoundNumber      int    `gorm:"not null;default:0"`
	SelectedPlayers  datatypes.JSONSlice[string]
	TimerStartedAt   *time.Time
	TimerDuration    int `gorm:"not null"`
	RoundWinners     datatypes.JSONSlice[string]
	EasyRoundPlayers datatypes.JSONSlice[string]
	CategoryDescr    string    `gorm:"size:512"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (GameState) TableName() string { return "game_state" }

type Player struct {
	ID          string    `gorm:"primaryKey;size:64"`
	SessionCode string    `gorm:"primaryKey;size:12;index"`
	Name        string    `gorm:"size:64;not null"`
	Icon        string    `gorm:"size:16"`
	Score       int       `gorm:"not null;default:0"`
	JoinedAt    time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Submission struct {
	ID          string `gorm:"primaryKey;size:64"`
	SessionCode string `gorm:"primaryKey;size:12;index"`
	PlayerID    string `gorm:"size:64;not null;index"`
	ImageURL    string `gorm:"size:1024;not null"`
	UploadedAt  time.Time
	Votes       datatypes.JSONSlice[string]
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Category struct {
	ID         uint    `gorm:"primaryKey"`
	RoundTier  *string `gorm:"size:16;index"`
	ImageDescr string  `gorm:"size:512;not null"`
	UploadedAt time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
