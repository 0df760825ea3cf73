package model

import (
	"encoding/json"
	"time"
)

// UserProgress is the per-user cumulative record. Counters only ever grow;
// the streak fields move according to the day-gap rules in the progress
// service. LastCompletedDate doubles as the replay guard for the day.
type UserProgress struct {
	ID                string          `json:"id" gorm:"primaryKey"`
	UserID            string          `json:"user_id" gorm:"unique;not null"`
	TotalQuizzes      int             `json:"total_quizzes" gorm:"default:0"`
	PerfectScores     int             `json:"perfect_scores" gorm:"default:0"`
	TotalXPEarned     int             `json:"total_xp_earned" gorm:"default:0"`
	CurrentStreak     int             `json:"current_streak" gorm:"default:0"`
	LongestStreak     int             `json:"longest_streak" gorm:"default:0"`
	LastCompletedDate string          `json:"last_completed_date"`                   // YYYY-MM-DD, empty until first completion
	CategoryStats     json.RawMessage `json:"category_stats" gorm:"type:text"`       // JSON object keyed by category
	Achievements      json.RawMessage `json:"achievements" gorm:"type:text"`         // JSON array of achievement ids
	SoundEnabled      bool            `json:"sound_enabled" gorm:"default:true"`
	MusicEnabled      bool            `json:"music_enabled" gorm:"default:true"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Achievement is a definition row; unlock predicates live in code and are
// matched by ID, so this table only carries display metadata.
type Achievement struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Category    string    `json:"category"` // sessions, streak, mastery
	BadgeURL    string    `json:"badge_url"`
	XPReward    int       `json:"xp_reward" gorm:"default:0"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserAchievement struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;index"`
	AchievementID string    `json:"achievement_id" gorm:"not null"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	CreatedAt     time.Time `json:"created_at"`

	Achievement Achievement `json:"achievement" gorm:"foreignKey:AchievementID"`
}

// ProgressMirror is the local fallback copy of the remote progress document,
// stored as serialized text exactly as it would be sent to a client. It is
// read only when the primary store is unreachable and is never authoritative.
type ProgressMirror struct {
	UserID    string    `json:"user_id" gorm:"primaryKey"`
	Payload   string    `json:"payload" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}
