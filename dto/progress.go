package dto

import "time"

type CategoryStat struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

type Settings struct {
	SoundEnabled bool `json:"soundEnabled"`
	MusicEnabled bool `json:"musicEnabled"`
}

// ProgressDocument is the persisted per-user document shape, shared by the
// primary store, the local mirror payload and the API response body.
type ProgressDocument struct {
	TotalQuizzes      int                     `json:"totalQuizzes"`
	PerfectScores     int                     `json:"perfectScores"`
	TotalXPEarned     int                     `json:"totalXPEarned"`
	CurrentStreak     int                     `json:"currentStreak"`
	LongestStreak     int                     `json:"longestStreak"`
	LastCompletedDate *string                 `json:"lastCompletedDate"`
	CategoryStats     map[string]CategoryStat `json:"categoryStats"`
	Achievements      []string                `json:"achievements"`
	Settings          Settings                `json:"settings"`
}

type ProgressResponse struct {
	UserID        string           `json:"user_id"`
	Progress      ProgressDocument `json:"progress"`
	Level         int              `json:"level"`
	XPToNextLevel int              `json:"xp_to_next_level"`
	Stale         bool             `json:"stale,omitempty"` // true when served from the local mirror
}

type UpdateSettingsRequest struct {
	SoundEnabled *bool `json:"sound_enabled"`
	MusicEnabled *bool `json:"music_enabled"`
}

type AchievementResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	BadgeURL    string     `json:"badge_url"`
	XPReward    int        `json:"xp_reward"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

type AchievementCollectionResponse struct {
	Achievements []AchievementResponse `json:"achievements"`
	Total        int                   `json:"total"`
	Unlocked     int                   `json:"unlocked"`
}

type LeaderboardUserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Streak   int    `json:"streak"`
	Rank     int    `json:"rank"`
}

type LeaderboardResponse struct {
	Period      string                    `json:"period"`
	CurrentUser LeaderboardUserResponse   `json:"current_user"`
	TopUsers    []LeaderboardUserResponse `json:"top_users"`
}
