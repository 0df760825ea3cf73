// model/content.go
package model

import (
	"encoding/json"
	"time"
)

// Question is one entry of the trivia bank. Questions are seeded or created
// by admins and never mutated by gameplay.
type Question struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	Category     string          `json:"category" gorm:"not null;index"`
	Difficulty   string          `json:"difficulty" gorm:"not null;index"` // easy, medium, hard
	Prompt       string          `json:"prompt" gorm:"type:text;not null"`
	Choices      json.RawMessage `json:"choices" gorm:"type:text;not null"` // JSON array of answer texts
	CorrectIndex int             `json:"correct_index" gorm:"not null"`
	Explanation  string          `json:"explanation" gorm:"type:text"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DailyChallenge records the question set chosen for one calendar day.
// The selection is deterministic for a given date key and bank, so this row
// is a memo and an audit trail rather than a source of truth.
type DailyChallenge struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	DateKey     string          `json:"date_key" gorm:"unique;not null"` // YYYY-MM-DD
	QuestionIDs json.RawMessage `json:"question_ids" gorm:"type:text;not null"`
	CreatedAt   time.Time       `json:"created_at"`
}
