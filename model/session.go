package model

import (
	"encoding/json"
	"time"
)

// AnswerRecord is one entry of a session's answer log. A timed-out question
// records SelectedIndex -1 with Correct false and no speed bonus.
type AnswerRecord struct {
	QuestionID    string `json:"question_id"`
	SelectedIndex int    `json:"selected_index"`
	Correct       bool   `json:"correct"`
	ElapsedMs     int    `json:"elapsed_ms"`
	PointsEarned  int    `json:"points_earned"`
}

// QuizSession is one user's walk through a daily challenge. The server owns
// the state machine: CurrentIndex only advances when an answer record is
// written, so there is exactly one record per question, in question order.
type QuizSession struct {
	ID               string          `json:"id" gorm:"primaryKey"`
	UserID           string          `json:"user_id" gorm:"not null;index"`
	DateKey          string          `json:"date_key" gorm:"not null"`
	QuestionIDs      json.RawMessage `json:"question_ids" gorm:"type:text;not null"`
	CurrentIndex     int             `json:"current_index" gorm:"default:0"`
	Answers          json.RawMessage `json:"answers" gorm:"type:text"` // JSON array of AnswerRecord
	Score            int             `json:"score" gorm:"default:0"`
	Status           string          `json:"status" gorm:"not null;index"` // active, complete, expired
	QuestionServedAt time.Time       `json:"question_served_at"`
	StartedAt        time.Time       `json:"started_at"`
	CompletedAt      *time.Time      `json:"completed_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
