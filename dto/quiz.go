package dto

import "time"

// QuestionResponse deliberately omits the correct index and explanation;
// those are revealed per question by SubmitAnswer.
type QuestionResponse struct {
	ID         string   `json:"id"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Prompt     string   `json:"prompt"`
	Choices    []string `json:"choices"`
}

type DailyChallengeResponse struct {
	DateKey      string             `json:"date_key"`
	Questions    []QuestionResponse `json:"questions"`
	TimerSeconds int                `json:"timer_seconds"`
	Completed    bool               `json:"completed"`
}

type StartSessionResponse struct {
	SessionID    string             `json:"session_id"`
	DateKey      string             `json:"date_key"`
	Resumed      bool               `json:"resumed"`
	CurrentIndex int                `json:"current_index"`
	Total        int                `json:"total"`
	Question     *QuestionResponse  `json:"question,omitempty"`
	ServedAt     time.Time          `json:"served_at"`
}

type SubmitAnswerRequest struct {
	SessionID     string `json:"session_id" validate:"required"`
	QuestionID    string `json:"question_id" validate:"required"`
	SelectedIndex int    `json:"selected_index" validate:"gte=-1"`
	ElapsedMs     int    `json:"elapsed_ms" validate:"gte=0"`
}

type CompleteSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type AnswerResultResponse struct {
	Correct       bool              `json:"correct"`
	TimedOut      bool              `json:"timed_out"`
	CorrectIndex  int               `json:"correct_index"`
	Explanation   string            `json:"explanation"`
	PointsEarned  int               `json:"points_earned"`
	RunningScore  int               `json:"running_score"`
	NextIndex     int               `json:"next_index"`
	NextQuestion  *QuestionResponse `json:"next_question,omitempty"`
	Complete      bool              `json:"complete"`
	Results       *SessionResults   `json:"results,omitempty"`
}

type SessionResults struct {
	Score             int      `json:"score"`
	CorrectCount      int      `json:"correct_count"`
	Total             int      `json:"total"`
	Perfect           bool     `json:"perfect"`
	PerfectBonus      int      `json:"perfect_bonus"`
	NewAchievements   []string `json:"new_achievements"`
	CurrentStreak     int      `json:"current_streak"`
	LongestStreak     int      `json:"longest_streak"`
	ProgressSaved     bool     `json:"progress_saved"`
}
