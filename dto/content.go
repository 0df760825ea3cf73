package dto

import "time"

type CreateQuestionRequest struct {
	ID           string   `json:"id"`
	Category     string   `json:"category" validate:"required"`
	Difficulty   string   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Prompt       string   `json:"prompt" validate:"required"`
	Choices      []string `json:"choices" validate:"required,min=2"`
	CorrectIndex int      `json:"correct_index" validate:"gte=0"`
	Explanation  string   `json:"explanation"`
}

type QuestionAdminResponse struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	Prompt       string    `json:"prompt"`
	Choices      []string  `json:"choices"`
	CorrectIndex int       `json:"correct_index"`
	Explanation  string    `json:"explanation"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type QuestionBankResponse struct {
	Questions []QuestionAdminResponse `json:"questions"`
	Total     int                     `json:"total"`
	ByTier    map[string]int          `json:"by_tier"`
}

type CategoryCollectionResponse struct {
	Categories []string `json:"categories"`
	Total      int      `json:"total"`
}

type MediaUploadResponse struct {
	ObjectName  string `json:"object_name"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}
