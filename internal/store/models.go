package store

import "time"

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"` // Nullable
}

type Question struct {
	ID             int64     `json:"id"`
	CategoryID     *int64    `json:"category_id"`
	CategoryName   *string   `json:"category_name"` // Null when uncategorized
	QuestionNumber *string   `json:"question_number"`
	QuestionText   string    `json:"question_text"`
	AnswerText     string    `json:"answer_text"`
	Keywords       *string   `json:"keywords"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// QuestionFields are the mutable columns written by insert and full-replace update.
type QuestionFields struct {
	CategoryID     *int64
	QuestionNumber *string
	QuestionText   string
	AnswerText     string
	Keywords       *string
}

// QuestionFilter narrows list, count and search queries. A nil CategoryID means all categories.
type QuestionFilter struct {
	CategoryID *int64
}
