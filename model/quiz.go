package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuizQuestion is a single multiple-choice question embedded in a quiz.
// Options always has exactly 4 entries and CorrectIndex is in [0,3].
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// QuestionList is the ordered question set of a quiz, stored as a jsonb
// column. Serialization happens here, at the persistence boundary, so the
// rest of the code only ever sees typed questions.
type QuestionList []QuizQuestion

// Value implements driver.Valuer
func (q QuestionList) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements sql.Scanner
func (q *QuestionList) Scan(value interface{}) error {
	if value == nil {
		*q = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for QuestionList: %T", value)
	}
	return json.Unmarshal(data, q)
}

// AnswerList is the ordered sequence of selected option indices, one per
// question. Stored as jsonb; nil until the quiz has been submitted.
type AnswerList []int

// Value implements driver.Valuer
func (a AnswerList) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *AnswerList) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for AnswerList: %T", value)
	}
	return json.Unmarshal(data, a)
}

// Quiz represents an AI-generated multiple-choice quiz for a course.
// Total always equals len(Questions). Answers, Score and CompletedAt stay
// null until the quiz is submitted; a resubmission overwrites them.
type Quiz struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	CourseID    uint         `gorm:"not null;index" json:"course_id"`
	Title       string       `gorm:"not null" json:"title"`
	Questions   QuestionList `gorm:"type:jsonb;not null" json:"questions"`
	Answers     AnswerList   `gorm:"type:jsonb" json:"answers,omitempty"`
	Score       *int         `json:"score"`
	Total       int          `gorm:"not null" json:"total"`
	CompletedAt *time.Time   `json:"completed_at"`
	CreatedAt   time.Time    `json:"created_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Quiz
func (Quiz) TableName() string {
	return "quizzes"
}

// QuizSummary is the metadata-only projection used by the history listing
type QuizSummary struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Score       *int       `json:"score"`
	Total       int        `json:"total"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
