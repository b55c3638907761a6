package model

import (
	"time"

	"gorm.io/datatypes"
)

// AIUsageKind identifies which feature triggered an outbound AI call
type AIUsageKind string

const (
	AIUsageNoteSummary AIUsageKind = "note_summary"
	AIUsagePDFSummary  AIUsageKind = "pdf_summary"
	AIUsageQuiz        AIUsageKind = "quiz_generation"
)

// AIUsageLog records token usage for every outbound AI call, so spend per
// user and per feature can be inspected later.
type AIUsageLog struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	Kind             AIUsageKind    `gorm:"type:varchar(30);not null;index" json:"kind"`
	Model            string         `gorm:"type:varchar(100)" json:"model"`
	PromptTokens     int            `gorm:"default:0" json:"prompt_tokens"`
	CompletionTokens int            `gorm:"default:0" json:"completion_tokens"`
	TotalTokens      int            `gorm:"default:0" json:"total_tokens"`
	Metadata         datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"` // {course_id, note_id, pdf_id, ...}
	CreatedAt        time.Time      `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for AIUsageLog
func (AIUsageLog) TableName() string {
	return "ai_usage_logs"
}
