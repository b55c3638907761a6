package services

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/services/groq"
)

// logAIUsage records token usage for an outbound AI call. Failures are
// logged and swallowed; accounting must never fail the user's request.
func logAIUsage(db *gorm.DB, userID uint, kind model.AIUsageKind, modelName string, usage groq.Usage, metadata map[string]interface{}) {
	entry := model.AIUsageLog{
		UserID:           userID,
		Kind:             kind,
		Model:            modelName,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}

	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(data)
		}
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Failed to record AI usage (%s): %v", kind, err)
	}
}
