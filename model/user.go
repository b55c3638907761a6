package model

import "time"

// User represents a registered user in the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Courses       []Course       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	StudySessions []StudySession `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Quizzes       []Quiz         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AIUsageLogs   []AIUsageLog   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
