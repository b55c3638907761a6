package model

import "time"

// StudySession represents a planned study block on the planner calendar.
// CourseID is optional; deleting the course keeps the session (SET NULL).
type StudySession struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CourseID    *uint     `gorm:"index" json:"course_id"`
	SessionDate string    `gorm:"type:varchar(10);not null;index" json:"session_date"` // YYYY-MM-DD
	StartTime   string    `gorm:"type:varchar(5)" json:"start_time"`                   // HH:MM
	EndTime     string    `gorm:"type:varchar(5)" json:"end_time"`                     // HH:MM
	Completed   bool      `gorm:"default:false" json:"completed"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	User   User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for StudySession
func (StudySession) TableName() string {
	return "study_sessions"
}
