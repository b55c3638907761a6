package model

import "time"

// Note represents a study note inside a course. Summary caches the AI
// generated bullet points and is cleared whenever the body changes.
type Note struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseID   uint      `gorm:"not null;index" json:"course_id"`
	Title      string    `gorm:"not null" json:"title"`
	Body       string    `gorm:"type:text" json:"body"`
	Summary    *string   `gorm:"type:text" json:"summary"`
	IsReviewed bool      `gorm:"default:false" json:"is_reviewed"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Note
func (Note) TableName() string {
	return "notes"
}

// HasSummary reports whether a cached AI summary is present
func (n *Note) HasSummary() bool {
	return n.Summary != nil && *n.Summary != ""
}
