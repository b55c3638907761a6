package model

import "time"

// Course represents a course created by a user to group study material
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Notes   []Note  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
	PDFs    []PDF   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"pdfs,omitempty"`
	Quizzes []Quiz  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// CourseWithCounts is a Course row augmented with note/pdf counts for the dashboard
type CourseWithCounts struct {
	Course
	NoteCount int64 `json:"note_count"`
	PDFCount  int64 `json:"pdf_count"`
}
