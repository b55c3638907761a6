package model

import "time"

// PDF represents an uploaded PDF file attached to a course. The file lives
// on local disk at FilePath; deleting the row removes the file as well.
type PDF struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CourseID     uint      `gorm:"not null;index" json:"course_id"`
	OriginalName string    `gorm:"not null" json:"original_name"`
	Filename     string    `gorm:"not null" json:"filename"`
	FilePath     string    `gorm:"not null" json:"file_path"`
	Size         int64     `gorm:"default:0" json:"size"`
	Summary      *string   `gorm:"type:text" json:"summary"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for PDF
func (PDF) TableName() string {
	return "pdfs"
}

// HasSummary reports whether a cached AI summary is present
func (p *PDF) HasSummary() bool {
	return p.Summary != nil && *p.Summary != ""
}
