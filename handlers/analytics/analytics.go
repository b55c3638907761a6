package analytics

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/utils/cache"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
	"github.com/VennelaDablikar/StudyBuddy/utils/response"
)

// cacheTTL keeps the dashboard fresh without hammering the database
const cacheTTL = 60 * time.Second

// AnalyticsHandler serves the study dashboard aggregates
type AnalyticsHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewAnalyticsHandler creates a new analytics handler. cache may be nil.
func NewAnalyticsHandler(db *gorm.DB, c *cache.RedisCache) *AnalyticsHandler {
	return &AnalyticsHandler{db: db, cache: c}
}

// DayCount is a per-date note count for the activity chart
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// CourseCount is a per-course note count
type CourseCount struct {
	CourseName string `json:"course_name"`
	Count      int64  `json:"count"`
}

// RecentNote is a recent-activity feed entry
type RecentNote struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	CourseName string    `json:"course_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalyticsResponse is the full dashboard payload
type AnalyticsResponse struct {
	TotalCourses     int64         `json:"total_courses"`
	TotalNotes       int64         `json:"total_notes"`
	TotalPDFs        int64         `json:"total_pdfs"`
	ReviewedNotes    int64         `json:"reviewed_notes"`
	NotesPerDay      []DayCount    `json:"notes_per_day"`
	NotesPerCourse   []CourseCount `json:"notes_per_course"`
	RecentNotes      []RecentNote  `json:"recent_notes"`
	SessionsThisWeek int64         `json:"sessions_this_week"`
}

// GetAnalytics handles GET /analytics
func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	cacheKey := fmt.Sprintf("analytics:user:%d", userID)
	var cached AnalyticsResponse
	if err := h.cache.GetJSON(c.Context(), cacheKey, &cached); err == nil {
		return response.Success(c, cached)
	}

	var result AnalyticsResponse

	h.db.Model(&model.Course{}).Where("user_id = ?", userID).Count(&result.TotalCourses)

	h.db.Model(&model.Note{}).
		Joins("JOIN courses ON courses.id = notes.course_id").
		Where("courses.user_id = ?", userID).
		Count(&result.TotalNotes)

	h.db.Model(&model.PDF{}).
		Joins("JOIN courses ON courses.id = pdfs.course_id").
		Where("courses.user_id = ?", userID).
		Count(&result.TotalPDFs)

	h.db.Model(&model.Note{}).
		Joins("JOIN courses ON courses.id = notes.course_id").
		Where("courses.user_id = ? AND notes.is_reviewed = ?", userID, true).
		Count(&result.ReviewedNotes)

	// Last 7 days of note activity, including today
	cutoff := time.Now().AddDate(0, 0, -6).Truncate(24 * time.Hour)
	rows := []DayCount{}
	h.db.Model(&model.Note{}).
		Select("DATE(notes.created_at) AS date, COUNT(*) AS count").
		Joins("JOIN courses ON courses.id = notes.course_id").
		Where("courses.user_id = ? AND notes.created_at >= ?", userID, cutoff).
		Group("DATE(notes.created_at)").
		Order("date ASC").
		Scan(&rows)
	result.NotesPerDay = fillMissingDays(rows, cutoff)

	result.NotesPerCourse = []CourseCount{}
	h.db.Model(&model.Note{}).
		Select("courses.name AS course_name, COUNT(*) AS count").
		Joins("JOIN courses ON courses.id = notes.course_id").
		Where("courses.user_id = ?", userID).
		Group("courses.name").
		Order("count DESC").
		Limit(10).
		Scan(&result.NotesPerCourse)

	result.RecentNotes = []RecentNote{}
	h.db.Model(&model.Note{}).
		Select("notes.id, notes.title, courses.name AS course_name, notes.created_at").
		Joins("JOIN courses ON courses.id = notes.course_id").
		Where("courses.user_id = ?", userID).
		Order("notes.created_at DESC").
		Limit(10).
		Scan(&result.RecentNotes)

	weekStart := startOfWeek(time.Now())
	h.db.Model(&model.StudySession{}).
		Where("user_id = ? AND session_date >= ?", userID, weekStart.Format("2006-01-02")).
		Count(&result.SessionsThisWeek)

	h.cache.SetJSON(c.Context(), cacheKey, result, cacheTTL)

	return response.Success(c, result)
}

// fillMissingDays expands a sparse set of per-day counts into a dense
// 7-entry series so the chart always has a point for each day.
func fillMissingDays(rows []DayCount, start time.Time) []DayCount {
	byDate := make(map[string]int64, len(rows))
	for _, r := range rows {
		// DATE() may come back with a time component on some drivers
		key := r.Date
		if len(key) > 10 {
			key = key[:10]
		}
		byDate[key] = r.Count
	}

	out := make([]DayCount, 0, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, DayCount{Date: day, Count: byDate[day]})
	}
	return out
}

// startOfWeek returns the Monday of t's week at midnight
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}
