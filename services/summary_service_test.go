package services

import (
	"context"
	"errors"
	"testing"

	"github.com/VennelaDablikar/StudyBuddy/model"
)

func TestSummarizeNote(t *testing.T) {
	db := newTestDB(t)
	user, course := seedUserAndCourse(t, db)

	note := model.Note{CourseID: course.ID, Title: "Scheduling", Body: longNoteBody}
	if err := db.Create(&note).Error; err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	const reply = "• Processes are programs in execution\n• The scheduler picks the next process"
	svc := NewSummaryService(db, fakeGroq(t, reply))

	summary, cached, err := svc.SummarizeNote(context.Background(), course.ID, note.ID, user.ID)
	if err != nil {
		t.Fatalf("SummarizeNote failed: %v", err)
	}
	if cached {
		t.Error("first call should not be cached")
	}
	if summary != reply {
		t.Errorf("summary = %q", summary)
	}

	var stored model.Note
	if err := db.First(&stored, note.ID).Error; err != nil {
		t.Fatalf("failed to reload note: %v", err)
	}
	if !stored.HasSummary() || *stored.Summary != reply {
		t.Error("summary should be persisted on the note row")
	}

	// Second call returns the stored value without another API hit
	again, cached, err := svc.SummarizeNote(context.Background(), course.ID, note.ID, user.ID)
	if err != nil {
		t.Fatalf("second SummarizeNote failed: %v", err)
	}
	if !cached || again != reply {
		t.Errorf("expected cached summary, got cached=%v %q", cached, again)
	}

	var usageCount int64
	db.Model(&model.AIUsageLog{}).Where("kind = ?", model.AIUsageNoteSummary).Count(&usageCount)
	if usageCount != 1 {
		t.Errorf("expected exactly 1 usage log, got %d", usageCount)
	}
}

func TestSummarizeNoteTooShort(t *testing.T) {
	db := newTestDB(t)
	user, course := seedUserAndCourse(t, db)

	note := model.Note{CourseID: course.ID, Title: "Stub", Body: "short"}
	if err := db.Create(&note).Error; err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	svc := NewSummaryService(db, fakeGroq(t, "irrelevant"))

	if _, _, err := svc.SummarizeNote(context.Background(), course.ID, note.ID, user.ID); !errors.Is(err, ErrContentTooShort) {
		t.Fatalf("expected ErrContentTooShort, got %v", err)
	}
}

func TestSummarizeNoteNotFound(t *testing.T) {
	db := newTestDB(t)
	user, course := seedUserAndCourse(t, db)

	svc := NewSummaryService(db, fakeGroq(t, "irrelevant"))

	if _, _, err := svc.SummarizeNote(context.Background(), course.ID, 9999, user.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestSummarizeNoteWithoutAPIKey(t *testing.T) {
	db := newTestDB(t)
	user, course := seedUserAndCourse(t, db)

	note := model.Note{CourseID: course.ID, Title: "Scheduling", Body: longNoteBody}
	if err := db.Create(&note).Error; err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	svc := NewSummaryService(db, nil)

	if _, _, err := svc.SummarizeNote(context.Background(), course.ID, note.ID, user.ID); !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("expected ErrAPIKeyMissing, got %v", err)
	}
}

func TestSummarizeNoteUpstreamError(t *testing.T) {
	db := newTestDB(t)
	user, course := seedUserAndCourse(t, db)

	note := model.Note{CourseID: course.ID, Title: "Scheduling", Body: longNoteBody}
	if err := db.Create(&note).Error; err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	svc := NewSummaryService(db, failingGroq(t))

	_, _, err := svc.SummarizeNote(context.Background(), course.ID, note.ID, user.ID)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}

	var stored model.Note
	db.First(&stored, note.ID)
	if stored.HasSummary() {
		t.Error("failed summarization must not persist a summary")
	}
}
