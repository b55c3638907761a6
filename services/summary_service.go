package services

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/services/groq"
)

const (
	// NoteMinChars is the minimum note body length worth summarizing
	NoteMinChars = 10
	// PDFMinChars is the minimum extractable text length for a PDF summary
	PDFMinChars = 50
	// PDFTrimChars caps extracted PDF text sent to the model
	PDFTrimChars = 3000

	noteSummaryMaxTokens = 500
	pdfSummaryMaxTokens  = 600
	summaryTemperature   = 0.4
)

const noteSummaryPrompt = "You are a helpful study assistant. Summarize study notes into exactly 5 clear, concise bullet points. Each bullet point should capture one key concept. Return only the bullet points, no introduction or extra text."

const pdfSummaryPrompt = `You are a helpful study assistant. Summarize the given PDF content into exactly 6 clear bullet points. Each bullet point must start with "• ". Focus on the most important concepts a student needs to know. Return only bullet points, nothing else.`

// SummaryService produces and caches AI summaries for notes and PDFs.
// Generated text is stored once on the owning row; later calls return the
// cached value without touching the API.
type SummaryService struct {
	db        *gorm.DB
	ai        *groq.Client
	extractor *PDFExtractor
}

// NewSummaryService creates a new summary service
func NewSummaryService(db *gorm.DB, ai *groq.Client) *SummaryService {
	return &SummaryService{
		db:        db,
		ai:        ai,
		extractor: NewPDFExtractor(),
	}
}

// SummarizeNote returns the note's summary, generating and persisting it on
// the first call. The bool result reports whether the value was cached.
func (s *SummaryService) SummarizeNote(ctx context.Context, courseID, noteID, userID uint) (string, bool, error) {
	var note model.Note
	if err := s.db.Where("id = ? AND course_id = ?", noteID, courseID).First(&note).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, ErrNoteNotFound
		}
		return "", false, err
	}

	if len(note.Body) < NoteMinChars {
		return "", false, ErrContentTooShort
	}

	if note.HasSummary() {
		return *note.Summary, true, nil
	}

	if s.ai == nil {
		return "", false, ErrAPIKeyMissing
	}

	resp, err := s.ai.ChatCompletion(ctx, []groq.Message{
		{Role: "system", Content: noteSummaryPrompt},
		{Role: "user", Content: "Summarize these study notes:\n\n" + note.Body},
	}, groq.WithMaxTokens(noteSummaryMaxTokens), groq.WithTemperature(summaryTemperature))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	summary := resp.ExtractContent()
	if summary == "" {
		return "", false, fmt.Errorf("%w: empty response from model", ErrUpstreamFormat)
	}

	if err := s.db.Model(&note).Update("summary", summary).Error; err != nil {
		return "", false, err
	}

	logAIUsage(s.db, userID, model.AIUsageNoteSummary, resp.Model, resp.Usage, map[string]interface{}{
		"course_id": courseID,
		"note_id":   noteID,
	})

	return summary, false, nil
}

// SummarizePDF extracts text from the stored PDF file and returns its
// summary, generating and persisting it on the first call.
func (s *SummaryService) SummarizePDF(ctx context.Context, courseID, pdfID, userID uint) (string, bool, error) {
	var p model.PDF
	if err := s.db.Where("id = ? AND course_id = ?", pdfID, courseID).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, ErrPDFNotFound
		}
		return "", false, err
	}

	if p.HasSummary() {
		return *p.Summary, true, nil
	}

	content, err := os.ReadFile(p.FilePath)
	if err != nil {
		return "", false, fmt.Errorf("failed to read stored PDF: %w", err)
	}

	text, err := s.extractor.ExtractText(content)
	if err != nil || len(text) < PDFMinChars {
		return "", false, ErrContentTooShort
	}

	if len(text) > PDFTrimChars {
		text = text[:PDFTrimChars]
	}

	if s.ai == nil {
		return "", false, ErrAPIKeyMissing
	}

	resp, err := s.ai.ChatCompletion(ctx, []groq.Message{
		{Role: "system", Content: pdfSummaryPrompt},
		{Role: "user", Content: "Summarize this PDF content:\n\n" + text},
	}, groq.WithMaxTokens(pdfSummaryMaxTokens), groq.WithTemperature(summaryTemperature))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	summary := resp.ExtractContent()
	if summary == "" {
		return "", false, fmt.Errorf("%w: empty response from model", ErrUpstreamFormat)
	}

	if err := s.db.Model(&p).Update("summary", summary).Error; err != nil {
		return "", false, err
	}

	logAIUsage(s.db, userID, model.AIUsagePDFSummary, resp.Model, resp.Usage, map[string]interface{}{
		"course_id": courseID,
		"pdf_id":    pdfID,
	})

	return summary, false, nil
}
