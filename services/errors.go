package services

import (
	"errors"
	"fmt"
)

// Service-level error taxonomy. Handlers translate these into HTTP statuses:
// not-found -> 404, validation -> 400, missing key -> 500, upstream -> 502.
var (
	ErrCourseNotFound       = errors.New("course not found")
	ErrNoteNotFound         = errors.New("note not found")
	ErrPDFNotFound          = errors.New("pdf not found")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrInsufficientMaterial = errors.New("not enough study material to generate a quiz")
	ErrContentTooShort      = errors.New("content is too short to summarize")
	ErrAPIKeyMissing        = errors.New("AI API key not configured")
	ErrUpstreamUnavailable  = errors.New("AI service unavailable")
	ErrUpstreamFormat       = errors.New("AI returned an invalid response format")
)

// AnswerCountError reports a submission whose answer count does not match
// the quiz's question count.
type AnswerCountError struct {
	Expected int
}

func (e *AnswerCountError) Error() string {
	return fmt.Sprintf("expected %d answers", e.Expected)
}
