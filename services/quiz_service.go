package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
	"github.com/VennelaDablikar/StudyBuddy/services/groq"
	"github.com/VennelaDablikar/StudyBuddy/utils"
)

const (
	// MinMaterialChars is the floor below which a course has too little
	// study material to generate a quiz from
	MinMaterialChars = 50
	// MaxMaterialChars caps the prompt size to fit the model context window
	MaxMaterialChars = 4000
	// QuestionCount is the number of questions a generated quiz must have
	QuestionCount = 5
	// OptionCount is the number of options every question must have
	OptionCount = 4

	quizMaxTokens   = 1500
	quizTemperature = 0.5
)

const quizSystemPrompt = `You are a quiz generator for students. Given study material, generate exactly 5 multiple-choice questions to test understanding.

Return ONLY a valid JSON array with this exact format (no markdown, no code fences, no extra text):
[
  {
    "question": "What is ...?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctIndex": 0
  }
]

Rules:
- Exactly 5 questions
- Exactly 4 options each
- correctIndex is 0-3 (index of the correct option)
- Questions should test understanding, not just memorization
- Mix difficulty levels
- Return ONLY the JSON array, nothing else`

// QuizService owns quiz generation, scoring and history. The AI client may
// be nil when no API key is configured; generation then fails with
// ErrAPIKeyMissing once the course clears the material floor.
type QuizService struct {
	db *gorm.DB
	ai *groq.Client
}

// NewQuizService creates a new quiz service
func NewQuizService(db *gorm.DB, ai *groq.Client) *QuizService {
	return &QuizService{
		db: db,
		ai: ai,
	}
}

// Generate builds a quiz from a course's notes and PDF summaries. The quiz
// row is only written after the AI response has been parsed and validated,
// so a failed call never leaves a partial record behind.
func (s *QuizService) Generate(ctx context.Context, userID, courseID uint) (*model.Quiz, error) {
	// Verify course belongs to user
	var course model.Course
	if err := s.db.Where("id = ? AND user_id = ?", courseID, userID).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	// Material floor is checked before the API key so a thin course gets
	// the same validation error whether or not a key is configured
	material, err := s.buildMaterial(courseID)
	if err != nil {
		return nil, err
	}

	if s.ai == nil {
		return nil, ErrAPIKeyMissing
	}

	resp, err := s.ai.ChatCompletion(ctx, []groq.Message{
		{Role: "system", Content: quizSystemPrompt},
		{Role: "user", Content: "Generate a quiz from this study material:\n\n" + material},
	}, groq.WithMaxTokens(quizMaxTokens), groq.WithTemperature(quizTemperature))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	questions, err := parseQuestions(resp.ExtractContent())
	if err != nil {
		return nil, err
	}

	quiz := model.Quiz{
		UserID:    userID,
		CourseID:  courseID,
		Title:     fmt.Sprintf("%s Quiz - %s", course.Name, time.Now().Format("Jan 2")),
		Questions: questions,
		Total:     len(questions),
	}

	if err := s.db.Create(&quiz).Error; err != nil {
		return nil, err
	}

	logAIUsage(s.db, userID, model.AIUsageQuiz, resp.Model, resp.Usage, map[string]interface{}{
		"course_id": courseID,
		"quiz_id":   quiz.ID,
	})

	return &quiz, nil
}

// buildMaterial concatenates all note bodies and non-empty PDF summaries of
// a course into one labeled text block, truncated at the tail.
func (s *QuizService) buildMaterial(courseID uint) (string, error) {
	var notes []model.Note
	if err := s.db.Where("course_id = ?", courseID).Order("id ASC").Find(&notes).Error; err != nil {
		return "", err
	}

	var pdfs []model.PDF
	if err := s.db.Where("course_id = ? AND summary IS NOT NULL AND summary != ''", courseID).
		Order("id ASC").Find(&pdfs).Error; err != nil {
		return "", err
	}

	var b strings.Builder
	if len(notes) > 0 {
		b.WriteString("NOTES:\n")
		for _, n := range notes {
			body := n.Body
			if body == "" {
				body = "(empty)"
			}
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", n.Title, body)
		}
	}
	if len(pdfs) > 0 {
		b.WriteString("\nPDF SUMMARIES:\n")
		for _, p := range pdfs {
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", p.OriginalName, *p.Summary)
		}
	}

	material := b.String()
	if len(strings.TrimSpace(material)) < MinMaterialChars {
		return "", ErrInsufficientMaterial
	}

	if len(material) > MaxMaterialChars {
		material = material[:MaxMaterialChars] + "\n...(truncated)"
	}

	return material, nil
}

// parseQuestions parses the raw AI reply into a validated question list.
// Validation fails closed: any deviation from the expected shape is an
// upstream-format error, never silently patched.
func parseQuestions(content string) (model.QuestionList, error) {
	var questions model.QuestionList
	if err := utils.ExtractJSONTo(content, &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFormat, err)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: empty question array", ErrUpstreamFormat)
	}
	if len(questions) > QuestionCount {
		return nil, fmt.Errorf("%w: got %d questions, expected at most %d", ErrUpstreamFormat, len(questions), QuestionCount)
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrUpstreamFormat, i+1)
		}
		if len(q.Options) != OptionCount {
			return nil, fmt.Errorf("%w: question %d has %d options, expected %d", ErrUpstreamFormat, i+1, len(q.Options), OptionCount)
		}
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return nil, fmt.Errorf("%w: question %d has an empty option", ErrUpstreamFormat, i+1)
			}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
			return nil, fmt.Errorf("%w: question %d has correctIndex %d out of range", ErrUpstreamFormat, i+1, q.CorrectIndex)
		}
	}

	return questions, nil
}

// QuestionResult is the per-question review row returned after a submission
type QuestionResult struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectIndex  int      `json:"correctIndex"`
	SelectedIndex int      `json:"selectedIndex"`
	Correct       bool     `json:"correct"`
}

// SubmitResult is the scoring outcome of a quiz submission
type SubmitResult struct {
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	Results    []QuestionResult `json:"results"`
}

// Submit scores a set of answers against a quiz. A resubmission overwrites
// the previous attempt. The row is only updated after the answer-count
// precondition passes.
func (s *QuizService) Submit(ctx context.Context, userID, courseID, quizID uint, answers []int) (*SubmitResult, error) {
	var quiz model.Quiz
	if err := s.db.Where("id = ? AND user_id = ? AND course_id = ?", quizID, userID, courseID).First(&quiz).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	if len(answers) != len(quiz.Questions) {
		return nil, &AnswerCountError{Expected: len(quiz.Questions)}
	}

	score := 0
	results := make([]QuestionResult, len(quiz.Questions))
	for i, q := range quiz.Questions {
		correct := answers[i] == q.CorrectIndex
		if correct {
			score++
		}
		results[i] = QuestionResult{
			Question:      q.Question,
			Options:       q.Options,
			CorrectIndex:  q.CorrectIndex,
			SelectedIndex: answers[i],
			Correct:       correct,
		}
	}

	total := len(quiz.Questions)
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"answers":      model.AnswerList(answers),
		"score":        score,
		"completed_at": now,
	}
	if err := s.db.WithContext(ctx).Model(&quiz).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &SubmitResult{
		Score:      score,
		Total:      total,
		Percentage: int(math.Round(float64(score) / float64(total) * 100)),
		Results:    results,
	}, nil
}

// History lists a course's past quizzes for a user, newest first. Metadata
// only; the question payloads stay out of the listing.
func (s *QuizService) History(userID, courseID uint) ([]model.QuizSummary, error) {
	summaries := []model.QuizSummary{}
	err := s.db.Model(&model.Quiz{}).
		Select("id", "title", "score", "total", "completed_at", "created_at").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Order("created_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
