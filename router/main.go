package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/config"
	"github.com/VennelaDablikar/StudyBuddy/database"
	"github.com/VennelaDablikar/StudyBuddy/handlers"
	"github.com/VennelaDablikar/StudyBuddy/handlers/analytics"
	"github.com/VennelaDablikar/StudyBuddy/handlers/auth"
	"github.com/VennelaDablikar/StudyBuddy/handlers/contact"
	"github.com/VennelaDablikar/StudyBuddy/handlers/course"
	"github.com/VennelaDablikar/StudyBuddy/handlers/note"
	"github.com/VennelaDablikar/StudyBuddy/handlers/pdf"
	"github.com/VennelaDablikar/StudyBuddy/handlers/planner"
	"github.com/VennelaDablikar/StudyBuddy/handlers/quiz"
	"github.com/VennelaDablikar/StudyBuddy/services"
	"github.com/VennelaDablikar/StudyBuddy/services/groq"
	authutil "github.com/VennelaDablikar/StudyBuddy/utils/auth"
	"github.com/VennelaDablikar/StudyBuddy/utils/cache"
	"github.com/VennelaDablikar/StudyBuddy/utils/middleware"
)

// tokenExpiry is how long a session token stays valid
const tokenExpiry = 7 * 24 * time.Hour

// SetupRoutes wires every handler into the fiber app
func SetupRoutes(app *fiber.App, store database.Storage, getEnv *config.EnviornmentVariable) {
	db := store.GetDB().(*gorm.DB)

	issuer := getEnv.JWT_ISSUER
	if issuer == "" {
		issuer = "studybuddy-api"
	}
	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: getEnv.JWT_SECRET,
		Expiry: tokenExpiry,
		Issuer: issuer,
	})
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// AI client is optional; handlers report a clear error when it is absent
	var aiClient *groq.Client
	if getEnv.GROQ_API_KEY != "" {
		aiClient = groq.NewClient(groq.Config{
			APIKey: getEnv.GROQ_API_KEY,
			Model:  getEnv.GROQ_MODEL,
		})
	} else {
		log.Println("GROQ_API_KEY not set; AI features are disabled")
	}

	// Redis is optional too; a nil cache is a no-op
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		var err error
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Println("Redis unavailable, continuing without cache:", err)
			redisCache = nil
		}
	}

	summaryService := services.NewSummaryService(db, aiClient)
	quizService := services.NewQuizService(db, aiClient)

	healthHandler := handlers.NewHealthHandler(store)
	authHandler := auth.NewAuthHandler(db, jwtManager)
	contactHandler := contact.NewContactHandler(db)
	courseHandler := course.NewCourseHandler(db)
	noteHandler := note.NewNoteHandler(db, summaryService)
	pdfHandler := pdf.NewPDFHandler(db, summaryService, getEnv.UPLOAD_DIR)
	plannerHandler := planner.NewPlannerHandler(db)
	analyticsHandler := analytics.NewAnalyticsHandler(db, redisCache)
	quizHandler := quiz.NewQuizHandler(quizService)

	// Public routes
	app.Get("/", healthHandler.Check)
	app.Post("/contact", contactHandler.Submit)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Courses and everything nested under them
	courses := app.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/stats", courseHandler.GetStats)
	courses.Get("/search", courseHandler.Search)
	courses.Post("/", courseHandler.CreateCourse)
	courses.Get("/:id/progress", courseHandler.GetProgress)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)

	courses.Get("/:id/notes", noteHandler.ListNotes)
	courses.Post("/:id/notes", noteHandler.CreateNote)
	courses.Put("/:id/notes/:noteId", noteHandler.UpdateNote)
	courses.Delete("/:id/notes/:noteId", noteHandler.DeleteNote)
	courses.Post("/:id/notes/:noteId/summarize", noteHandler.Summarize)
	courses.Patch("/:id/notes/:noteId/toggle-reviewed", noteHandler.ToggleReviewed)

	courses.Get("/:courseId/pdfs", pdfHandler.ListPDFs)
	courses.Post("/:courseId/pdfs", pdfHandler.Upload)
	courses.Delete("/:courseId/pdfs/:pdfId", pdfHandler.DeletePDF)
	courses.Post("/:courseId/pdfs/:pdfId/summarize", pdfHandler.Summarize)

	courses.Post("/:id/quiz/generate", quizHandler.Generate)
	courses.Post("/:id/quiz/:quizId/submit", quizHandler.Submit)
	courses.Get("/:id/quiz/history", quizHandler.History)

	// Planner
	plannerGroup := app.Group("/planner", authMiddleware.Required())
	plannerGroup.Get("/", plannerHandler.ListSessions)
	plannerGroup.Post("/", plannerHandler.CreateSession)
	plannerGroup.Put("/:id", plannerHandler.UpdateSession)
	plannerGroup.Patch("/:id/toggle", plannerHandler.ToggleSession)
	plannerGroup.Delete("/:id", plannerHandler.DeleteSession)

	// Analytics dashboard
	app.Get("/analytics", authMiddleware.Required(), analyticsHandler.GetAnalytics)
}
