package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/VennelaDablikar/StudyBuddy/model"
)

// CronManager manages all scheduled maintenance jobs
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	uploadDir string
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, uploadDir string) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:      c,
		db:        db,
		uploadDir: uploadDir,
	}
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every hour: remove upload files whose pdfs row is gone
	_, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.CleanupOrphanedUploads()
	})
	if err != nil {
		return err
	}

	// Daily at 03:00: prune old AI usage logs
	_, err = m.cron.AddFunc("0 0 3 * * *", func() {
		m.PruneAIUsageLogs()
	})
	return err
}

// runJob wraps a job body with cron_job_logs bookkeeping
func (m *CronManager) runJob(name string, fn func() (string, error)) {
	entry := model.CronJobLog{
		JobName:   name,
		Status:    "started",
		StartedAt: time.Now().UTC(),
	}
	if err := m.db.Create(&entry).Error; err != nil {
		log.Printf("Cron %s: failed to write job log: %v", name, err)
	}

	message, err := fn()

	now := time.Now().UTC()
	entry.CompletedAt = &now
	entry.Duration = int(now.Sub(entry.StartedAt).Milliseconds())
	entry.Message = message
	if err != nil {
		entry.Status = "failed"
		entry.ErrorMsg = err.Error()
		log.Printf("Cron %s failed: %v", name, err)
	} else {
		entry.Status = "completed"
	}

	if entry.ID != 0 {
		if err := m.db.Save(&entry).Error; err != nil {
			log.Printf("Cron %s: failed to update job log: %v", name, err)
		}
	}
}
