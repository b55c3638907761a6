package cron

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/VennelaDablikar/StudyBuddy/model"
)

// aiUsageRetention is how long AI usage log rows are kept
const aiUsageRetention = 90 * 24 * time.Hour

// CleanupOrphanedUploads deletes files in the uploads directory that no
// pdfs row references anymore. A PDF delete removes its file directly; this
// sweep only catches leftovers from crashes mid-delete.
func (m *CronManager) CleanupOrphanedUploads() {
	m.runJob("cleanup_orphaned_uploads", func() (string, error) {
		entries, err := os.ReadDir(m.uploadDir)
		if err != nil {
			return "", fmt.Errorf("failed to read upload dir: %w", err)
		}

		var known []string
		if err := m.db.Model(&model.PDF{}).Pluck("filename", &known).Error; err != nil {
			return "", fmt.Errorf("failed to list stored filenames: %w", err)
		}
		knownSet := make(map[string]struct{}, len(known))
		for _, name := range known {
			knownSet[name] = struct{}{}
		}

		removed := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, ok := knownSet[entry.Name()]; ok {
				continue
			}

			// Leave very fresh files alone; an upload may be in flight
			info, err := entry.Info()
			if err != nil || time.Since(info.ModTime()) < time.Hour {
				continue
			}

			if err := os.Remove(filepath.Join(m.uploadDir, entry.Name())); err == nil {
				removed++
			}
		}

		return fmt.Sprintf("removed %d orphaned files", removed), nil
	})
}

// PruneAIUsageLogs deletes AI usage rows older than the retention window
func (m *CronManager) PruneAIUsageLogs() {
	m.runJob("prune_ai_usage_logs", func() (string, error) {
		cutoff := time.Now().UTC().Add(-aiUsageRetention)
		result := m.db.Where("created_at < ?", cutoff).Delete(&model.AIUsageLog{})
		if result.Error != nil {
			return "", result.Error
		}
		return fmt.Sprintf("pruned %d usage rows", result.RowsAffected), nil
	})
}
