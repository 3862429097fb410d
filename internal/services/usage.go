package services

import (
	"encoding/json"
	"log"

	"gorm.io/gorm"

	"github.com/dawless-studio/studio-api/internal/models"
)

// UsageService persists per-turn usage and per-action audit rows.
// The database is optional; with a nil handle every method is a no-op
// so callers never branch on persistence being configured.
type UsageService struct {
	db *gorm.DB
}

func NewUsageService(db *gorm.DB) *UsageService {
	return &UsageService{db: db}
}

// Enabled reports whether records are actually written
func (s *UsageService) Enabled() bool {
	return s.db != nil
}

// RecordUsage writes one usage row. Failures are logged, never surfaced,
// since billing bookkeeping must not fail a user-facing turn.
func (s *UsageService) RecordUsage(record *models.UsageRecord) {
	if s.db == nil {
		return
	}

	if err := s.db.Create(record).Error; err != nil {
		log.Printf("⚠️  Failed to record usage: %v", err)
	}
}

// RecordAction writes one action audit row
func (s *UsageService) RecordAction(sessionID, requestID string, action models.Action, confirmed, success bool, execErr string) {
	if s.db == nil {
		return
	}

	params, err := json.Marshal(action.Parameters)
	if err != nil {
		params = []byte("{}")
	}

	row := &models.ActionLog{
		SessionID: sessionID,
		RequestID: requestID,
		Kind:      action.Kind,
		Params:    string(params),
		Confirmed: confirmed,
		Success:   success,
		Error:     execErr,
	}
	if err := s.db.Create(row).Error; err != nil {
		log.Printf("⚠️  Failed to record action log: %v", err)
	}
}

// SessionUsage sums token usage for one session
func (s *UsageService) SessionUsage(sessionID string) (int64, error) {
	if s.db == nil {
		return 0, nil
	}

	var total int64
	err := s.db.Model(&models.UsageRecord{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(total_tokens), 0)").
		Scan(&total).Error
	return total, err
}
