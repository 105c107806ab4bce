package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mphakathi/guardian/internal/types"
)

type securityLogModel struct {
	ID          string `gorm:"primaryKey"`
	Timestamp   time.Time
	TriggerType string
	Details     string
	Confidence  float64
}

func (securityLogModel) TableName() string {
	return "security_log"
}

// SecurityLogRepo accesses the append-only security log.
type SecurityLogRepo struct {
	db *gorm.DB
}

// NewSecurityLogRepo returns a SecurityLogRepo.
func NewSecurityLogRepo(db *gorm.DB) *SecurityLogRepo {
	return &SecurityLogRepo{db: db}
}

func (r *SecurityLogRepo) Append(ctx context.Context, entry types.SecurityLogEntry) error {
	record := securityLogModel{
		ID:          entry.ID,
		Timestamp:   entry.Timestamp,
		TriggerType: entry.TriggerType,
		Details:     entry.Details,
		Confidence:  entry.Confidence,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert security log entry: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (r *SecurityLogRepo) List(ctx context.Context) ([]types.SecurityLogEntry, error) {
	var records []securityLogModel
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query security log: %w", err)
	}

	results := make([]types.SecurityLogEntry, 0, len(records))
	for _, record := range records {
		results = append(results, types.SecurityLogEntry{
			ID:          record.ID,
			Timestamp:   record.Timestamp,
			TriggerType: record.TriggerType,
			Details:     record.Details,
			Confidence:  record.Confidence,
		})
	}
	return results, nil
}

// Clear removes every entry. Used only by the explicit user-initiated wipe.
func (r *SecurityLogRepo) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&securityLogModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear security log: %w", err)
	}
	return nil
}
