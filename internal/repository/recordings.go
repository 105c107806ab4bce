package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mphakathi/guardian/internal/types"
)

type recordingModel struct {
	ID        string `gorm:"primaryKey"`
	Kind      string
	Data      []byte
	Timestamp time.Time
}

func (recordingModel) TableName() string {
	return "recordings"
}

// RecordingRepo accesses completed audio captures.
type RecordingRepo struct {
	db *gorm.DB
}

// NewRecordingRepo returns a RecordingRepo.
func NewRecordingRepo(db *gorm.DB) *RecordingRepo {
	return &RecordingRepo{db: db}
}

func (r *RecordingRepo) Save(ctx context.Context, rec types.CompletedRecording) error {
	record := recordingModel{
		ID:        rec.ID,
		Kind:      string(rec.Kind),
		Data:      rec.Data,
		Timestamp: rec.Timestamp,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert recording: %w", err)
	}
	return nil
}

// List returns recordings newest first, without their audio payloads.
func (r *RecordingRepo) List(ctx context.Context) ([]types.CompletedRecording, error) {
	var records []recordingModel
	if err := r.db.WithContext(ctx).
		Select("id", "kind", "timestamp").
		Order("timestamp DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}

	results := make([]types.CompletedRecording, 0, len(records))
	for _, record := range records {
		results = append(results, types.CompletedRecording{
			ID:        record.ID,
			Kind:      types.RecordingKind(record.Kind),
			Timestamp: record.Timestamp,
		})
	}
	return results, nil
}

// Get returns one recording with its audio payload.
func (r *RecordingRepo) Get(ctx context.Context, id string) (*types.CompletedRecording, error) {
	var record recordingModel
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	return &types.CompletedRecording{
		ID:        record.ID,
		Kind:      types.RecordingKind(record.Kind),
		Data:      record.Data,
		Timestamp: record.Timestamp,
	}, nil
}

func (r *RecordingRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Delete(&recordingModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	return nil
}

// Clear removes every recording. Used only by the explicit user-initiated wipe.
func (r *RecordingRepo) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&recordingModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear recordings: %w", err)
	}
	return nil
}
