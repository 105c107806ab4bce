package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mphakathi/guardian/internal/types"
)

type transcriptModel struct {
	ID        string `gorm:"primaryKey"`
	Text      string
	Timestamp time.Time
	Emotion   string
}

func (transcriptModel) TableName() string {
	return "transcripts"
}

// TranscriptRepo accesses the live transcription feed.
type TranscriptRepo struct {
	db *gorm.DB
}

// NewTranscriptRepo returns a TranscriptRepo.
func NewTranscriptRepo(db *gorm.DB) *TranscriptRepo {
	return &TranscriptRepo{db: db}
}

func (r *TranscriptRepo) Append(ctx context.Context, entry types.TranscriptionEntry) error {
	emotion := ""
	if entry.Emotion != nil {
		encoded, err := json.Marshal(entry.Emotion)
		if err != nil {
			return fmt.Errorf("failed to encode emotion state: %w", err)
		}
		emotion = string(encoded)
	}

	record := transcriptModel{
		ID:        entry.ID,
		Text:      entry.Text,
		Timestamp: entry.Timestamp,
		Emotion:   emotion,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert transcript entry: %w", err)
	}
	return nil
}

// Recent returns the latest limit entries, oldest first.
func (r *TranscriptRepo) Recent(ctx context.Context, limit int) ([]types.TranscriptionEntry, error) {
	var records []transcriptModel
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}

	results := make([]types.TranscriptionEntry, 0, len(records))
	for _, record := range records {
		entry := types.TranscriptionEntry{
			ID:        record.ID,
			Text:      record.Text,
			Timestamp: record.Timestamp,
		}
		if record.Emotion != "" {
			var emotion types.EmotionState
			if err := json.Unmarshal([]byte(record.Emotion), &emotion); err != nil {
				return nil, fmt.Errorf("failed to decode emotion state: %w", err)
			}
			entry.Emotion = &emotion
		}
		results = append(results, entry)
	}

	// Oldest -> newest
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// Clear removes every entry. Used only by the explicit user-initiated wipe.
func (r *TranscriptRepo) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&transcriptModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear transcripts: %w", err)
	}
	return nil
}
