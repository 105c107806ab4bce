package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mphakathi/guardian/internal/types"
)

type inboxThreadModel struct {
	ID        string `gorm:"primaryKey"`
	UserName  string
	Avatar    string
	Location  string
	Timestamp time.Time
	Status    string
	Messages  string
}

func (inboxThreadModel) TableName() string {
	return "inbox_threads"
}

// InboxRepo accesses safety-inbox threads.
type InboxRepo struct {
	db *gorm.DB
}

// NewInboxRepo returns an InboxRepo.
func NewInboxRepo(db *gorm.DB) *InboxRepo {
	return &InboxRepo{db: db}
}

func (r *InboxRepo) AddThread(ctx context.Context, thread types.InboxThread) error {
	record, err := threadToModel(thread)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert inbox thread: %w", err)
	}
	return nil
}

// List returns threads newest first.
func (r *InboxRepo) List(ctx context.Context) ([]types.InboxThread, error) {
	var records []inboxThreadModel
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query inbox threads: %w", err)
	}

	results := make([]types.InboxThread, 0, len(records))
	for _, record := range records {
		thread, err := threadFromModel(record)
		if err != nil {
			return nil, err
		}
		results = append(results, thread)
	}
	return results, nil
}

// AppendMessage adds one message to an existing thread.
func (r *InboxRepo) AppendMessage(ctx context.Context, threadID string, msg types.InboxMessage) error {
	var record inboxThreadModel
	if err := r.db.WithContext(ctx).First(&record, "id = ?", threadID).Error; err != nil {
		return fmt.Errorf("failed to get inbox thread: %w", err)
	}

	thread, err := threadFromModel(record)
	if err != nil {
		return err
	}
	thread.Messages = append(thread.Messages, msg)

	encoded, err := json.Marshal(thread.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode inbox messages: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Model(&inboxThreadModel{}).
		Where("id = ?", threadID).
		Update("messages", string(encoded)).Error; err != nil {
		return fmt.Errorf("failed to append inbox message: %w", err)
	}
	return nil
}

// SetStatus updates a thread's status.
func (r *InboxRepo) SetStatus(ctx context.Context, threadID string, status types.InboxStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&inboxThreadModel{}).
		Where("id = ?", threadID).
		Update("status", string(status)).Error; err != nil {
		return fmt.Errorf("failed to update inbox thread status: %w", err)
	}
	return nil
}

// Clear removes every thread.
func (r *InboxRepo) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&inboxThreadModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear inbox threads: %w", err)
	}
	return nil
}

func threadToModel(thread types.InboxThread) (inboxThreadModel, error) {
	messages, err := json.Marshal(thread.Messages)
	if err != nil {
		return inboxThreadModel{}, fmt.Errorf("failed to encode inbox messages: %w", err)
	}
	location := ""
	if thread.Location != nil {
		encoded, err := json.Marshal(thread.Location)
		if err != nil {
			return inboxThreadModel{}, fmt.Errorf("failed to encode thread location: %w", err)
		}
		location = string(encoded)
	}
	return inboxThreadModel{
		ID:        thread.ID,
		UserName:  thread.UserName,
		Avatar:    thread.Avatar,
		Location:  location,
		Timestamp: thread.Timestamp,
		Status:    string(thread.Status),
		Messages:  string(messages),
	}, nil
}

func threadFromModel(record inboxThreadModel) (types.InboxThread, error) {
	thread := types.InboxThread{
		ID:        record.ID,
		UserName:  record.UserName,
		Avatar:    record.Avatar,
		Timestamp: record.Timestamp,
		Status:    types.InboxStatus(record.Status),
	}
	if record.Location != "" {
		var loc types.Location
		if err := json.Unmarshal([]byte(record.Location), &loc); err != nil {
			return types.InboxThread{}, fmt.Errorf("failed to decode thread location: %w", err)
		}
		thread.Location = &loc
	}
	if record.Messages != "" {
		if err := json.Unmarshal([]byte(record.Messages), &thread.Messages); err != nil {
			return types.InboxThread{}, fmt.Errorf("failed to decode inbox messages: %w", err)
		}
	}
	return thread, nil
}
