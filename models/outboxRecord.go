package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
)

const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

// OutboxRecord is a domain event waiting to be published to Pub/Sub.
type OutboxRecord struct {
	ID               int             `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	EventType        string          `gorm:"size:50;not null;index" json:"event_type"`
	ReferenceType    string          `gorm:"size:30;not null" json:"reference_type"`
	ReferenceId      int             `gorm:"not null" json:"reference_id"`
	OccurredAt       time.Time       `gorm:"not null" json:"occurred_at"`
	Payload          json.RawMessage `gorm:"type:json" json:"payload"`
	PublishStatus    string          `gorm:"size:20;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt      *time.Time      `json:"published_at"`
	PubSubMessageId  *string         `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int             `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time      `gorm:"index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time      `json:"locked_at"`
	LockedBy         *string         `gorm:"size:100" json:"locked_by"`
	LastPublishError *string         `gorm:"type:text" json:"last_publish_error"`
	CorrelationId    string          `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToPubSubMessage(record OutboxRecord) config.PubSubMessage {
	return config.PubSubMessage{
		ID:            record.ID,
		EventType:     record.EventType,
		ReferenceType: record.ReferenceType,
		ReferenceId:   record.ReferenceId,
		OccurredAt:    record.OccurredAt,
		Payload:       record.Payload,
		CorrelationId: record.CorrelationId,
	}
}

// ReplayOutboxRecord puts a FAILED or DEAD event back in the dispatch queue.
func ReplayOutboxRecord(ctx context.Context, id int) (*OutboxRecord, error) {
	record, err := utils.FetchModel[OutboxRecord](ctx, id)
	if err != nil {
		return nil, err
	}
	if record.PublishStatus != OutboxPublishStatusFailed && record.PublishStatus != OutboxPublishStatusDead {
		return nil, utils.NewValidationError("outbox record %d is %s; only FAILED or DEAD records can be replayed", id, record.PublishStatus)
	}
	now := time.Now().UTC()
	db := config.GetDB()
	err = db.WithContext(ctx).Model(record).Updates(map[string]interface{}{
		"publish_status":     OutboxPublishStatusFailed,
		"publish_attempts":   0,
		"next_attempt_at":    &now,
		"locked_at":          nil,
		"locked_by":          nil,
		"last_publish_error": nil,
	}).Error
	if err != nil {
		config.LogError(config.GetLogger(), "OutboxRecord", "ReplayOutboxRecord", "Updates", id, err)
		return nil, err
	}
	return utils.FetchModel[OutboxRecord](ctx, id)
}

// ListOutboxRecordsByStatus returns oldest first so replays follow the original order.
func ListOutboxRecordsByStatus(ctx context.Context, status string, limit int) ([]*OutboxRecord, error) {
	var results []*OutboxRecord
	db := config.GetDB()
	err := db.WithContext(ctx).Where("publish_status = ?", status).Order("id ASC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
