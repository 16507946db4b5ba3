package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxRetries = 5

// OutboxRepository hands committed emergency stop events to the publisher.
type OutboxRepository interface {
	GetEvent(eventId uuid.UUID) (OutboxEvent, error)
	GetUnprocessedEvents(limit int) ([]OutboxEvent, error)
	MarkEventAsProcessed(eventId uuid.UUID) error
	UpdateRetryValue(eventId uuid.UUID) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (or *outboxRepository) GetEvent(eventId uuid.UUID) (OutboxEvent, error) {
	var event OutboxEvent
	result := or.db.First(&event, "event_id = ?", eventId.String())
	return event, result.Error
}

func (or *outboxRepository) GetUnprocessedEvents(limit int) ([]OutboxEvent, error) {
	var events []OutboxEvent
	result := or.db.
		Where("to_process = ?", true).
		Order("id").
		Limit(limit).
		Find(&events)
	return events, result.Error
}

// MarkEventAsProcessed keeps the row; the outbox doubles as the estop log.
func (or *outboxRepository) MarkEventAsProcessed(eventId uuid.UUID) error {
	now := time.Now().UTC()
	return or.db.
		Model(&OutboxEvent{}).
		Where("event_id = ?", eventId.String()).
		Updates(map[string]interface{}{"to_process": false, "processed_at": &now}).Error
}

// UpdateRetryValue counts a failed publish. Events past maxRetries are
// parked for manual inspection.
func (or *outboxRepository) UpdateRetryValue(eventId uuid.UUID) error {
	event, err := or.GetEvent(eventId)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"retry": event.Retry + 1}
	if event.Retry+1 >= maxRetries {
		updates["to_process"] = false
	}
	return or.db.
		Model(&OutboxEvent{}).
		Where("event_id = ?", eventId.String()).
		Updates(updates).Error
}
