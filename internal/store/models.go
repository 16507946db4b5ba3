package store

import (
	"time"

	"gorm.io/gorm"
)

type RouterRecord struct {
	Address      string  `gorm:"primaryKey;size:44"`
	Owner        string  `gorm:"size:44;not null"`
	PendingOwner *string `gorm:"size:44"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (RouterRecord) TableName() string {
	return "verifier_routers"
}

// EntryRecord is keyed by the entry address derived from the selector.
type EntryRecord struct {
	Address   string `gorm:"primaryKey;size:44"`
	Selector  string `gorm:"uniqueIndex;size:8;not null"`
	Verifier  string `gorm:"size:44;not null"`
	Estopped  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EntryRecord) TableName() string {
	return "verifier_entries"
}

// RetiredSelector marks a selector whose entry was removed.
type RetiredSelector struct {
	Selector  string `gorm:"primaryKey;size:8"`
	RetiredAt time.Time
}

type OutboxEvent struct {
	Id          uint   `gorm:"primaryKey;autoIncrement"`
	EventId     string `gorm:"uniqueIndex;size:36"`
	Router      string `gorm:"size:44"`
	Selector    string `gorm:"size:8;index"`
	Verifier    string `gorm:"size:44"`
	TriggeredBy string `gorm:"size:44"`
	Reason      string
	// Payload is the Anchor encoded EmergencyStopEvent.
	Payload     []byte
	Retry       int
	ToProcess   bool `gorm:"index"`
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

type LogAuditEntry struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Level     string         `gorm:"type:varchar(10);not null;index" json:"level"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Service   string         `gorm:"type:varchar(50);not null;index" json:"service"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LogAuditEntry) TableName() string {
	return "log_audit_entries"
}
