package store

import "gorm.io/gorm"

type LogAuditRepository interface {
	CreateLogEntry(entry LogAuditEntry) error
	GetLogEntries(limit, offset int) ([]LogAuditEntry, error)
	GetLogEntriesByLevel(level string, limit, offset int) ([]LogAuditEntry, error)
}

type logAuditRepository struct {
	db *gorm.DB
}

func NewLogAuditRepository(db *gorm.DB) LogAuditRepository {
	return &logAuditRepository{db: db}
}

func (r *logAuditRepository) CreateLogEntry(entry LogAuditEntry) error {
	return r.db.Create(&entry).Error
}

func (r *logAuditRepository) GetLogEntries(limit, offset int) ([]LogAuditEntry, error) {
	var entries []LogAuditEntry
	result := r.db.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&entries)
	return entries, result.Error
}

func (r *logAuditRepository) GetLogEntriesByLevel(level string, limit, offset int) ([]LogAuditEntry, error) {
	var entries []LogAuditEntry
	result := r.db.Where("level = ?", level).Order("timestamp DESC").Limit(limit).Offset(offset).Find(&entries)
	return entries, result.Error
}
