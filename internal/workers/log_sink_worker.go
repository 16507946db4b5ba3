package workers

import (
	"encoding/json"

	"github.com/boundless-xyz/risc0-solana/internal/store"
	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/rabbitmq"
	logger_message "github.com/boundless-xyz/risc0-solana/pkg/utilities/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const LogConsumerName = "LogConsumer"

// LogSinkWorker stores log lines published by the rabbitmq logger sink.
type LogSinkWorker struct {
	repository store.LogAuditRepository
	consumer   rabbitmq.IRabbitmqConsumer
	logger     *logger.Logger
}

func NewLogSinkWorker(repository store.LogAuditRepository, consumer rabbitmq.IRabbitmqConsumer, log *logger.Logger) *LogSinkWorker {
	return &LogSinkWorker{repository: repository, consumer: consumer, logger: log}
}

func (w *LogSinkWorker) GetServiceName() string {
	return LogConsumerName
}

func (w *LogSinkWorker) StartService() {
	w.logger.Info("Starting log sink worker")

	if err := w.consumer.StartConsuming(w.handleDelivery); err != nil {
		w.logger.Error(err, "Log sink worker stopped")
	}
}

func (w *LogSinkWorker) handleDelivery(d amqp.Delivery) {
	var msg logger_message.LoggerMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.logger.Error(err, "Failed to unmarshal log message")
		return
	}

	entry := store.LogAuditEntry{
		Level:     msg.Level,
		Message:   msg.Message,
		Timestamp: msg.Timestamp.Time(),
		Service:   msg.Service,
	}
	if err := w.repository.CreateLogEntry(entry); err != nil {
		w.logger.Error(err, "Failed to save log message to database")
	}
}
