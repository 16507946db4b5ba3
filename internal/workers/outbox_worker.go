package workers

import (
	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/internal/store"
	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/rabbitmq"
	"github.com/google/uuid"
	"github.com/robfig/cron"
)

const (
	outboxWorkerName        = "OutboxCronWorker"
	EstopEventPublisherName = "EstopEventPublisher"
	outboxBatchSize         = 100
)

// OutboxWorker publishes committed emergency stop events.
type OutboxWorker struct {
	publisher  rabbitmq.IRabbitmqPublisher
	repository store.OutboxRepository
	schedule   string
	cron       *cron.Cron
	logger     *logger.Logger
}

func NewOutboxWorker(publisher rabbitmq.IRabbitmqPublisher, repository store.OutboxRepository, schedule string, log *logger.Logger) *OutboxWorker {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &OutboxWorker{
		publisher:  publisher,
		repository: repository,
		schedule:   schedule,
		cron:       cron.New(),
		logger:     log,
	}
}

func (ow *OutboxWorker) GetServiceName() string {
	return outboxWorkerName
}

func (ow *OutboxWorker) StartService() {
	err := ow.cron.AddFunc(ow.schedule, ow.processOutboxEvents)
	if err != nil {
		ow.logger.Errorf(err, "Could not add function to %s", outboxWorkerName)
		return
	}

	ow.cron.Start()
}

func (ow *OutboxWorker) Stop() {
	ow.cron.Stop()
}

func (ow *OutboxWorker) processOutboxEvents() {
	events, err := ow.repository.GetUnprocessedEvents(outboxBatchSize)
	if err != nil {
		ow.logger.Error(err, "Could not read events from database")
		return
	}

	for _, e := range events {
		eventId, err := uuid.Parse(e.EventId)
		if err != nil {
			ow.logger.Errorf(err, "Outbox event %d has a malformed id", e.Id)
			continue
		}

		event, err := router.UnmarshalAnchorEvent(e.Payload)
		if err == nil {
			err = ow.publisher.Publish(event)
		}
		if err != nil {
			ow.logger.Errorf(err, "Can't publish estop event %s", e.EventId)
			if err := ow.repository.UpdateRetryValue(eventId); err != nil {
				ow.logger.Errorf(err, "Could not update retries of %s", e.EventId)
			}
			continue
		}

		if err := ow.repository.MarkEventAsProcessed(eventId); err != nil {
			ow.logger.Errorf(err, "Could not mark %s as processed", e.EventId)
		}
	}
}
