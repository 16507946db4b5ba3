package rabbitmq

import (
	"context"
	"sync"
	"time"

	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	amqp "github.com/rabbitmq/amqp091-go"
)

type PublisherAlias string

const publishTimeout = 5 * time.Second

var (
	publisherRegistry map[PublisherAlias]IRabbitmqPublisher
	publisherMu       sync.RWMutex
)

// GetPublisher returns the registered publisher or nil when alias is unknown.
func GetPublisher(alias PublisherAlias) IRabbitmqPublisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return publisherRegistry[alias]
}

func RegisterPublisher(alias PublisherAlias, publisher IRabbitmqPublisher) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisherRegistry == nil {
		publisherRegistry = make(map[PublisherAlias]IRabbitmqPublisher)
	}
	publisherRegistry[alias] = publisher
}

func InitializePublisherRegistry(conn *amqp.Connection, publisherConfig []RabbitmqPublishersConfig) {
	for _, publisher := range publisherConfig {
		channel, err := conn.Channel()
		if err != nil {
			logger.Default().Panicf(err, "Could not obtain channel for publisher %s", publisher.PublisherAlias)
		}

		RegisterPublisher(publisher.PublisherAlias, NewPublisher(
			channel,
			publisher.Exchange,
			publisher.RoutingKey,
		))
	}
}

// PublishChannel is the subset of *amqp.Channel used by publishers.
type PublishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitmqPublisher struct {
	Channel    PublishChannel
	Exchange   string
	RoutingKey string
}

func NewPublisher(ch PublishChannel, exchange, routingKey string) *RabbitmqPublisher {
	return &RabbitmqPublisher{
		Channel:    ch,
		Exchange:   exchange,
		RoutingKey: routingKey,
	}
}

type IRabbitmqPublisher interface {
	Publish(body utilities.Serializable) error
}

func (rp *RabbitmqPublisher) Publish(body utilities.Serializable) error {
	json, err := body.Serialize()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return rp.Channel.PublishWithContext(
		ctx,
		rp.Exchange,
		rp.RoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         json,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
}
