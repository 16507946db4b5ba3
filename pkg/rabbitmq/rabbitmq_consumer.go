package rabbitmq

import (
	"sync"

	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

type ConsumerAlias string

var (
	consumerRegistry map[ConsumerAlias]IRabbitmqConsumer
	consumerMu       sync.RWMutex
)

// GetConsumer returns the registered consumer or nil when alias is unknown.
func GetConsumer(alias ConsumerAlias) IRabbitmqConsumer {
	consumerMu.RLock()
	defer consumerMu.RUnlock()
	return consumerRegistry[alias]
}

func RegisterConsumer(alias ConsumerAlias, consumer IRabbitmqConsumer) {
	consumerMu.Lock()
	defer consumerMu.Unlock()
	if consumerRegistry == nil {
		consumerRegistry = make(map[ConsumerAlias]IRabbitmqConsumer)
	}
	consumerRegistry[alias] = consumer
}

func InitializeConsumerRegistry(conn *amqp.Connection, consumerConfig []RabbitmqConsumerConfig) {
	for _, consumer := range consumerConfig {
		channel, err := conn.Channel()
		if err != nil {
			logger.Default().Panicf(err, "Could not obtain channel for consumer %s", consumer.ConsumerAlias)
		}

		RegisterConsumer(consumer.ConsumerAlias, NewConsumer(
			channel,
			consumer.QueueName,
			consumer.ConsumerTag,
		))
	}
}

// ConsumeChannel is the subset of *amqp.Channel used by consumers.
type ConsumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type RabbitmqConsumer struct {
	Channel     ConsumeChannel
	QueueName   string
	ConsumerTag string
}

type IRabbitmqConsumer interface {
	StartConsuming(func(amqp.Delivery)) error
}

func NewConsumer(ch ConsumeChannel, queueName, consumerTag string) *RabbitmqConsumer {
	return &RabbitmqConsumer{
		Channel:     ch,
		QueueName:   queueName,
		ConsumerTag: consumerTag,
	}
}

// StartConsuming blocks until the delivery channel is closed.
func (rc *RabbitmqConsumer) StartConsuming(messageHandler func(amqp.Delivery)) error {
	msgs, err := rc.Channel.Consume(
		rc.QueueName,   // queue
		rc.ConsumerTag, // consumer
		true,           // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return err
	}

	consumerLogger := logger.Default()
	consumerLogger.Infof("Waiting for messages in queue: %s", rc.QueueName)

	for d := range msgs {
		consumerLogger.Debugf("[%s] received %d bytes", rc.QueueName, len(d.Body))
		rc.handle(messageHandler, d)
	}

	consumerLogger.Warnf("[%s] delivery channel closed", rc.QueueName)
	return nil
}

func (rc *RabbitmqConsumer) handle(messageHandler func(amqp.Delivery), d amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			logger.Default().Errorf(
				nil,
				"[%s] Recovered from panic for consumer: %s, %v",
				rc.QueueName,
				rc.ConsumerTag,
				r,
			)
		}
	}()

	messageHandler(d)
}
