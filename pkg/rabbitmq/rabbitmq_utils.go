package rabbitmq

import (
	"fmt"
	"math"
	"time"

	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const maxConnectRetries = 7

// WorkerService is a long running background task started by the application.
type WorkerService interface {
	GetServiceName() string
	StartService()
}

func ConnectionString(cfg RabbitmqConfig) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
}

// ConnectToRabbitmq dials the broker with exponential backoff.
func ConnectToRabbitmq(cfg RabbitmqConfig) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	waitTime := 1 * time.Second

	queueLogger := logger.Default()

	for i := 0; i < maxConnectRetries; i++ {
		conn, err = amqp.Dial(ConnectionString(cfg))
		if err == nil {
			return conn, nil
		}
		queueLogger.Warnf("Attempt %d failed: %v. Retrying in %v...", i+1, err, waitTime)
		time.Sleep(waitTime)
		waitTime = time.Duration(math.Pow(2, float64(i+1))) * time.Second
	}
	return nil, err
}
