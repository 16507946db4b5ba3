package rabbitmq

import (
	"fmt"

	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	logger_message "github.com/boundless-xyz/risc0-solana/pkg/utilities/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities/timeutil"
	"github.com/rs/zerolog"
)

func CreateRabbitmqLoggerSink(publisher IRabbitmqPublisher, service string) logger.Sink {
	return func(msg string, level zerolog.Level, timestamp timeutil.TimeUTC) {
		loggerMessage := logger_message.LoggerMessage{
			Service:   service,
			Level:     level.String(),
			Message:   msg,
			Timestamp: timestamp,
		}

		err := publisher.Publish(loggerMessage)
		if err != nil {
			// the logger would recurse into this sink
			fmt.Printf("Failed to publish log message to RabbitMQ: %v\n", err)
		}
	}
}
