package logger_message

import (
	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities/timeutil"
)

type LoggerMessage struct {
	Service   string           `json:"service"`
	Level     string           `json:"level"`
	Message   string           `json:"message"`
	Timestamp timeutil.TimeUTC `json:"timestamp"`
}

func (lm LoggerMessage) Serialize() ([]byte, error) {
	return utilities.Serialize[LoggerMessage](lm)
}
