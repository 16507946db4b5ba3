package utilities

import "github.com/boundless-xyz/risc0-solana/pkg/logger"

func FailOnError(err error, msg string) {
	if err != nil {
		logger.Default().Fatal(err, msg)
	}
}
