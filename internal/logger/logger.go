package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init installs the global zap logger. Production gets the sampling
// JSON config; everything else gets the human-readable development
// config.
func Init(environment string) error {
	var (
		logger *zap.Logger
		err    error
	)

	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(logger)

	return nil
}
