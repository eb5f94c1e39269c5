package logging

import (
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes a resource and logs any errors that occur
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, operation string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close resource", err,
			slog.String("operation", operation),
			slog.String("component", "resource_management"))
	}
}

// RecoverWithLogging turns a panic inside a background goroutine into an error
// log so that one bad upstream payload cannot take the process down.
// It must be called directly via defer.
func RecoverWithLogging(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("recovered from panic",
			slog.String("operation", operation),
			slog.Any("panic", r),
			slog.String("component", "background_worker"))
	}
}
