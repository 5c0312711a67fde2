// ABOUTME: Logger interface for structured logging
// ABOUTME: Fields are passed as a map alongside the message

package interfaces

// Logger defines the interface for logging throughout the application.
// The logrus adapter in infrastructure/logger implements it; tests use small
// recording fakes.
//
// Example usage:
//
//	logger.Info("Asset resolved", map[string]interface{}{
//		"name": "wiring-diagram.png",
//		"root": "/srv/public/diagnostic-images",
//	})
//
//	logger.Error("Asset probe failed", map[string]interface{}{
//		"path":  "/srv/public/diagnostic-images/wiring-diagram.png",
//		"error": err.Error(),
//	})
type Logger interface {
	// Debug logs a debug level message with optional structured fields.
	Debug(msg string, fields map[string]interface{})

	// Info logs an info level message with optional structured fields.
	Info(msg string, fields map[string]interface{})

	// Warn logs a warning level message with optional structured fields.
	// Rejected asset references are logged here like any bad request.
	Warn(msg string, fields map[string]interface{})

	// Error logs an error level message with optional structured fields.
	Error(msg string, fields map[string]interface{})
}
