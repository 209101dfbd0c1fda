// Package logging provides structured logging for fanlink.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the reconciler. It provides both general logging
// functions and specialized functions for device-communication logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw payload dumps, request details)
//   - Info: Normal operations (commands issued, state changes)
//   - Warn: Non-fatal issues (transport failures, decode failures, retries)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Command confirmed",
//	    zap.String("field", "speed"),
//	    zap.Int("value", 3),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Device Request Logging:
//
//	logging.LogDeviceRequest(baseURL, "/getStatus", "")
//	logging.LogDeviceRequest(baseURL, "/", "act=speed&arg1=3")
//
// Raw Payload Logging (for debugging firmware payload corruption):
//
//	logging.LogRawBytes("device response", body)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// CLI commands that want silent mode by default should use
// InitializeFromEnv, which reads the FANLINK_LOG_LEVEL environment variable
// and falls back to a no-op logger when it is unset.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
