package errors

// Common error codes. Packages declare their own domain codes next to their code.
const (
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"

	// Configuration
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Lifecycle
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Application
	ErrRegisterBar ErrorCode = "register_bar_failed"
	ErrStatusLoop  ErrorCode = "status_loop_failed"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrInvalidConfig:   "Invalid configuration",
	ErrReadConfig:      "Failed to read configuration",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitFailed:      "Initialization failed",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrRegisterBar:     "Failed to register status bar",
	ErrStatusLoop:      "Error in status loop",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
