// Package exitcode provides standardized exit codes for gamescout
package exitcode

// Exit codes for gamescout CLI
const (
	Success           = 0
	GeneralError      = 1
	ConfigError       = 2
	ValidationError   = 3
	FileSystemError   = 4
	NetworkError      = 5
	TimeoutError      = 7
	UnsupportedFormat = 8
	Interrupted       = 130
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	case TimeoutError:
		return "Timeout error"
	case UnsupportedFormat:
		return "Unsupported format"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}

// Error carries an exit code through cobra's error return.
type Error struct {
	Code int
	Err  error
}

// New wraps err with an exit code.
func New(code int, err error) *Error {
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return String(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
