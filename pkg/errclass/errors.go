package errclass

import "fmt"

// AuditError is a stable, machine-readable error class. The Code identifies
// the failure category so the CLI can report which pipeline stage failed.
type AuditError struct {
	Code    string
	Message string
}

func (e *AuditError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuditError) Is(target error) bool {
	t, ok := target.(*AuditError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new AuditError with the same Code but a specific message.
func (e *AuditError) WithMessage(msg string) *AuditError {
	return &AuditError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new AuditError with a formatted message.
func (e *AuditError) WithMessagef(format string, args ...any) *AuditError {
	return &AuditError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Stable error classes.
var (
	// Fatal precondition violations. These halt the run: a partial report
	// is worse than no report.
	ErrRecordInvalid = &AuditError{Code: "E_RECORD_INVALID"}
	ErrCountMismatch = &AuditError{Code: "E_COUNT_MISMATCH"}

	// Input and configuration failures.
	ErrInputMissing   = &AuditError{Code: "E_INPUT_MISSING"}
	ErrInputMalformed = &AuditError{Code: "E_INPUT_MALFORMED"}
	ErrRefDataInvalid = &AuditError{Code: "E_REFDATA_INVALID"}

	// Output failures.
	ErrReportWrite = &AuditError{Code: "E_REPORT_WRITE"}
)
