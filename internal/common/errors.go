package common

import (
	"errors"
	"fmt"
)

// Error codes for the pipeline taxonomy.
const (
	CodeDecode     = "DECODE_ERROR"
	CodePreprocess = "PREPROCESS_ERROR"
	CodeEngine     = "ENGINE_ERROR"
	CodePersist    = "PERSIST_ERROR"
	CodeConfig     = "CONFIG_ERROR"
	CodeCanceled   = "CANCELED"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel registered for the error's code, so callers can
// write errors.Is(err, common.ErrDecode).
func (e *AppError) Is(target error) bool {
	s, ok := codeSentinels[e.Code]
	return ok && s == target
}

// Sentinels, one per taxonomy code.
var (
	ErrDecode       = errors.New("document could not be decoded")
	ErrPreprocess   = errors.New("preprocessing failed")
	ErrEngine       = errors.New("ocr engine failed")
	ErrPersist      = errors.New("page output could not be written")
	ErrInvalidInput = errors.New("invalid input")
	ErrCanceled     = errors.New("canceled")
)

var codeSentinels = map[string]error{
	CodeDecode:     ErrDecode,
	CodePreprocess: ErrPreprocess,
	CodeEngine:     ErrEngine,
	CodePersist:    ErrPersist,
	CodeConfig:     ErrInvalidInput,
	CodeCanceled:   ErrCanceled,
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func DecodeError(message string, cause error) error {
	return NewAppError(CodeDecode, message, cause)
}

func PreprocessError(message string, cause error) error {
	return NewAppError(CodePreprocess, message, cause)
}

func EngineError(message string, cause error) error {
	return NewAppError(CodeEngine, message, cause)
}

func PersistError(message string, cause error) error {
	return NewAppError(CodePersist, message, cause)
}

func ConfigError(message string) error {
	return NewAppError(CodeConfig, message, nil)
}

// CodeOf returns the taxonomy code carried by err, or "" when there is none.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
