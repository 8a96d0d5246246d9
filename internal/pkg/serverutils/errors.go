package serverutils

import "fmt"

// AppError carries an HTTP status and a user-safe, localized message.
// Internal detail goes to the log, never into Message.
type AppError struct {
	Status     int
	Message    string
	RetryAfter int // seconds, only set for rate limiting
	Internal   error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

func NewValidationError(message string) *AppError {
	return &AppError{Status: 400, Message: message}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Status:     429,
		Message:    "リクエスト制限に達しました。しばらくお待ちください。",
		RetryAfter: retryAfter,
	}
}

func NewInternalError(internal error) *AppError {
	return &AppError{
		Status:   500,
		Message:  "システムエラーが発生しました。しばらくお待ちください。",
		Internal: internal,
	}
}

func NewUpstreamError(internal error) *AppError {
	return &AppError{
		Status:   502,
		Message:  "AIサービスとの通信に失敗しました。しばらくお待ちください。",
		Internal: internal,
	}
}
