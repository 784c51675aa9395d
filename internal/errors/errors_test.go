package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Session not found")
		assert.Equal(t, "NOT_FOUND: Session not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "nickname", "reason": "too long"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"Forbidden", func() *AppError { return Forbidden("test") }, ErrCodeForbidden},
		{"InvalidToken", func() *AppError { return InvalidToken("test") }, ErrCodeInvalidToken},
		{"NotFound", func() *AppError { return NotFound("Session") }, ErrCodeNotFound},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("code", "not numeric") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("nickname") }, ErrCodeMissingRequired},
		{"ContentUnavailable", func() *AppError { return ContentUnavailable() }, ErrCodeContentUnavailable},
		{"InvalidTransition", func() *AppError { return InvalidTransition("waiting", "review") }, ErrCodeInvalidTransition},
		{"SessionClosed", func() *AppError { return SessionClosed() }, ErrCodeSessionClosed},
		{"CodeSpaceExhausted", func() *AppError { return CodeSpaceExhausted() }, ErrCodeCodeSpaceExhausted},
		{"SessionFull", func() *AppError { return SessionFull() }, ErrCodeSessionFull},
		{"SessionAlreadyStarted", func() *AppError { return SessionAlreadyStarted() }, ErrCodeSessionAlreadyStarted},
		{"NicknameTaken", func() *AppError { return NicknameTaken("Ann") }, ErrCodeNicknameTaken},
		{"InvalidPhase", func() *AppError { return InvalidPhase("review") }, ErrCodeInvalidPhase},
		{"UnknownCard", func() *AppError { return UnknownCard("card-1") }, ErrCodeUnknownCard},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.constructor()
			assert.Equal(t, tt.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Run("IsAppError detects AppError", func(t *testing.T) {
		assert.True(t, IsAppError(NotFound("Session")))
		assert.False(t, IsAppError(errors.New("plain error")))
	})

	t.Run("AsAppError unwraps wrapped AppError", func(t *testing.T) {
		inner := SessionFull()
		wrapped := errors.Join(errors.New("outer"), inner)
		appErr, ok := AsAppError(wrapped)
		assert.True(t, ok)
		assert.Equal(t, ErrCodeSessionFull, appErr.Code)
	})

	t.Run("GetCode falls back to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeNicknameTaken, GetCode(NicknameTaken("Bob")))
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain error")))
	})
}
