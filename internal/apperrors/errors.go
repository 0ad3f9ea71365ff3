package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected failure in a dependency (database, cache, ...).
var ErrInternal = errors.New("internal error")

// ErrInvalidToken indicates an idempotency token that was never issued or was already consumed.
var ErrInvalidToken = errors.New("invalid or already used token")

// ErrTokenExpired indicates an idempotency token that was presented after its validity window.
var ErrTokenExpired = errors.New("token expired")

// ErrInvalidTransaction indicates a malformed transaction request (bad target account, currency mismatch, ...).
var ErrInvalidTransaction = errors.New("invalid transaction")

// ErrInsufficientBalance indicates that an account cannot cover a debit.
var ErrInsufficientBalance = errors.New("insufficient balance")

// AppError carries an HTTP-ish status code and a message alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError builds an AppError. err may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind tags, stable across releases; clients switch on these.
const (
	KindInvalidToken        = "INVALID_TOKEN"
	KindTokenExpired        = "TOKEN_EXPIRED"
	KindNotFound            = "RESOURCE_NOT_FOUND"
	KindInvalidTransaction  = "INVALID_TRANSACTION"
	KindInsufficientBalance = "INSUFFICIENT_BALANCE"
	KindValidation          = "VALIDATION_ERROR"
	KindDuplicate           = "DUPLICATE_RESOURCE"
	KindInternal            = "INTERNAL_ERROR"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidToken, KindInvalidToken},
	{ErrTokenExpired, KindTokenExpired},
	{ErrNotFound, KindNotFound},
	{ErrInvalidTransaction, KindInvalidTransaction},
	{ErrInsufficientBalance, KindInsufficientBalance},
	{ErrValidation, KindValidation},
	{ErrDuplicate, KindDuplicate},
}

// Kind returns the tag of the first known sentinel found in err's chain, or KindInternal.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
