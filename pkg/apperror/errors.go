package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrEmailNotVerified   = &AppError{Code: http.StatusForbidden, Message: "Email not verified"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// Registration commerce errors. All of these are recoverable by the
// caller and surface as user-facing messages, never process failures.
var (
	// ErrUnavailable: the product is not displayed for this user, a
	// ceiling is exhausted, or a per-user limit would be exceeded.
	ErrUnavailable = &AppError{Code: http.StatusConflict, Message: "Item is no longer available"}
	// ErrVoucherExhausted: the voucher's use limit is consumed by other
	// paid or reserved carts.
	ErrVoucherExhausted = &AppError{Code: http.StatusConflict, Message: "Voucher is no longer available"}
	// ErrVoucherInvalid: unknown code, or the code sits in another of
	// the user's reserved carts.
	ErrVoucherInvalid = &AppError{Code: http.StatusUnprocessableEntity, Message: "Voucher is not valid"}
	// ErrNotPayable: the invoice is void, already settled, or its cart
	// no longer validates.
	ErrNotPayable = &AppError{Code: http.StatusConflict, Message: "Invoice cannot be paid"}
	// ErrEmptyCart: checkout was attempted on a cart with no items.
	ErrEmptyCart = &AppError{Code: http.StatusUnprocessableEntity, Message: "Cart is empty"}
	// ErrDiscountConflict: a discount definition carries overlapping
	// product/category lines. Rejected at definition time.
	ErrDiscountConflict = &AppError{Code: http.StatusUnprocessableEntity, Message: "Discount lines overlap"}
	// ErrCreditNoteClaimed: the credit note was already applied or
	// cashed out.
	ErrCreditNoteClaimed = &AppError{Code: http.StatusConflict, Message: "Credit note has already been used"}
)

// NewUnavailableError creates an Unavailable error with a specific reason
func NewUnavailableError(reason string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: reason}
}

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewUnprocessableEntityError creates an unprocessable entity error with a custom message
func NewUnprocessableEntityError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
