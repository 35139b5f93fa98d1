package web

import (
	"errors"

	apperrors "github.com/evereld/staffdesk/internal/platform/errors"
)

// isValidationError reports whether an error is a user-facing field
// validation failure rather than an internal fault.
func isValidationError(err error) bool {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case apperrors.CodeUserEmptyFirstName,
		apperrors.CodeUserEmptyLastName,
		apperrors.CodeUserEmptyEmail,
		apperrors.CodeUserEmptyPassword:
		return true
	}
	return false
}
