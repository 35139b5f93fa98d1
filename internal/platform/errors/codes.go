package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Auth errors
	CodeEmailTaken         Code = "EMAIL_TAKEN"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeMissingEmail       Code = "MISSING_EMAIL"
	CodeFederationFailed   Code = "FEDERATION_FAILED"

	// User errors
	CodeUserEmptyFirstName Code = "USER_EMPTY_FIRST_NAME"
	CodeUserEmptyLastName  Code = "USER_EMPTY_LAST_NAME"
	CodeUserEmptyEmail     Code = "USER_EMPTY_EMAIL"
	CodeUserEmptyPassword  Code = "USER_EMPTY_PASSWORD"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeDuplicateEmail Code = "DUPLICATE_EMAIL"
)

// HTTPStatus maps the error code to an HTTP status for rendering.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeEmailTaken, CodeDuplicateEmail:
		return http.StatusConflict
	case CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeMissingEmail, CodeFederationFailed,
		CodeUserEmptyFirstName, CodeUserEmptyLastName,
		CodeUserEmptyEmail, CodeUserEmptyPassword:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
