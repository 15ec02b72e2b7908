// Package apperr defines the domain error kinds and their HTTP mapping.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidArgument is returned when a required input is missing or blank.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidEmailAddress is returned when an email fails shape validation.
	ErrInvalidEmailAddress = errors.New("invalid email address")
	// ErrInvalidUserName is returned when a user name fails validation, and
	// on admin-listing denial.
	ErrInvalidUserName = errors.New("invalid user name")
	// ErrServer wraps unexpected storage or transport failures.
	ErrServer = errors.New("server error")
	// ErrUserDoesNotExist is returned when no user matches a lookup, including
	// session-token resolution (a token without a user cannot exist).
	ErrUserDoesNotExist = errors.New("user does not exist")
	// ErrUserExists is returned when a signup name is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrEmailExists is returned when a signup email belongs to another name.
	ErrEmailExists = errors.New("email already registered")
	// ErrProjectDoesNotExist covers both missing projects and denied access,
	// so callers cannot probe for private projects.
	ErrProjectDoesNotExist = errors.New("project does not exist")
	// ErrCouldNotSendEmail is returned when the email collaborator fails.
	ErrCouldNotSendEmail = errors.New("could not send email")
	// ErrCouldNotCreateCode is returned when persisting a one-time code fails.
	ErrCouldNotCreateCode = errors.New("could not create code")
	// ErrCouldNotVerifyCode is returned when a code is unknown, already used,
	// or token issuance fails.
	ErrCouldNotVerifyCode = errors.New("could not verify code")
	// ErrConflict is returned when a storage unique constraint fires and the
	// violated column cannot be attributed.
	ErrConflict = errors.New("conflict")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unrecognized errors are
// reported as an internal server error without leaking the cause.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidArgument.Error(), "INVALID_ARGUMENT")
	case errors.Is(err, ErrInvalidEmailAddress):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidEmailAddress.Error(), "INVALID_EMAIL_ADDRESS")
	case errors.Is(err, ErrInvalidUserName):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidUserName.Error(), "INVALID_USER_NAME")
	case errors.Is(err, ErrUserDoesNotExist):
		return NewHTTPError(http.StatusNotFound, ErrUserDoesNotExist.Error(), "USER_DOES_NOT_EXIST")
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, ErrUserExists.Error(), "USER_EXISTS")
	case errors.Is(err, ErrEmailExists):
		return NewHTTPError(http.StatusConflict, ErrEmailExists.Error(), "EMAIL_EXISTS")
	case errors.Is(err, ErrProjectDoesNotExist):
		return NewHTTPError(http.StatusNotFound, ErrProjectDoesNotExist.Error(), "PROJECT_DOES_NOT_EXIST")
	case errors.Is(err, ErrCouldNotSendEmail):
		return NewHTTPError(http.StatusBadRequest, ErrCouldNotSendEmail.Error(), "COULD_NOT_SEND_EMAIL")
	case errors.Is(err, ErrCouldNotCreateCode):
		return NewHTTPError(http.StatusBadRequest, ErrCouldNotCreateCode.Error(), "COULD_NOT_CREATE_CODE")
	case errors.Is(err, ErrCouldNotVerifyCode):
		return NewHTTPError(http.StatusBadRequest, ErrCouldNotVerifyCode.Error(), "COULD_NOT_VERIFY_CODE")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, ErrConflict.Error(), "CONFLICT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
