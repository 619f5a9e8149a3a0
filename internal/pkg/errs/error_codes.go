/*
Package errs provides the application error type and the plaza server's error code constants.

Codes identify specific business or system failures both internally and in the
JSON envelope returned to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON could not be parsed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the per-IP limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Plaza Business Logic Errors
const (
	// ErrUserNotFound indicates an encounter was reported for a user id that
	// has never logged in to the plaza.
	ErrUserNotFound = 2101

	// ErrAvatarInvalid indicates that the supplied avatar variant is not one of
	// the known sprite variants.
	ErrAvatarInvalid = 2102

	// ErrMessageTooLong indicates that the status message exceeded the maximum length.
	ErrMessageTooLong = 2103

	// ErrSessionBusy indicates that a plaza viewing session could not accept
	// more input right now.
	ErrSessionBusy = 2201
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
