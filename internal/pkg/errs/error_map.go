/*
Package errs provides the application error type and the plaza server's error code constants.

This file maps each code to its CustomError template, standardizing the user
message and the HTTP status used when the error reaches the response layer.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status falls back to http.StatusOK at construction time.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Plaza Business Logic Errors
	ErrUserNotFound:   {Code: ErrUserNotFound, Message: "User not found. Please log in first.", Status: http.StatusNotFound},
	ErrAvatarInvalid:  {Code: ErrAvatarInvalid, Message: "Unknown avatar type."},
	ErrMessageTooLong: {Code: ErrMessageTooLong, Message: "Status message is too long."},
	ErrSessionBusy:    {Code: ErrSessionBusy, Message: "Plaza session is busy. Please try again."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
