package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrUnsupportedEvent:  {Code: ErrUnsupportedEvent, Message: "Unsupported event %q."},
	ErrNotFound:          {Code: ErrNotFound, Message: "Resource not found.", Status: http.StatusNotFound},

	// 2xxx: Room and Message Protocol Errors
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long (max %d bytes)."},
	ErrNotJoined:             {Code: ErrNotJoined, Message: "Join a room before sending messages."},
	ErrAlreadyJoined:         {Code: ErrAlreadyJoined, Message: "This connection already joined a room."},
	ErrRoomMismatch:          {Code: ErrRoomMismatch, Message: "Message room does not match the joined room."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
