/*
Package errs provides custom error types and application-level error code constants.

These error codes identify protocol and system errors both inside the server and
in the error events sent back to WebSocket clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that event or request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that a frame or request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrUnsupportedEvent indicates that the client sent an event name the relay does not handle.
	ErrUnsupportedEvent = 1008

	// ErrNotFound indicates that the requested HTTP route does not exist.
	ErrNotFound = 1009
)

// 2xxx: Room and Message Protocol Errors
const (
	// ErrMessageContentTooLong indicates that the message body exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrNotJoined indicates that the connection sent a room-scoped event before joining a room.
	ErrNotJoined = 2301

	// ErrAlreadyJoined indicates a second join on a connection that already joined a room.
	ErrAlreadyJoined = 2302

	// ErrRoomMismatch indicates a message addressed to a room other than the one the connection joined.
	ErrRoomMismatch = 2303
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
