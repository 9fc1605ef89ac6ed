package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure so transports can map it without knowing every sentinel.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindConflict     Kind = "Conflict"
	KindForbidden    Kind = "Forbidden"
	KindInvalidInput Kind = "InvalidInput"
	KindUpstream     Kind = "Upstream"
	KindInternal     Kind = "Internal"
)

type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (that *Error) Error() string {
	return that.Message
}

var (
	ErrUnknownUser  = New(KindNotFound, "unknown user")
	ErrRoomNotFound = New(KindNotFound, "room not found")
	ErrNoSession    = New(KindNotFound, "no game session for room")

	ErrRoomFull         = New(KindConflict, "room is full")
	ErrAlreadyPlaced    = New(KindConflict, "ship is already placed")
	ErrCellOccupied     = New(KindConflict, "cell is occupied by the opponent's ship")
	ErrSessionFinished  = New(KindConflict, "game is already finished")
	ErrOpponentNotReady = New(KindConflict, "opponent has not placed a ship yet")
	ErrGameNotStarted   = New(KindConflict, "game is not started")

	ErrNotAMember  = New(KindForbidden, "player is not a member of this room")
	ErrNotYourTurn = New(KindForbidden, "it's not your turn")

	ErrInvalidPlacement = New(KindInvalidInput, "invalid ship placement")
	ErrOutOfBounds      = New(KindInvalidInput, "coordinate is out of bounds")
	ErrInvalidInput     = New(KindInvalidInput, "invalid input")

	ErrUpstream = New(KindUpstream, "upstream service unavailable")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}

// IsDomain reports whether err carries a classified application error.
func IsDomain(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr)
}

// HTTPStatus maps a kind onto the status code used by both services.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show a caller. Unclassified errors are hidden.
func PublicMessage(err error) string {
	if !IsDomain(err) {
		return "internal error"
	}

	return err.Error()
}
