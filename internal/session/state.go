package session

import "errors"

// State is the coarse lifecycle position of a session.
type State int

const (
	StateEmpty State = iota
	StateReady
	StatePending
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StatePending:
		return "pending"
	default:
		return "unknown"
	}
}

// StatusKind is the request status shown next to the image.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusLoading
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Status pairs a kind with the error message when Kind is StatusError.
type Status struct {
	Kind    StatusKind
	Message string
}

var (
	ErrNoImage          = errors.New("session: no image selected")
	ErrInvalidImage     = errors.New("session: image has no content")
	ErrEmptyInstruction = errors.New("session: instruction is empty")
	ErrPending          = errors.New("session: operation not allowed while an edit is pending")
	ErrNothingToUndo    = errors.New("session: nothing to undo")
	ErrNothingToRedo    = errors.New("session: nothing to redo")
	ErrNoError          = errors.New("session: no error to dismiss")
)
