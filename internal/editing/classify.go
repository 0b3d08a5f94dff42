package editing

import (
	"errors"
	"strings"

	"photostudio/internal/providers/gemini"
)

const (
	entityNotFound = "Requested entity was not found"
	internalMarker = "INTERNAL"
)

// Classify maps a transport or service error to a user-actionable failure.
func Classify(err error) Outcome {
	if err == nil {
		return Failure(ErrorUnknown, MsgCommunication)
	}
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return Failure(ErrorConfig, MsgConfig)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, entityNotFound):
		return Failure(ErrorConfig, MsgConfig)
	case strings.Contains(msg, internalMarker):
		return Failure(ErrorService, MsgService)
	}
	if strings.TrimSpace(msg) == "" {
		return Failure(ErrorUnknown, MsgCommunication)
	}
	return Failure(ErrorUnknown, msg)
}
