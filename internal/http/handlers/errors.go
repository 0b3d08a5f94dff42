package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"photostudio/internal/acquisition"
	"photostudio/internal/domain"
	"photostudio/internal/session"
)

// sessionError maps controller and acquisition errors onto HTTP responses.
func (a *App) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, session.ErrPending):
		a.error(w, http.StatusConflict, "pending", "an edit is in progress, please wait")
	case errors.Is(err, session.ErrNoImage):
		a.error(w, http.StatusConflict, "no_image", "select an image first")
	case errors.Is(err, session.ErrNothingToUndo):
		a.error(w, http.StatusConflict, "nothing_to_undo", "nothing to undo")
	case errors.Is(err, session.ErrNothingToRedo):
		a.error(w, http.StatusConflict, "nothing_to_redo", "nothing to redo")
	case errors.Is(err, session.ErrNoError):
		a.error(w, http.StatusConflict, "no_error", "there is no error to dismiss")
	case errors.Is(err, session.ErrEmptyInstruction):
		a.error(w, http.StatusUnprocessableEntity, "empty_instruction", "Please provide an editing prompt.")
	case errors.Is(err, session.ErrInvalidImage), errors.Is(err, domain.ErrEmptyImage):
		a.error(w, http.StatusBadRequest, "empty_image", "the uploaded image is empty")
	case errors.Is(err, domain.ErrUnknownPreset):
		a.error(w, http.StatusNotFound, "unknown_preset", "preset not found")
	case errors.Is(err, acquisition.ErrTooLarge), errors.As(err, &maxErr):
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "the uploaded image is too large")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("handlers: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "unexpected error")
	}
}
