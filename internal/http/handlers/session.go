package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photostudio/internal/acquisition"
	"photostudio/internal/domain"
	"photostudio/internal/preview"
	"photostudio/internal/session"
	"photostudio/pkg/zip"
)

type resultResponse struct {
	ID          string    `json:"id"`
	Instruction string    `json:"instruction"`
	MIMEType    string    `json:"mime_type"`
	CreatedAt   time.Time `json:"created_at"`
	ImageURL    string    `json:"image_url"`
}

type sessionResponse struct {
	State         string          `json:"state"`
	Status        string          `json:"status"`
	Error         string          `json:"error,omitempty"`
	HasOriginal   bool            `json:"has_original"`
	HistoryLength int             `json:"history_length"`
	HistoryIndex  int             `json:"history_index"`
	CanUndo       bool            `json:"can_undo"`
	CanRedo       bool            `json:"can_redo"`
	PendingPrompt string          `json:"pending_prompt"`
	Current       *resultResponse `json:"current,omitempty"`
}

func toSessionResponse(snap session.Snapshot) sessionResponse {
	resp := sessionResponse{
		State:         snap.State.String(),
		Status:        snap.Status.Kind.String(),
		HasOriginal:   snap.HasOriginal,
		HistoryLength: snap.HistoryLen,
		HistoryIndex:  snap.HistoryIndex,
		CanUndo:       snap.CanUndo,
		CanRedo:       snap.CanRedo,
		PendingPrompt: snap.PendingPrompt,
	}
	if snap.Status.Kind == session.StatusError {
		resp.Error = snap.Status.Message
	}
	if snap.Current != nil {
		resp.Current = &resultResponse{
			ID:          snap.Current.ID,
			Instruction: snap.Current.Instruction,
			MIMEType:    snap.Current.Image.MIMEType,
			CreatedAt:   snap.Current.CreatedAt,
			ImageURL:    "/v1/session/image",
		}
	}
	return resp
}

func (a *App) writeSession(w http.ResponseWriter, code int) {
	a.json(w, code, toSessionResponse(a.Session.Snapshot()))
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	a.writeSession(w, http.StatusOK)
}

func (a *App) ResetSession(w http.ResponseWriter, r *http.Request) {
	a.Session.ResetSession()
	a.writeSession(w, http.StatusOK)
}

// UploadImage accepts either a multipart form with a "file" field or the raw
// image bytes as the request body.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes+1<<20)

	var (
		body     io.Reader = r.Body
		declared           = r.Header.Get("Content-Type")
	)
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				a.sessionError(w, r, err)
				return
			}
			a.error(w, http.StatusBadRequest, "invalid_upload", "multipart field \"file\" is required")
			return
		}
		defer file.Close()
		body = file
		declared = header.Header.Get("Content-Type")
	}

	img, err := acquisition.FromReader(body, declared, a.MaxUploadBytes)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	if err := a.Session.SelectImage(img); err != nil {
		a.sessionError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().
		Str("mime", img.MIMEType).
		Int("bytes", len(img.Data)).
		Msg("handlers: image selected")
	a.writeSession(w, http.StatusCreated)
}

func (a *App) CurrentImage(w http.ResponseWriter, r *http.Request) {
	img, ok := a.Session.CurrentImage()
	if !ok {
		a.sessionError(w, r, session.ErrNoImage)
		return
	}
	a.writeImage(w, r, img, "ai-edited-photo")
}

func (a *App) OriginalImage(w http.ResponseWriter, r *http.Request) {
	img, ok := a.Session.OriginalImage()
	if !ok {
		a.sessionError(w, r, session.ErrNoImage)
		return
	}
	a.writeImage(w, r, img, "original-photo")
}

func (a *App) writeImage(w http.ResponseWriter, r *http.Request, img domain.Image, name string) {
	q := r.URL.Query()
	if raw := q.Get("max_width"); raw != "" {
		width, err := strconv.Atoi(raw)
		if err != nil || width <= 0 {
			a.error(w, http.StatusBadRequest, "invalid_max_width", "max_width must be a positive integer")
			return
		}
		scaled, err := preview.Thumbnail(img, width)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("handlers: thumbnail failed, serving original")
		} else {
			img = scaled
		}
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = domain.DefaultImageMIME
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "no-store")
	if q.Get("download") == "1" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+domain.Extension(mimeType)+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (a *App) SetPrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_json", "request body must be JSON")
		return
	}
	a.Session.SetPendingPrompt(req.Prompt)
	a.writeSession(w, http.StatusOK)
}

type editRequest struct {
	Instruction string `json:"instruction"`
	Preset      string `json:"preset"`
	Wait        bool   `json:"wait"`
}

// CreateEdit submits an instruction or a preset. The edit runs in the
// background; with wait the handler blocks until it resolves or the client
// goes away, otherwise it answers 202 with the pending snapshot.
func (a *App) CreateEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			a.error(w, http.StatusBadRequest, "invalid_json", "request body must be JSON")
			return
		}
	}
	if v := r.URL.Query().Get("wait"); v != "" {
		req.Wait, _ = strconv.ParseBool(v)
	}

	var (
		done <-chan struct{}
		err  error
	)
	if preset := strings.TrimSpace(req.Preset); preset != "" {
		done, err = a.Session.ApplyPreset(r.Context(), preset)
	} else {
		done, err = a.Session.RequestEdit(r.Context(), req.Instruction)
	}
	if err != nil {
		a.sessionError(w, r, err)
		return
	}

	if !req.Wait {
		a.writeSession(w, http.StatusAccepted)
		return
	}
	select {
	case <-done:
		a.writeSession(w, http.StatusOK)
	case <-r.Context().Done():
		zerolog.Ctx(r.Context()).Debug().Msg("handlers: client left before edit resolved")
	}
}

func (a *App) Undo(w http.ResponseWriter, r *http.Request) {
	if err := a.Session.Undo(); err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.writeSession(w, http.StatusOK)
}

func (a *App) Redo(w http.ResponseWriter, r *http.Request) {
	if err := a.Session.Redo(); err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.writeSession(w, http.StatusOK)
}

func (a *App) DismissError(w http.ResponseWriter, r *http.Request) {
	if err := a.Session.DismissError(); err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.writeSession(w, http.StatusOK)
}

type exportResponse struct {
	Key      string `json:"key"`
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Bytes    int    `json:"bytes"`
}

// Export writes the current image under exports/ in the file store. With
// format=zip it writes the whole session instead.
func (a *App) Export(w http.ResponseWriter, r *http.Request) {
	if a.Store == nil {
		a.error(w, http.StatusServiceUnavailable, "export_disabled", "export storage is not configured")
		return
	}
	if r.URL.Query().Get("format") == "zip" {
		a.exportArchive(w, r)
		return
	}
	img, ok := a.Session.CurrentImage()
	if !ok {
		a.sessionError(w, r, session.ErrNoImage)
		return
	}
	name := "original-" + uuid.NewString()
	if result, ok := a.Session.CurrentResult(); ok {
		name = result.ID
	}
	key := "exports/" + name + domain.Extension(img.MIMEType)

	stored, err := a.Store.Write(r.Context(), key, img.Data)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("key", key).Msg("handlers: image exported")
	a.json(w, http.StatusCreated, exportResponse{
		Key:      stored,
		Path:     filepath.Join(a.Store.BasePath(), filepath.FromSlash(stored)),
		MIMEType: img.MIMEType,
		Bytes:    len(img.Data),
	})
}

type manifestEntry struct {
	File        string    `json:"file"`
	ID          string    `json:"id,omitempty"`
	Instruction string    `json:"instruction,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type archiveManifest struct {
	HistoryIndex int             `json:"history_index"`
	Entries      []manifestEntry `json:"entries"`
}

// exportArchive zips the original, every history entry and a manifest.
func (a *App) exportArchive(w http.ResponseWriter, r *http.Request) {
	original, ok := a.Session.OriginalImage()
	if !ok {
		a.sessionError(w, r, session.ErrNoImage)
		return
	}
	history, index := a.Session.History()

	originalName := "original" + domain.Extension(original.MIMEType)
	manifest := archiveManifest{HistoryIndex: index, Entries: []manifestEntry{{File: originalName}}}
	entries := []zip.Entry{{Filename: originalName, Data: original.Data, Modified: time.Now()}}
	for i, result := range history {
		name := fmt.Sprintf("%02d-%s%s", i+1, result.ID, domain.Extension(result.Image.MIMEType))
		entries = append(entries, zip.Entry{Filename: name, Data: result.Image.Data, Modified: result.CreatedAt})
		manifest.Entries = append(manifest.Entries, manifestEntry{
			File:        name,
			ID:          result.ID,
			Instruction: result.Instruction,
			CreatedAt:   result.CreatedAt,
		})
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	entries = append(entries, zip.Entry{Filename: "manifest.json", Data: manifestJSON, Modified: time.Now()})

	archive, err := zip.Archive(entries)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	stored, err := a.Store.Write(r.Context(), "exports/session-"+uuid.NewString()+".zip", archive)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("key", stored).Int("entries", len(entries)).Msg("handlers: session archived")
	a.json(w, http.StatusCreated, exportResponse{
		Key:      stored,
		Path:     filepath.Join(a.Store.BasePath(), filepath.FromSlash(stored)),
		MIMEType: "application/zip",
		Bytes:    len(archive),
	})
}
