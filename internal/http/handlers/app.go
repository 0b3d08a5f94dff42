package handlers

import (
	"encoding/json"
	"net/http"

	"photostudio/internal/session"
	"photostudio/internal/storage"
)

// App carries the dependencies shared by every handler.
type App struct {
	Session        *session.Controller
	Store          *storage.FileStore
	MaxUploadBytes int64
}

func NewApp(ctrl *session.Controller, store *storage.FileStore, maxUploadBytes int64) *App {
	return &App{Session: ctrl, Store: store, MaxUploadBytes: maxUploadBytes}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}
