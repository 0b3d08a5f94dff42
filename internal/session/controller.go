package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"photostudio/internal/domain"
	"photostudio/internal/editing"
	"photostudio/internal/infra"
)

// Editor is the gateway the controller submits edits to.
type Editor interface {
	Submit(ctx context.Context, image []byte, mimeType, instruction string) editing.Outcome
}

// Controller owns one editing session: the original image, a linear history
// of edit results with a cursor, the request status and the staged prompt.
// It is safe for concurrent use; at most one edit is outstanding at a time.
type Controller struct {
	editor Editor
	logger *infra.Logger
	now    func() time.Time

	mu       sync.Mutex
	original *domain.Image
	history  []domain.EditResult
	index    int
	status   Status
	prompt   string
	// generation changes whenever the original image slot is replaced or
	// cleared, so a result from an older session is never applied.
	generation uint64
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *infra.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController returns an empty session bound to editor.
func NewController(editor Editor, opts ...Option) *Controller {
	c := &Controller{
		editor: editor,
		logger: infra.NopLogger(),
		now:    time.Now,
		index:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectImage starts a new session on img, discarding history, status and
// the staged prompt. It is refused while an edit is pending.
func (c *Controller) SelectImage(img domain.Image) error {
	if img.IsZero() {
		return ErrInvalidImage
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status.Kind == StatusLoading {
		return ErrPending
	}
	c.original = &img
	c.history = nil
	c.index = -1
	c.status = Status{Kind: StatusIdle}
	c.prompt = ""
	c.generation++

	c.logger.Info().
		Str("mime", img.MIMEType).
		Int("bytes", len(img.Data)).
		Msg("session: image selected")
	return nil
}

// RequestEdit submits instruction, or the staged prompt when instruction is
// blank, against the original image. The call returns once the request is
// in flight; the returned channel is closed after the outcome is applied.
// The request is detached from ctx cancellation and always runs to completion.
func (c *Controller) RequestEdit(ctx context.Context, instruction string) (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Kind == StatusLoading {
		return nil, ErrPending
	}
	if c.original == nil {
		return nil, ErrNoImage
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		instruction = strings.TrimSpace(c.prompt)
	}
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}

	c.status = Status{Kind: StatusLoading}
	src := *c.original
	gen := c.generation
	done := make(chan struct{})

	c.logger.Info().
		Str("instruction", instruction).
		Int("history_index", c.index).
		Msg("session: edit requested")

	go func() {
		defer close(done)
		outcome := c.editor.Submit(context.WithoutCancel(ctx), src.Data, src.MIMEType, instruction)
		c.resolve(gen, instruction, outcome)
	}()
	return done, nil
}

// ApplyPreset stages the preset's prompt and submits it.
func (c *Controller) ApplyPreset(ctx context.Context, id string) (<-chan struct{}, error) {
	preset, err := domain.PresetByID(id)
	if err != nil {
		return nil, fmt.Errorf("apply preset %q: %w", id, err)
	}
	c.mu.Lock()
	if c.status.Kind == StatusLoading {
		c.mu.Unlock()
		return nil, ErrPending
	}
	c.prompt = preset.Prompt
	c.mu.Unlock()
	return c.RequestEdit(ctx, preset.Prompt)
}

func (c *Controller) resolve(gen uint64, instruction string, outcome editing.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Warn().
			Str("outcome", outcome.Kind.String()).
			Msg("session: discarding result for a session that was reset")
		return
	}

	if !outcome.OK() {
		c.status = Status{Kind: StatusError, Message: outcome.Message()}
		c.logger.Warn().
			Str("outcome", outcome.Kind.String()).
			Str("kind", string(outcome.ErrKind)).
			Str("message", outcome.Message()).
			Msg("session: edit failed")
		return
	}

	kept := make([]domain.EditResult, c.index+1, c.index+2)
	copy(kept, c.history[:c.index+1])
	c.history = append(kept, domain.EditResult{
		ID:          uuid.NewString(),
		Image:       outcome.Image,
		Instruction: instruction,
		CreatedAt:   c.now(),
	})
	c.index = len(c.history) - 1
	c.status = Status{Kind: StatusIdle}

	c.logger.Info().
		Int("history_len", len(c.history)).
		Int("history_index", c.index).
		Msg("session: edit applied")
}

// Undo moves the cursor one step back. Undoing the first edit shows the
// original again.
func (c *Controller) Undo() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index < 0 {
		return ErrNothingToUndo
	}
	c.index--
	return nil
}

// Redo moves the cursor one step forward.
func (c *Controller) Redo() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index >= len(c.history)-1 {
		return ErrNothingToRedo
	}
	c.index++
	return nil
}

// ResetSession clears everything. A pending request keeps running but its
// result is discarded.
func (c *Controller) ResetSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.original = nil
	c.history = nil
	c.index = -1
	c.status = Status{Kind: StatusIdle}
	c.prompt = ""
	c.generation++
	c.logger.Info().Msg("session: reset")
}

// DismissError clears an error status.
func (c *Controller) DismissError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status.Kind != StatusError {
		return ErrNoError
	}
	c.status = Status{Kind: StatusIdle}
	return nil
}

// SetPendingPrompt stages text for the next RequestEdit.
func (c *Controller) SetPendingPrompt(text string) {
	c.mu.Lock()
	c.prompt = text
	c.mu.Unlock()
}

// PendingPrompt returns the staged prompt.
func (c *Controller) PendingPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

// CurrentImage returns the entry under the cursor, else the original. The
// boolean is false when there is no image at all.
func (c *Controller) CurrentImage() (domain.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index >= 0 {
		return c.history[c.index].Image, true
	}
	if c.original != nil {
		return *c.original, true
	}
	return domain.Image{}, false
}

// CurrentResult returns the history entry under the cursor, if any.
func (c *Controller) CurrentResult() (domain.EditResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index < 0 {
		return domain.EditResult{}, false
	}
	return c.history[c.index], true
}

// OriginalImage returns the session's source image.
func (c *Controller) OriginalImage() (domain.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.original == nil {
		return domain.Image{}, false
	}
	return *c.original, true
}

// Status returns the current request status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// State derives the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.original == nil:
		return StateEmpty
	case c.status.Kind == StatusLoading:
		return StatePending
	default:
		return StateReady
	}
}

// CanUndo reports whether Undo would succeed.
func (c *Controller) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index >= 0
}

// CanRedo reports whether Redo would succeed.
func (c *Controller) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index < len(c.history)-1
}

// History returns a copy of the edit history and the cursor.
func (c *Controller) History() ([]domain.EditResult, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.EditResult, len(c.history))
	copy(out, c.history)
	return out, c.index
}

// Snapshot is a consistent read of the whole session.
type Snapshot struct {
	State         State
	Status        Status
	HasOriginal   bool
	HistoryLen    int
	HistoryIndex  int
	CanUndo       bool
	CanRedo       bool
	PendingPrompt string
	Current       *domain.EditResult
}

// Snapshot reads every query under one lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:         c.stateLocked(),
		Status:        c.status,
		HasOriginal:   c.original != nil,
		HistoryLen:    len(c.history),
		HistoryIndex:  c.index,
		CanUndo:       c.index >= 0,
		CanRedo:       c.index < len(c.history)-1,
		PendingPrompt: c.prompt,
	}
	if c.index >= 0 {
		current := c.history[c.index]
		snap.Current = &current
	}
	return snap
}
