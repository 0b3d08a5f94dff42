package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"photostudio/internal/domain"
	"photostudio/internal/editing"
)

type submission struct {
	image       []byte
	mimeType    string
	instruction string
}

// scriptedEditor answers each Submit with the next queued outcome. When gate
// is non-nil every call blocks until a value is sent on it.
type scriptedEditor struct {
	mu       sync.Mutex
	outcomes []editing.Outcome
	calls    []submission
	gate     chan struct{}
}

func (e *scriptedEditor) Submit(ctx context.Context, image []byte, mimeType, instruction string) editing.Outcome {
	if e.gate != nil {
		<-e.gate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, submission{image: image, mimeType: mimeType, instruction: instruction})
	if len(e.outcomes) == 0 {
		return editing.Failure(editing.ErrorUnknown, "no scripted outcome")
	}
	out := e.outcomes[0]
	e.outcomes = e.outcomes[1:]
	return out
}

func (e *scriptedEditor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func success(name string) editing.Outcome {
	return editing.Success(domain.NewImage([]byte(name), "image/png"))
}

func original() domain.Image {
	return domain.NewImage([]byte("original"), "image/jpeg")
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("edit did not complete")
	}
}

func edit(t *testing.T, c *Controller, instruction string) {
	t.Helper()
	done, err := c.RequestEdit(context.Background(), instruction)
	if err != nil {
		t.Fatalf("RequestEdit(%q) returned error: %v", instruction, err)
	}
	wait(t, done)
}

func currentData(t *testing.T, c *Controller) string {
	t.Helper()
	img, ok := c.CurrentImage()
	if !ok {
		t.Fatal("CurrentImage() reported no image")
	}
	return string(img.Data)
}

func TestNewControllerIsEmpty(t *testing.T) {
	c := NewController(&scriptedEditor{})
	if c.State() != StateEmpty {
		t.Fatalf("State() = %s, want empty", c.State())
	}
	if _, ok := c.CurrentImage(); ok {
		t.Fatal("CurrentImage() should report no image")
	}
	if c.CanUndo() || c.CanRedo() {
		t.Fatal("fresh controller should not allow undo or redo")
	}
}

func TestSelectImage(t *testing.T) {
	c := NewController(&scriptedEditor{})
	if err := c.SelectImage(domain.Image{}); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("err = %v, want ErrInvalidImage", err)
	}
	if err := c.SelectImage(original()); err != nil {
		t.Fatalf("SelectImage returned error: %v", err)
	}
	if c.State() != StateReady {
		t.Fatalf("State() = %s, want ready", c.State())
	}
	if got := currentData(t, c); got != "original" {
		t.Fatalf("current = %q, want original", got)
	}
}

func TestRequestEditPreconditions(t *testing.T) {
	editor := &scriptedEditor{}
	c := NewController(editor)

	if _, err := c.RequestEdit(context.Background(), "x"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("err = %v, want ErrNoImage", err)
	}
	_ = c.SelectImage(original())
	if _, err := c.RequestEdit(context.Background(), "   "); !errors.Is(err, ErrEmptyInstruction) {
		t.Fatalf("err = %v, want ErrEmptyInstruction", err)
	}
	if editor.callCount() != 0 {
		t.Fatalf("editor called %d times, want 0", editor.callCount())
	}
	if c.Status().Kind != StatusIdle {
		t.Fatalf("status = %s, want idle", c.Status().Kind)
	}
}

func TestRequestEditFallsBackToPendingPrompt(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A")}}
	c := NewController(editor)
	_ = c.SelectImage(original())
	c.SetPendingPrompt("add sunglasses")

	edit(t, c, "")

	if editor.calls[0].instruction != "add sunglasses" {
		t.Fatalf("instruction = %q", editor.calls[0].instruction)
	}
	if string(editor.calls[0].image) != "original" || editor.calls[0].mimeType != "image/jpeg" {
		t.Fatalf("submitted %#v", editor.calls[0])
	}
	if c.PendingPrompt() != "add sunglasses" {
		t.Fatal("pending prompt should survive a successful edit")
	}
}

func TestCursorAtTailAfterEachSuccess(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A"), success("B"), success("C")}}
	c := NewController(editor)
	_ = c.SelectImage(original())

	for i, name := range []string{"A", "B", "C"} {
		edit(t, c, "edit "+name)
		history, index := c.History()
		if index != len(history)-1 || index != i {
			t.Fatalf("after %s: index = %d, len = %d", name, index, len(history))
		}
		if got := currentData(t, c); got != name {
			t.Fatalf("current = %q, want %q", got, name)
		}
	}
}

func TestUndoWalksBackToOriginal(t *testing.T) {
	names := []string{"A", "B", "C", "D"}
	for k := 0; k <= len(names); k++ {
		t.Run(fmt.Sprintf("undo %d", k), func(t *testing.T) {
			editor := &scriptedEditor{}
			for _, n := range names {
				editor.outcomes = append(editor.outcomes, success(n))
			}
			c := NewController(editor)
			_ = c.SelectImage(original())
			for _, n := range names {
				edit(t, c, n)
			}
			for i := 0; i < k; i++ {
				if err := c.Undo(); err != nil {
					t.Fatalf("Undo #%d returned error: %v", i+1, err)
				}
			}
			want := "original"
			if n := len(names) - k; n > 0 {
				want = names[n-1]
			}
			if got := currentData(t, c); got != want {
				t.Fatalf("current = %q, want %q", got, want)
			}
		})
	}
}

func TestNewEditTruncatesRedoBuffer(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A"), success("B"), success("C"), success("D")}}
	c := NewController(editor)
	_ = c.SelectImage(original())
	edit(t, c, "a")
	edit(t, c, "b")
	edit(t, c, "c")

	_ = c.Undo()
	_ = c.Undo()
	if !c.CanRedo() {
		t.Fatal("CanRedo() should be true after undo")
	}
	edit(t, c, "d")

	history, index := c.History()
	if len(history) != 2 || index != 1 {
		t.Fatalf("len = %d, index = %d, want 2 and 1", len(history), index)
	}
	if string(history[0].Image.Data) != "A" || string(history[1].Image.Data) != "D" {
		t.Fatalf("history = [%s %s], want [A D]", history[0].Image.Data, history[1].Image.Data)
	}
	if history[1].Instruction != "d" || history[1].ID == "" {
		t.Fatalf("entry metadata = %#v", history[1])
	}
	if c.CanRedo() {
		t.Fatal("B and C should no longer be reachable")
	}
}

func TestNewEditFromOriginalDropsWholeHistory(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A"), success("B")}}
	c := NewController(editor)
	_ = c.SelectImage(original())
	edit(t, c, "a")
	_ = c.Undo()
	edit(t, c, "b")

	history, index := c.History()
	if len(history) != 1 || index != 0 || string(history[0].Image.Data) != "B" {
		t.Fatalf("history = %d entries, index %d", len(history), index)
	}
}

func TestUndoRedoBoundsAreRejected(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A")}}
	c := NewController(editor)
	_ = c.SelectImage(original())

	if err := c.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("err = %v, want ErrNothingToUndo", err)
	}
	if err := c.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("err = %v, want ErrNothingToRedo", err)
	}

	edit(t, c, "a")
	if err := c.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("err = %v, want ErrNothingToRedo", err)
	}
	before := c.Snapshot()
	_ = c.Undo()
	if err := c.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("err = %v, want ErrNothingToUndo", err)
	}
	if err := c.Redo(); err != nil {
		t.Fatalf("Redo returned error: %v", err)
	}
	after := c.Snapshot()
	if after.HistoryIndex != before.HistoryIndex || after.HistoryLen != before.HistoryLen {
		t.Fatalf("state drifted: before %+v after %+v", before, after)
	}
}

func TestSelectImageResetsHistory(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A"), success("B"), editing.Failure(editing.ErrorService, "boom")}}
	c := NewController(editor)
	_ = c.SelectImage(original())
	edit(t, c, "a")
	edit(t, c, "b")
	_ = c.Undo()
	edit(t, c, "c")
	c.SetPendingPrompt("staged")

	if err := c.SelectImage(domain.NewImage([]byte("second"), "image/png")); err != nil {
		t.Fatalf("SelectImage returned error: %v", err)
	}
	snap := c.Snapshot()
	if snap.HistoryLen != 0 || snap.HistoryIndex != -1 {
		t.Fatalf("history not reset: %+v", snap)
	}
	if snap.Status.Kind != StatusIdle || snap.PendingPrompt != "" {
		t.Fatalf("status/prompt not reset: %+v", snap)
	}
	if got := currentData(t, c); got != "second" {
		t.Fatalf("current = %q, want second", got)
	}
}

func TestRefusalLeavesHistoryAndSetsStatus(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A"), editing.Refusal("I can't do that.")}}
	c := NewController(editor)
	_ = c.SelectImage(original())
	edit(t, c, "a")
	edit(t, c, "b")

	status := c.Status()
	if status.Kind != StatusError || status.Message != "I can't do that." {
		t.Fatalf("status = %+v", status)
	}
	history, index := c.History()
	if len(history) != 1 || index != 0 {
		t.Fatalf("history changed: len %d index %d", len(history), index)
	}
	if got := currentData(t, c); got != "A" {
		t.Fatalf("current = %q, want A", got)
	}
	if c.State() != StateReady {
		t.Fatalf("State() = %s, want ready", c.State())
	}
}

func TestConfigFailureMessage(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{
		editing.Classify(errors.New("gemini status 404 NOT_FOUND: Requested entity was not found.")),
	}}
	c := NewController(editor)
	_ = c.SelectImage(original())
	edit(t, c, "a")

	if got := c.Status().Message; got != editing.MsgConfig {
		t.Fatalf("status message = %q, want %q", got, editing.MsgConfig)
	}
}

func TestDismissError(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{editing.Failure(editing.ErrorUnknown, "nope")}}
	c := NewController(editor)
	_ = c.SelectImage(original())

	if err := c.DismissError(); !errors.Is(err, ErrNoError) {
		t.Fatalf("err = %v, want ErrNoError", err)
	}
	edit(t, c, "a")
	if err := c.DismissError(); err != nil {
		t.Fatalf("DismissError returned error: %v", err)
	}
	if c.Status().Kind != StatusIdle {
		t.Fatalf("status = %s, want idle", c.Status().Kind)
	}
}

func TestNewRequestClearsError(t *testing.T) {
	editor := &scriptedEditor{
		outcomes: []editing.Outcome{editing.Failure(editing.ErrorUnknown, "nope"), success("A")},
	}
	c := NewController(editor)
	_ = c.SelectImage(original())
	edit(t, c, "a")

	editor.gate = make(chan struct{})
	done, err := c.RequestEdit(context.Background(), "again")
	if err != nil {
		t.Fatalf("RequestEdit returned error: %v", err)
	}
	if c.Status().Kind != StatusLoading {
		t.Fatalf("status = %s, want loading", c.Status().Kind)
	}
	editor.gate <- struct{}{}
	wait(t, done)
	if c.Status().Kind != StatusIdle {
		t.Fatalf("status = %s, want idle", c.Status().Kind)
	}
}

func TestPendingRejectsMutationsButAllowsQueries(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A"), success("B"), success("C")}}
	c := NewController(editor)
	_ = c.SelectImage(original())
	edit(t, c, "a")
	edit(t, c, "b")

	editor.gate = make(chan struct{})
	done, err := c.RequestEdit(context.Background(), "c")
	if err != nil {
		t.Fatalf("RequestEdit returned error: %v", err)
	}

	if c.State() != StatePending {
		t.Fatalf("State() = %s, want pending", c.State())
	}
	if _, err := c.RequestEdit(context.Background(), "again"); !errors.Is(err, ErrPending) {
		t.Fatalf("second RequestEdit err = %v, want ErrPending", err)
	}
	if _, err := c.ApplyPreset(context.Background(), "cartoon"); !errors.Is(err, ErrPending) {
		t.Fatalf("ApplyPreset err = %v, want ErrPending", err)
	}
	if err := c.SelectImage(domain.NewImage([]byte("other"), "image/png")); !errors.Is(err, ErrPending) {
		t.Fatalf("SelectImage err = %v, want ErrPending", err)
	}
	if err := c.Undo(); err != nil {
		t.Fatalf("Undo while pending returned error: %v", err)
	}
	if got := currentData(t, c); got != "A" {
		t.Fatalf("current = %q, want A", got)
	}
	if err := c.Redo(); err != nil {
		t.Fatalf("Redo while pending returned error: %v", err)
	}
	if got := currentData(t, c); got != "B" {
		t.Fatalf("current = %q, want B", got)
	}

	editor.gate <- struct{}{}
	wait(t, done)

	if editor.callCount() != 3 {
		t.Fatalf("editor called %d times, want 3", editor.callCount())
	}
	history, index := c.History()
	if len(history) != 3 || index != 2 || string(history[2].Image.Data) != "C" {
		t.Fatalf("history len %d index %d", len(history), index)
	}
}

func TestResetDuringPendingDiscardsResult(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("late")}, gate: make(chan struct{})}
	c := NewController(editor)
	_ = c.SelectImage(original())

	done, err := c.RequestEdit(context.Background(), "a")
	if err != nil {
		t.Fatalf("RequestEdit returned error: %v", err)
	}
	c.ResetSession()
	if c.State() != StateEmpty {
		t.Fatalf("State() = %s, want empty", c.State())
	}
	_ = c.SelectImage(domain.NewImage([]byte("fresh"), "image/png"))

	editor.gate <- struct{}{}
	wait(t, done)

	snap := c.Snapshot()
	if snap.HistoryLen != 0 || snap.HistoryIndex != -1 {
		t.Fatalf("late result leaked into new session: %+v", snap)
	}
	if got := currentData(t, c); got != "fresh" {
		t.Fatalf("current = %q, want fresh", got)
	}
}

func TestRequestSurvivesCallerCancellation(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A")}, gate: make(chan struct{})}
	c := NewController(editor)
	_ = c.SelectImage(original())

	ctx, cancel := context.WithCancel(context.Background())
	done, err := c.RequestEdit(ctx, "a")
	if err != nil {
		t.Fatalf("RequestEdit returned error: %v", err)
	}
	cancel()
	editor.gate <- struct{}{}
	wait(t, done)

	if got := currentData(t, c); got != "A" {
		t.Fatalf("current = %q, want A", got)
	}
}

func TestApplyPreset(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A")}}
	c := NewController(editor)
	_ = c.SelectImage(original())

	if _, err := c.ApplyPreset(context.Background(), "nope"); !errors.Is(err, domain.ErrUnknownPreset) {
		t.Fatalf("err = %v, want ErrUnknownPreset", err)
	}
	done, err := c.ApplyPreset(context.Background(), "cyberpunk")
	if err != nil {
		t.Fatalf("ApplyPreset returned error: %v", err)
	}
	wait(t, done)

	preset, _ := domain.PresetByID("cyberpunk")
	if editor.calls[0].instruction != preset.Prompt {
		t.Fatalf("instruction = %q", editor.calls[0].instruction)
	}
	if c.PendingPrompt() != preset.Prompt {
		t.Fatalf("PendingPrompt() = %q", c.PendingPrompt())
	}
}

func TestResetSession(t *testing.T) {
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A")}}
	c := NewController(editor)
	_ = c.SelectImage(original())
	edit(t, c, "a")
	c.SetPendingPrompt("p")

	c.ResetSession()
	snap := c.Snapshot()
	if snap.State != StateEmpty || snap.HasOriginal || snap.HistoryLen != 0 || snap.HistoryIndex != -1 || snap.PendingPrompt != "" {
		t.Fatalf("snapshot after reset = %+v", snap)
	}
	if _, ok := c.CurrentImage(); ok {
		t.Fatal("CurrentImage() should report no image after reset")
	}
}

func TestResultTimestampUsesClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	editor := &scriptedEditor{outcomes: []editing.Outcome{success("A")}}
	c := NewController(editor, WithClock(func() time.Time { return fixed }))
	_ = c.SelectImage(original())
	edit(t, c, "a")

	res, ok := c.CurrentResult()
	if !ok || !res.CreatedAt.Equal(fixed) {
		t.Fatalf("CurrentResult() = %+v, %v", res, ok)
	}
}
