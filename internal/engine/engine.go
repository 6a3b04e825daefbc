package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/keyline/internal/app"
	"github.com/dshills/keyline/internal/config"
	"github.com/dshills/keyline/internal/edit"
	"github.com/dshills/keyline/internal/history"
	"github.com/dshills/keyline/internal/key"
	"github.com/dshills/keyline/internal/keymap"
	"github.com/dshills/keyline/internal/reader"
	"github.com/dshills/keyline/internal/render"
	"github.com/dshills/keyline/internal/term"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("engine closed")

// Handler executes a bound action. arg is the numeric argument,
// 1 when none was given.
type Handler func(e *Engine, ev key.Event, arg int) error

// RenderHelper supplies an auxiliary status line (completion hints,
// syntax cues) shown when the engine has none of its own.
type RenderHelper func(line string, cursor int) string

// Engine is the line editor. One engine owns one edit buffer, kill
// ring, history log, keymap set, renderer, and key reader. Construct
// it once and drive it from a single goroutine; the background key
// reader is the only other goroutine involved.
type Engine struct {
	t      term.Terminal
	cfg    config.Settings
	log    *app.Logger
	rdCfg  reader.Config
	rd     *reader.Reader
	buf    *edit.Buffer
	ring   *edit.KillRing
	hist   *history.Log
	maps   *keymap.Set
	rend   *render.Renderer
	keyLog *key.Log

	actions map[string]Handler
	prompt  string
	status  string
	helper  RenderHelper

	started bool
	closed  bool
	exiting bool

	// Dispatch epilogue state: the previous action name drives kill
	// coalescing and yank-pop eligibility; groupClass is the open
	// composite undo group, if any.
	lastAction string
	groupClass string
	yankStart  int
	yankEnd    int

	// recallPrefix is the text typed before the current recall
	// session began; Up/Down only visit entries that start with it.
	recallPrefix string

	editing   bool
	editStart time.Time

	// ctx is the context of the ReadLine call in flight, for handlers
	// that read additional keys (quoted-insert, incremental search).
	ctx context.Context

	// Single-pending deferred insert. A request made while one is
	// pending is dropped.
	defMu    sync.Mutex
	deferred string
	pending  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSettings applies a loaded configuration.
func WithSettings(s config.Settings) Option {
	return func(e *Engine) { e.cfg = s }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *app.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPrompt sets the prompt text.
func WithPrompt(p string) Option {
	return func(e *Engine) { e.prompt = p }
}

// WithRenderHelper installs a status-line hook.
func WithRenderHelper(h RenderHelper) Option {
	return func(e *Engine) { e.helper = h }
}

// WithReaderConfig overrides the key reader timing, mainly for tests.
func WithReaderConfig(cfg reader.Config) Option {
	return func(e *Engine) { e.rdCfg = cfg }
}

// New creates an engine on a terminal. The key reader goroutine and
// history file are not touched until the first ReadLine.
func New(t term.Terminal, opts ...Option) *Engine {
	e := &Engine{
		t:      t,
		cfg:    config.Default(),
		log:    app.Nop(),
		prompt: "> ",
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("engine")

	e.buf = edit.NewBuffer()
	e.ring = edit.NewKillRing(e.cfg.KillRingSize)
	e.keyLog = key.NewLog(0)
	e.actions = builtinActions()
	e.maps = defaultKeymaps()
	if err := e.applyMode(e.cfg.Mode); err != nil {
		e.log.Warn("bad edit mode %q: %v", e.cfg.Mode, err)
	}
	if err := e.ApplyBindings(e.cfg.Bindings); err != nil {
		e.log.Warn("configured bindings: %v", err)
	}
	return e
}

// ApplyBindings installs configured bindings into their named tables,
// replacing earlier bindings for the same keys and leaving everything
// else alone. Bad entries are skipped; the first error is returned.
func (e *Engine) ApplyBindings(bindings []config.KeyBinding) error {
	var firstErr error
	for _, kb := range bindings {
		if err := e.bindSpec(kb.Table, kb.Keys, kb.Action); err != nil {
			e.log.Warn("bad binding %q in %q: %v", kb.Keys, kb.Table, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ensureStarted performs the one-time lazy initialization: history
// load, renderer, and the reader goroutine.
func (e *Engine) ensureStarted() {
	if e.started {
		return
	}
	e.started = true

	e.hist = history.New(
		history.WithCapacity(e.cfg.HistoryCapacity),
		history.WithFile(e.cfg.HistoryPath, e.cfg.HistorySave),
		history.WithRecallDedup(e.cfg.RecallDedup),
	)
	e.rend = render.New(e.t)
	e.rend.SetPromptStyle(e.cfg.PromptStyle)
	e.rend.SetStatusStyle(e.cfg.StatusStyle)
	e.rd = reader.New(e.t, e.rdCfg)
	e.log.Debug("engine started")
}

// ReadLine blocks until the user accepts a line, the context is
// cancelled, or the engine shuts down. A panic in a bound action is
// recovered here: the typed text is preserved and the loop resumes.
func (e *Engine) ReadLine(ctx context.Context) (Result, error) {
	if e.closed {
		return nil, ErrClosed
	}
	e.ensureStarted()
	e.ctx = ctx
	e.exiting = false
	if !e.editing {
		e.editing = true
		e.editStart = time.Now()
	}

	for {
		res, err := e.readLoop(ctx)
		if err != nil {
			return nil, err
		}
		if res != nil {
			if _, ok := res.(Exiting); ok {
				if ferr := e.hist.Close(); ferr != nil {
					e.log.Warn("history flush: %v", ferr)
				}
			}
			return res, nil
		}
		// A nil, nil pair means a recovered panic; go around again.
	}
}

func (e *Engine) readLoop(ctx context.Context) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.recoverCrash(r)
			res, err = nil, nil
		}
	}()

	for {
		if rerr := e.render(); rerr != nil {
			return nil, rerr
		}
		ev, rerr := e.rd.ReadKey(ctx, e.idle)
		if rerr != nil {
			return e.unwind(ctx, rerr)
		}
		e.keyLog.Append(ev)
		e.status = ""

		res, err = e.dispatch(ctx, ev, 1)
		if res != nil || err != nil {
			return res, err
		}
		if e.buf.IsAccepted() {
			return e.finishAccept()
		}
		if e.exiting {
			return Exiting{}, nil
		}
	}
}

// unwind maps a read error to the matching result. Closing means
// exit; context errors mean cooperative cancellation with the buffer
// left intact.
func (e *Engine) unwind(ctx context.Context, err error) (Result, error) {
	switch {
	case errors.Is(err, reader.ErrClosing):
		return Exiting{}, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.log.Debug("read cancelled with %d runes pending", e.buf.Len())
		return Cancelled{}, nil
	default:
		return nil, err
	}
}

func (e *Engine) finishAccept() (Result, error) {
	line := e.buf.Text()
	e.closeGroup()
	e.hist.EndRecall()
	e.status = ""
	if err := e.render(); err != nil {
		return nil, err
	}
	if err := e.rend.Finish(); err != nil {
		return nil, err
	}
	if line != "" {
		e.hist.Add(line, time.Since(e.editStart))
	}
	e.buf.Reset()
	e.editing = false
	return Accepted{Line: line}, nil
}

// recoverCrash restores the buffer after a handler panic. The typed
// text survives; the undo log does not, which beats losing the line.
func (e *Engine) recoverCrash(r interface{}) {
	text := e.buf.Text()
	cursor := e.buf.Cursor()
	transcript := e.keyLog.Transcript(120)

	e.log.Error("handler panic: %v keys=%s", r, transcript)

	e.groupClass = ""
	e.lastAction = ""
	e.buf.Reset()
	e.buf.Restore(text, cursor)
	e.status = fmt.Sprintf("error: %v [keys: %s]", r, transcript)
	e.ding()
	e.rend.Invalidate()
}

// idle runs on the consumer goroutine while ReadKey waits. It drains
// the deferred-insert slot.
func (e *Engine) idle() {
	e.defMu.Lock()
	text := e.deferred
	had := e.pending
	e.pending = false
	e.deferred = ""
	e.defMu.Unlock()

	if !had || text == "" {
		return
	}
	e.buf.Insert(text)
	if err := e.render(); err != nil {
		e.log.Warn("render after deferred insert: %v", err)
	}
}

func (e *Engine) render() error {
	status := e.status
	if status == "" && e.helper != nil {
		status = e.helper(e.buf.Text(), e.buf.Cursor())
	}
	return e.rend.Render(e.prompt, e.buf.Text(), e.buf.Cursor(), status)
}

func (e *Engine) ding() {
	switch e.cfg.Bell {
	case config.BellVisible:
		e.status = "*ding*"
	case config.BellNone:
	default:
		e.t.Beep()
	}
}

// Insert appends text at the cursor as if typed.
func (e *Engine) Insert(text string) {
	e.buf.Insert(text)
	if e.started && e.editing {
		if err := e.render(); err != nil {
			e.log.Warn("render after insert: %v", err)
		}
	}
}

// InsertDeferred queues text to be inserted at the next idle point.
// If a deferred insert is already pending the new request is dropped.
func (e *Engine) InsertDeferred(text string) {
	e.defMu.Lock()
	defer e.defMu.Unlock()
	if e.pending {
		return
	}
	e.pending = true
	e.deferred = text
}

// RevertLine undoes every recorded change, restoring the line to its
// state at the start of editing.
func (e *Engine) RevertLine() {
	e.closeGroup()
	for e.buf.Undo() {
	}
}

// AcceptLine marks the buffer accepted, as if Enter had been pressed.
// The running ReadLine loop completes on the next iteration.
func (e *Engine) AcceptLine() {
	e.buf.Accept()
}

// Buffer exposes the current line for hosts and tests.
func (e *Engine) Buffer() *edit.Buffer {
	return e.buf
}

// History exposes the history log.
func (e *Engine) History() *history.Log {
	e.ensureStarted()
	return e.hist
}

// SetPrompt changes the prompt for subsequent renders.
func (e *Engine) SetPrompt(p string) {
	e.prompt = p
}

// Mode returns the active keymap name.
func (e *Engine) Mode() string {
	return e.maps.ActiveName()
}

// SetMode switches the binding philosophy at runtime. Buffer state is
// untouched.
func (e *Engine) SetMode(mode config.EditMode) error {
	return e.applyMode(mode)
}

func (e *Engine) applyMode(mode config.EditMode) error {
	switch mode {
	case config.ModeVi:
		return e.activate(tableViInsert)
	case config.ModeEmacs, "":
		return e.activate(tableEmacs)
	default:
		return fmt.Errorf("unknown edit mode %q", mode)
	}
}

// activate switches the keymap table and matches the cursor shape to
// the mode: block in vi command mode, bar in vi insert.
func (e *Engine) activate(table string) error {
	if err := e.maps.Activate(table); err != nil {
		return err
	}
	switch table {
	case tableViCommand:
		e.t.SetCursorShape(term.ShapeBlock)
	case tableViInsert:
		e.t.SetCursorShape(term.ShapeBar)
	default:
		e.t.SetCursorShape(term.ShapeDefault)
	}
	return nil
}

// SetKeyHandler binds keys ("C-t", or "C-x C-u" for a chord) to an
// action in the active table. A non-nil handler registers (or
// replaces) the action under name; with a nil handler the name must
// already be a registered action.
func (e *Engine) SetKeyHandler(keys, name, desc string, h Handler) error {
	if h != nil {
		e.actions[name] = h
	} else if _, ok := e.actions[name]; !ok {
		return fmt.Errorf("unknown action %q", name)
	}
	return e.bindSpec(e.maps.ActiveName(), keys, name)
}

func (e *Engine) bindSpec(table, keys, action string) error {
	t, ok := e.maps.Get(table)
	if !ok {
		return fmt.Errorf("unknown keymap %q", table)
	}
	b := keymap.Binding{Action: action, Kind: keymap.KindAction}
	if strings.ContainsRune(strings.TrimSpace(keys), ' ') {
		chord, err := key.ParseChord(keys)
		if err != nil {
			return err
		}
		t.BindChord(chord, b)
		return nil
	}
	ev, err := key.Parse(keys)
	if err != nil {
		return err
	}
	t.Bind(ev, b)
	return nil
}

// Close shuts the engine down: the reader goroutine exits and history
// is flushed per its save policy.
func (e *Engine) Close() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	if !e.started {
		return nil
	}
	e.rd.Close()
	return e.hist.Close()
}
