// Package client implements the conversion client: the editor state machine
// that calls the gateway, records history and auto-saves state.
package client

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pricofy/omnicode/internal/domain"
	"github.com/pricofy/omnicode/internal/languages"
	"github.com/pricofy/omnicode/internal/persistence"
)

// Phase is the client's position in the conversion state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInvalid
	PhaseConverting
	PhaseSucceeded
	PhaseRejected
	PhaseEngineError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInvalid:
		return "invalid"
	case PhaseConverting:
		return "converting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseRejected:
		return "rejected"
	case PhaseEngineError:
		return "engine_error"
	default:
		return "unknown"
	}
}

// Error titles and default details shown in the editor.
const (
	TitleSnippetRequired = "Snippet Required"
	TitleInvalidRequest  = "Invalid Request"
	TitleRejected        = "Conversion Rejected"
	TitleEngineError     = "Engine Error"

	DetailSnippetRequired = "The conversion engine requires source input to proceed."
	DetailUnsupportedPair = "Select a supported source and target language."
	DetailRejected        = "The architectural constraints of the target language prevented a direct port."
	DetailEngineError     = "System connectivity interrupted. Please retry."
	DetailTimeout         = "The conversion engine did not respond in time. Please retry."
)

// DefaultTimeout bounds a single gateway call from the client.
const DefaultTimeout = 150 * time.Second

// persistTimeout bounds each best-effort persistence call.
const persistTimeout = 10 * time.Second

var (
	ErrEmptySource        = errors.New("source code is required")
	ErrConversionInFlight = errors.New("a conversion is already in progress")
	ErrStaleResult        = errors.New("conversion result superseded")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Gateway is the conversion operation the client calls.
type Gateway interface {
	Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error)
}

// Options configures a Client.
type Options struct {
	Store          persistence.Store
	Registry       *languages.Registry
	DebounceWindow time.Duration
	Timeout        time.Duration
	Logger         *slog.Logger
}

// Client owns the editor state. All mutations go through its methods and
// are serialized by one mutex; the gateway call runs without the lock.
type Client struct {
	gateway  Gateway
	store    persistence.Store
	registry *languages.Registry
	timeout  time.Duration
	logger   *slog.Logger
	saver    *Debouncer

	mu      sync.Mutex
	session domain.Session
	state   domain.EditorState
	phase   Phase
	epoch   uint64
	history []domain.HistoryEntry

	background sync.WaitGroup
}

// New creates a Client with an anonymous session and default editor state.
func New(gw Gateway, opts Options) *Client {
	store := opts.Store
	if store == nil {
		store = persistence.Unconfigured{}
	}
	registry := opts.Registry
	if registry == nil {
		registry = languages.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		gateway:  gw,
		store:    store,
		registry: registry,
		timeout:  timeout,
		logger:   logger,
		saver:    NewDebouncer(opts.DebounceWindow),
		session:  domain.Anonymous{},
		state:    domain.NewEditorState(),
	}
}

// State returns a copy of the editor state.
func (c *Client) State() domain.EditorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Phase returns the current state machine phase.
func (c *Client) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// History returns the cached history, most recent first.
func (c *Client) History() []domain.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.HistoryEntry, len(c.history))
	copy(out, c.history)
	return out
}

// Session returns the current session.
func (c *Client) Session() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSource replaces the source buffer.
func (c *Client) SetSource(code string) {
	c.edit(func(s *domain.EditorState) { s.SourceCode = code })
}

// SetSourceLang selects the source language; "auto" asks the model to detect it.
func (c *Client) SetSourceLang(id string) {
	c.edit(func(s *domain.EditorState) { s.SourceLang = id })
}

// SetTargetLang selects the target language.
func (c *Client) SetTargetLang(id string) {
	c.edit(func(s *domain.EditorState) { s.TargetLang = id })
}

// edit applies a user edit. A finished conversion returns to Idle; a
// conversion in flight keeps running.
func (c *Client) edit(fn func(*domain.EditorState)) {
	c.mu.Lock()
	fn(&c.state)
	if c.phase != PhaseConverting {
		c.phase = PhaseIdle
	}
	c.mu.Unlock()

	c.scheduleSave()
}

// Convert sends the current source to the gateway and applies the result.
// It returns nil for a semantic rejection; callers read Phase and State.
func (c *Client) Convert(ctx context.Context) error {
	c.mu.Lock()
	if c.phase == PhaseConverting {
		c.mu.Unlock()
		return ErrConversionInFlight
	}
	if strings.TrimSpace(c.state.SourceCode) == "" {
		c.phase = PhaseInvalid
		c.state.TargetCode = ""
		c.state.ErrorTitle = TitleSnippetRequired
		c.state.ErrorDetail = DetailSnippetRequired
		c.mu.Unlock()
		return ErrEmptySource
	}
	if err := c.checkLanguages(); err != nil {
		c.phase = PhaseInvalid
		c.state.TargetCode = ""
		c.state.ErrorTitle = TitleInvalidRequest
		c.state.ErrorDetail = DetailUnsupportedPair
		c.mu.Unlock()
		return err
	}

	c.epoch++
	token := c.epoch
	req := domain.ConversionRequest{
		SourceCode: c.state.SourceCode,
		SourceLang: c.state.SourceLang,
		TargetLang: c.state.TargetLang,
	}
	c.phase = PhaseConverting
	c.state.IsConverting = true
	c.state.ErrorTitle = ""
	c.state.ErrorDetail = ""
	c.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	result, err := c.gateway.Convert(callCtx, req)
	cancel()
	if err == nil && result == nil {
		err = domain.NewEngineError("empty response from the conversion service", nil)
	}

	c.mu.Lock()
	if token != c.epoch {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded conversion result", "target", req.TargetLang)
		return ErrStaleResult
	}
	c.state.IsConverting = false

	if domain.IsValidation(err) {
		c.phase = PhaseInvalid
		c.state.TargetCode = ""
		c.state.ErrorTitle = TitleInvalidRequest
		c.state.ErrorDetail = err.Error()
		c.mu.Unlock()
		return err
	}
	if err != nil {
		c.phase = PhaseEngineError
		c.state.TargetCode = ""
		c.state.ErrorTitle = TitleEngineError
		c.state.ErrorDetail = engineDetail(err)
		c.mu.Unlock()
		c.logger.Warn("conversion failed", "target", req.TargetLang, "error", err)
		return err
	}

	if !result.Success {
		c.phase = PhaseRejected
		c.state.TargetCode = ""
		c.state.ErrorTitle = TitleRejected
		c.state.ErrorDetail = result.ErrorContext
		if c.state.ErrorDetail == "" {
			c.state.ErrorDetail = DetailRejected
		}
		c.mu.Unlock()
		return nil
	}

	c.phase = PhaseSucceeded
	c.state.TargetCode = result.OutputCode
	userID, signedIn := domain.UserID(c.session)
	c.mu.Unlock()

	c.scheduleSave()
	if signedIn {
		entry := domain.HistoryEntry{
			SourceCode: req.SourceCode,
			TargetCode: result.OutputCode,
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
		}
		c.background.Add(1)
		go func() {
			defer c.background.Done()
			c.recordConversion(userID, entry)
		}()
	}
	return nil
}

// engineDetail turns a gateway failure into the text shown to the user.
func engineDetail(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return DetailTimeout
	}
	var eerr *domain.EngineError
	if errors.As(err, &eerr) && eerr.Message != "" {
		return eerr.Message
	}
	return DetailEngineError
}

// checkLanguages validates the selected pair against the registry. An empty
// source means auto-detect. Callers hold c.mu.
func (c *Client) checkLanguages() error {
	source := c.state.SourceLang
	if source == "" {
		source = domain.AutoDetect
	}
	if !c.registry.IsSource(source) {
		return &domain.ValidationError{Field: "sourceLang", Reason: "unsupported language " + source}
	}
	if !c.registry.IsTarget(c.state.TargetLang) {
		return &domain.ValidationError{Field: "targetLang", Reason: "unsupported language " + c.state.TargetLang}
	}
	return nil
}

// recordConversion saves a conversion and then re-fetches history so the
// cached list includes it. Failures are logged only.
func (c *Client) recordConversion(userID string, entry domain.HistoryEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.store.SaveConversion(ctx, userID, entry); err != nil {
		c.logger.Warn("failed to save conversion", "user_id", userID, "error", err)
		return
	}
	history, err := c.store.GetHistory(ctx, userID)
	if err != nil {
		c.logger.Warn("failed to refresh history", "user_id", userID, "error", err)
		return
	}

	c.mu.Lock()
	if current, ok := domain.UserID(c.session); ok && current == userID {
		c.history = history
	}
	c.mu.Unlock()
}

// scheduleSave re-arms the debounced state save for a signed-in user.
func (c *Client) scheduleSave() {
	c.mu.Lock()
	_, signedIn := domain.UserID(c.session)
	c.mu.Unlock()
	if !signedIn {
		return
	}
	c.saver.Trigger(c.persistState)
}

// persistState writes the state as it is when the debounce fires.
func (c *Client) persistState() {
	c.mu.Lock()
	userID, ok := domain.UserID(c.session)
	state := c.state
	c.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.store.SaveState(ctx, userID, state); err != nil {
		c.logger.Warn("failed to save editor state", "user_id", userID, "error", err)
	}
}

// SignIn switches to an authenticated session and loads the user's history
// and last editor state. Load failures are logged; the session still starts.
func (c *Client) SignIn(ctx context.Context, session domain.Authenticated) error {
	if session.UserID == "" {
		return ErrNotSignedIn
	}

	c.saver.Stop()
	c.mu.Lock()
	c.session = session
	// A conversion started under the previous session must not land in this
	// user's editor or history.
	c.epoch++
	if c.phase == PhaseConverting {
		c.phase = PhaseIdle
		c.state.IsConverting = false
	}
	c.history = nil
	c.mu.Unlock()

	var (
		history []domain.HistoryEntry
		saved   *domain.EditorState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := c.store.GetHistory(gctx, session.UserID)
		if err != nil {
			return err
		}
		history = h
		return nil
	})
	g.Go(func() error {
		s, err := c.store.GetState(gctx, session.UserID)
		if err != nil {
			return err
		}
		saved = s
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.Warn("failed to load cloud data", "user_id", session.UserID, "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if history != nil {
		c.history = history
	}
	if saved != nil {
		c.epoch++
		c.state = restoreState(*saved)
		c.phase = PhaseIdle
	}
	return nil
}

// restoreState fills defaults for fields a stored state may lack.
func restoreState(saved domain.EditorState) domain.EditorState {
	st := domain.NewEditorState()
	st.SourceCode = saved.SourceCode
	st.TargetCode = saved.TargetCode
	if saved.SourceLang != "" {
		st.SourceLang = saved.SourceLang
	}
	if saved.TargetLang != "" {
		st.TargetLang = saved.TargetLang
	}
	return st
}

// SignOut flushes a pending save, drops the session and clears the cached
// history. A conversion in flight is superseded.
func (c *Client) SignOut() {
	c.saver.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = domain.Anonymous{}
	c.history = nil
	c.epoch++
	if c.phase == PhaseConverting {
		c.phase = PhaseIdle
		c.state.IsConverting = false
	}
}

// LoadFromHistory copies a history entry into the editor. A conversion in
// flight is superseded and its result will be discarded.
func (c *Client) LoadFromHistory(entry domain.HistoryEntry) {
	c.mu.Lock()
	c.epoch++
	c.state = domain.EditorState{
		SourceCode: entry.SourceCode,
		TargetCode: entry.TargetCode,
		SourceLang: entry.SourceLang,
		TargetLang: entry.TargetLang,
	}
	c.phase = PhaseIdle
	c.mu.Unlock()

	c.scheduleSave()
}

// Reset returns the editor to its defaults. A conversion in flight is
// superseded.
func (c *Client) Reset() {
	c.mu.Lock()
	c.epoch++
	c.state = domain.NewEditorState()
	c.phase = PhaseIdle
	c.mu.Unlock()

	c.scheduleSave()
}

// ClearHistory deletes the user's stored history and the cached copy.
func (c *Client) ClearHistory(ctx context.Context) error {
	c.mu.Lock()
	userID, ok := domain.UserID(c.session)
	c.mu.Unlock()
	if !ok {
		return ErrNotSignedIn
	}

	if err := c.store.DeleteHistory(ctx, userID); err != nil {
		return err
	}

	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
	return nil
}

// Close flushes a pending state save and waits for background history writes.
func (c *Client) Close() {
	c.saver.Flush()
	c.background.Wait()
}
