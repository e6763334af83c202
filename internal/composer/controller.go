package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/notify"
	"github.com/sonicalchemist/api/internal/schema"
)

var (
	ErrBusy              = errors.New("a soundtrack is already being generated")
	ErrClosed            = errors.New("composer session closed")
	ErrSuperseded        = errors.New("submission superseded by a newer one")
	ErrExportUnavailable = errors.New("export requires a generated audio preview")
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Policy decides what Submit does while a generation is in flight.
type Policy string

const (
	// PolicyReject refuses new submissions until the current one settles.
	PolicyReject Policy = "reject"
	// PolicySupersede cancels the current submission and starts a new one.
	PolicySupersede Policy = "supersede"
)

// ParsePolicy maps a config value to a Policy, defaulting to PolicyReject.
func ParsePolicy(s string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(s))) == PolicySupersede {
		return PolicySupersede
	}
	return PolicyReject
}

const (
	successTitle   = "Soundtrack Generated!"
	successMessage = "Your custom track is ready for preview."
	failureTitle   = "Generation Failed"
	failurePrefix  = "Failed to generate soundtrack: "
)

// FormState is the display state of the composer. Exactly one of idle,
// loading, failed (Error set) and success (Result set) holds at a time.
type FormState struct {
	Status      Status                  `json:"status"`
	IsLoading   bool                    `json:"isLoading"`
	Error       *string                 `json:"error"`
	Result      *model.SoundtrackResult `json:"result"`
	LoopEnabled bool                    `json:"loopEnabled"`
	Form        model.ComposerForm      `json:"form"`
	Generation  uint64                  `json:"generation"`
}

// Generator produces a soundtrack for a validated request.
type Generator interface {
	Generate(ctx context.Context, req model.SoundtrackRequest) (*model.SoundtrackResult, error)
}

type Option func(*Controller)

func WithPolicy(p Policy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithObserver registers a callback invoked after every state transition.
func WithObserver(fn func(FormState)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// Controller drives one composer form through idle, loading, success and
// failed. It is safe for concurrent use.
type Controller struct {
	gen       Generator
	validator *schema.Validator
	sink      notify.Sink
	policy    Policy
	observer  func(FormState)

	mu     sync.Mutex
	state  FormState
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

func NewController(gen Generator, validator *schema.Validator, sink notify.Sink, opts ...Option) *Controller {
	if sink == nil {
		sink = notify.Discard
	}
	c := &Controller{
		gen:       gen,
		validator: validator,
		sink:      sink,
		policy:    PolicyReject,
		state: FormState{
			Status: StatusIdle,
			Form:   model.DefaultComposerForm(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current form state.
func (c *Controller) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit validates form and runs one generation. Invocation failures are
// reported in the returned state, not as an error. The returned error is a
// *schema.ValidationError, ErrBusy, ErrClosed or ErrSuperseded.
func (c *Controller) Submit(ctx context.Context, form model.ComposerForm) (FormState, error) {
	if err := c.validator.ComposerForm(form); err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	if c.closed {
		st := c.state
		c.mu.Unlock()
		return st, ErrClosed
	}
	if c.state.Status == StatusLoading {
		if c.policy != PolicySupersede {
			st := c.state
			c.mu.Unlock()
			return st, ErrBusy
		}
		if c.cancel != nil {
			c.cancel()
		}
	}

	c.seq++
	seq := c.seq
	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = FormState{
		Status:      StatusLoading,
		IsLoading:   true,
		LoopEnabled: form.Loop,
		Form:        form,
		Generation:  seq,
	}
	loading := c.state
	c.mu.Unlock()
	c.emit(loading)

	result, err := c.gen.Generate(callCtx, form.SoundtrackRequest())
	cancel()

	c.mu.Lock()
	if c.closed {
		st := c.state
		c.mu.Unlock()
		return st, ErrClosed
	}
	if c.seq != seq {
		st := c.state
		c.mu.Unlock()
		return st, ErrSuperseded
	}

	var n notify.Notification
	if err != nil {
		msg := failurePrefix + err.Error()
		c.state = FormState{
			Status:      StatusFailed,
			Error:       &msg,
			LoopEnabled: form.Loop,
			Form:        form,
			Generation:  seq,
		}
		n = notify.Notification{Title: failureTitle, Message: err.Error(), Severity: notify.SeverityDestructive}
	} else {
		c.state = FormState{
			Status:      StatusSuccess,
			Result:      result,
			LoopEnabled: form.Loop,
			Form:        form,
			Generation:  seq,
		}
		n = notify.Notification{Title: successTitle, Message: successMessage, Severity: notify.SeverityDefault}
	}
	c.cancel = nil
	settled := c.state
	c.mu.Unlock()

	c.sink.Enqueue(n)
	c.emit(settled)
	return settled, nil
}

// Export returns the placeholder notice for format. It is only available
// when the current result carries audio.
func (c *Controller) Export(format model.ExportFormat) (string, error) {
	c.mu.Lock()
	hasAudio := c.state.Status == StatusSuccess && c.state.Result.HasAudio()
	c.mu.Unlock()

	if !hasAudio {
		return "", ErrExportUnavailable
	}
	notice := fmt.Sprintf("%s export functionality not implemented yet.", strings.ToUpper(string(format)))
	c.sink.Enqueue(notify.Notification{Title: "Export", Message: notice, Severity: notify.SeverityDefault})
	return notice, nil
}

// Close cancels any in-flight generation and discards its result.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) emit(st FormState) {
	if c.observer != nil {
		c.observer(st)
	}
}
