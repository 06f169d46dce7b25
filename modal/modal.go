// Package modal implements the open, edit, submit and close cycle shared by every modal.
package modal

import (
	"context"
	"errors"
	"sync"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/gateway"
)

type State int

const (
	Closed State = iota
	Open
	Submitting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

var (
	ErrNotOpen        = errors.New("modal: not open")
	ErrNotClosed      = errors.New("modal: already open")
	ErrSubmitInFlight = errors.New("modal: submit already in flight")
	ErrReadOnly       = errors.New("modal: read only")
	ErrDetached       = errors.New("modal: detached")
)

// Options configure a Workflow over subject S and pending edit E.
type Options[S, E any] struct {
	// Prefill builds the pending edit from the subject. The zero E is used when nil.
	Prefill func(subject S) E
	// Validate rejects a pending edit before any request is sent.
	Validate func(subject S, edit E) error
	// Build turns the pending edit into the single mutation request.
	Build func(ctx context.Context, subject S, edit E) (gateway.Request, error)
	// OnSuccess runs after a successful mutation, before the reload. The mutation stays
	// committed when it fails; its error replaces the success alert and is returned by Submit.
	OnSuccess func(ctx context.Context, subject S, edit E, payload gateway.Payload) error
	// SuccessMessage is shown once the mutation succeeded.
	SuccessMessage string
	// ErrorMessage renders a failure for the user. gateway.Message is used when nil.
	ErrorMessage func(err error) string
	// ReadOnly workflows can be opened and viewed but never submitted.
	ReadOnly bool
}

// Workflow edits one subject at a time and submits it as one mutation.
type Workflow[S, E any] struct {
	caller gateway.Caller
	reload func(ctx context.Context)
	opts   Options[S, E]

	mu       sync.Mutex
	state    State
	subject  S
	edit     E
	alert    core.Alert
	detached bool
}

// New returns a closed Workflow. reload is invoked exactly once after every successful submit.
func New[S, E any](caller gateway.Caller, reload func(ctx context.Context), opts Options[S, E]) *Workflow[S, E] {
	if reload == nil {
		panic("modal: nil reload callback")
	}
	if opts.Build == nil && !opts.ReadOnly {
		panic("modal: nil Build")
	}
	if opts.ErrorMessage == nil {
		opts.ErrorMessage = gateway.Message
	}
	return &Workflow[S, E]{caller: caller, reload: reload, opts: opts}
}

// Open sets the subject and pre-populates the pending edit.
func (w *Workflow[S, E]) Open(subject S) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detached {
		return ErrDetached
	}
	if w.state != Closed {
		return ErrNotClosed
	}
	w.subject = subject
	if w.opts.Prefill != nil {
		w.edit = w.opts.Prefill(subject)
	} else {
		var zero E
		w.edit = zero
	}
	w.alert = core.Alert{}
	w.state = Open
	return nil
}

// Edit applies fn to the pending edit. No request is sent.
func (w *Workflow[S, E]) Edit(fn func(edit *E)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Open {
		if w.state == Submitting {
			return ErrSubmitInFlight
		}
		return ErrNotOpen
	}
	if w.opts.ReadOnly {
		return ErrReadOnly
	}
	fn(&w.edit)
	return nil
}

// Submit validates the pending edit and sends it. On failure the workflow stays open with
// the pending edit untouched.
func (w *Workflow[S, E]) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.detached:
		w.mu.Unlock()
		return ErrDetached
	case w.state == Submitting:
		w.mu.Unlock()
		return ErrSubmitInFlight
	case w.state != Open:
		w.mu.Unlock()
		return ErrNotOpen
	case w.opts.ReadOnly:
		w.mu.Unlock()
		return ErrReadOnly
	}
	subject, edit := w.subject, w.edit
	if w.opts.Validate != nil {
		if err := w.opts.Validate(subject, edit); err != nil {
			w.alert = core.ErrorAlert(err.Error())
			w.mu.Unlock()
			return err
		}
	}
	w.state = Submitting
	w.alert = core.Alert{}
	w.mu.Unlock()

	payload, err := w.send(ctx, subject, edit)

	w.mu.Lock()
	if w.detached {
		w.mu.Unlock()
		return ErrDetached
	}
	if err != nil {
		w.state = Open
		w.alert = core.ErrorAlert(w.opts.ErrorMessage(err))
		w.mu.Unlock()
		return err
	}
	w.state = Closed
	var zeroS S
	var zeroE E
	w.subject, w.edit = zeroS, zeroE
	w.alert = core.SuccessAlert(w.opts.SuccessMessage)
	w.mu.Unlock()

	var errAfter error
	if w.opts.OnSuccess != nil {
		if errAfter = w.opts.OnSuccess(ctx, subject, edit, payload); errAfter != nil {
			w.mu.Lock()
			w.alert = core.ErrorAlert(w.opts.ErrorMessage(errAfter))
			w.mu.Unlock()
		}
	}
	w.reload(ctx)
	return errAfter
}

func (w *Workflow[S, E]) send(ctx context.Context, subject S, edit E) (gateway.Payload, error) {
	req, err := w.opts.Build(ctx, subject, edit)
	if err != nil {
		return nil, err
	}
	return w.caller.Do(ctx, req)
}

// Cancel discards the subject and the pending edit without any request.
func (w *Workflow[S, E]) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Submitting {
		return ErrSubmitInFlight
	}
	var zeroS S
	var zeroE E
	w.subject, w.edit = zeroS, zeroE
	w.state = Closed
	return nil
}

// Detach drops any result arriving afterwards and refuses further use.
func (w *Workflow[S, E]) Detach() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.detached = true
}

func (w *Workflow[S, E]) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Subject returns the record being edited, if any.
func (w *Workflow[S, E]) Subject() (S, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.subject, w.state != Closed
}

// Pending returns the pending edit.
func (w *Workflow[S, E]) Pending() E {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.edit
}

func (w *Workflow[S, E]) ReadOnly() bool { return w.opts.ReadOnly }

// Alert returns the banner left by the last submit.
func (w *Workflow[S, E]) Alert() core.Alert {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alert
}

func (w *Workflow[S, E]) DismissAlert() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alert = core.Alert{}
}
