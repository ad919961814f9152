package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrActionNotAllowed = errors.New("action is not available at the current stage")
	ErrGuardFailed      = errors.New("current stage is incomplete")
	ErrNoTransition     = errors.New("no transition in that direction")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrNotAtConfirm     = errors.New("results can only be submitted from the confirmation stage")
	ErrAlreadySubmitted = errors.New("results were already submitted")
)

const genericSubmitError = "Submission failed"

// Wizard drives a Draft through the roster, outcome, stats and confirm
// stages. It is safe for concurrent use, but only one submission can be in
// flight at a time.
type Wizard struct {
	mu         sync.Mutex
	draft      *Draft
	matchID    string
	stage      Stage
	submitting bool
	submitted  bool
	lastErr    string
	submitter  Submitter
}

func New(draft *Draft, submitter Submitter) *Wizard {
	return &Wizard{
		draft:     draft,
		matchID:   draft.MatchID,
		stage:     StageRoster,
		submitter: submitter,
	}
}

func (w *Wizard) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Draft returns a copy of the current draft, or nil once submitted.
func (w *Wizard) Draft() *Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// LastError is the message of the last failed submission, cleared on retry.
func (w *Wizard) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// RedirectPath is the finalized match view. Empty until submission succeeds.
func (w *Wizard) RedirectPath() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.submitted {
		return ""
	}
	return fmt.Sprintf("/operator/matches/%s", w.matchID)
}

func (w *Wizard) Dispatch(a Action) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if a.stage() != w.stage {
		return fmt.Errorf("%w: %T during %s", ErrActionNotAllowed, a, w.stage)
	}
	return Reduce(w.draft, a)
}

func (w *Wizard) CanProceed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canProceedLocked()
}

func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	t := transitions[w.stage]
	if t.next == 0 {
		return ErrNoTransition
	}
	if !w.canProceedLocked() {
		return fmt.Errorf("%w: %s", ErrGuardFailed, w.stage)
	}
	w.stage = t.next
	return nil
}

func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	t := transitions[w.stage]
	if t.back == 0 {
		return ErrNoTransition
	}
	w.stage = t.back
	return nil
}

// Submit sends the draft as one request. On failure the draft is kept as is
// and the operator may call Submit again; there is no automatic retry.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.stage != StageConfirm {
		w.mu.Unlock()
		return ErrNotAtConfirm
	}
	payload := BuildPayload(w.draft)
	w.submitting = true
	w.lastErr = ""
	w.mu.Unlock()

	err := w.submitter.SubmitResults(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.lastErr = submitErrorMessage(err)
		return err
	}
	w.submitted = true
	w.draft = nil
	return nil
}

func (w *Wizard) editableLocked() error {
	if w.submitted {
		return ErrAlreadySubmitted
	}
	if w.submitting {
		return ErrSubmitInFlight
	}
	return nil
}

func (w *Wizard) canProceedLocked() bool {
	if w.draft == nil {
		return false
	}
	t := transitions[w.stage]
	if t.guard == nil {
		return true
	}
	return t.guard(w.draft)
}

func submitErrorMessage(err error) string {
	var se *SubmitError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return genericSubmitError
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return genericSubmitError
}
