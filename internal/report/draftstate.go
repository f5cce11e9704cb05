package report

import (
	"errors"
	"sync"
	"time"
)

type DraftPhase string

const (
	PhaseIdle      DraftPhase = "idle"
	PhaseGenerated DraftPhase = "generated"
	PhaseCopied    DraftPhase = "copied"
)

// CopiedDisplayTimeout is how long the copied confirmation shows before
// reverting to generated.
const CopiedDisplayTimeout = 2 * time.Second

var ErrBadTransition = errors.New("draft: invalid state transition")

// DraftState tracks the draft UI lifecycle:
// idle -> generated -> copied (auto-revert) | regenerated -> closed.
// No draft text survives Close.
type DraftState struct {
	mu      sync.Mutex
	phase   DraftPhase
	draft   string
	revert  *time.Timer
	timeout time.Duration
}

func NewDraftState() *DraftState {
	return &DraftState{phase: PhaseIdle, timeout: CopiedDisplayTimeout}
}

func (d *DraftState) Phase() DraftPhase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

func (d *DraftState) Draft() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// Generate produces the first draft, leaving idle.
func (d *DraftState) Generate(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != PhaseIdle {
		return ErrBadTransition
	}
	d.phase = PhaseGenerated
	d.draft = text
	return nil
}

// Regenerate swaps in a new random draft; allowed whenever one is shown.
func (d *DraftState) Regenerate(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != PhaseGenerated && d.phase != PhaseCopied {
		return ErrBadTransition
	}
	d.stopRevertLocked()
	d.phase = PhaseGenerated
	d.draft = text
	return nil
}

// Copied records a successful clipboard write and schedules the revert
// back to generated.
func (d *DraftState) Copied() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != PhaseGenerated {
		return ErrBadTransition
	}
	d.phase = PhaseCopied
	d.revert = time.AfterFunc(d.timeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.phase == PhaseCopied {
			d.phase = PhaseGenerated
		}
	})
	return nil
}

// Close discards the draft and returns to idle from any state.
func (d *DraftState) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopRevertLocked()
	d.phase = PhaseIdle
	d.draft = ""
}

func (d *DraftState) stopRevertLocked() {
	if d.revert != nil {
		d.revert.Stop()
		d.revert = nil
	}
}
