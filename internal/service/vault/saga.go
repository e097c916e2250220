package vault

import (
	"context"
	"errors"
	"fmt"
)

// UploadPhase tags how far an upload got before it returned
type UploadPhase int

const (
	PhaseValidating UploadPhase = iota
	PhaseAllocating
	PhaseStoring
	PhaseRecording
	PhaseDone
)

func (p UploadPhase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseAllocating:
		return "allocating"
	case PhaseStoring:
		return "storing"
	case PhaseRecording:
		return "recording"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// UploadError reports the phase an upload failed in. It unwraps to the
// underlying domain error, so errors.Is against the domain sentinels still works.
type UploadError struct {
	Phase UploadPhase
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed while %s: %v", e.Phase, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// saga tracks the current phase and the compensations registered by the
// phases that already took effect
type saga struct {
	phase         UploadPhase
	compensations []func(context.Context) error
}

func (s *saga) advance(phase UploadPhase) {
	s.phase = phase
}

// onRollback registers a compensation; they run in reverse order
func (s *saga) onRollback(fn func(context.Context) error) {
	s.compensations = append(s.compensations, fn)
}

// rollback runs every compensation even after one fails. It ignores the
// caller's cancellation so a dropped client cannot leave a blob behind.
func (s *saga) rollback(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(s.compensations) - 1; i >= 0; i-- {
		if err := s.compensations[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.compensations = nil
	return errors.Join(errs...)
}

func (s *saga) fail(err error) error {
	return &UploadError{Phase: s.phase, Err: err}
}
