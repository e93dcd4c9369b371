package dto

import (
	"errors"
	"fmt"

	"go-stock-newsroom/internal/entity"
)

// Provider error taxonomy. Upstream-unavailable and upstream-malformed are
// both retried on a later schedule tick; they are kept distinct for logging.
var (
	ErrSourceUnavailable     = errors.New("upstream source unavailable")
	ErrMalformedResponse     = errors.New("upstream response malformed")
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// StageError tags a failure with the stage that produced it. The stage sets
// it at the point of failure; nothing downstream infers the stage from text.
type StageError struct {
	Stage entity.StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the originating stage.
func NewStageError(stage entity.StageName, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// StageOf extracts the stage identifier from err, if it carries one.
func StageOf(err error) (entity.StageName, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
