package model

import "fmt"

// EngineError is the single structural failure surfaced by the insights engine.
// Field-level malformation never produces one.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("insights: %s failed", e.Op)
	}
	return fmt.Sprintf("insights: %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError wraps err as a structural failure of op
func NewEngineError(op string, err error) *EngineError {
	return &EngineError{Op: op, Err: err}
}
