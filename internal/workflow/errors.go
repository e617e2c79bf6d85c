package workflow

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound            = errors.New("workflow not found")
	ErrNoOp                = errors.New("workflow is already in the requested status")
	ErrForbidden           = errors.New("role is not allowed to perform this action")
	ErrIllegalTransition   = errors.New("illegal workflow transition")
	ErrIncompleteChecklist = errors.New("tab status checklist is incomplete")
	ErrUnknownField        = errors.New("unknown tab status field")
	ErrInvalidTab          = errors.New("unknown tab")
	ErrConflict            = errors.New("workflow was modified concurrently, reload and retry")
)

// UnknownFieldError names the first rejected key of a tab status batch.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown tab status field %q", e.Name)
}

func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}
