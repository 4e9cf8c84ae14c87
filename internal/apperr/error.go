package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrValidationFailed       = errors.New("validation failed")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrHasDependents          = errors.New("has dependents")
	ErrRateSourceUnavailable  = errors.New("rate source unavailable")
	ErrAlreadyInTerminalState = errors.New("already in terminal state")

	// ErrInternal is what callers see in place of faults outside the taxonomy.
	ErrInternal = errors.New("internal error")
)

// Error is a taxonomy error tied to one entity.
type Error struct {
	Kind   error
	Entity string
	ID     string
	Rule   string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Entity != "" {
		msg += ": " + e.Entity
		if e.ID != "" {
			msg += fmt.Sprintf(" %q", e.ID)
		}
	}
	if e.Rule != "" {
		msg += ": " + e.Rule
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Is lets a terminal-state rejection also count as an invalid transition.
func (e *Error) Is(target error) bool {
	return e.Kind == ErrAlreadyInTerminalState && target == ErrInvalidStateTransition
}

func NotFound(entity, id string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id, Rule: "no " + entity + " with this id"}
}

func Validation(entity, id, rule string) error {
	return &Error{Kind: ErrValidationFailed, Entity: entity, ID: id, Rule: rule}
}

// MissingRef reports a foreign key that does not resolve.
func MissingRef(entity, id, field, ref string) error {
	return &Error{
		Kind:   ErrValidationFailed,
		Entity: entity,
		ID:     id,
		Rule:   fmt.Sprintf("%s %q does not exist", field, ref),
	}
}

func InvalidTransition(entity, id, from, to string) error {
	return &Error{
		Kind:   ErrInvalidStateTransition,
		Entity: entity,
		ID:     id,
		Rule:   fmt.Sprintf("cannot move from %s to %s", from, to),
	}
}

func TerminalState(entity, id, state string) error {
	return &Error{
		Kind:   ErrAlreadyInTerminalState,
		Entity: entity,
		ID:     id,
		Rule:   fmt.Sprintf("%s is final", state),
	}
}

func HasDependents(entity, id, dependent string, n int) error {
	return &Error{
		Kind:   ErrHasDependents,
		Entity: entity,
		ID:     id,
		Rule:   fmt.Sprintf("referenced by %d %s", n, dependent),
	}
}

func RateUnavailable(from, to string, err error) error {
	return &Error{
		Kind:   ErrRateSourceUnavailable,
		Entity: "Currency",
		ID:     from,
		Rule:   fmt.Sprintf("no rate from %s to %s", from, to),
		Err:    err,
	}
}

// IsTaxonomy reports whether err belongs to the public error taxonomy.
func IsTaxonomy(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

var codes = []struct {
	kind error
	code string
}{
	{ErrAlreadyInTerminalState, "already_in_terminal_state"},
	{ErrInvalidStateTransition, "invalid_state_transition"},
	{ErrNotFound, "not_found"},
	{ErrValidationFailed, "validation_failed"},
	{ErrHasDependents, "has_dependents"},
	{ErrRateSourceUnavailable, "rate_source_unavailable"},
}

// Code returns a short stable label for err, "ok" for nil and "internal"
// for anything outside the taxonomy.
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range codes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return "internal"
}
