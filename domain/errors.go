package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConstraintViolated is returned by stores when an action is
	// blocked by a uniqueness constraint.
	ErrConstraintViolated = errors.New("index constraint violated")
	// ErrTargetNil is returned when a nil value is passed as a decode
	// target.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNotFound is returned when a single-entity lookup matches
	// nothing.
	ErrNotFound = errors.New("entity not found")
)

// ErrQuery represents a malformed or unsafe query: negative limit, missing
// groupBy criterion, unindexed criteria, criteria-less delete, or an
// unresolved nested field.
type ErrQuery struct {
	Reason string
}

// Error implements [error].
func (e ErrQuery) Error() string {
	return fmt.Sprintf("query error: %s", e.Reason)
}

// QueryErrorf builds an [ErrQuery] with a formatted reason.
func QueryErrorf(format string, args ...any) error {
	return ErrQuery{Reason: fmt.Sprintf(format, args...)}
}

// ErrDuplicateKey is the typed form of a store uniqueness violation raised
// during save or patch, carrying the store's message.
type ErrDuplicateKey struct {
	Message string
}

// Error implements [error].
func (e ErrDuplicateKey) Error() string {
	return fmt.Sprintf("duplicate key: %s", e.Message)
}

// ErrGeneral represents a broken internal invariant, such as a result page
// exceeding its limit.
type ErrGeneral struct {
	Reason string
}

// Error implements [error].
func (e ErrGeneral) Error() string {
	return fmt.Sprintf("internal error: %s", e.Reason)
}

// ErrUnsafeQuery is returned when index validation rejects a query. It names
// the offending criteria fields and the declared index catalog.
type ErrUnsafeQuery struct {
	Fields  []string
	Indexes []IndexDescriptor
}

// Error implements [error].
func (e ErrUnsafeQuery) Error() string {
	catalog := make([]string, len(e.Indexes))
	for n, idx := range e.Indexes {
		catalog[n] = "(" + strings.Join(idx, ", ") + ")"
	}
	return fmt.Sprintf(
		"query error: criteria for fields [%s] don't match declared indexes [%s]; disable index validation per request to debug",
		strings.Join(e.Fields, ", "), strings.Join(catalog, ", "),
	)
}
