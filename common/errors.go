package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for each failure class. EngineError values match these through errors.Is.
var (
	ErrImportFailure     = errors.New("import failure")
	ErrResourceCreation  = errors.New("resource creation failure")
	ErrLookup            = errors.New("not found")
	ErrContractViolation = errors.New("contract violation")
)

// ErrorKind classifies an EngineError.
type ErrorKind int

const (
	KindImportFailure ErrorKind = iota
	KindResourceCreation
	KindLookup
	KindContractViolation
)

func (k ErrorKind) String() string {
	return k.sentinel().Error()
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindImportFailure:
		return ErrImportFailure
	case KindResourceCreation:
		return ErrResourceCreation
	case KindLookup:
		return ErrLookup
	default:
		return ErrContractViolation
	}
}

// EngineError is the typed failure returned by loading, resource and scene operations.
type EngineError struct {
	Kind ErrorKind
	Op   string // operation that failed, e.g. "loader.Load"
	Key  string // asset path, resource key or object id involved, if any
	Err  error  // underlying cause, may be nil
}

var _ error = &EngineError{}

func (e *EngineError) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Key != "" {
		msg += fmt.Sprintf(" %q", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrLookup) works for wrapped EngineErrors.
func (e *EngineError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// NewError builds an EngineError.
//
// Parameters:
//   - kind: the failure class
//   - op: the operation that failed
//   - key: the path, key or id involved (may be empty)
//   - err: the underlying cause (may be nil)
//
// Returns:
//   - *EngineError: the typed error
func NewError(kind ErrorKind, op, key string, err error) *EngineError {
	return &EngineError{Kind: kind, Op: op, Key: key, Err: err}
}

// ImportError wraps err as an ImportFailure for the given path.
func ImportError(op, path string, err error) error {
	return NewError(KindImportFailure, op, path, err)
}

// ResourceError wraps err as a ResourceCreationFailure for the given key.
func ResourceError(op, key string, err error) error {
	return NewError(KindResourceCreation, op, key, err)
}

// LookupError reports that key could not be found.
func LookupError(op, key string) error {
	return NewError(KindLookup, op, key, nil)
}

// ContractError reports a caller programming error.
func ContractError(op, format string, args ...any) error {
	return NewError(KindContractViolation, op, "", fmt.Errorf(format, args...))
}
