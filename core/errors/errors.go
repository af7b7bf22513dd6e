// Package errors defines the pipeline error taxonomy with classification
// into fatal and per-item classes.
package errors

import (
	"errors"
	"fmt"
)

// Class identifies the taxonomy class of a pipeline error or skip event.
// Fatal classes abort the run; per-item classes are counted on stage stats
// and never surface as returned errors.
type Class int

const (
	// ClassConfig indicates an invalid threshold or parameter. Fatal.
	ClassConfig Class = iota

	// ClassMissingCorrelation indicates a gene pair absent from the
	// correlation matrix when it was expected present. Fatal.
	ClassMissingCorrelation

	// ClassDatabaseMismatch indicates pruning invoked against a ranking
	// table other than the one the row was scored on. Fatal, a pipeline
	// programming error.
	ClassDatabaseMismatch

	// ClassMinModuleSize indicates a module dropped for falling under the
	// minimum size. Counted, not raised.
	ClassMinModuleSize

	// ClassLookupJoinMiss indicates a failed weight join, resolved to a
	// null weight. Counted, not raised.
	ClassLookupJoinMiss

	// ClassEmptyEnrichment indicates a gene-set/motif pair recovering zero
	// genes, retained with an empty set. Counted, not raised.
	ClassEmptyEnrichment
)

var classNames = map[Class]string{
	ClassConfig:             "config",
	ClassMissingCorrelation: "missing_correlation",
	ClassDatabaseMismatch:   "database_mismatch",
	ClassMinModuleSize:      "min_module_size",
	ClassLookupJoinMiss:     "lookup_join_miss",
	ClassEmptyEnrichment:    "empty_enrichment",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// Fatal reports whether errors of this class abort the run.
func (c Class) Fatal() bool {
	switch c {
	case ClassConfig, ClassMissingCorrelation, ClassDatabaseMismatch:
		return true
	}
	return false
}

// PipelineError wraps an error with its taxonomy class.
type PipelineError struct {
	Class Class
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches two PipelineErrors on class, so callers can test against the
// exported sentinels below with errors.Is.
func (e *PipelineError) Is(target error) bool {
	var pe *PipelineError
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Class == e.Class && (pe.Err == nil || errors.Is(e.Err, pe.Err))
}

// Sentinels for errors.Is checks.
var (
	ErrConfig             = &PipelineError{Class: ClassConfig}
	ErrMissingCorrelation = &PipelineError{Class: ClassMissingCorrelation}
	ErrDatabaseMismatch   = &PipelineError{Class: ClassDatabaseMismatch}
)

// Configf returns a ClassConfig error.
func Configf(format string, args ...any) error {
	return &PipelineError{Class: ClassConfig, Err: fmt.Errorf(format, args...)}
}

// MissingCorrelationf returns a ClassMissingCorrelation error.
func MissingCorrelationf(format string, args ...any) error {
	return &PipelineError{Class: ClassMissingCorrelation, Err: fmt.Errorf(format, args...)}
}

// DatabaseMismatchf returns a ClassDatabaseMismatch error.
func DatabaseMismatchf(format string, args ...any) error {
	return &PipelineError{Class: ClassDatabaseMismatch, Err: fmt.Errorf(format, args...)}
}

// ClassOf returns the taxonomy class of err, or ok=false for errors outside
// the taxonomy.
func ClassOf(err error) (Class, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Class, true
	}
	return 0, false
}
