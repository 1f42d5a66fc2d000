package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration    = errors.New("invalid configuration")
	ErrDataAccess       = errors.New("dataset unavailable")
	ErrScoring          = errors.New("scoring failed")
	ErrInsufficientData = errors.New("insufficient data")
	ErrReportNotFound   = errors.New("report not found")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// ConfigurationError reports an invalid split ratio, seed or other setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// DataAccessError reports a missing or unreadable input dataset.
type DataAccessError struct {
	Path string
	Err  error
}

func (e *DataAccessError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dataset %s unavailable", e.Path)
	}
	return fmt.Sprintf("dataset %s unavailable: %v", e.Path, e.Err)
}

func (e *DataAccessError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDataAccess}
	}
	return []error{ErrDataAccess, e.Err}
}

// ScoringError is returned once every scoring attempt has failed. Cause is
// the error of the first attempt; Retry is set when a stripped-schema retry
// also ran.
type ScoringError struct {
	Cause   error
	Retry   error
	Dropped []string
}

func (e *ScoringError) Error() string {
	if e.Retry != nil {
		return fmt.Sprintf("scoring failed: %v (retry without %v: %v)", e.Cause, e.Dropped, e.Retry)
	}
	return fmt.Sprintf("scoring failed: %v", e.Cause)
}

func (e *ScoringError) Unwrap() []error {
	return []error{ErrScoring, e.Cause}
}

// InsufficientDataError is returned when fewer records than deciles reach
// the ranker.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d test records, need at least %d", e.Have, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }
