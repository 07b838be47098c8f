package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrIndexNotReady is returned when the search index has not been built yet
	ErrIndexNotReady = errors.New("search index not ready")

	// ErrInvalidQuery is returned when a query or its parameters fail validation
	ErrInvalidQuery = errors.New("invalid query")

	// ErrStorageUnavailable is returned when the article source cannot be read
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrEnrichmentFailed is returned when content feature extraction fails for an article
	ErrEnrichmentFailed = errors.New("content enrichment failed")
)

// IndexNotReadyError carries the operation that required a built index
type IndexNotReadyError struct {
	Operation string
}

func (e *IndexNotReadyError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("search index not ready for %s", e.Operation)
	}
	return "search index not ready"
}

func (e *IndexNotReadyError) Is(target error) bool {
	return target == ErrIndexNotReady
}

// NewIndexNotReadyError creates a new IndexNotReadyError
func NewIndexNotReadyError(operation string) *IndexNotReadyError {
	return &IndexNotReadyError{Operation: operation}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps a failure of the article source
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// EnrichmentError records which article failed feature extraction
type EnrichmentError struct {
	URL   string
	Cause error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrichment of '%s' failed: %v", e.URL, e.Cause)
}

func (e *EnrichmentError) Is(target error) bool {
	return target == ErrEnrichmentFailed
}

func (e *EnrichmentError) Unwrap() error {
	return e.Cause
}

// NewEnrichmentError creates a new EnrichmentError
func NewEnrichmentError(url string, cause error) *EnrichmentError {
	return &EnrichmentError{URL: url, Cause: cause}
}
