package backup

import (
	stderrors "errors"
	"fmt"

	"experiment-setup/internal/errors"
)

// ErrNotFound is the cause of every missing-backup error
var ErrNotFound = stderrors.New("backup not found")

// ErrPassphraseRequired is returned when an encrypted backup is opened without a passphrase
var ErrPassphraseRequired = stderrors.New("encryption passphrase is required")

// NewNotFoundError reports a backup missing from its store
func NewNotFoundError(name string, cause error) *errors.AppError {
	if cause == nil {
		cause = ErrNotFound
	} else {
		cause = fmt.Errorf("%w: %w", ErrNotFound, cause)
	}
	return errors.NewDataAccessError(fmt.Sprintf("backup %s not found", name), cause).
		WithContext("backup", name).
		WithContext("kind", "not_found")
}

// NewStorageError reports a failure talking to the backup store
func NewStorageError(message string, cause error) *errors.AppError {
	return errors.NewDataAccessError(message, cause)
}

// NewDecodeError reports a backup that could not be decrypted or decompressed
func NewDecodeError(name, layer string, cause error) *errors.AppError {
	return errors.NewDataAccessError(fmt.Sprintf("failed to decode %s layer of backup %s", layer, name), cause).
		WithContext("backup", name).
		WithContext("layer", layer)
}

// IsNotFound reports whether err means the backup does not exist
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// ValidationError represents validation-specific errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(e), e[0].Error(), len(e)-1)
}

// Add adds a validation error to the collection
func (e *ValidationErrors) Add(field, message string, value interface{}) {
	*e = append(*e, ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}
