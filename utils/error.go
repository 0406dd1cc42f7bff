package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlErrDuplicateEntry = 1062

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError is a user-correctable problem with the request.
// Details maps a field path (e.g. "items[1].quantity") to its message.
type ValidationError struct {
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Details[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NewDetailedValidationError returns nil when details is empty so callers can
// collect per-line problems and return the result unconditionally.
func NewDetailedValidationError(message string, details map[string]string) error {
	if len(details) == 0 {
		return nil
	}
	return &ValidationError{Message: message, Details: details}
}

type NotFoundError struct {
	Resource string
	Id       any
}

func (e *NotFoundError) Error() string {
	return strings.ReplaceAll(ToSnakeCase(e.Resource), "_", " ") + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrorRecordNotFound
}

func NewNotFoundError(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, Id: id}
}

// IntegrityError wraps a constraint violation reported by the database.
type IntegrityError struct {
	Message string
	Err     error
}

func (e *IntegrityError) Error() string {
	return e.Message
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry
}

// MapDBError converts driver level failures into the error taxonomy.
// Errors that are already typed pass through untouched.
func MapDBError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	var ie *IntegrityError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ie) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(resource, id)
	}
	if IsDuplicateKey(err) {
		return &IntegrityError{Message: "duplicate " + strings.ReplaceAll(ToSnakeCase(resource), "_", " "), Err: err}
	}
	return err
}
