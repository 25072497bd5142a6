package errors

import (
	"fmt"
)

// Category classifies a pipeline failure
type Category int

const (
	// CategoryParse - a file's syntax could not be parsed; the file is skipped
	CategoryParse Category = iota
	// CategoryIO - a file could not be read; the file is skipped
	CategoryIO
	// CategoryConstraint - the store rejected a uniqueness-constraint declaration
	CategoryConstraint
	// CategoryUpsert - an individual node/edge write failed
	CategoryUpsert
	// CategoryConfig - missing or invalid configuration
	CategoryConfig
	// CategoryInternal - unexpected internal state
	CategoryInternal
)

// Error is a categorized pipeline error carrying the offending path or
// store target. No category is fatal to the process: parse/IO failures skip
// one file, constraint/upsert failures skip one write.
type Error struct {
	Category Category
	Message  string
	Path     string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by category
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Category == t.Category
}

// New creates a categorized error
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Wrap attaches a category and message to an existing error
func Wrap(err error, category Category, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Category: category, Message: message, Cause: err}
}

// ParseError marks a file whose syntax could not be parsed
func ParseError(err error, path string) *Error {
	return &Error{Category: CategoryParse, Message: "parse failure", Path: path, Cause: err}
}

// IOError marks a file that could not be read
func IOError(err error, path string) *Error {
	return &Error{Category: CategoryIO, Message: "read failure", Path: path, Cause: err}
}

// ConstraintError marks a rejected uniqueness-constraint declaration
func ConstraintError(err error, kind string) *Error {
	return &Error{Category: CategoryConstraint, Message: "constraint failure", Path: kind, Cause: err}
}

// UpsertError marks a failed node or edge write
func UpsertError(err error, target string) *Error {
	return &Error{Category: CategoryUpsert, Message: "upsert failure", Path: target, Cause: err}
}

// ConfigErrorf marks missing or invalid configuration
func ConfigErrorf(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryConfig, Message: fmt.Sprintf(format, args...)}
}

// GetCategory returns the category of an error, or CategoryInternal for
// uncategorized errors
func GetCategory(err error) Category {
	if e, ok := err.(*Error); ok {
		return e.Category
	}
	return CategoryInternal
}

// IsSkippable reports whether the error affects a single file and the
// repository walk should continue
func IsSkippable(err error) bool {
	switch GetCategory(err) {
	case CategoryParse, CategoryIO:
		return true
	}
	return false
}
