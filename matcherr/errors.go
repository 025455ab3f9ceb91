package matcherr

import (
	"fmt"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeStructural ErrorType = "PatternError"
	TypeInvariant  ErrorType = "InvariantError"
	TypeFixture    ErrorType = "FixtureError"
)

// MatchError is the interface for all errors raised by the matching core.
type MatchError interface {
	error
	Type() ErrorType
}

// BaseError provides common fields for matchcore errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// PatternError is a structural diagnostic reported while checking a pattern.
// Checking continues after it is reported.
type PatternError struct {
	BaseError
	Kind   Kind
	Line   int
	Column int
}

func (e *PatternError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d:%d %s", e.ErrType, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// InvariantError means the lowering engine received input that could not
// have passed type checking.
type InvariantError struct {
	BaseError
}

// FixtureError is raised when a fixture or config file is malformed. Line
// and Column locate the offending YAML node when known.
type FixtureError struct {
	BaseError
	FilePath string
	Line     int
	Column   int
}

func (e *FixtureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %s:%d:%d: %s", e.ErrType, e.FilePath, e.Line, e.Column, e.Msg)
	}
	if e.FilePath != "" {
		return fmt.Sprintf("[%s] %s: %s", e.ErrType, e.FilePath, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// MultiError collects multiple matchcore errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if me, ok := m.Errors[0].(MatchError); ok {
			return me.Type()
		}
	}
	return "MultiError"
}

// NewPatternErrorAt creates a PatternError of the given kind at a position.
func NewPatternErrorAt(kind Kind, line, column int, msg string) *PatternError {
	return &PatternError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeStructural,
		},
		Kind:   kind,
		Line:   line,
		Column: column,
	}
}

// NewInvariantError creates an InvariantError.
func NewInvariantError(format string, args ...any) *InvariantError {
	return &InvariantError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf(format, args...),
			ErrType: TypeInvariant,
		},
	}
}

// NewFixtureError creates a FixtureError for the given file.
func NewFixtureError(filePath, msg string) *FixtureError {
	return &FixtureError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeFixture,
		},
		FilePath: filePath,
	}
}

// NewFixtureErrorAt creates a FixtureError at a position in the file.
func NewFixtureErrorAt(filePath string, line, column int, msg string) *FixtureError {
	err := NewFixtureError(filePath, msg)
	err.Line = line
	err.Column = column
	return err
}
