// Package alerr defines the coded errors shared by every nocstudio package.
//
// An Error carries a stable code (E1001, W1001, ...), a message, free-form
// context, an optional source location, and note/help lines for the CLI.
package alerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code is a stable, machine-readable error code: E{category}{number}, or W
// for warnings.
type Code string

// Error codes organized by category.
const (
	// Parse errors (E1xxx) - the only user-facing outcomes of DBML import
	ErrEmptyContent     Code = "E1001" // Input text is blank
	ErrNoTableFound     Code = "E1002" // No Table keyword anywhere in the input
	ErrNoEntitiesParsed Code = "E1003" // Scan finished with zero entities

	// Validation errors (E2xxx) - caller-side policy checks
	ErrInvalidIdentifier Code = "E2001" // Name must start with a letter, then letters/digits
	ErrInvalidFieldToken Code = "E2002" // Field token is not name:Type or name:Collection<Type>
	ErrInvalidCollection Code = "E2003" // Unknown collection kind
	ErrEntityNotFound    Code = "E2004" // Entity name not in the current set
	ErrEntityDuplicate   Code = "E2005" // Entity name already in the current set
	ErrInvalidDecision   Code = "E2006" // Unknown overwrite decision
	ErrInvalidMode       Code = "E2007" // Unknown on-error mode

	// Execution errors (E3xxx) - external CLI invocations
	ErrCommandFailed  Code = "E3001" // A generated command returned an error
	ErrRunAborted     Code = "E3002" // Run stopped on first error
	ErrNothingToApply Code = "E3003" // Plan is empty

	// Host errors (E4xxx) - filesystem and process capabilities
	ErrHostRead   Code = "E4001" // Reading a file failed
	ErrHostList   Code = "E4002" // Listing a directory failed
	ErrHostChoose Code = "E4003" // No directory was chosen
	ErrHostState  Code = "E4004" // Workspace state could not be read or written

	// Cache errors (E8xxx)
	ErrCacheInit  Code = "E8001"
	ErrCacheRead  Code = "E8002"
	ErrCacheWrite Code = "E8003"

	// Internal errors (E9xxx)
	EInternalError Code = "E9001"

	// Warnings (W1xxx) - never fail an operation
	WarnUnterminatedTable Code = "W1001" // Table block reached EOF without "}"
	WarnUnknownType       Code = "W1002" // Property type is neither built in nor a known entity
)

// IsWarning reports whether c is a warning code.
func (c Code) IsWarning() bool {
	return strings.HasPrefix(string(c), "W")
}

// Error is the coded error type.
type Error struct {
	code    Code
	message string
	cause   error

	// fields holds free-form context, printed as "key: value"
	fields map[string]any

	file   string
	line   int
	source string
	notes  []string
	helps  []string
}

func newError(code Code, msg string, cause error) *Error {
	return &Error{code: code, message: msg, cause: cause, fields: map[string]any{}}
}

// New creates an Error.
func New(code Code, msg string) *Error {
	return newError(code, msg, nil)
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates an Error caused by err. A nil err behaves like New.
func Wrap(code Code, err error, msg string) *Error {
	return newError(code, msg, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...), err)
}

// Error renders the code, message, sorted context and cause:
//
//	[E2001] invalid entity name
//	  entity: 1User
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.code, e.message)

	if file, line, ok := e.Location(); ok {
		fmt.Fprintf(&b, "\n  at: %s", formatLocation(file, line))
	}
	for _, k := range e.keys() {
		fmt.Fprintf(&b, "\n  %s: %v", k, e.fields[k])
	}
	if e.cause != nil {
		fmt.Fprintf(&b, "\n  cause: %v", e.cause)
	}
	return b.String()
}

func (e *Error) keys() []string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatLocation(file string, line int) string {
	switch {
	case file == "":
		return fmt.Sprintf("line %d", line)
	case line > 0:
		return fmt.Sprintf("%s:%d", file, line)
	}
	return file
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.code == e.code
}

func (e *Error) GetCode() Code              { return e.code }
func (e *Error) GetMessage() string         { return e.message }
func (e *Error) GetCause() error            { return e.cause }
func (e *Error) GetContext() map[string]any { return e.fields }
func (e *Error) IsWarning() bool            { return e.code.IsWarning() }

// With sets a context value and returns e for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.fields == nil {
		e.fields = map[string]any{}
	}
	e.fields[key] = value
	return e
}

func (e *Error) WithEntity(name string) *Error   { return e.With("entity", name) }
func (e *Error) WithProperty(name string) *Error { return e.With("property", name) }
func (e *Error) WithCommand(cmd string) *Error   { return e.With("command", cmd) }

// WithFile sets the file and, when positive, the line. A line recorded
// earlier survives a zero line.
func (e *Error) WithFile(path string, line int) *Error {
	e.file = path
	if line > 0 {
		e.line = line
	}
	return e
}

// WithLine sets the line without a file.
func (e *Error) WithLine(line int) *Error {
	e.line = line
	return e
}

// WithSource attaches the offending source line.
func (e *Error) WithSource(source string) *Error {
	e.source = source
	return e
}

// WithNote appends a "note:" line.
func (e *Error) WithNote(note string) *Error {
	e.notes = append(e.notes, note)
	return e
}

// WithHelp appends a "help:" line.
func (e *Error) WithHelp(help string) *Error {
	e.helps = append(e.helps, help)
	return e
}

// Location returns the file and line, ok when either is set.
func (e *Error) Location() (file string, line int, ok bool) {
	return e.file, e.line, e.file != "" || e.line > 0
}

func (e *Error) Source() string  { return e.source }
func (e *Error) Notes() []string { return e.notes }
func (e *Error) Helps() []string { return e.helps }

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ""
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HasCode reports whether err carries any code.
func HasCode(err error) bool {
	return CodeOf(err) != ""
}
