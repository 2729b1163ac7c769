package alerr

import "strings"

// NewEntityNotFoundError creates an error for a name missing from the
// current set, with a "did you mean" help when a close name exists.
func NewEntityNotFoundError(name string, known []string) *Error {
	e := Newf(ErrEntityNotFound, "entity %q not found", name).WithEntity(name)
	if s := SuggestSimilar(name, known); s != "" {
		e.WithHelp(s)
	}
	return e
}

// NewInvalidIdentifierError creates an error for a name that breaks the
// letter-then-alphanumerics rule.
func NewInvalidIdentifierError(kind, name string) *Error {
	e := Newf(ErrInvalidIdentifier, "invalid %s name %q", kind, name).
		With(kind, name).
		WithNote("names must start with a letter and contain only letters and digits")

	if fixed := identifierHint(name); fixed != "" && fixed != name {
		e.WithHelp("try '" + fixed + "'")
	}
	return e
}

// identifierHint drops characters that can never appear in an identifier.
func identifierHint(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && b.Len() > 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
