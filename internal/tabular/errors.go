package tabular

import (
	"fmt"
	"strings"
)

// ErrorKind enumerates the domain error taxonomy. Parse-stage kinds are
// accumulated; schema and store level kinds abort the enclosing operation.
type ErrorKind string

const (
	InvalidVersionToken ErrorKind = "invalid version token"
	SchemaMismatch      ErrorKind = "schema mismatch"
	CatalogBuild        ErrorKind = "catalog build failure"
	KeyInvalid          ErrorKind = "invalid key"
	KeyNotFound         ErrorKind = "key not found"
	NoField             ErrorKind = "no such field"
	NoItem              ErrorKind = "no such item"
	NotDecimal          ErrorKind = "not a decimal"
	WrongColumnCount    ErrorKind = "wrong column count"
	IntegrityViolation  ErrorKind = "integrity violation"
	ValidationFailure   ErrorKind = "validation failure"
)

// Error is the single kinded error type shared by the resolver, catalog, and
// pivot layers. Message formatting is centralized per kind so call sites only
// fill in the offending value and its context.
type Error struct {
	Kind   ErrorKind
	Field  string
	Value  string
	Domain string
	Line   int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	switch e.Kind {
	case InvalidVersionToken:
		fmt.Fprintf(&b, ": %q", e.Value)
	case SchemaMismatch:
		fmt.Fprintf(&b, ": %s", e.Detail)
	case CatalogBuild:
		fmt.Fprintf(&b, ": field %q has no resolvable item domain", e.Field)
	case KeyInvalid:
		fmt.Fprintf(&b, ": %q: %s", e.Value, e.Detail)
	case KeyNotFound:
		fmt.Fprintf(&b, ": %q is not a label of field %q", e.Value, e.Field)
	case NoField:
		fmt.Fprintf(&b, ": %q", e.Field)
		if e.Detail != "" {
			fmt.Fprintf(&b, " (%s)", e.Detail)
		}
	case NoItem:
		fmt.Fprintf(&b, ": %q in domain %q", e.Value, e.Domain)
	case NotDecimal:
		fmt.Fprintf(&b, ": %q", e.Value)
	case WrongColumnCount:
		fmt.Fprintf(&b, ": line %d: %s", e.Line, e.Detail)
	case IntegrityViolation, ValidationFailure:
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Line > 0 && e.Kind != WrongColumnCount {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Errors accumulates per-cell and per-line failures during a parse pass.
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors reports whether the accumulator holds anything.
func (es Errors) HasErrors() bool { return len(es) > 0 }

// IsKind reports whether err is a tabular Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}
