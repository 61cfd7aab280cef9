package transfer

import (
	"fmt"
	"strings"
)

// Kind classifies a transfer failure.
type Kind int

const (
	KindAccessDenied Kind = iota
	KindNotFound
	KindUpstream
	KindUnexpectedContentType
	KindIO
)

// String returns the user-facing description of a failure kind.
func (k Kind) String() string {
	switch k {
	case KindAccessDenied:
		return "access denied"
	case KindNotFound:
		return "not found"
	case KindUpstream:
		return "upstream error"
	case KindUnexpectedContentType:
		return "unexpected content type"
	case KindIO:
		return "local I/O error"
	default:
		return "unknown"
	}
}

// Error is a classified transfer failure. Redirects holds the hop chain
// observed before the final response, for diagnostics.
type Error struct {
	Kind        Kind
	Status      int
	URL         string
	ContentType string
	Redirects   []string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Kind == KindUnexpectedContentType {
		fmt.Fprintf(&b, ": got %q, expected a binary payload (invalid token or expired link?)", e.ContentType)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
