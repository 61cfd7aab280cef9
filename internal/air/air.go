// Package air parses user-supplied model references. Two forms are
// accepted: AIR resource names (urn:air:ecosystem:type:source:id@version)
// and direct CivitAI download URLs. Parsing is pure and performs no
// network I/O.
package air

import (
	"fmt"
	"regexp"
)

// Source is the only registry this tool can download from.
const Source = "civitai"

// Type represents the category of reference.
type Type int

const (
	TypeUnknown Type = iota
	TypeAir
	TypeURL
)

// Ref represents a parsed model reference.
type Ref struct {
	Raw  string
	Type Type

	// For TypeAir
	Ecosystem string
	Kind      string
	Source    string
	ID        string
	Version   string
	Format    string

	// For TypeURL
	VersionID   string
	QueryType   string
	QueryFormat string
	QuerySize   string
	QueryFP     string
}

// airPattern implements the AIR grammar:
// [urn:][air:]ecosystem:kind:source:id[@version][.format]
// The id terminates at '@' or '.'; version terminates at '.'.
var airPattern = regexp.MustCompile(
	`^(?:urn:)?(?:air:)?` +
		`([^:]+):` + // ecosystem
		`([^:]+):` + // kind
		`([^:]+):` + // source
		`([^@.]+)` + // id
		`(?:@([^.]+))?` + // optional version
		`(?:\.(\w+))?` + // optional format
		`$`)

// ParseAir parses an AIR resource name.
// Example: urn:air:flux1:lora:civitai:667004@746484
func ParseAir(raw string) (*Ref, error) {
	m := airPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, &InvalidAirError{Raw: raw}
	}

	ref := &Ref{
		Raw:       raw,
		Type:      TypeAir,
		Ecosystem: m[1],
		Kind:      m[2],
		Source:    m[3],
		ID:        m[4],
		Version:   m[5],
		Format:    m[6],
	}

	if ref.Source != Source {
		return nil, &UnsupportedSourceError{Source: ref.Source}
	}

	return ref, nil
}

// DownloadID returns the identifier to use against the download endpoint.
// The version takes precedence over the resource id when both are present.
func (r *Ref) DownloadID() string {
	switch r.Type {
	case TypeAir:
		if r.Version != "" {
			return r.Version
		}
		return r.ID
	case TypeURL:
		return r.VersionID
	default:
		return ""
	}
}

// FormatKnown reports whether the reference already pins a file format,
// making a metadata lookup unnecessary for format resolution.
func (r *Ref) FormatKnown() bool {
	switch r.Type {
	case TypeAir:
		return r.Format != ""
	case TypeURL:
		return r.QueryFormat != ""
	default:
		return false
	}
}

// String returns a human-readable description.
func (r *Ref) String() string {
	switch r.Type {
	case TypeAir:
		s := fmt.Sprintf("AIR %s:%s:%s:%s", r.Ecosystem, r.Kind, r.Source, r.ID)
		if r.Version != "" {
			s += "@" + r.Version
		}
		if r.Format != "" {
			s += "." + r.Format
		}
		return s
	case TypeURL:
		return fmt.Sprintf("URL version %s", r.VersionID)
	default:
		return "unknown"
	}
}
