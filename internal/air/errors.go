package air

import "fmt"

// InvalidAirError indicates a string that does not match the AIR grammar.
type InvalidAirError struct {
	Raw string
}

func (e *InvalidAirError) Error() string {
	return fmt.Sprintf("invalid AIR '%s'\nExpected: [urn:][air:]ecosystem:type:source:id[@version][.format]", e.Raw)
}

// InvalidURLError indicates a URL that is not a registry download URL.
type InvalidURLError struct {
	Raw   string
	Cause string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid download URL '%s': %s", e.Raw, e.Cause)
}

// UnsupportedSourceError indicates an AIR whose source is not the
// supported registry.
type UnsupportedSourceError struct {
	Source string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("unsupported source '%s': only '%s' is supported", e.Source, Source)
}
