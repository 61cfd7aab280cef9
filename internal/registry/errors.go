package registry

import "fmt"

// HTTPError indicates a non-2xx metadata response.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("registry returned status %d for %s", e.Status, e.URL)
}

// DecodeError indicates an undecodable metadata body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode version metadata: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
