package colormath

import "fmt"

// FormatError reports a malformed hex colour.
type FormatError struct {
	Input  string
	Reason string
	Err    error
}

func (fe *FormatError) Error() string {
	return fmt.Sprintf("invalid hex colour %q: %s", fe.Input, fe.Reason)
}

func (fe *FormatError) Unwrap() error {
	return fe.Err
}
