package generator

import "fmt"

// MalformedResponseError means the model's text could not be coerced into the
// expected JSON even after fence/boundary extraction and trailing-comma
// cleanup. Raw keeps the original text for diagnostics.
type MalformedResponseError struct {
	Stage string // "outline" or "fill"
	Raw   string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s response is not valid JSON: %v", e.Stage, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// RawHead returns up to n leading bytes of the raw model output, for logs.
func (e *MalformedResponseError) RawHead(n int) string {
	if len(e.Raw) <= n {
		return e.Raw
	}
	return e.Raw[:n]
}
