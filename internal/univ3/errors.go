package univ3

import "fmt"

// RangeError reports a malformed position or price range. The valuation is
// aborted; the caller should reject the input rather than retry.
type RangeError struct {
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: %s", e.Reason)
}

func rangeErrorf(format string, args ...interface{}) error {
	return &RangeError{Reason: fmt.Sprintf(format, args...)}
}
