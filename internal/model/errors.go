package model

import "errors"

// Error kinds shared by every stage of a ticker's pipeline.
var (
	ErrValidation       = errors.New("validation error")
	ErrDegenerateWindow = errors.New("degenerate time window")
	ErrInsufficientData = errors.New("insufficient data")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrNotFound         = errors.New("not found")
	ErrNetwork          = errors.New("network error")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrValidation, "validation"},
	{ErrDegenerateWindow, "degenerate_window"},
	{ErrInsufficientData, "insufficient_data"},
	{ErrDivisionByZero, "division_by_zero"},
	{ErrNotFound, "not_found"},
	{ErrNetwork, "network"},
}

// ErrorKind maps an error to its short kind name, "unknown" if it wraps none of the sentinels.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "unknown"
}
