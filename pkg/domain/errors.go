package domain

import (
	"errors"
	"fmt"
)

// ErrNoStates is returned when an element declares no state list. Such an
// element cannot be meaningfully initialized.
var ErrNoStates = errors.New("element declares no states")

// ErrUnknownElement is returned when an element ID cannot be resolved.
var ErrUnknownElement = errors.New("unknown element")

// Diagnostic reports a non-fatal configuration problem. Malformed attributes
// degrade to documented fallbacks; the diagnostic records what was dropped
// or substituted. Diagnostics never reach an end user visually.
type Diagnostic struct {
	Attr    string `json:"attr"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Value == "" {
		return fmt.Sprintf("%s: %s", d.Attr, d.Message)
	}
	return fmt.Sprintf("%s=%q: %s", d.Attr, d.Value, d.Message)
}
