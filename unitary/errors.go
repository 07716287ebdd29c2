package unitary

import "fmt"

// DecompositionError reports a numeric failure while decomposing a
// matrix. Gate identifies the offending operation when the caller knows
// it; the algebra layer leaves it empty.
type DecompositionError struct {
	Gate   string
	Stage  string
	Reason string
}

func (e *DecompositionError) Error() string {
	if e.Gate == "" {
		return fmt.Sprintf("decomposition failed at %s: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("decomposition of %s failed at %s: %s", e.Gate, e.Stage, e.Reason)
}
