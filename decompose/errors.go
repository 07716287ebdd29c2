package decompose

import (
	"fmt"
)

// UnsupportedGateError reports a gate the native vocabulary cannot
// express: a two-qubit unitary whose canonical interaction matches
// neither entangler family, or a gate on more than two qubits. The
// canonical coefficients let a caller tell "not implemented" apart from
// "not unitary".
type UnsupportedGateError struct {
	Name   string
	Params []float64
	Arity  int
	X      float64
	Y      float64
	Z      float64
}

func (e *UnsupportedGateError) Error() string {
	if e.Arity > 2 {
		return fmt.Sprintf("gate %s addresses %d qubits; only 1- and 2-qubit gates are decomposable",
			e.Name, e.Arity)
	}
	return fmt.Sprintf("gate %s is outside the native entangler classes/x:%.6g/y:%.6g/z:%.6g",
		e.Name, e.X, e.Y, e.Z)
}
