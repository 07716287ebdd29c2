package gate

import (
	"fmt"
	"math"
	"strings"

	"github.com/oqtopus-team/oqtopus-transpiler/unitary"
)

// Well-known non-native gates, defined by matrix only. The transpiler
// treats them like any other Generic input; the names just label the
// record boundary.

func X() Gate { return NewGeneric1Q("x", unitary.PauliX) }
func Y() Gate { return NewGeneric1Q("y", unitary.PauliY) }
func Z() Gate { return NewGeneric1Q("z", unitary.PauliZ) }
func H() Gate { return NewGeneric1Q("h", unitary.Hadamard) }

func S() Gate {
	return NewGeneric1Q("s", unitary.M2{{1, 0}, {0, complex(0, 1)}})
}

func Sdg() Gate {
	return NewGeneric1Q("sdg", unitary.M2{{1, 0}, {0, complex(0, -1)}})
}

func T() Gate {
	return NewGeneric1Q("t", unitary.M2{{1, 0}, {0, cexp(math.Pi / 4)}})
}

func Tdg() Gate {
	return NewGeneric1Q("tdg", unitary.M2{{1, 0}, {0, cexp(-math.Pi / 4)}})
}

// CX is controlled-X with the first listed qubit as control.
func CX() Gate {
	return NewGeneric2Q("cx", unitary.M4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	})
}

func CZ() Gate {
	return NewGeneric2Q("cz", unitary.M4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, -1},
	})
}

func Swap() Gate {
	return NewGeneric2Q("swap", unitary.M4{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
}

func ISwap() Gate {
	return NewGeneric2Q("iswap", unitary.M4{
		{1, 0, 0, 0},
		{0, 0, complex(0, 1), 0},
		{0, complex(0, 1), 0, 0},
		{0, 0, 0, 1},
	})
}

// FromName rebuilds a gate from its record name. Unknown names fail
// because a matrix-only gate cannot cross the textual boundary.
func FromName(name string, params []float64) (Gate, error) {
	n := strings.ToLower(name)
	switch n {
	case "rx", "ry", "rz":
		if len(params) != 1 {
			return Gate{}, fmt.Errorf("gate %s takes exactly 1 parameter, got %d", n, len(params))
		}
		var axis Axis
		switch n[1] {
		case 'x':
			axis = AxisX
		case 'y':
			axis = AxisY
		default:
			axis = AxisZ
		}
		return NewRotation(axis, params[0]), nil
	case "ising":
		if len(params) != 1 {
			return Gate{}, fmt.Errorf("gate ising takes exactly 1 parameter, got %d", len(params))
		}
		return NewIsing(params[0]), nil
	case "xy":
		if len(params) != 1 {
			return Gate{}, fmt.Errorf("gate xy takes exactly 1 parameter, got %d", len(params))
		}
		return NewXY(params[0]), nil
	case "measure":
		if len(params) != 0 {
			return Gate{}, fmt.Errorf("gate measure takes no parameters, got %d", len(params))
		}
		return NewMeasure(), nil
	}
	if len(params) != 0 {
		return Gate{}, fmt.Errorf("gate %s takes no parameters, got %d", n, len(params))
	}
	switch n {
	case "x":
		return X(), nil
	case "y":
		return Y(), nil
	case "z":
		return Z(), nil
	case "h":
		return H(), nil
	case "s":
		return S(), nil
	case "sdg":
		return Sdg(), nil
	case "t":
		return T(), nil
	case "tdg":
		return Tdg(), nil
	case "cx", "cnot":
		return CX(), nil
	case "cz":
		return CZ(), nil
	case "swap":
		return Swap(), nil
	case "iswap":
		return ISwap(), nil
	}
	return Gate{}, fmt.Errorf("unknown gate name %s", name)
}
