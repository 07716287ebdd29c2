package gate

import (
	"fmt"
	"math"

	"github.com/oqtopus-team/oqtopus-transpiler/unitary"
)

// Kind classifies a gate. The native vocabulary of the target hardware
// is single-qubit rotations, the two entangler families and measurement;
// everything else is Generic and only defined by its matrix.
type Kind int

const (
	Rotation Kind = iota
	Ising
	XY
	Measure
	Generic
)

func (k Kind) String() string {
	switch k {
	case Rotation:
		return "rotation"
	case Ising:
		return "ising"
	case XY:
		return "xy"
	case Measure:
		return "measure"
	case Generic:
		return "generic"
	default:
		return "unknown"
	}
}

// Axis is the rotation axis of a Rotation gate.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// EntanglerPeriod is the exponent period of both entangler families.
// Exponents t and t+EntanglerPeriod implement the same operation up to
// global phase.
const EntanglerPeriod = 2.0

// Gate is an immutable gate description. Construct values through the
// New* functions; Params must not be mutated afterwards.
type Gate struct {
	Kind   Kind
	Axis   Axis
	Params []float64
	Name   string
	// Generic gates carry their matrix explicitly. The fields stay
	// exported so deep copies keep them, but they never serialize.
	Mat2 *unitary.M2 `json:"-"`
	Mat4 *unitary.M4 `json:"-"`
}

// NewRotation returns a rotation exp(-i*theta*P/2) about the given axis.
func NewRotation(axis Axis, theta float64) Gate {
	return Gate{
		Kind:   Rotation,
		Axis:   axis,
		Params: []float64{theta},
		Name:   "r" + axis.String(),
	}
}

// NewIsing returns the Ising-like entangler exp(-i*pi*t*ZZ/2).
func NewIsing(t float64) Gate {
	return Gate{Kind: Ising, Params: []float64{t}, Name: "ising"}
}

// NewXY returns the XY-like entangler exp(-i*pi*t*(XX+YY)/2).
func NewXY(t float64) Gate {
	return Gate{Kind: XY, Params: []float64{t}, Name: "xy"}
}

// NewMeasure returns a computational-basis measurement.
func NewMeasure() Gate {
	return Gate{Kind: Measure, Name: "measure"}
}

// NewGeneric1Q returns a one-qubit gate defined only by its matrix.
func NewGeneric1Q(name string, m unitary.M2) Gate {
	return Gate{Kind: Generic, Name: name, Mat2: &m}
}

// NewGeneric2Q returns a two-qubit gate defined only by its matrix.
func NewGeneric2Q(name string, m unitary.M4) Gate {
	return Gate{Kind: Generic, Name: name, Mat4: &m}
}

// IsNative reports whether the gate belongs to the hardware vocabulary.
// The check is purely structural; a Generic gate whose matrix happens to
// equal a native one is still not native until decomposed.
func (g Gate) IsNative() bool {
	return g.Kind == Rotation || g.Kind == Ising || g.Kind == XY || g.Kind == Measure
}

// NumQubits returns the qubit arity of the gate, or -1 for measurement
// which accepts any number of qubits.
func (g Gate) NumQubits() int {
	switch g.Kind {
	case Rotation:
		return 1
	case Ising, XY:
		return 2
	case Measure:
		return -1
	case Generic:
		if g.Mat2 != nil {
			return 1
		}
		if g.Mat4 != nil {
			return 2
		}
	}
	return 0
}

// Matrix2 returns the one-qubit matrix of the gate.
func (g Gate) Matrix2() (unitary.M2, error) {
	switch g.Kind {
	case Rotation:
		theta := g.Params[0]
		switch g.Axis {
		case AxisX:
			return unitary.RX(theta), nil
		case AxisY:
			return unitary.RY(theta), nil
		case AxisZ:
			return unitary.RZ(theta), nil
		}
	case Generic:
		if g.Mat2 != nil {
			return *g.Mat2, nil
		}
	}
	return unitary.M2{}, fmt.Errorf("gate %s has no one-qubit matrix", g.Name)
}

// Matrix4 returns the two-qubit matrix of the gate. The first listed
// qubit is the most significant index bit.
func (g Gate) Matrix4() (unitary.M4, error) {
	switch g.Kind {
	case Ising:
		return isingMatrix(g.Params[0]), nil
	case XY:
		return xyMatrix(g.Params[0]), nil
	case Generic:
		if g.Mat4 != nil {
			return *g.Mat4, nil
		}
	}
	return unitary.M4{}, fmt.Errorf("gate %s has no two-qubit matrix", g.Name)
}

// isingMatrix is exp(-i*pi*t*ZZ/2), diagonal in the computational basis.
func isingMatrix(t float64) unitary.M4 {
	plus := cexp(math.Pi * t / 2)
	minus := cexp(-math.Pi * t / 2)
	var m unitary.M4
	m[0][0] = minus
	m[1][1] = plus
	m[2][2] = plus
	m[3][3] = minus
	return m
}

// xyMatrix is exp(-i*pi*t*(XX+YY)/2); it preserves the |00>/|11>
// subspace and mixes |01>/|10>.
func xyMatrix(t float64) unitary.M4 {
	c := complex(math.Cos(math.Pi*t), 0)
	s := complex(0, -math.Sin(math.Pi*t))
	var m unitary.M4
	m[0][0] = 1
	m[3][3] = 1
	m[1][1] = c
	m[2][2] = c
	m[1][2] = s
	m[2][1] = s
	return m
}

func cexp(phi float64) complex128 {
	return complex(math.Cos(phi), math.Sin(phi))
}

// FoldExponent maps an entangler exponent into (-1, 1] modulo the
// period.
func FoldExponent(t float64) float64 {
	f := math.Mod(t+1, EntanglerPeriod)
	if f <= 0 {
		f += EntanglerPeriod
	}
	return f - 1
}

// SameUpToPhase reports whether two gates of equal arity implement the
// same unitary up to global phase. Names play no part in the check.
func SameUpToPhase(a, b Gate) (bool, error) {
	na, nb := a.NumQubits(), b.NumQubits()
	if na != nb || na < 1 {
		return false, nil
	}
	switch na {
	case 1:
		ma, err := a.Matrix2()
		if err != nil {
			return false, err
		}
		mb, err := b.Matrix2()
		if err != nil {
			return false, err
		}
		return unitary.EqualUpToGlobalPhase2(ma, mb, unitary.Tol), nil
	case 2:
		ma, err := a.Matrix4()
		if err != nil {
			return false, err
		}
		mb, err := b.Matrix4()
		if err != nil {
			return false, err
		}
		return unitary.EqualUpToGlobalPhase4(ma, mb, unitary.Tol), nil
	}
	return false, fmt.Errorf("unsupported arity %d", na)
}
