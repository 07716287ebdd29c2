package decompose

import (
	"errors"
	"math"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
	"github.com/oqtopus-team/oqtopus-transpiler/unitary"
)

// Result is the native replacement of one operation. Phase is the
// global phase of the input relative to the composed replacement; the
// mapper discards it, tests use it to verify exactness.
type Result struct {
	Ops   []core.Operation
	Phase complex128
}

// Decompose rewrites one operation into the native vocabulary. Native
// operations and measurements pass through unchanged. The replacement
// is always verified against the input matrix before it is returned.
func Decompose(op core.Operation) (Result, error) {
	if op.Gate.Kind == gate.Measure || op.Gate.IsNative() {
		return Result{Ops: []core.Operation{op}, Phase: 1}, nil
	}
	switch len(op.Qubits) {
	case 1:
		return decompose1Q(op)
	case 2:
		return decompose2Q(op)
	default:
		return Result{}, &UnsupportedGateError{
			Name:   op.Gate.Name,
			Params: append([]float64(nil), op.Gate.Params...),
			Arity:  len(op.Qubits),
		}
	}
}

func decompose1Q(op core.Operation) (Result, error) {
	m, err := op.Gate.Matrix2()
	if err != nil {
		return Result{}, err
	}
	d, err := unitary.EulerZYZ(m)
	if err != nil {
		tagGate(err, op.Gate.Name)
		return Result{}, err
	}
	res := Result{Phase: d.Phase}
	res.Ops = appendRotations(res.Ops, d, op.Qubits[0])
	return res, nil
}

func decompose2Q(op core.Operation) (Result, error) {
	m, err := op.Gate.Matrix4()
	if err != nil {
		return Result{}, err
	}
	k, err := unitary.KAKDecompose(m)
	if err != nil {
		tagGate(err, op.Gate.Name)
		return Result{}, err
	}

	q0, q1 := op.Qubits[0], op.Qubits[1]
	before := k.Before
	after := k.After
	phase := k.Phase
	var entangler []core.Operation

	// The chamber guarantees pi/4 >= X >= Y >= |Z| >= 0, so each class
	// below is decided by which coefficients vanish.
	switch {
	case k.X <= unitary.Tol && k.Y <= unitary.Tol && math.Abs(k.Z) <= unitary.Tol:
		// No interaction: the whole gate is a tensor product.
		before[0] = unitary.Mul2(after[0], before[0])
		before[1] = unitary.Mul2(after[1], before[1])
		after[0] = unitary.Identity2
		after[1] = unitary.Identity2
	case k.Y <= unitary.Tol && math.Abs(k.Z) <= unitary.Tol:
		// Pure XX term. Conjugating by H on both qubits turns
		// exp(i*x*XX) into exp(i*x*ZZ) = Ising(-2x/pi) exactly.
		t := gate.FoldExponent(-2 * k.X / math.Pi)
		if math.Abs(t) > unitary.Tol {
			entangler = append(entangler, core.Operation{
				Gate:   gate.NewIsing(t),
				Qubits: []core.Qubit{q0, q1},
			})
			before[0] = unitary.Mul2(unitary.Hadamard, before[0])
			before[1] = unitary.Mul2(unitary.Hadamard, before[1])
			after[0] = unitary.Mul2(after[0], unitary.Hadamard)
			after[1] = unitary.Mul2(after[1], unitary.Hadamard)
		}
	case math.Abs(k.X-k.Y) <= unitary.Tol && math.Abs(k.Z) <= unitary.Tol:
		// Equal XX and YY terms: exp(i*x*(XX+YY)) = XY(-2x/pi).
		t := gate.FoldExponent(-2 * k.X / math.Pi)
		if math.Abs(t) > unitary.Tol {
			entangler = append(entangler, core.Operation{
				Gate:   gate.NewXY(t),
				Qubits: []core.Qubit{q0, q1},
			})
		}
	default:
		return Result{}, &UnsupportedGateError{
			Name:   op.Gate.Name,
			Params: append([]float64(nil), op.Gate.Params...),
			Arity:  2,
			X:      k.X,
			Y:      k.Y,
			Z:      k.Z,
		}
	}

	res := Result{}
	addLocal := func(u unitary.M2, q core.Qubit) error {
		d, derr := unitary.EulerZYZ(u)
		if derr != nil {
			tagGate(derr, op.Gate.Name)
			return derr
		}
		phase *= d.Phase
		res.Ops = appendRotations(res.Ops, d, q)
		return nil
	}

	if err := addLocal(before[0], q0); err != nil {
		return Result{}, err
	}
	if err := addLocal(before[1], q1); err != nil {
		return Result{}, err
	}
	res.Ops = append(res.Ops, entangler...)
	if err := addLocal(after[0], q0); err != nil {
		return Result{}, err
	}
	if err := addLocal(after[1], q1); err != nil {
		return Result{}, err
	}
	res.Phase = phase

	if err := verify2Q(m, res, q0, q1); err != nil {
		tagGate(err, op.Gate.Name)
		return Result{}, err
	}
	return res, nil
}

// appendRotations emits RZ(z0), RY(y), RZ(z1) in application order,
// dropping angles that are zero within tolerance.
func appendRotations(ops []core.Operation, d unitary.ZYZ, q core.Qubit) []core.Operation {
	steps := []struct {
		angle float64
		axis  gate.Axis
	}{
		{d.Z0, gate.AxisZ},
		{d.Y, gate.AxisY},
		{d.Z1, gate.AxisZ},
	}
	for _, s := range steps {
		if math.Abs(s.angle) > unitary.Tol {
			ops = append(ops, core.Operation{
				Gate:   gate.NewRotation(s.axis, s.angle),
				Qubits: []core.Qubit{q},
			})
		}
	}
	return ops
}

// verify2Q recomposes the replacement and checks it reproduces the
// input matrix with the tracked phase.
func verify2Q(want unitary.M4, res Result, q0, q1 core.Qubit) error {
	composed := unitary.Identity4
	for _, op := range res.Ops {
		var full unitary.M4
		if len(op.Qubits) == 1 {
			m2, err := op.Gate.Matrix2()
			if err != nil {
				return err
			}
			if op.Qubits[0] == q0 {
				full = unitary.Kron(m2, unitary.Identity2)
			} else {
				full = unitary.Kron(unitary.Identity2, m2)
			}
		} else {
			m4, err := op.Gate.Matrix4()
			if err != nil {
				return err
			}
			full = m4
		}
		composed = unitary.Mul4(full, composed)
	}
	// Every dropped near-zero angle moves the product by at most Tol/2,
	// so the bound leaves room for all of them.
	if v := unitary.MaxDiff4(want, unitary.Scale4(res.Phase, composed)); v > 16*unitary.Tol {
		return &unitary.DecompositionError{
			Stage:  "recomposition",
			Reason: "native replacement does not reproduce the gate",
		}
	}
	return nil
}

func tagGate(err error, name string) {
	var de *unitary.DecompositionError
	if errors.As(err, &de) {
		de.Gate = name
	}
}
