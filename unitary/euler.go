package unitary

import (
	"math"
	"math/cmplx"
)

// RX returns exp(-i*theta*X/2).
func RX(theta float64) M2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return M2{{c, s}, {s, c}}
}

// RY returns exp(-i*theta*Y/2).
func RY(theta float64) M2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return M2{{c, -s}, {s, c}}
}

// RZ returns exp(-i*theta*Z/2).
func RZ(theta float64) M2 {
	return M2{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}
}

// ZYZ is an Euler angle decomposition of a one-qubit unitary:
//
//	u = Phase * RZ(Z1) * RY(Y) * RZ(Z0)
//
// with Z0 applied first. Angles are folded into (-pi, pi].
type ZYZ struct {
	Z0    float64
	Y     float64
	Z1    float64
	Phase complex128
}

// EulerZYZ decomposes a one-qubit unitary into Z-Y-Z rotation angles
// plus a global phase. The construction is closed-form and fully
// deterministic, so identical inputs always yield identical angles.
func EulerZYZ(u M2) (ZYZ, error) {
	if !IsUnitary2(u) {
		return ZYZ{}, &DecompositionError{Stage: "euler", Reason: "matrix is not unitary within tolerance"}
	}
	m := u

	// Peel phases off the matrix until only a real rotation remains.
	// Degenerate entries give Phase(0) = 0 and Atan2(0, 0) = 0, which
	// keeps every branch well defined.
	rightPhase := cmplx.Phase(m[0][1]*cmplx.Conj(m[0][0])) + math.Pi
	m = Mul2(m, phaseDiag(-rightPhase))
	bottomPhase := cmplx.Phase(m[1][0] * cmplx.Conj(m[0][0]))
	m = Mul2(phaseDiag(-bottomPhase), m)
	rotation := math.Atan2(cmplx.Abs(m[1][0]), cmplx.Abs(m[0][0]))
	m = Mul2(realRotation(-rotation), m)
	diagonalPhase := cmplx.Phase(m[1][1] * cmplx.Conj(m[0][0]))

	res := ZYZ{
		Z0: FoldAngle(rightPhase + diagonalPhase),
		Y:  FoldAngle(2 * rotation),
		Z1: FoldAngle(bottomPhase),
	}

	v := Mul2(Mul2(RZ(res.Z1), RY(res.Y)), RZ(res.Z0))
	ph, ok := relativePhase2(u, v)
	if !ok || MaxDiff2(u, Scale2(ph, v)) > Tol {
		return ZYZ{}, &DecompositionError{Stage: "euler reassembly", Reason: "angles do not reproduce the input matrix"}
	}
	res.Phase = ph
	return res, nil
}

// phaseDiag returns diag(1, e^(i*phi)).
func phaseDiag(phi float64) M2 {
	return M2{{1, 0}, {0, cmplx.Exp(complex(0, phi))}}
}

// realRotation returns the real rotation [[cos, -sin], [sin, cos]].
func realRotation(theta float64) M2 {
	c := complex(math.Cos(theta), 0)
	s := complex(math.Sin(theta), 0)
	return M2{{c, -s}, {s, c}}
}
