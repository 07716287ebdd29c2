package unitary

import (
	"math"
	"math/cmplx"
)

// Tol is the shared numeric tolerance of the transpiler. Every equality,
// unitarity and zero-angle check in this module compares entry-wise
// absolute values against this single constant.
const Tol = 1e-9

// M2 is a 2x2 complex matrix over one qubit, row-major.
type M2 [2][2]complex128

// M4 is a 4x4 complex matrix over two qubits, row-major. The first
// listed qubit is the most significant index bit.
type M4 [4][4]complex128

var (
	Identity2 = M2{{1, 0}, {0, 1}}
	Identity4 = M4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}

	PauliX = M2{{0, 1}, {1, 0}}
	PauliY = M2{{0, -1i}, {1i, 0}}
	PauliZ = M2{{1, 0}, {0, -1}}

	Hadamard = M2{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
)

func Mul2(a, b M2) M2 {
	var m M2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				m[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return m
}

func Mul4(a, b M4) M4 {
	var m M4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				m[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return m
}

// Kron returns the tensor product a (x) b. a acts on the first listed
// qubit, which is the most significant index bit.
func Kron(a, b M2) M4 {
	var m M4
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				for l := 0; l < 2; l++ {
					m[2*i+k][2*j+l] = a[i][j] * b[k][l]
				}
			}
		}
	}
	return m
}

func Dagger2(a M2) M2 {
	var m M2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			m[i][j] = cmplx.Conj(a[j][i])
		}
	}
	return m
}

func Dagger4(a M4) M4 {
	var m M4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = cmplx.Conj(a[j][i])
		}
	}
	return m
}

func Scale2(c complex128, a M2) M2 {
	var m M2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			m[i][j] = c * a[i][j]
		}
	}
	return m
}

func Scale4(c complex128, a M4) M4 {
	var m M4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = c * a[i][j]
		}
	}
	return m
}

func Det2(a M2) complex128 {
	return a[0][0]*a[1][1] - a[0][1]*a[1][0]
}

// MaxDiff2 returns the largest entry-wise absolute difference.
func MaxDiff2(a, b M2) float64 {
	d := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if v := cmplx.Abs(a[i][j] - b[i][j]); v > d {
				d = v
			}
		}
	}
	return d
}

func MaxDiff4(a, b M4) float64 {
	d := 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if v := cmplx.Abs(a[i][j] - b[i][j]); v > d {
				d = v
			}
		}
	}
	return d
}

func IsUnitary2(a M2) bool {
	return MaxDiff2(Mul2(a, Dagger2(a)), Identity2) <= Tol
}

func IsUnitary4(a M4) bool {
	return MaxDiff4(Mul4(a, Dagger4(a)), Identity4) <= Tol
}

// EqualUpToGlobalPhase2 reports whether a == e^(i*phi) * b for some real
// phi, entry-wise within tol. The phase is read off the entry where b is
// largest, so the check never depends on gate names.
func EqualUpToGlobalPhase2(a, b M2, tol float64) bool {
	ph, ok := relativePhase2(a, b)
	if !ok {
		return MaxDiff2(a, b) <= tol
	}
	return MaxDiff2(a, Scale2(ph, b)) <= tol
}

func EqualUpToGlobalPhase4(a, b M4, tol float64) bool {
	ph, ok := relativePhase4(a, b)
	if !ok {
		return MaxDiff4(a, b) <= tol
	}
	return MaxDiff4(a, Scale4(ph, b)) <= tol
}

// relativePhase2 returns the unit complex factor ph with a ~ ph*b, read
// off the largest entry of b. ok is false when b is numerically zero.
func relativePhase2(a, b M2) (complex128, bool) {
	bi, bj, bm := 0, 0, 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if v := cmplx.Abs(b[i][j]); v > bm {
				bi, bj, bm = i, j, v
			}
		}
	}
	if bm <= Tol {
		return 0, false
	}
	ph := a[bi][bj] / b[bi][bj]
	if cmplx.Abs(ph) <= Tol {
		return 0, false
	}
	return ph / complex(cmplx.Abs(ph), 0), true
}

func relativePhase4(a, b M4) (complex128, bool) {
	bi, bj, bm := 0, 0, 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if v := cmplx.Abs(b[i][j]); v > bm {
				bi, bj, bm = i, j, v
			}
		}
	}
	if bm <= Tol {
		return 0, false
	}
	ph := a[bi][bj] / b[bi][bj]
	if cmplx.Abs(ph) <= Tol {
		return 0, false
	}
	return ph / complex(cmplx.Abs(ph), 0), true
}

// FoldAngle maps an angle into (-pi, pi].
func FoldAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
