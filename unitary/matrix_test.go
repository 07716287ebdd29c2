//go:build unit
// +build unit

package unitary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKronOrdersFirstQubitAsMostSignificant(t *testing.T) {
	m := Kron(PauliX, Identity2)
	// X on the first qubit swaps |00>/|10> and |01>/|11>.
	assert.Equal(t, complex128(1), m[0][2])
	assert.Equal(t, complex128(1), m[2][0])
	assert.Equal(t, complex128(1), m[1][3])
	assert.Equal(t, complex128(1), m[3][1])
	assert.Equal(t, complex128(0), m[0][0])

	m = Kron(Identity2, PauliX)
	assert.Equal(t, complex128(1), m[0][1])
	assert.Equal(t, complex128(1), m[1][0])
	assert.Equal(t, complex128(1), m[2][3])
	assert.Equal(t, complex128(1), m[3][2])
}

func TestMul2(t *testing.T) {
	// XY = iZ
	got := Mul2(PauliX, PauliY)
	want := Scale2(complex(0, 1), PauliZ)
	assert.InDelta(t, 0, MaxDiff2(got, want), Tol)
}

func TestEqualUpToGlobalPhase(t *testing.T) {
	tests := []struct {
		name string
		a    M2
		b    M2
		want bool
	}{
		{"same", PauliX, PauliX, true},
		{"phase i", PauliX, Scale2(complex(0, 1), PauliX), true},
		{"minus", Hadamard, Scale2(-1, Hadamard), true},
		{"arbitrary phase", RZ(0.4), Scale2(complex(math.Cos(1.1), math.Sin(1.1)), RZ(0.4)), true},
		{"different", PauliX, PauliZ, false},
		{"close but not equal", RZ(0.4), RZ(0.4 + 1e-3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EqualUpToGlobalPhase2(tt.a, tt.b, Tol))
		})
	}
}

func TestEqualUpToGlobalPhase4(t *testing.T) {
	a := Kron(Hadamard, PauliY)
	assert.True(t, EqualUpToGlobalPhase4(a, Scale4(complex(0, -1), a), Tol))
	assert.False(t, EqualUpToGlobalPhase4(a, Kron(PauliY, Hadamard), Tol))
}

func TestIsUnitary(t *testing.T) {
	assert.True(t, IsUnitary2(Hadamard))
	assert.True(t, IsUnitary2(Mul2(PauliX, PauliY)))
	assert.False(t, IsUnitary2(M2{{1, 0}, {0, 2}}))
	assert.True(t, IsUnitary4(Kron(Hadamard, PauliZ)))
	assert.False(t, IsUnitary4(M4{}))
}

func TestDagger(t *testing.T) {
	u := Mul2(RZ(0.3), RY(1.1))
	assert.InDelta(t, 0, MaxDiff2(Mul2(u, Dagger2(u)), Identity2), Tol)
	v := Kron(u, Hadamard)
	assert.InDelta(t, 0, MaxDiff4(Mul4(v, Dagger4(v)), Identity4), Tol)
}

func TestFoldAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"pi stays", math.Pi, math.Pi},
		{"minus pi wraps to pi", -math.Pi, math.Pi},
		{"three half pi", 3 * math.Pi / 2, -math.Pi / 2},
		{"two pi", 2 * math.Pi, 0},
		{"in range", -1.2, -1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FoldAngle(tt.in), Tol)
		})
	}
}
