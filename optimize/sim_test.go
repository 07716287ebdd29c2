//go:build unit
// +build unit

package optimize

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
	"github.com/oqtopus-team/oqtopus-transpiler/unitary"
)

// stateVector is a dense amplitude vector over n qubits with qubit 0 as
// the most significant index bit, matching the matrix convention of the
// gate package.
type stateVector struct {
	n    int
	amps []complex128
}

func newState(n int) *stateVector {
	v := &stateVector{n: n, amps: make([]complex128, 1<<n)}
	v.amps[0] = 1
	return v
}

func (v *stateVector) mask(q core.Qubit) int {
	return 1 << (v.n - 1 - int(q))
}

func (v *stateVector) apply1(q core.Qubit, m unitary.M2) {
	bit := v.mask(q)
	for idx := range v.amps {
		if idx&bit != 0 {
			continue
		}
		a0, a1 := v.amps[idx], v.amps[idx|bit]
		v.amps[idx] = m[0][0]*a0 + m[0][1]*a1
		v.amps[idx|bit] = m[1][0]*a0 + m[1][1]*a1
	}
}

func (v *stateVector) apply2(q0, q1 core.Qubit, m unitary.M4) {
	hi, lo := v.mask(q0), v.mask(q1)
	for idx := range v.amps {
		if idx&hi != 0 || idx&lo != 0 {
			continue
		}
		var in [4]complex128
		in[0] = v.amps[idx]
		in[1] = v.amps[idx|lo]
		in[2] = v.amps[idx|hi]
		in[3] = v.amps[idx|hi|lo]
		for r := 0; r < 4; r++ {
			sum := complex(0, 0)
			for c := 0; c < 4; c++ {
				sum += m[r][c] * in[c]
			}
			switch r {
			case 0:
				v.amps[idx] = sum
			case 1:
				v.amps[idx|lo] = sum
			case 2:
				v.amps[idx|hi] = sum
			case 3:
				v.amps[idx|hi|lo] = sum
			}
		}
	}
}

// runCircuit simulates every gate of the circuit on n qubits, skipping
// measurements.
func runCircuit(t *testing.T, c *core.Circuit, n int) *stateVector {
	v := newState(n)
	for _, op := range c.Ops {
		if op.Gate.Kind == gate.Measure {
			continue
		}
		switch len(op.Qubits) {
		case 1:
			m, err := op.Gate.Matrix2()
			assert.Nil(t, err)
			v.apply1(op.Qubits[0], m)
		case 2:
			m, err := op.Gate.Matrix4()
			assert.Nil(t, err)
			v.apply2(op.Qubits[0], op.Qubits[1], m)
		default:
			t.Fatalf("cannot simulate %d-qubit gate %s", len(op.Qubits), op.Gate.Name)
		}
	}
	return v
}

// outcomeProbs marginalizes the state over the given measured qubits,
// first listed qubit as the most significant outcome bit.
func outcomeProbs(v *stateVector, qubits []core.Qubit) []float64 {
	probs := make([]float64, 1<<len(qubits))
	for idx, a := range v.amps {
		out := 0
		for _, q := range qubits {
			out <<= 1
			if idx&v.mask(q) != 0 {
				out |= 1
			}
		}
		p := cmplx.Abs(a)
		probs[out] += p * p
	}
	return probs
}

// assertSameStatistics checks that both circuits give the same outcome
// distribution for every measurement they contain.
func assertSameStatistics(t *testing.T, a, b *core.Circuit, n int) {
	va := runCircuit(t, a, n)
	vb := runCircuit(t, b, n)
	for _, op := range a.Ops {
		if op.Gate.Kind != gate.Measure {
			continue
		}
		pa := outcomeProbs(va, op.Qubits)
		pb := outcomeProbs(vb, op.Qubits)
		for o := range pa {
			assert.InDelta(t, pa[o], pb[o], 1e-9, "outcome %b on qubits %v", o, op.Qubits)
		}
	}
}
