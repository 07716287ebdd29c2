//go:build unit
// +build unit

package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
	"github.com/oqtopus-team/oqtopus-transpiler/unitary"
)

func rz(theta float64) gate.Gate { return gate.NewRotation(gate.AxisZ, theta) }
func ry(theta float64) gate.Gate { return gate.NewRotation(gate.AxisY, theta) }
func rx(theta float64) gate.Gate { return gate.NewRotation(gate.AxisX, theta) }

func assertOps(t *testing.T, want []core.OpRecord, got *core.Circuit) {
	recs := got.ToRecords()
	if !assert.Equal(t, len(want), len(recs)) {
		return
	}
	for i := range want {
		assert.Equal(t, want[i].Name, recs[i].Name)
		assert.Equal(t, want[i].Qubits, recs[i].Qubits)
		assert.Equal(t, want[i].Label, recs[i].Label)
		if assert.Equal(t, len(want[i].Params), len(recs[i].Params)) {
			for j := range want[i].Params {
				assert.InDelta(t, want[i].Params[j], recs[i].Params[j], 1e-9)
			}
		}
	}
}

func composeOn(t *testing.T, c *core.Circuit, q core.Qubit) unitary.M2 {
	m := unitary.Identity2
	for _, op := range c.Ops {
		if !op.Touches(q) {
			continue
		}
		g, err := op.Gate.Matrix2()
		assert.Nil(t, err)
		m = unitary.Mul2(g, m)
	}
	return m
}

func TestMergeRotations(t *testing.T) {
	tests := []struct {
		name  string
		build func() *core.Circuit
		want  []core.OpRecord
	}{
		{
			name: "adjacent z rotations collapse",
			build: func() *core.Circuit {
				return core.NewCircuit("c").Add(rz(0.3), 0).Add(rz(0.4), 0)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.7}, Qubits: []int{0}},
			},
		},
		{
			name: "identity run disappears",
			build: func() *core.Circuit {
				return core.NewCircuit("c").Add(rz(0.5), 0).Add(rz(-0.5), 0)
			},
			want: []core.OpRecord{},
		},
		{
			name: "zero rotation disappears",
			build: func() *core.Circuit {
				return core.NewCircuit("c").Add(rx(0), 0)
			},
			want: []core.OpRecord{},
		},
		{
			name: "single rotation is left alone",
			build: func() *core.Circuit {
				return core.NewCircuit("c").Add(rz(0.3), 0)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.3}, Qubits: []int{0}},
			},
		},
		{
			name: "entangler closes the run",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(rz(0.3), 0).
					Add(gate.NewIsing(0.25), 0, 1).
					Add(rz(0.4), 0)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.3}, Qubits: []int{0}},
				{Name: "ising", Params: []float64{0.25}, Qubits: []int{0, 1}},
				{Name: "rz", Params: []float64{0.4}, Qubits: []int{0}},
			},
		},
		{
			name: "measurement closes the run",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(rz(0.3), 0).
					AddMeasure("m", 0).
					Add(rz(0.4), 0)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.3}, Qubits: []int{0}},
				{Name: "measure", Qubits: []int{0}, Label: "m"},
				{Name: "rz", Params: []float64{0.4}, Qubits: []int{0}},
			},
		},
		{
			name: "interleaved qubits merge independently",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(rz(0.2), 0).
					Add(rz(0.3), 1).
					Add(rz(0.5), 0).
					Add(rz(-0.3), 1)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.7}, Qubits: []int{0}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertOps(t, tt.want, MergeRotations(tt.build()))
		})
	}
}

func TestMergeRotationsShortensLongRun(t *testing.T) {
	c := core.NewCircuit("c").
		Add(rz(0.1), 0).
		Add(ry(0.2), 0).
		Add(rz(0.3), 0).
		Add(ry(0.4), 0).
		Add(rx(0.5), 0)
	got := MergeRotations(c)
	assert.LessOrEqual(t, len(got.Ops), 3)
	for _, op := range got.Ops {
		assert.Equal(t, gate.Rotation, op.Gate.Kind)
		assert.Equal(t, []core.Qubit{0}, op.Qubits)
	}
	assert.True(t, unitary.EqualUpToGlobalPhase2(composeOn(t, c, 0), composeOn(t, got, 0), 1e-9))
}

func TestMergeRotationsIdempotent(t *testing.T) {
	circuits := []*core.Circuit{
		core.NewCircuit("mixed").
			Add(rz(0.1), 0).Add(ry(0.2), 0).Add(rz(0.3), 0).Add(ry(0.4), 0),
		core.NewCircuit("interleaved").
			Add(rz(0.2), 0).Add(ry(0.9), 1).Add(rx(0.5), 0).
			Add(gate.NewXY(0.25), 0, 1).Add(rz(1.2), 1),
	}
	for _, c := range circuits {
		once := MergeRotations(c)
		twice := MergeRotations(once)
		assert.Equal(t, once.ToRecords(), twice.ToRecords())
	}
}

func TestCancelEntanglers(t *testing.T) {
	tests := []struct {
		name  string
		build func() *core.Circuit
		want  []core.OpRecord
	}{
		{
			name: "inverse pair cancels",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(gate.NewIsing(0.25), 0, 1).
					Add(gate.NewIsing(-0.25), 0, 1)
			},
			want: []core.OpRecord{},
		},
		{
			name: "pair cancels modulo the period",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(gate.NewIsing(0.5), 0, 1).
					Add(gate.NewIsing(1.5), 0, 1)
			},
			want: []core.OpRecord{},
		},
		{
			name: "reversed qubit order still cancels",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(gate.NewXY(0.25), 0, 1).
					Add(gate.NewXY(-0.25), 1, 0)
			},
			want: []core.OpRecord{},
		},
		{
			name: "different kinds stay",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(gate.NewIsing(0.25), 0, 1).
					Add(gate.NewXY(-0.25), 0, 1)
			},
			want: []core.OpRecord{
				{Name: "ising", Params: []float64{0.25}, Qubits: []int{0, 1}},
				{Name: "xy", Params: []float64{-0.25}, Qubits: []int{0, 1}},
			},
		},
		{
			name: "non-cancelling sum stays",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(gate.NewIsing(0.25), 0, 1).
					Add(gate.NewIsing(0.25), 0, 1)
			},
			want: []core.OpRecord{
				{Name: "ising", Params: []float64{0.25}, Qubits: []int{0, 1}},
				{Name: "ising", Params: []float64{0.25}, Qubits: []int{0, 1}},
			},
		},
		{
			name: "intervening rotation blocks",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(gate.NewIsing(0.25), 0, 1).
					Add(rz(0.3), 0).
					Add(gate.NewIsing(-0.25), 0, 1)
			},
			want: []core.OpRecord{
				{Name: "ising", Params: []float64{0.25}, Qubits: []int{0, 1}},
				{Name: "rz", Params: []float64{0.3}, Qubits: []int{0}},
				{Name: "ising", Params: []float64{-0.25}, Qubits: []int{0, 1}},
			},
		},
		{
			name: "intervening measurement blocks",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(gate.NewIsing(0.25), 0, 1).
					AddMeasure("m", 1).
					Add(gate.NewIsing(-0.25), 0, 1)
			},
			want: []core.OpRecord{
				{Name: "ising", Params: []float64{0.25}, Qubits: []int{0, 1}},
				{Name: "measure", Qubits: []int{1}, Label: "m"},
				{Name: "ising", Params: []float64{-0.25}, Qubits: []int{0, 1}},
			},
		},
		{
			name: "spectator qubit does not block",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(gate.NewIsing(0.25), 0, 1).
					Add(rz(0.3), 2).
					Add(gate.NewIsing(-0.25), 0, 1)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.3}, Qubits: []int{2}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertOps(t, tt.want, CancelEntanglers(tt.build()))
		})
	}
}

func TestDropRZBeforeMeasure(t *testing.T) {
	tests := []struct {
		name  string
		build func() *core.Circuit
		want  []core.OpRecord
	}{
		{
			name: "z rotation before measurement is removed",
			build: func() *core.Circuit {
				return core.NewCircuit("c").Add(rz(0.7), 0).AddMeasure("m", 0)
			},
			want: []core.OpRecord{
				{Name: "measure", Qubits: []int{0}, Label: "m"},
			},
		},
		{
			name: "whole z chain is removed in one pass",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(rz(0.3), 0).
					Add(rz(0.4), 0).
					AddMeasure("m", 0)
			},
			want: []core.OpRecord{
				{Name: "measure", Qubits: []int{0}, Label: "m"},
			},
		},
		{
			name: "y rotation stays",
			build: func() *core.Circuit {
				return core.NewCircuit("c").Add(ry(0.7), 0).AddMeasure("m", 0)
			},
			want: []core.OpRecord{
				{Name: "ry", Params: []float64{0.7}, Qubits: []int{0}},
				{Name: "measure", Qubits: []int{0}, Label: "m"},
			},
		},
		{
			name: "z rotation before a gate stays",
			build: func() *core.Circuit {
				return core.NewCircuit("c").
					Add(rz(0.7), 0).
					Add(ry(0.2), 0).
					AddMeasure("m", 0)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.7}, Qubits: []int{0}},
				{Name: "ry", Params: []float64{0.2}, Qubits: []int{0}},
				{Name: "measure", Qubits: []int{0}, Label: "m"},
			},
		},
		{
			name: "measurement on another qubit does not trigger",
			build: func() *core.Circuit {
				return core.NewCircuit("c").Add(rz(0.7), 0).AddMeasure("m", 1)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.7}, Qubits: []int{0}},
				{Name: "measure", Qubits: []int{1}, Label: "m"},
			},
		},
		{
			name: "trailing z rotation stays",
			build: func() *core.Circuit {
				return core.NewCircuit("c").Add(rz(0.7), 0)
			},
			want: []core.OpRecord{
				{Name: "rz", Params: []float64{0.7}, Qubits: []int{0}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertOps(t, tt.want, DropRZBeforeMeasure(tt.build()))
		})
	}
}

func TestDropRZBeforeMeasureKeepsStatistics(t *testing.T) {
	c := core.NewCircuit("c").
		Add(ry(1.1), 0).
		Add(gate.NewIsing(0.25), 0, 1).
		Add(rz(-0.4), 1).
		AddMeasure("m", 0, 1)
	got := DropRZBeforeMeasure(c)
	assert.Equal(t, len(c.Ops)-1, len(got.Ops))
	assertSameStatistics(t, c, got, 2)
}

func TestOptimizeConverges(t *testing.T) {
	c := core.NewCircuit("nested").
		Add(gate.NewIsing(0.3), 0, 1).
		Add(gate.NewIsing(0.2), 0, 1).
		Add(gate.NewIsing(-0.2), 0, 1).
		Add(gate.NewIsing(-0.3), 0, 1)

	got, loops := Optimize(c, 5)
	assert.Empty(t, got.Ops)
	assert.Equal(t, 3, loops)
}

func TestOptimizeStopsAtIterationCap(t *testing.T) {
	c := core.NewCircuit("nested").
		Add(gate.NewIsing(0.3), 0, 1).
		Add(gate.NewIsing(0.2), 0, 1).
		Add(gate.NewIsing(-0.2), 0, 1).
		Add(gate.NewIsing(-0.3), 0, 1)

	got, loops := Optimize(c, 1)
	assert.Equal(t, 1, loops)
	assert.Equal(t, 2, len(got.Ops))
}

func TestOptimizeWithoutBudgetReturnsInput(t *testing.T) {
	c := core.NewCircuit("c").Add(rz(0.3), 0).Add(rz(-0.3), 0)
	got, loops := Optimize(c, 0)
	assert.Equal(t, 0, loops)
	assert.Equal(t, c.ToRecords(), got.ToRecords())
}

func TestOptimizeRunsAllPasses(t *testing.T) {
	c := core.NewCircuit("c").
		Add(rz(0.25), 0).
		Add(rz(-0.25), 0).
		Add(gate.NewIsing(0.25), 0, 1).
		Add(gate.NewIsing(1.75), 0, 1).
		Add(ry(0.6), 1).
		Add(rz(0.9), 1).
		AddMeasure("m", 0, 1)

	got, loops := Optimize(c, 5)
	assert.Equal(t, 2, loops)
	assertOps(t, []core.OpRecord{
		{Name: "ry", Params: []float64{0.6}, Qubits: []int{1}},
		{Name: "measure", Qubits: []int{0, 1}, Label: "m"},
	}, got)
	assertSameStatistics(t, c, got, 2)
}

func TestOptimizeLeavesFixedPointAlone(t *testing.T) {
	c := core.NewCircuit("c").
		Add(ry(0.6), 0).
		Add(gate.NewXY(0.25), 0, 1).
		AddMeasure("m", 0, 1)
	got, loops := Optimize(c, 5)
	assert.Equal(t, 1, loops)
	assert.Equal(t, c.ToRecords(), got.ToRecords())
}
