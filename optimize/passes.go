package optimize

import (
	"math"
	"sort"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
	"github.com/oqtopus-team/oqtopus-transpiler/unitary"
)

// MergeRotations composes every maximal run of consecutive rotations on
// one qubit and replaces it with its Euler form when that is strictly
// shorter. A run that is identity up to phase disappears outright; a
// run the rewrite cannot shorten is left alone, which keeps the pass
// idempotent.
func MergeRotations(c *core.Circuit) *core.Circuit {
	drop := map[int]bool{}
	replace := map[int][]core.Operation{}
	for _, run := range rotationRuns(c) {
		repl, ok := mergedRun(c, run)
		if !ok || len(repl) >= len(run.indices) {
			continue
		}
		for _, i := range run.indices {
			drop[i] = true
		}
		replace[run.indices[0]] = repl
	}
	if len(drop) == 0 {
		return c
	}
	return rebuild(c, drop, replace)
}

// CancelEntanglers removes pairs of same-kind entanglers on the same
// unordered qubit pair whose exponents sum to zero modulo the period,
// provided no operation touches either qubit in between. Both entangler
// families are symmetric under qubit exchange, so the listed order does
// not matter.
func CancelEntanglers(c *core.Circuit) *core.Circuit {
	drop := map[int]bool{}
	for i, op := range c.Ops {
		if drop[i] || !isEntangler(op.Gate.Kind) {
			continue
		}
		j, ok := nextTouching(c, i, drop, op.Qubits)
		if !ok {
			continue
		}
		next := c.Ops[j]
		if next.Gate.Kind != op.Gate.Kind || !samePair(op.Qubits, next.Qubits) {
			continue
		}
		if math.Abs(gate.FoldExponent(op.Gate.Params[0]+next.Gate.Params[0])) <= unitary.Tol {
			drop[i] = true
			drop[j] = true
		}
	}
	if len(drop) == 0 {
		return c
	}
	return rebuild(c, drop, nil)
}

// DropRZBeforeMeasure removes Z rotations whose next operation on their
// qubit is a measurement. The pre-measurement phase changes; the
// measurement distribution does not. The scan runs backwards so a chain
// of Z rotations in front of a measurement disappears in one pass.
func DropRZBeforeMeasure(c *core.Circuit) *core.Circuit {
	drop := map[int]bool{}
	for i := len(c.Ops) - 1; i >= 0; i-- {
		op := c.Ops[i]
		if op.Gate.Kind != gate.Rotation || op.Gate.Axis != gate.AxisZ {
			continue
		}
		j, ok := nextTouching(c, i, drop, op.Qubits)
		if ok && c.Ops[j].Gate.Kind == gate.Measure {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return c
	}
	return rebuild(c, drop, nil)
}

type rotationRun struct {
	qubit   core.Qubit
	indices []int
}

// rotationRuns finds the maximal runs of consecutive rotations per
// qubit. Operations on other qubits may interleave a run; any other
// operation touching the run's qubit closes it.
func rotationRuns(c *core.Circuit) []rotationRun {
	var runs []rotationRun
	open := map[core.Qubit][]int{}
	for i, op := range c.Ops {
		if op.Gate.Kind == gate.Rotation {
			q := op.Qubits[0]
			open[q] = append(open[q], i)
			continue
		}
		for _, q := range op.Qubits {
			if len(open[q]) > 0 {
				runs = append(runs, rotationRun{qubit: q, indices: open[q]})
				delete(open, q)
			}
		}
	}
	rest := make([]core.Qubit, 0, len(open))
	for q := range open {
		rest = append(rest, q)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, q := range rest {
		runs = append(runs, rotationRun{qubit: q, indices: open[q]})
	}
	return runs
}

// mergedRun composes a run in application order and returns its Euler
// replacement. Near-zero angles are dropped, so an identity run comes
// back empty. Rotation products are unitary; a failed decomposition
// leaves the run untouched.
func mergedRun(c *core.Circuit, run rotationRun) ([]core.Operation, bool) {
	m := unitary.Identity2
	for _, i := range run.indices {
		g, err := c.Ops[i].Gate.Matrix2()
		if err != nil {
			return nil, false
		}
		m = unitary.Mul2(g, m)
	}
	d, err := unitary.EulerZYZ(m)
	if err != nil {
		return nil, false
	}
	var repl []core.Operation
	for _, s := range []struct {
		angle float64
		axis  gate.Axis
	}{{d.Z0, gate.AxisZ}, {d.Y, gate.AxisY}, {d.Z1, gate.AxisZ}} {
		if math.Abs(s.angle) > unitary.Tol {
			repl = append(repl, core.Operation{
				Gate:   gate.NewRotation(s.axis, s.angle),
				Qubits: []core.Qubit{run.qubit},
			})
		}
	}
	return repl, true
}

func isEntangler(k gate.Kind) bool {
	return k == gate.Ising || k == gate.XY
}

// nextTouching returns the first retained operation after i touching
// any of the given qubits.
func nextTouching(c *core.Circuit, i int, drop map[int]bool, qubits []core.Qubit) (int, bool) {
	for j := i + 1; j < len(c.Ops); j++ {
		if drop[j] {
			continue
		}
		for _, q := range qubits {
			if c.Ops[j].Touches(q) {
				return j, true
			}
		}
	}
	return 0, false
}

func samePair(a, b []core.Qubit) bool {
	return (a[0] == b[0] && a[1] == b[1]) || (a[0] == b[1] && a[1] == b[0])
}

// rebuild re-emits the operation list, skipping dropped indices and
// splicing each replacement in at its run's first index.
func rebuild(c *core.Circuit, drop map[int]bool, replace map[int][]core.Operation) *core.Circuit {
	out := core.NewCircuit(c.Name)
	for i, op := range c.Ops {
		if repl, ok := replace[i]; ok {
			out.Ops = append(out.Ops, repl...)
		}
		if drop[i] {
			continue
		}
		out.Ops = append(out.Ops, op)
	}
	return out
}
