// Package optimize shrinks native circuits with a fixed list of
// rewrite passes. Passes preserve the measurement statistics of every
// retained qubit; global phase is not preserved.
package optimize

import (
	"github.com/oqtopus-team/oqtopus-transpiler/core"
)

// Pass is one rewrite rule. Run is pure: the input circuit is never
// mutated, and it may be returned unchanged when the rule does not
// apply.
type Pass struct {
	Name string
	Run  func(*core.Circuit) *core.Circuit
}

// Passes returns the pass list in execution order.
func Passes() []Pass {
	return []Pass{
		{Name: "merge_rotations", Run: MergeRotations},
		{Name: "cancel_entanglers", Run: CancelEntanglers},
		{Name: "drop_rz_before_measure", Run: DropRZBeforeMeasure},
	}
}

// Optimize runs the pass list in rounds until a whole round leaves the
// circuit unchanged or maxIterations rounds have run. Every change a
// pass makes strictly removes operations, so an unchanged operation
// count is a fixed point. It returns the optimized circuit and the
// number of rounds executed.
func Optimize(c *core.Circuit, maxIterations int) (*core.Circuit, int) {
	out := c
	loops := 0
	for loops < maxIterations {
		before := len(out.Ops)
		for _, p := range Passes() {
			out = p.Run(out)
		}
		loops++
		if len(out.Ops) == before {
			break
		}
	}
	return out, loops
}
