// Package transpile turns arbitrary circuits into circuits the target
// device can run: every gate in the native vocabulary, every two-qubit
// gate on a coupled pair.
package transpile

import (
	"fmt"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/decompose"
	"github.com/oqtopus-team/oqtopus-transpiler/device"
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
)

// MapCircuit rewrites a circuit into the device's native vocabulary.
// Operations are handled in input order: measurements and native
// operations are copied, everything else is replaced in place by its
// decomposition, which keeps the per-qubit operation order intact. The
// mapper never reroutes; a two-qubit gate on an uncoupled pair fails
// with a TopologyError.
func MapCircuit(dev *device.Device, c *core.Circuit) (*core.Circuit, error) {
	out := core.NewCircuit(c.Name)
	for i, op := range c.Ops {
		for _, q := range op.Qubits {
			if !dev.Topology.Has(q) {
				return nil, &device.TopologyError{
					Qubits: append([]core.Qubit(nil), op.Qubits...),
					Edges:  dev.Topology.Edges(),
					Reason: fmt.Sprintf("operation %d: qubit %s is not on the device", i, q),
				}
			}
		}
		if op.Gate.Kind != gate.Measure && len(op.Qubits) == 2 &&
			!dev.Topology.Adjacent(op.Qubits[0], op.Qubits[1]) {
			return nil, &device.TopologyError{
				Qubits: append([]core.Qubit(nil), op.Qubits...),
				Edges:  dev.Topology.Edges(),
				Reason: fmt.Sprintf("operation %d: qubits %s and %s are not coupled on the device",
					i, op.Qubits[0], op.Qubits[1]),
			}
		}
		if op.Gate.IsNative() {
			out.Ops = append(out.Ops, op)
			continue
		}
		res, err := decompose.Decompose(op)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		out.Ops = append(out.Ops, res.Ops...)
	}
	return out, nil
}
