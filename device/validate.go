package device

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
)

// ValidateCircuit checks a circuit against the device and reports every
// violation at once. The transpiler never reroutes, so a two-qubit gate
// on an uncoupled pair can never run and is rejected here already,
// before the job reaches the queue.
func (d *Device) ValidateCircuit(c *core.Circuit) error {
	var err error
	labels := make(map[string]int)
	for i, op := range c.Ops {
		err = multierr.Append(err, d.validateOp(i, op))
		if op.Gate.Kind == gate.Measure {
			if op.Label == "" {
				err = multierr.Append(err, fmt.Errorf("operation %d: measurement has no label", i))
				continue
			}
			if prev, ok := labels[op.Label]; ok {
				err = multierr.Append(err, fmt.Errorf(
					"operation %d: measurement label %q is already used by operation %d", i, op.Label, prev))
				continue
			}
			labels[op.Label] = i
		}
	}
	return err
}

func (d *Device) validateOp(i int, op core.Operation) error {
	var err error
	for _, q := range op.Qubits {
		if !d.Topology.Has(q) {
			err = multierr.Append(err, fmt.Errorf("operation %d: qubit %s is not on the device", i, q))
		}
	}
	seen := make(map[core.Qubit]struct{}, len(op.Qubits))
	for _, q := range op.Qubits {
		if _, ok := seen[q]; ok {
			err = multierr.Append(err, fmt.Errorf("operation %d: duplicate qubit %s", i, q))
		}
		seen[q] = struct{}{}
	}
	if err != nil {
		return err
	}

	if op.Gate.Kind == gate.Measure {
		if len(op.Qubits) == 0 {
			return fmt.Errorf("operation %d: measurement addresses no qubits", i)
		}
		return nil
	}
	if want := op.Gate.NumQubits(); want != len(op.Qubits) {
		return fmt.Errorf("operation %d: gate %s takes %d qubits, got %d",
			i, op.Gate.Name, want, len(op.Qubits))
	}
	if len(op.Qubits) == 2 && !d.Topology.Adjacent(op.Qubits[0], op.Qubits[1]) {
		return fmt.Errorf("operation %d: qubits %s and %s are not coupled on the device",
			i, op.Qubits[0], op.Qubits[1])
	}
	return nil
}
