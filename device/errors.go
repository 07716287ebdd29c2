package device

import (
	"fmt"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
)

// TopologyError reports an operation that cannot be placed on the
// device: a qubit the device does not have, or a two-qubit gate across
// an uncoupled pair. It carries the device edge list so the caller can
// see what would have been allowed.
type TopologyError struct {
	Qubits []core.Qubit
	Edges  [][2]core.Qubit
	Reason string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("%s/qubits:%v/device edges:%v", e.Reason, e.Qubits, e.Edges)
}
