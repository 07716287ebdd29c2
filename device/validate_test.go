//go:build unit
// +build unit

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
)

func linearDevice(t *testing.T, qubits int) *Device {
	info, err := LinearSetting(qubits).ToDeviceInfo()
	assert.Nil(t, err)
	d, err := New(info)
	assert.Nil(t, err)
	return d
}

func TestValidateCircuit(t *testing.T) {
	d := linearDevice(t, 3)

	tests := []struct {
		name         string
		circuit      *core.Circuit
		wantErrorMsg string
	}{
		{
			name: "native ops on coupled qubits",
			circuit: core.NewCircuit("ok").
				Add(gate.NewRotation(gate.AxisZ, 0.5), 0).
				Add(gate.NewIsing(0.5), 0, 1).
				AddMeasure("m", 0, 1),
			wantErrorMsg: "",
		},
		{
			name: "measurement ignores coupling",
			circuit: core.NewCircuit("ok").
				AddMeasure("m", 0, 2),
			wantErrorMsg: "",
		},
		{
			name: "unknown qubit",
			circuit: core.NewCircuit("bad").
				Add(gate.NewRotation(gate.AxisZ, 0.5), 5),
			wantErrorMsg: "operation 0: qubit QB5 is not on the device",
		},
		{
			name: "uncoupled pair",
			circuit: core.NewCircuit("bad").
				Add(gate.CX(), 0, 2),
			wantErrorMsg: "operation 0: qubits QB0 and QB2 are not coupled on the device",
		},
		{
			name: "duplicate qubit in one op",
			circuit: core.NewCircuit("bad").
				Add(gate.CX(), 1, 1),
			wantErrorMsg: "operation 0: duplicate qubit QB1",
		},
		{
			name: "wrong arity",
			circuit: core.NewCircuit("bad").
				Add(gate.CX(), 0),
			wantErrorMsg: "operation 0: gate cx takes 2 qubits, got 1",
		},
		{
			name: "measurement without label",
			circuit: core.NewCircuit("bad").
				AddMeasure("", 0),
			wantErrorMsg: "operation 0: measurement has no label",
		},
		{
			name: "measurement without qubits",
			circuit: core.NewCircuit("bad").
				AddMeasure("m"),
			wantErrorMsg: "operation 0: measurement addresses no qubits",
		},
		{
			name: "duplicate measurement label",
			circuit: core.NewCircuit("bad").
				AddMeasure("m", 0).
				AddMeasure("m", 1),
			wantErrorMsg: `operation 1: measurement label "m" is already used by operation 0`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.ValidateCircuit(tt.circuit)
			if tt.wantErrorMsg == "" {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
				assert.EqualError(t, err, tt.wantErrorMsg)
			}
		})
	}
}

func TestValidateCircuitReportsEveryViolation(t *testing.T) {
	d := linearDevice(t, 3)
	c := core.NewCircuit("bad").
		Add(gate.NewRotation(gate.AxisX, 0.5), 7).
		Add(gate.CX(), 0, 2).
		AddMeasure("m", 0).
		AddMeasure("m", 1)
	err := d.ValidateCircuit(c)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "qubit QB7 is not on the device")
	assert.Contains(t, err.Error(), "qubits QB0 and QB2 are not coupled")
	assert.Contains(t, err.Error(), `measurement label "m" is already used`)
}
