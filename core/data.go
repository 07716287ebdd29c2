package core

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"github.com/oqtopus-team/oqtopus-transpiler/gate"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type Status int32

const (
	SUBMITTED Status = iota
	READY
	RUNNING
	SUCCEEDED
	FAILED
	CANCELLED
)

func (s Status) String() string {
	switch s {
	case SUBMITTED:
		return "submitted"
	case READY:
		return "ready"
	case RUNNING:
		return "running"
	case SUCCEEDED:
		return "succeeded"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

func ToStatus(st string) (Status, error) {
	switch st {
	case "submitted":
		return SUBMITTED, nil
	case "ready":
		return READY, nil
	case "running":
		return RUNNING, nil
	case "succeeded":
		return SUCCEEDED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return SUBMITTED, fmt.Errorf("unknown status:%s", st)
	}
}

// Qubit identifies a physical qubit of the target device.
type Qubit int

func (q Qubit) String() string {
	return fmt.Sprintf("QB%d", int(q))
}

// Operation applies one gate to an ordered qubit list. For two-qubit
// gates the first listed qubit is the most significant index bit of the
// matrix. Label names the classical register of a measurement.
type Operation struct {
	Gate   gate.Gate
	Qubits []Qubit
	Label  string
}

func (o Operation) Touches(q Qubit) bool {
	for _, oq := range o.Qubits {
		if oq == q {
			return true
		}
	}
	return false
}

// Circuit is an ordered operation list. Order between operations on
// disjoint qubits is still significant at the record boundary: the
// transpiler never reorders beyond what its passes define.
type Circuit struct {
	Name string
	Ops  []Operation
}

func NewCircuit(name string) *Circuit {
	return &Circuit{Name: name}
}

func (c *Circuit) Add(g gate.Gate, qubits ...Qubit) *Circuit {
	c.Ops = append(c.Ops, Operation{Gate: g, Qubits: qubits})
	return c
}

func (c *Circuit) AddMeasure(label string, qubits ...Qubit) *Circuit {
	c.Ops = append(c.Ops, Operation{Gate: gate.NewMeasure(), Qubits: qubits, Label: label})
	return c
}

func (c *Circuit) Clone() *Circuit {
	return deepcopy.Copy(c).(*Circuit)
}

// OpRecord is the boundary form of an operation: a gate name token,
// parameters, qubit ids and an optional measurement label.
type OpRecord struct {
	Name   string    `json:"name"`
	Params []float64 `json:"params,omitempty"`
	Qubits []int     `json:"qubits"`
	Label  string    `json:"label,omitempty"`
}

type circuitRecord struct {
	Name string     `json:"name,omitempty"`
	Ops  []OpRecord `json:"ops"`
}

func (c *Circuit) ToRecords() []OpRecord {
	recs := make([]OpRecord, 0, len(c.Ops))
	for _, op := range c.Ops {
		qubits := make([]int, len(op.Qubits))
		for i, q := range op.Qubits {
			qubits[i] = int(q)
		}
		recs = append(recs, OpRecord{
			Name:   op.Gate.Name,
			Params: append([]float64(nil), op.Gate.Params...),
			Qubits: qubits,
			Label:  op.Label,
		})
	}
	return recs
}

// FromRecords rebuilds a circuit from boundary records. Gate names must
// be known; a matrix-only gate cannot cross the textual boundary.
func FromRecords(name string, recs []OpRecord) (*Circuit, error) {
	c := NewCircuit(name)
	for i, r := range recs {
		g, err := gate.FromName(r.Name, r.Params)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		qubits := make([]Qubit, len(r.Qubits))
		for j, q := range r.Qubits {
			qubits[j] = Qubit(q)
		}
		c.Ops = append(c.Ops, Operation{Gate: g, Qubits: qubits, Label: r.Label})
	}
	return c, nil
}

func (c *Circuit) MarshalJSON() ([]byte, error) {
	return jsonIter.Marshal(circuitRecord{Name: c.Name, Ops: c.ToRecords()})
}

func (c *Circuit) UnmarshalJSON(b []byte) error {
	var r circuitRecord
	if err := jsonIter.Unmarshal(b, &r); err != nil {
		return err
	}
	parsed, err := FromRecords(r.Name, r.Ops)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

func (c *Circuit) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Circuit")
		return ""
	}
	return string(pretty.Pretty(st))
}

type TranspileStats struct {
	InputOps  int `json:"input_ops"`
	OutputOps int `json:"output_ops"`
	Loops     int `json:"loops"`
}

type Result struct {
	Stats   TranspileStats `json:"stats"`
	Message string         `json:"message"`
}

func NewResult() *Result {
	return &Result{}
}

func (r *Result) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.Result")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

type JobData struct {
	ID         string
	Status     Status
	Transpiler *TranspileConfig
	Input      *Circuit
	Transpiled *Circuit
	Result     *Result
	JobType    string
	Created    strfmt.DateTime
	Ended      strfmt.DateTime
	Info       string
}

func (jd *JobData) Clone() *JobData {
	c := deepcopy.Copy(jd).(*JobData)
	c.Created = *jd.Created.DeepCopy()
	c.Ended = *jd.Ended.DeepCopy()
	return c
}

func (jd *JobData) NeedTranspiling() bool {
	return jd.Transpiler != nil
}

func NewJobData() *JobData {
	return &JobData{
		ID:      uuid.NewString(),
		Result:  NewResult(),
		Created: strfmt.DateTime(time.Now()),
	}
}

func CloneJobData(i *JobData) *JobData {
	o := NewJobData()
	o.ID = i.ID
	o.Status = i.Status
	o.Transpiler = i.Transpiler
	if i.Input != nil {
		o.Input = i.Input.Clone()
	}
	if i.Transpiled != nil {
		o.Transpiled = i.Transpiled.Clone()
	}
	o.Result.Stats = i.Result.Stats
	o.Result.Message = i.Result.Message
	o.JobType = i.JobType
	o.Created = i.Created
	o.Ended = i.Ended
	o.Info = i.Info
	return o
}

// TranspileConfig controls one transpile request. A nil MaxIterations
// falls back to the component setting.
type TranspileConfig struct {
	MaxIterations    *int `json:"max_iterations"`
	SkipOptimization bool `json:"skip_optimization"`
	UseDefault       bool `json:"-"`
}

func UnmarshalToTranspileConfig(raw string) TranspileConfig {
	var c TranspileConfig
	err := jsonIter.Unmarshal([]byte(raw), &c)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal transpile config from :%s/reason:%s",
			raw, err))
	}
	return c
}
