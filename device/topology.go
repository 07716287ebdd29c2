package device

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
)

// Topology is the undirected coupling graph of a device. It is built
// from an explicit qubit and edge list; nothing is ever completed
// implicitly. Immutable after construction and safe for concurrent
// reads.
type Topology struct {
	g      *simple.UndirectedGraph
	qubits []core.Qubit
	edges  [][2]core.Qubit
}

func NewTopology(qubits []core.Qubit, edges [][2]core.Qubit) (*Topology, error) {
	g := simple.NewUndirectedGraph()
	seen := make(map[core.Qubit]struct{}, len(qubits))
	for _, q := range qubits {
		if q < 0 {
			return nil, fmt.Errorf("invalid qubit id %d", int(q))
		}
		if _, ok := seen[q]; ok {
			return nil, fmt.Errorf("duplicate qubit %s", q)
		}
		seen[q] = struct{}{}
		g.AddNode(simple.Node(q))
	}

	normalized := make([][2]core.Qubit, 0, len(edges))
	seenEdges := make(map[[2]core.Qubit]struct{}, len(edges))
	for _, e := range edges {
		a, b := e[0], e[1]
		if a == b {
			return nil, fmt.Errorf("self edge on %s", a)
		}
		if _, ok := seen[a]; !ok {
			return nil, fmt.Errorf("edge (%s, %s) references unknown qubit %s", a, b, a)
		}
		if _, ok := seen[b]; !ok {
			return nil, fmt.Errorf("edge (%s, %s) references unknown qubit %s", a, b, b)
		}
		if b < a {
			a, b = b, a
		}
		if _, ok := seenEdges[[2]core.Qubit{a, b}]; ok {
			return nil, fmt.Errorf("duplicate edge (%s, %s)", a, b)
		}
		seenEdges[[2]core.Qubit{a, b}] = struct{}{}
		normalized = append(normalized, [2]core.Qubit{a, b})
		g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
	}

	sorted := append([]core.Qubit(nil), qubits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	sort.Slice(normalized, func(i, j int) bool {
		if normalized[i][0] != normalized[j][0] {
			return normalized[i][0] < normalized[j][0]
		}
		return normalized[i][1] < normalized[j][1]
	})
	return &Topology{g: g, qubits: sorted, edges: normalized}, nil
}

func (t *Topology) NumQubits() int {
	return len(t.qubits)
}

func (t *Topology) Has(q core.Qubit) bool {
	return q >= 0 && t.g.Node(int64(q)) != nil
}

// Adjacent reports whether two distinct qubits are coupled. It is
// symmetric in its arguments.
func (t *Topology) Adjacent(a, b core.Qubit) bool {
	if a == b || !t.Has(a) || !t.Has(b) {
		return false
	}
	return t.g.HasEdgeBetween(int64(a), int64(b))
}

// Neighbors returns the coupled qubits of q in ascending order.
func (t *Topology) Neighbors(q core.Qubit) []core.Qubit {
	if !t.Has(q) {
		return nil
	}
	var ns []core.Qubit
	it := t.g.From(int64(q))
	for it.Next() {
		ns = append(ns, core.Qubit(it.Node().ID()))
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
	return ns
}

func (t *Topology) Degree(q core.Qubit) int {
	return len(t.Neighbors(q))
}

// Qubits returns all qubit ids in ascending order.
func (t *Topology) Qubits() []core.Qubit {
	return append([]core.Qubit(nil), t.qubits...)
}

// Edges returns all coupled pairs, each with the smaller id first,
// sorted.
func (t *Topology) Edges() [][2]core.Qubit {
	return append([][2]core.Qubit(nil), t.edges...)
}
