// Package qasm declares the extension tokens a text-format importer
// needs beyond the standard instruction set. The importer owns parsing;
// this package only says how the two entangler tokens are spelled and
// what they construct.
package qasm

import (
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
	"github.com/oqtopus-team/oqtopus-transpiler/unitary"
)

// Token describes one extension gate token: its spelling, the number
// of parameters inside the parentheses, the number of qubit arguments,
// and how to turn the parsed parameters into the native gate or its
// matrix.
type Token struct {
	Name      string
	NumParams int
	NumQubits int
	New       func(params []float64) (gate.Gate, error)
	Matrix    func(params []float64) (unitary.M4, error)
}

// ExtensionTokens lists every token an importer has to add for this
// compiler: `ising(t) a, b` and `xy(t) a, b`.
func ExtensionTokens() []Token {
	return []Token{
		newToken("ising"),
		newToken("xy"),
	}
}

// Lookup finds an extension token by name.
func Lookup(name string) (Token, bool) {
	for _, t := range ExtensionTokens() {
		if t.Name == name {
			return t, true
		}
	}
	return Token{}, false
}

func newToken(name string) Token {
	return Token{
		Name:      name,
		NumParams: 1,
		NumQubits: 2,
		New: func(params []float64) (gate.Gate, error) {
			return gate.FromName(name, params)
		},
		Matrix: func(params []float64) (unitary.M4, error) {
			g, err := gate.FromName(name, params)
			if err != nil {
				return unitary.M4{}, err
			}
			return g.Matrix4()
		},
	}
}
