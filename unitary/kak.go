package unitary

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// magicBasis maps the computational basis onto the magic (Bell-like)
// basis in which every tensor product of one-qubit unitaries becomes a
// real orthogonal matrix.
var magicBasis = M4{
	{complex(1/math.Sqrt2, 0), 0, 0, complex(0, 1/math.Sqrt2)},
	{0, complex(0, 1/math.Sqrt2), complex(1/math.Sqrt2, 0), 0},
	{0, complex(0, 1/math.Sqrt2), complex(-1/math.Sqrt2, 0), 0},
	{complex(1/math.Sqrt2, 0), 0, 0, complex(0, -1/math.Sqrt2)},
}

var magicDagger = Dagger4(magicBasis)

// Interaction returns exp(i*(x*XX + y*YY + z*ZZ)), the purely two-qubit
// part of a canonical decomposition. It is diagonal in the magic basis.
func Interaction(x, y, z float64) M4 {
	angles := [4]float64{x - y + z, x + y - z, -x - y - z, -x + y + z}
	var d M4
	for k := 0; k < 4; k++ {
		d[k][k] = cmplx.Exp(complex(0, angles[k]))
	}
	return Mul4(Mul4(magicBasis, d), magicDagger)
}

// KAK is the canonical decomposition of a two-qubit unitary:
//
//	u = Phase * (After[0] (x) After[1]) * Interaction(X, Y, Z) * (Before[0] (x) Before[1])
//
// with pi/4 >= X >= Y >= |Z|. Index 0 is the first listed qubit, the
// most significant index bit.
type KAK struct {
	Phase  complex128
	After  [2]M2
	X      float64
	Y      float64
	Z      float64
	Before [2]M2
}

// KAKDecompose computes the canonical decomposition of a two-qubit
// unitary. The result is always verified by reassembly before it is
// returned, so a nil error means the identity above holds entry-wise
// within tolerance.
func KAKDecompose(u M4) (KAK, error) {
	if !IsUnitary4(u) {
		return KAK{}, &DecompositionError{Stage: "kak", Reason: "matrix is not unitary within tolerance"}
	}

	mm := Mul4(Mul4(magicDagger, u), magicBasis)
	left, right, diag, err := bidiagonalize(mm)
	if err != nil {
		return KAK{}, err
	}

	// Interaction coefficients come from the diagonal phases; the 4x4
	// linear system below is exactly invertible, so any branch cut in
	// the phases cancels out on reassembly.
	var d [4]float64
	for k := 0; k < 4; k++ {
		d[k] = cmplx.Phase(diag[k])
	}
	w := (d[0] + d[1] + d[2] + d[3]) / 4
	x := (d[0] + d[1] - d[2] - d[3]) / 4
	y := (-d[0] + d[1] - d[2] + d[3]) / 4
	z := (d[0] - d[1] - d[2] + d[3]) / 4

	gA, a0, a1, err := kronFactor(Mul4(Mul4(magicBasis, realToM4(rtrans(left))), magicDagger))
	if err != nil {
		return KAK{}, err
	}
	gB, b0, b1, err := kronFactor(Mul4(Mul4(magicBasis, realToM4(rtrans(right))), magicDagger))
	if err != nil {
		return KAK{}, err
	}

	c := canonicalize(x, y, z)
	res := KAK{
		Phase:  gA * gB * cmplx.Exp(complex(0, w)) * c.phase,
		After:  [2]M2{Mul2(a0, c.after0), Mul2(a1, c.after1)},
		X:      c.v[0],
		Y:      c.v[1],
		Z:      c.v[2],
		Before: [2]M2{Mul2(c.before0, b0), Mul2(c.before1, b1)},
	}

	reassembled := Scale4(res.Phase, Mul4(
		Mul4(Kron(res.After[0], res.After[1]), Interaction(res.X, res.Y, res.Z)),
		Kron(res.Before[0], res.Before[1])))
	if v := MaxDiff4(u, reassembled); v > Tol {
		return KAK{}, &DecompositionError{
			Stage:  "kak reassembly",
			Reason: fmt.Sprintf("factors do not reproduce the input matrix (max diff %.3g)", v),
		}
	}
	return res, nil
}

type r4 [4][4]float64

func rtrans(a r4) r4 {
	var m r4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = a[j][i]
		}
	}
	return m
}

func rmul(a, b r4) r4 {
	var m r4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				m[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return m
}

func realToM4(a r4) M4 {
	var m M4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = complex(a[i][j], 0)
		}
	}
	return m
}

func toDense(a r4) *mat.Dense {
	data := make([]float64, 16)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			data[i*4+j] = a[i][j]
		}
	}
	return mat.NewDense(4, 4, data)
}

func fromDense(d *mat.Dense) r4 {
	var m r4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

// bidiagonalize finds special orthogonal left, right and a unit-modulus
// diagonal d with left * m * right = diag(d). Such factors exist for
// every unitary m because its real and imaginary parts then satisfy
// A*B^T = (A*B^T)^T and A^T*B = (A^T*B)^T, so A and B share singular
// bases.
func bidiagonalize(m M4) (left, right r4, d [4]complex128, err error) {
	var re, im r4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			re[i][j] = real(m[i][j])
			im[i][j] = imag(m[i][j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(toDense(re), mat.SVDFull); !ok {
		return left, right, d, &DecompositionError{Stage: "bidiagonalize", Reason: "singular value decomposition did not converge"}
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)
	baseLeft := rtrans(fromDense(&u))
	baseRight := fromDense(&v)
	semi := rmul(rmul(baseLeft, im), baseRight)

	rank := 0
	for rank < 4 && s[rank] > Tol {
		rank++
	}

	// The imaginary part decomposes along the singular value groups of
	// the real part: symmetric inside each group of equal values, zero
	// across groups. Diagonalize each group without disturbing the
	// already diagonal real part.
	adjustL := r4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
	adjustR := adjustL
	start := 0
	for start < rank {
		end := start + 1
		for end < rank && s[end] > s[start]-Tol {
			end++
		}
		if n := end - start; n > 1 {
			data := make([]float64, n*n)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					data[i*n+j] = (semi[start+i][start+j] + semi[start+j][start+i]) / 2
				}
			}
			var es mat.EigenSym
			if ok := es.Factorize(mat.NewSymDense(n, data), true); !ok {
				return left, right, d, &DecompositionError{Stage: "bidiagonalize", Reason: "eigendecomposition did not converge"}
			}
			var q mat.Dense
			es.VectorsTo(&q)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					adjustL[start+i][start+j] = q.At(j, i)
					adjustR[start+i][start+j] = q.At(i, j)
				}
			}
		}
		start = end
	}

	// Where the real part vanishes the imaginary block is free, so it
	// gets its own singular value decomposition.
	if rank < 4 {
		n := 4 - rank
		data := make([]float64, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				data[i*n+j] = semi[rank+i][rank+j]
			}
		}
		var bsvd mat.SVD
		if ok := bsvd.Factorize(mat.NewDense(n, n, data), mat.SVDFull); !ok {
			return left, right, d, &DecompositionError{Stage: "bidiagonalize", Reason: "singular value decomposition did not converge"}
		}
		var bu, bv mat.Dense
		bsvd.UTo(&bu)
		bsvd.VTo(&bv)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				adjustL[rank+i][rank+j] = bu.At(j, i)
				adjustR[rank+i][rank+j] = bv.At(i, j)
			}
		}
	}

	left = rmul(adjustL, baseLeft)
	right = rmul(baseRight, adjustR)
	if mat.Det(toDense(left)) < 0 {
		for j := 0; j < 4; j++ {
			left[0][j] = -left[0][j]
		}
	}
	if mat.Det(toDense(right)) < 0 {
		for i := 0; i < 4; i++ {
			right[i][0] = -right[i][0]
		}
	}

	prod := Mul4(Mul4(realToM4(left), m), realToM4(right))
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j && cmplx.Abs(prod[i][j]) > Tol {
				return left, right, d, &DecompositionError{Stage: "bidiagonalize", Reason: "off-diagonal residue after rotation"}
			}
		}
	}
	for k := 0; k < 4; k++ {
		if math.Abs(cmplx.Abs(prod[k][k])-1) > Tol {
			return left, right, d, &DecompositionError{Stage: "bidiagonalize", Reason: "diagonal entry is not unit modulus"}
		}
		d[k] = prod[k][k]
	}
	return left, right, d, nil
}

// kronFactor splits m into g * (f0 (x) f1) with unit-determinant 2x2
// factors; f0 acts on the most significant qubit. The sign ambiguity of
// the factors is fixed by forcing Re(g) >= 0.
func kronFactor(m M4) (complex128, M2, M2, error) {
	a, b, best := 0, 0, 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if v := cmplx.Abs(m[i][j]); v > best {
				a, b, best = i, j, v
			}
		}
	}

	var f0, f1 M2
	for p := 0; p < 2; p++ {
		for q := 0; q < 2; q++ {
			f0[p][q] = m[(p<<1)|(a&1)][(q<<1)|(b&1)]
			f1[p][q] = m[(a&^1)|p][(b&^1)|q]
		}
	}
	d0, d1 := Det2(f0), Det2(f1)
	if cmplx.Abs(d0) <= Tol || cmplx.Abs(d1) <= Tol {
		return 0, f0, f1, &DecompositionError{Stage: "factor", Reason: "matrix is not a tensor product"}
	}
	f0 = Scale2(1/cmplx.Sqrt(d0), f0)
	f1 = Scale2(1/cmplx.Sqrt(d1), f1)
	g := m[a][b] / (f0[a>>1][b>>1] * f1[a&1][b&1])
	if real(g) < 0 {
		f0 = Scale2(-1, f0)
		g = -g
	}
	if MaxDiff4(m, Scale4(g, Kron(f0, f1))) > Tol {
		return 0, f0, f1, &DecompositionError{Stage: "factor", Reason: "matrix is not a tensor product"}
	}
	return g, f0, f1, nil
}

type canonical struct {
	v       [3]float64
	phase   complex128
	after0  M2
	after1  M2
	before0 M2
	before1 M2
}

// canonicalize maps interaction coefficients into the canonical chamber
// pi/4 >= x >= y >= |z|, collecting the compensating one-qubit factors
// so that
//
//	Interaction(x0, y0, z0) = phase * (after0 (x) after1) * Interaction(v) * (before0 (x) before1)
//
// holds exactly. Only pi/2 shifts, sign flips and coordinate swaps are
// used, each realized by Pauli-derived local factors.
func canonicalize(x0, y0, z0 float64) canonical {
	c := canonical{
		v:       [3]float64{x0, y0, z0},
		phase:   1,
		after0:  Identity2,
		after1:  Identity2,
		before0: Identity2,
		before1: Identity2,
	}
	paulis := [3]M2{PauliX, PauliY, PauliZ}

	// v[k] += step*pi/2 costs a factor (i * P(x)P)^step which folds
	// into the after locals and the phase.
	shift := func(k, step int) {
		p := paulis[k]
		c.v[k] += float64(step) * math.Pi / 2
		if step > 0 {
			c.phase *= complex(0, -1)
		} else {
			c.phase *= complex(0, 1)
		}
		c.after0 = Mul2(c.after0, p)
		c.after1 = Mul2(c.after1, p)
	}

	// Conjugating by P on one qubit, with P the Pauli of the remaining
	// axis, flips the signs of coordinates k1 and k2.
	negate := func(k1, k2 int) {
		p := paulis[3-k1-k2]
		c.v[k1] = -c.v[k1]
		c.v[k2] = -c.v[k2]
		c.after0 = Mul2(c.after0, p)
		c.before0 = Mul2(p, c.before0)
	}

	// Conjugating both qubits by (P_k1 + P_k2)/sqrt(2) swaps the two
	// coordinates.
	swap := func(k1, k2 int) {
		p := Scale2(complex(1/math.Sqrt2, 0), add2(paulis[k1], paulis[k2]))
		c.v[k1], c.v[k2] = c.v[k2], c.v[k1]
		c.after0 = Mul2(c.after0, p)
		c.after1 = Mul2(c.after1, p)
		c.before0 = Mul2(p, c.before0)
		c.before1 = Mul2(p, c.before1)
	}

	canonicalShift := func(k int) {
		for c.v[k] <= -math.Pi/4 {
			shift(k, 1)
		}
		for c.v[k] > math.Pi/4 {
			shift(k, -1)
		}
	}

	sortVec := func() {
		if math.Abs(c.v[0]) < math.Abs(c.v[1]) {
			swap(0, 1)
		}
		if math.Abs(c.v[1]) < math.Abs(c.v[2]) {
			swap(1, 2)
		}
		if math.Abs(c.v[0]) < math.Abs(c.v[1]) {
			swap(0, 1)
		}
	}

	canonicalShift(0)
	canonicalShift(1)
	canonicalShift(2)
	sortVec()

	// Move all negativity into z.
	if c.v[0] < 0 {
		negate(0, 2)
	}
	if c.v[1] < 0 {
		negate(1, 2)
	}
	canonicalShift(2)

	// On the x = pi/4 wall both signs of z describe the same class;
	// normalize to z >= 0.
	if c.v[0] > math.Pi/4-Tol && c.v[2] < 0 {
		shift(0, -1)
		negate(0, 2)
		canonicalShift(0)
	}
	return c
}

func add2(a, b M2) M2 {
	var m M2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			m[i][j] = a[i][j] + b[i][j]
		}
	}
	return m
}
