// Package rings implements the number theory behind the residue ring
// commands: factorization, the extended Euclidean algorithm, modular
// inverses, and the idempotent and nilpotent elements of Z/nZ.
package rings

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrNotInvertible = errors.New("element is not invertible")
	ErrBadModulo     = errors.New("modulo must be greater than 1")
	ErrNotPositive   = errors.New("number must be positive")
)

// Factor is one prime power of a factorization.
type Factor struct {
	Prime int64
	Power int
}

// Value returns Prime^Power.
func (f Factor) Value() int64 {
	v := int64(1)
	for range f.Power {
		v *= f.Prime
	}
	return v
}

// Factorize returns the prime factorization of n in increasing prime order.
// n must be positive; 1 has an empty factorization.
func Factorize(n int64) ([]Factor, error) {
	if n < 1 {
		return nil, ErrNotPositive
	}

	var factors []Factor
	for p := int64(2); p*p <= n; p++ {
		if n%p != 0 {
			continue
		}
		f := Factor{Prime: p}
		for n%p == 0 {
			n /= p
			f.Power++
		}
		factors = append(factors, f)
	}
	if n > 1 {
		factors = append(factors, Factor{Prime: n, Power: 1})
	}
	return factors, nil
}

// FormatFactors renders a factorization as "2^3 * 5".
func FormatFactors(factors []Factor) string {
	if len(factors) == 0 {
		return "1"
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		if f.Power == 1 {
			parts[i] = strconv.FormatInt(f.Prime, 10)
		} else {
			parts[i] = fmt.Sprintf("%d^%d", f.Prime, f.Power)
		}
	}
	return strings.Join(parts, " * ")
}

// ExtGCD returns d = gcd(a, b) with d >= 0 and x, y such that a*x + b*y = d.
func ExtGCD(a, b int64) (d, x, y int64) {
	oldR, r := a, b
	oldS, s := int64(1), int64(0)
	oldT, t := int64(0), int64(1)
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
		oldT, t = t, oldT-q*t
	}
	if oldR < 0 {
		return -oldR, -oldS, -oldT
	}
	return oldR, oldS, oldT
}

// Inverse returns the multiplicative inverse of a in Z/nZ.
func Inverse(a, n int64) (int64, error) {
	if n < 2 {
		return 0, ErrBadModulo
	}
	d, x, _ := ExtGCD(mod(a, n), n)
	if d != 1 {
		return 0, ErrNotInvertible
	}
	return mod(x, n), nil
}

// Idempotent is an element e with e*e = e, together with its residues
// modulo each prime power factor of n.
type Idempotent struct {
	Residues []int64
	Value    int64
}

// String renders the element as "(r1, r2) -> e".
func (e Idempotent) String() string {
	parts := make([]string, len(e.Residues))
	for i, r := range e.Residues {
		parts[i] = strconv.FormatInt(r, 10)
	}
	return fmt.Sprintf("(%s) -> %d", strings.Join(parts, ", "), e.Value)
}

// Idempotents lists the idempotent elements of Z/nZ sorted by value.
// Every idempotent is 0 or 1 modulo each prime power factor, so there are
// 2^k of them for k distinct primes; each is rebuilt with the Chinese
// remainder theorem.
func Idempotents(n int64) ([]Idempotent, error) {
	if n < 2 {
		return nil, ErrBadModulo
	}
	factors, err := Factorize(n)
	if err != nil {
		return nil, err
	}

	moduli := make([]int64, len(factors))
	basis := make([]int64, len(factors))
	for i, f := range factors {
		q := f.Value()
		m := n / q
		inv, err := Inverse(m%q, q)
		if err != nil {
			return nil, err
		}
		moduli[i] = q
		basis[i] = mulMod(m, inv, n)
	}

	total := 1 << len(factors)
	out := make([]Idempotent, 0, total)
	for mask := range total {
		e := Idempotent{Residues: make([]int64, len(factors))}
		for i := range factors {
			if mask&(1<<(len(factors)-1-i)) != 0 {
				e.Residues[i] = 1
				e.Value = (e.Value + basis[i]) % n
			}
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Idempotent) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
	return out, nil
}

// Radical returns the product of the distinct primes dividing n.
func Radical(n int64) (int64, error) {
	factors, err := Factorize(n)
	if err != nil {
		return 0, err
	}
	rad := int64(1)
	for _, f := range factors {
		rad *= f.Prime
	}
	return rad, nil
}

// CountNilpotents returns the number of nilpotent elements of Z/nZ.
func CountNilpotents(n int64) (int64, error) {
	if n < 2 {
		return 0, ErrBadModulo
	}
	rad, err := Radical(n)
	if err != nil {
		return 0, err
	}
	return n / rad, nil
}

// Nilpotents lists the nilpotent elements of Z/nZ: the multiples of the
// radical of n.
func Nilpotents(n int64) ([]int64, error) {
	if n < 2 {
		return nil, ErrBadModulo
	}
	rad, err := Radical(n)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, n/rad)
	for x := int64(0); x < n; x += rad {
		out = append(out, x)
	}
	return out, nil
}

// FormatList joins elements with ", ".
func FormatList(xs []int64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.FormatInt(x, 10)
	}
	return strings.Join(parts, ", ")
}

func mod(a, n int64) int64 {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func mulMod(a, b, n int64) int64 {
	hi, lo := bits.Mul64(uint64(mod(a, n)), uint64(mod(b, n)))
	return int64(bits.Rem64(hi, lo, uint64(n)))
}
