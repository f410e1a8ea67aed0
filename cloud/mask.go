package cloud

import (
	"fmt"
)

// Mask marks, per point, whether the point corresponds to an original
// template point (1) or not (0).
type Mask []float32

func Ones(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = 1
	}
	return m
}

func Zeros(n int) Mask {
	return make(Mask, n)
}

// Count returns the number of set entries.
func (m Mask) Count() int {
	var n int
	for _, v := range m {
		if v != 0 {
			n++
		}
	}
	return n
}

func (m Mask) Clone() Mask {
	return append(Mask{}, m...)
}

func (m Mask) Concat(a Mask) Mask {
	out := make(Mask, 0, len(m)+len(a))
	out = append(out, m...)
	return append(out, a...)
}

// Permute returns a copy whose i-th entry is perm[i]-th entry of m.
func (m Mask) Permute(perm []int) (Mask, error) {
	if len(perm) != len(m) {
		return nil, fmt.Errorf("permutation length %d differs from mask length %d", len(perm), len(m))
	}
	out := make(Mask, len(m))
	for i, j := range perm {
		out[i] = m[j]
	}
	return out, nil
}

// Scatter returns a mask of length n with entries at indice set.
func Scatter(n int, indice []int) Mask {
	m := make(Mask, n)
	for _, i := range indice {
		m[i] = 1
	}
	return m
}
