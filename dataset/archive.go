package dataset

import (
	"fmt"
	"strings"

	"github.com/sbinet/npyio/npz"
)

// array is a decoded NumPy array. Exactly one of the value slices is set.
type array struct {
	Shape []int
	Float []float32
	Int   []int64
	Bool  []bool
}

func (a *array) size() int {
	n := 1
	for _, s := range a.Shape {
		n *= s
	}
	return n
}

// readNPZ decodes all arrays of a .npz archive.
func readNPZ(path string) (map[string]*array, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	keys := r.Keys()
	arrays := make(map[string]*array, len(keys))
	for _, key := range keys {
		a, err := readArray(r, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, key, err)
		}
		arrays[strings.TrimSuffix(key, ".npy")] = a
	}
	return arrays, nil
}

func readArray(r *npz.Reader, key string) (*array, error) {
	hdr := r.Header(key)
	if hdr == nil {
		return nil, unsupported("no header")
	}
	descr := hdr.Descr
	if descr.Fortran && len(descr.Shape) > 1 {
		return nil, unsupported("fortran ordered array is not supported")
	}
	a := &array{Shape: append([]int{}, descr.Shape...)}

	var err error
	switch descr.Type {
	case "<f4":
		err = r.Read(key, &a.Float)
	case "<f8":
		var v []float64
		if err = r.Read(key, &v); err == nil {
			a.Float = make([]float32, len(v))
			for i := range v {
				a.Float[i] = float32(v[i])
			}
		}
	case "<i8":
		err = r.Read(key, &a.Int)
	case "<i4":
		var v []int32
		if err = r.Read(key, &v); err == nil {
			a.Int = make([]int64, len(v))
			for i := range v {
				a.Int[i] = int64(v[i])
			}
		}
	case "|u1":
		var v []uint8
		if err = r.Read(key, &v); err == nil {
			a.Int = make([]int64, len(v))
			for i := range v {
				a.Int[i] = int64(v[i])
			}
		}
	case "|b1":
		err = r.Read(key, &a.Bool)
	default:
		return nil, unsupported("unsupported dtype %q", descr.Type)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func lookupArray(arrays map[string]*array, name string) (*array, error) {
	a, ok := arrays[name]
	if !ok {
		return nil, unsupported("array %q not found", name)
	}
	return a, nil
}

// pointsArray returns float array of shape [..., 3].
func pointsArray(arrays map[string]*array, name string, ndim int) (*array, error) {
	a, err := lookupArray(arrays, name)
	if err != nil {
		return nil, err
	}
	if a.Float == nil {
		return nil, unsupported("array %q is not floating point", name)
	}
	if len(a.Shape) != ndim || a.Shape[ndim-1] != 3 {
		return nil, unsupported("array %q has shape %v, expected %d dimensions of points", name, a.Shape, ndim)
	}
	return a, nil
}

// toMask converts bool or integer array into a bool slice.
func toMask(a *array) ([]bool, error) {
	switch {
	case a.Bool != nil:
		return a.Bool, nil
	case a.Int != nil:
		out := make([]bool, len(a.Int))
		for i, v := range a.Int {
			out[i] = v != 0
		}
		return out, nil
	case a.Float != nil:
		out := make([]bool, len(a.Float))
		for i, v := range a.Float {
			out[i] = v != 0
		}
		return out, nil
	}
	return nil, unsupported("empty mask array")
}
