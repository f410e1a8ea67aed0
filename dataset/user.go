package dataset

import (
	"math/rand/v2"

	"github.com/seqsense/pcgol/mat"

	"github.com/seqsense/pclearn/cloud"
	"github.com/seqsense/pclearn/transform"
)

// Array is a row-major float32 tensor.
type Array struct {
	Data  []float32
	Shape []int
}

func (a Array) size() int {
	n := 1
	for _, s := range a.Shape {
		n *= s
	}
	return n
}

// batch reshapes a single item of ndim dimensions into a batch of one.
func (a Array) batch(field string, ndim int) (Array, error) {
	switch len(a.Shape) {
	case ndim:
		a.Shape = append([]int{1}, a.Shape...)
	case ndim + 1:
	default:
		return Array{}, invalid(field, "shape %v must have %d or %d dimensions", a.Shape, ndim, ndim+1)
	}
	if a.size() != len(a.Data) {
		return Array{}, invalid(field, "shape %v doesn't match %d elements", a.Shape, len(a.Data))
	}
	return a, nil
}

// UserData holds registration pairs given by the caller.
type UserData struct {
	templates  []*cloud.Cloud
	sources    []*cloud.Cloud
	masks      []cloud.Mask
	transforms []mat.Mat4
}

// NewUserData validates the caller's arrays.
// template and source are [B,N,3] or [N,3] for a single pair. mask is [B,N,1]
// or [N,1] and defaults to zeros. transform is [B,4,4] or [4,4] row-major and
// defaults to identity.
func NewUserData(template, source Array, mask, trans *Array) (*UserData, error) {
	t, err := template.batch("template", 2)
	if err != nil {
		return nil, err
	}
	s, err := source.batch("source", 2)
	if err != nil {
		return nil, err
	}
	if t.Shape[0] != s.Shape[0] {
		return nil, invalid("source", "number of templates %d is not equal to number of sources %d", t.Shape[0], s.Shape[0])
	}
	if d := t.Shape[2]; d != 3 {
		return nil, invalid("template", "point cloud array should have 3 coordinates, got %d", d)
	}
	if d := s.Shape[2]; d != 3 {
		return nil, invalid("source", "point cloud array should have 3 coordinates, got %d", d)
	}

	b := t.Shape[0]
	u := &UserData{
		templates:  splitClouds(t),
		sources:    splitClouds(s),
		masks:      make([]cloud.Mask, b),
		transforms: make([]mat.Mat4, b),
	}

	if mask == nil {
		for i, tc := range u.templates {
			u.masks[i] = cloud.Zeros(tc.Len())
		}
	} else {
		m, err := mask.batch("mask", 2)
		if err != nil {
			return nil, err
		}
		if m.Shape[0] != b || m.Shape[1] != t.Shape[1] || m.Shape[2] != 1 {
			return nil, invalid("mask", "shape %v must be [%d, %d, 1]", m.Shape, b, t.Shape[1])
		}
		n := m.Shape[1]
		for i := range u.masks {
			u.masks[i] = append(cloud.Mask{}, m.Data[i*n:(i+1)*n]...)
		}
	}

	if trans == nil {
		for i := range u.transforms {
			u.transforms[i] = transform.Identity()
		}
	} else {
		tr, err := trans.batch("transform", 2)
		if err != nil {
			return nil, err
		}
		if tr.Shape[0] != b || tr.Shape[1] != 4 || tr.Shape[2] != 4 {
			return nil, invalid("transform", "shape %v must be [%d, 4, 4]", tr.Shape, b)
		}
		for i := range u.transforms {
			u.transforms[i] = rowMajorToMat4(tr.Data[i*16 : (i+1)*16])
		}
	}
	return u, nil
}

func splitClouds(a Array) []*cloud.Cloud {
	b, n := a.Shape[0], a.Shape[1]*a.Shape[2]
	out := make([]*cloud.Cloud, b)
	for i := range out {
		// Shape is validated; channel count is 3.
		out[i], _ = cloud.FromSlice(append([]float32{}, a.Data[i*n:(i+1)*n]...), 3)
	}
	return out
}

func rowMajorToMat4(d []float32) mat.Mat4 {
	var m mat.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[4*c+r] = d[4*r+c]
		}
	}
	return m
}

func (u *UserData) Len() int {
	return len(u.templates)
}

// Pair returns copies of the i-th template, source, mask and transform.
func (u *UserData) Pair(i int) (*Sample, error) {
	if err := checkIndex(i, len(u.templates)); err != nil {
		return nil, err
	}
	return &Sample{
		Template:    u.templates[i].Clone(),
		Source:      u.sources[i].Clone(),
		GroundTruth: u.transforms[i],
		Mask:        u.masks[i].Clone(),
		Label:       NoLabel,
	}, nil
}

// Get implements PointSource by returning the i-th template, which allows
// synthesizing pairs from user clouds with Registration.
func (u *UserData) Get(_ *rand.Rand, i int) (*cloud.Cloud, int, error) {
	if err := checkIndex(i, len(u.templates)); err != nil {
		return nil, 0, err
	}
	return u.templates[i].Clone(), NoLabel, nil
}
