package cloud

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

// Rect is an axis aligned box.
type Rect struct {
	Min, Max mat.Vec3
}

// Bounds returns the bounding box of xyz.
func (c *Cloud) Bounds() (Rect, error) {
	if c.Len() == 0 {
		return Rect{}, ErrNoPoint
	}
	min, max, err := pc.MinMaxVec3(c)
	if err != nil {
		return Rect{}, err
	}
	return Rect{Min: min, Max: max}, nil
}

// Extent returns the largest edge length of the box.
func (r Rect) Extent() float32 {
	d := r.Max.Sub(r.Min)
	e := d[0]
	if d[1] > e {
		e = d[1]
	}
	if d[2] > e {
		e = d[2]
	}
	return e
}

func (r Rect) IsInside(v mat.Vec3) bool {
	return !(v[0] < r.Min[0] ||
		v[1] < r.Min[1] ||
		v[2] < r.Min[2] ||
		r.Max[0] < v[0] ||
		r.Max[1] < v[1] ||
		r.Max[2] < v[2])
}
