package cloud

import (
	"github.com/seqsense/pcgol/mat"
)

// Vec3Iterator walks xyz of a cloud sequentially.
type Vec3Iterator struct {
	data   []float32
	pos    int
	stride int
}

func (c *Cloud) Vec3Iterator() *Vec3Iterator {
	return &Vec3Iterator{
		data:   c.Data,
		stride: c.channels,
	}
}

func (i *Vec3Iterator) Incr() {
	i.pos += i.stride
}

func (i *Vec3Iterator) IsValid() bool {
	return i.stride > 0 && i.pos+i.stride <= len(i.data)
}

func (i *Vec3Iterator) Vec3() mat.Vec3 {
	return mat.Vec3{i.data[i.pos], i.data[i.pos+1], i.data[i.pos+2]}
}

func (i *Vec3Iterator) SetVec3(v mat.Vec3) {
	i.data[i.pos], i.data[i.pos+1], i.data[i.pos+2] = v[0], v[1], v[2]
}
