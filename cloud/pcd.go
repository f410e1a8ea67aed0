package cloud

import (
	"io"

	"github.com/seqsense/pcgol/pc"
)

var normalFields = []string{"normal_x", "normal_y", "normal_z"}

func hasFields(pp *pc.PointCloud, names []string) bool {
	for _, name := range names {
		var found bool
		for _, f := range pp.Fields {
			if f == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FromPointCloud converts a PCD point cloud.
// Normals are copied into channels 3-5 if withNormals is set and the cloud has normal fields.
func FromPointCloud(pp *pc.PointCloud, withNormals bool) (*Cloud, error) {
	if pp.Points == 0 {
		return nil, ErrNoPoint
	}
	withNormals = withNormals && hasFields(pp, normalFields)
	ch := 3
	if withNormals {
		ch = 6
	}
	c, err := New(pp.Points, ch)
	if err != nil {
		return nil, err
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	for i := 0; i < pp.Points; i++ {
		c.SetVec3(i, it.Vec3())
		it.Incr()
	}
	if withNormals {
		for k, name := range normalFields {
			fit, err := pp.Float32Iterator(name)
			if err != nil {
				return nil, err
			}
			for i := 0; i < pp.Points; i++ {
				c.Data[i*ch+3+k] = fit.Float32()
				fit.Incr()
			}
		}
	}
	return c, nil
}

// ToPointCloud converts xyz into a binary PCD point cloud.
func (c *Cloud) ToPointCloud() (*pc.PointCloud, error) {
	n := c.Len()
	pp := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version:   0.7,
			Fields:    []string{"x", "y", "z"},
			Size:      []int{4, 4, 4},
			Type:      []string{"F", "F", "F"},
			Count:     []int{1, 1, 1},
			Width:     n,
			Height:    1,
			Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
		},
		Points: n,
	}
	pp.Data = make([]byte, n*pp.Stride())
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		it.SetVec3(c.Vec3At(i))
		it.Incr()
	}
	return pp, nil
}

// ReadPCD parses a PCD stream.
func ReadPCD(r io.Reader, withNormals bool) (*Cloud, error) {
	pp, err := pc.Unmarshal(r)
	if err != nil {
		return nil, err
	}
	return FromPointCloud(pp, withNormals)
}

// WritePCD writes xyz as a PCD stream.
func (c *Cloud) WritePCD(w io.Writer) error {
	pp, err := c.ToPointCloud()
	if err != nil {
		return err
	}
	return pc.Marshal(pp, w)
}
