// Package cloud provides a dense, point-major point cloud container used by
// the dataset and perturbation packages.
package cloud

import (
	"errors"
	"fmt"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

var (
	// ErrNoPoint is returned by operations which need at least one point.
	ErrNoPoint = errors.New("no point")
	// ErrChannels is returned when channel counts don't match or are less than 3.
	ErrChannels = errors.New("invalid number of channels")
)

// Cloud is an ordered set of points with a fixed number of float32 channels.
// First three channels are always x, y and z.
type Cloud struct {
	Data     []float32
	channels int
}

// New allocates a zero-filled cloud of n points and c channels.
func New(n, c int) (*Cloud, error) {
	if c < 3 {
		return nil, fmt.Errorf("%w: %d", ErrChannels, c)
	}
	return &Cloud{
		Data:     make([]float32, n*c),
		channels: c,
	}, nil
}

// FromSlice wraps row-major data of c channels without copying.
func FromSlice(data []float32, c int) (*Cloud, error) {
	if c < 3 {
		return nil, fmt.Errorf("%w: %d", ErrChannels, c)
	}
	if len(data)%c != 0 {
		return nil, fmt.Errorf("%w: data length %d is not a multiple of %d", ErrChannels, len(data), c)
	}
	return &Cloud{Data: data, channels: c}, nil
}

// FromVec3s creates a 3 channel cloud.
func FromVec3s(vs []mat.Vec3) *Cloud {
	c := &Cloud{
		Data:     make([]float32, 0, 3*len(vs)),
		channels: 3,
	}
	for _, v := range vs {
		c.Data = append(c.Data, v[0], v[1], v[2])
	}
	return c
}

func (c *Cloud) Len() int {
	if c.channels == 0 {
		return 0
	}
	return len(c.Data) / c.channels
}

func (c *Cloud) Channels() int {
	return c.channels
}

func (c *Cloud) Vec3At(i int) mat.Vec3 {
	j := i * c.channels
	return mat.Vec3{c.Data[j], c.Data[j+1], c.Data[j+2]}
}

func (c *Cloud) SetVec3(i int, v mat.Vec3) {
	j := i * c.channels
	c.Data[j], c.Data[j+1], c.Data[j+2] = v[0], v[1], v[2]
}

// Point returns all channels of i-th point. Returned slice shares memory with the cloud.
func (c *Cloud) Point(i int) []float32 {
	j := i * c.channels
	return c.Data[j : j+c.channels : j+c.channels]
}

func (c *Cloud) Clone() *Cloud {
	return &Cloud{
		Data:     append([]float32{}, c.Data...),
		channels: c.channels,
	}
}

// Vec3Slice copies xyz of all points.
func (c *Cloud) Vec3Slice() pc.Vec3Slice {
	out := make(pc.Vec3Slice, c.Len())
	for i := range out {
		out[i] = c.Vec3At(i)
	}
	return out
}

// View returns xyz accessor of the points pointed by indice without copying.
func (c *Cloud) View(indice []int) pc.Vec3RandomAccessor {
	return pc.NewIndiceVec3RandomAccessor(c, indice)
}

// Select copies the points at indice in the given order.
func (c *Cloud) Select(indice []int) *Cloud {
	out := &Cloud{
		Data:     make([]float32, 0, len(indice)*c.channels),
		channels: c.channels,
	}
	for _, i := range indice {
		out.Data = append(out.Data, c.Point(i)...)
	}
	return out
}

// Head copies first n points. n larger than Len is clamped.
func (c *Cloud) Head(n int) *Cloud {
	if n > c.Len() {
		n = c.Len()
	}
	return &Cloud{
		Data:     append([]float32{}, c.Data[:n*c.channels]...),
		channels: c.channels,
	}
}

// Permute returns a copy whose i-th point is perm[i]-th point of c.
func (c *Cloud) Permute(perm []int) (*Cloud, error) {
	if len(perm) != c.Len() {
		return nil, fmt.Errorf("permutation length %d differs from %d points", len(perm), c.Len())
	}
	return c.Select(perm), nil
}

// Concat returns a new cloud containing points of c followed by points of a.
func (c *Cloud) Concat(a *Cloud) (*Cloud, error) {
	if a.channels != c.channels {
		return nil, fmt.Errorf("%w: %d and %d", ErrChannels, c.channels, a.channels)
	}
	out := &Cloud{
		Data:     make([]float32, 0, len(c.Data)+len(a.Data)),
		channels: c.channels,
	}
	out.Data = append(out.Data, c.Data...)
	out.Data = append(out.Data, a.Data...)
	return out, nil
}

// Centroid returns mean of xyz.
func (c *Cloud) Centroid() (mat.Vec3, error) {
	n := c.Len()
	if n == 0 {
		return mat.Vec3{}, ErrNoPoint
	}
	var sum [3]float64
	for it := c.Vec3Iterator(); it.IsValid(); it.Incr() {
		v := it.Vec3()
		sum[0] += float64(v[0])
		sum[1] += float64(v[1])
		sum[2] += float64(v[2])
	}
	return mat.Vec3{
		float32(sum[0] / float64(n)),
		float32(sum[1] / float64(n)),
		float32(sum[2] / float64(n)),
	}, nil
}

// Translate adds d to xyz of all points in place.
func (c *Cloud) Translate(d mat.Vec3) {
	for it := c.Vec3Iterator(); it.IsValid(); it.Incr() {
		it.SetVec3(it.Vec3().Add(d))
	}
}
