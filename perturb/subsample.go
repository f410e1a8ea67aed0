package perturb

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/seqsense/pclearn/cloud"
)

// ErrInvalidPoints is returned when the requested number of points is not positive.
var ErrInvalidPoints = errors.New("number of points must be positive")

const (
	// DefaultSubsamplePoints is the number of points kept by the partial source.
	DefaultSubsamplePoints = 768
	// FarOffset is the minimum distance of the viewpoint from the bounding box along each axis.
	FarOffset = 500
)

// Metric measures distance between xyz coordinates.
type Metric func(a, b []float64) float64

// Minkowski returns L-p distance.
func Minkowski(p float64) Metric {
	return func(a, b []float64) float64 {
		return floats.Distance(a, b, p)
	}
}

// Euclidean is the default metric.
var Euclidean = Minkowski(2)

// Subsampler keeps the points nearest to a random viewpoint far away from
// the cloud, which approximates the region visible from a sensor.
type Subsampler struct {
	Points int
	Metric Metric
	Logger *zap.Logger
}

// NewSubsampler returns subsampler with the default metric.
func NewSubsampler(points int) *Subsampler {
	return &Subsampler{Points: points}
}

func (s *Subsampler) metric() Metric {
	if s.Metric == nil {
		return Euclidean
	}
	return s.Metric
}

func (s *Subsampler) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Subsample returns the selected points ordered by distance from the viewpoint
// and the mask of the selected points in the index space of c.
// If Points is not less than the number of points, all points are selected.
func (s *Subsampler) Subsample(rng *rand.Rand, c *cloud.Cloud) (*cloud.Cloud, cloud.Mask, error) {
	n := c.Len()
	k := s.Points
	if k <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidPoints, k)
	}
	bounds, err := c.Bounds()
	if err != nil {
		return nil, nil, err
	}
	if k > n {
		s.logger().Warn("subsample size exceeds number of points, keeping all points",
			zap.Int("points", k),
			zap.Int("available", n),
		)
		k = n
	}

	offset := float64(FarOffset)
	if e := 100 * float64(bounds.Extent()); e > offset {
		offset = e
	}
	// The viewpoint lies beyond a corner of the box, so one end of the cloud is nearest.
	base := bounds.Max
	if rng.IntN(2) == 1 {
		offset = -offset
		base = bounds.Min
	}
	anchor := []float64{
		float64(base[0]) + offset + rng.Float64(),
		float64(base[1]) + offset + rng.Float64(),
		float64(base[2]) + offset + rng.Float64(),
	}

	metric := s.metric()
	dist := make([]float64, n)
	p := make([]float64, 3)
	for i := range dist {
		v := c.Vec3At(i)
		p[0], p[1], p[2] = float64(v[0]), float64(v[1]), float64(v[2])
		dist[i] = metric(anchor, p)
	}
	indice := make([]int, n)
	floats.ArgsortStable(dist, indice)
	indice = indice[:k]

	return c.Select(indice), cloud.Scatter(n, indice), nil
}
