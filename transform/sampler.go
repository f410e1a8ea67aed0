package transform

import (
	"math/rand/v2"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seqsense/pclearn/cloud"
)

// Transform is a sampled rigid motion.
type Transform struct {
	Twist Twist
	// Applied maps template to source.
	Applied mat.Mat4
	// GroundTruth maps source back to template and is the inverse of Applied.
	GroundTruth mat.Mat4
}

// Sampler draws twists of a bounded amplitude.
// Rotation angle and the norm of translational part never exceed Magnitude.
type Sampler struct {
	Magnitude float64
	// RandomizeMagnitude draws amplitude uniformly from [0, Magnitude) per sample.
	RandomizeMagnitude bool
}

func (s *Sampler) amplitude(rng *rand.Rand) float64 {
	if s.RandomizeMagnitude {
		return distuv.Uniform{Min: 0, Max: s.Magnitude, Src: rng}.Rand()
	}
	return s.Magnitude
}

func (s *Sampler) Sample(rng *rand.Rand) Transform {
	amp := s.amplitude(rng)

	dir := distuv.UnitNormal
	dir.Src = rng

	var x Twist
	var n float64
	for n == 0 {
		for i := range x {
			x[i] = dir.Rand()
		}
		n = x.Norm()
	}
	for i := range x {
		x[i] *= amp / n
	}
	return FromTwist(x)
}

func FromTwist(x Twist) Transform {
	return Transform{
		Twist:       x,
		Applied:     Exp(x),
		GroundTruth: Exp(x.Neg()),
	}
}

type transformedVec3RandomAccessor struct {
	pc.Vec3RandomAccessor
	trans mat.Mat4
}

func (a *transformedVec3RandomAccessor) Vec3At(i int) mat.Vec3 {
	return a.trans.TransformAffine(a.Vec3RandomAccessor.Vec3At(i))
}

// Transformed returns a view of ra transformed by m.
func Transformed(ra pc.Vec3RandomAccessor, m mat.Mat4) pc.Vec3RandomAccessor {
	return &transformedVec3RandomAccessor{
		Vec3RandomAccessor: ra,
		trans:              m,
	}
}

// Apply returns a copy of c transformed by m.
// If c has 6 or more channels, channels 3-5 are treated as normals and only rotated.
func Apply(c *cloud.Cloud, m mat.Mat4) *cloud.Cloud {
	out := c.Clone()
	ra := Transformed(c, m)
	for i, n := 0, c.Len(); i < n; i++ {
		out.SetVec3(i, ra.Vec3At(i))
	}
	if ch := c.Channels(); ch >= 6 {
		rot := RotationOnly(m)
		for i, n := 0, c.Len(); i < n; i++ {
			p := out.Point(i)
			v := rot.TransformAffine(mat.Vec3{p[3], p[4], p[5]})
			p[3], p[4], p[5] = v[0], v[1], v[2]
		}
	}
	return out
}

// Perturb samples a transform and applies it to c.
func (s *Sampler) Perturb(rng *rand.Rand, c *cloud.Cloud) (*cloud.Cloud, Transform) {
	t := s.Sample(rng)
	return Apply(c, t.Applied), t
}
