package perturb

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seqsense/pclearn/cloud"
)

const (
	DefaultClip     = 0.05
	DefaultMaxSigma = 0.04
)

// Jitter adds clipped gaussian noise to every channel.
// Standard deviation is drawn from [0, MaxSigma) on each call.
type Jitter struct {
	Clip     float64
	MaxSigma float64
}

func NewJitter() *Jitter {
	return &Jitter{Clip: DefaultClip, MaxSigma: DefaultMaxSigma}
}

func (j *Jitter) Apply(rng *rand.Rand, c *cloud.Cloud) *cloud.Cloud {
	sigma := distuv.Uniform{Min: 0, Max: j.MaxSigma, Src: rng}.Rand()
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rng}

	out := c.Clone()
	for i := range out.Data {
		d := noise.Rand()
		if d > j.Clip {
			d = j.Clip
		} else if d < -j.Clip {
			d = -j.Clip
		}
		out.Data[i] += float32(d)
	}
	return out
}
