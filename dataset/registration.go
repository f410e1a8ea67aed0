package dataset

import (
	"math/rand/v2"

	"github.com/seqsense/pcgol/mat"

	"github.com/seqsense/pclearn/cloud"
	"github.com/seqsense/pclearn/perturb"
	"github.com/seqsense/pclearn/transform"
)

// Sample is a registration pair.
type Sample struct {
	Template *cloud.Cloud
	Source   *cloud.Cloud
	// GroundTruth maps Source back onto Template.
	GroundTruth mat.Mat4
	// Mask marks points corresponding to the template.
	Mask  cloud.Mask
	Label int
}

// RegistrationOptions selects perturbations applied to each pair.
type RegistrationOptions struct {
	PartialSource      bool
	Noise              bool
	Outliers           bool
	Magnitude          float64
	RandomizeMagnitude bool
	SubsamplePoints    int
	Clip               float64
}

func DefaultRegistrationOptions() RegistrationOptions {
	return RegistrationOptions{
		Magnitude:          0.8,
		RandomizeMagnitude: true,
		SubsamplePoints:    perturb.DefaultSubsamplePoints,
		Clip:               perturb.DefaultClip,
	}
}

func (o RegistrationOptions) validate() error {
	if o.Magnitude < 0 {
		return invalid("magnitude", "must not be negative, got %f", o.Magnitude)
	}
	if o.PartialSource && o.SubsamplePoints <= 0 {
		return invalid("subsample_points", "must be positive, got %d", o.SubsamplePoints)
	}
	if o.Clip < 0 {
		return invalid("clip", "must not be negative, got %f", o.Clip)
	}
	return nil
}

// Registration synthesizes registration pairs from a point source.
type Registration struct {
	source     PointSource
	opts       RegistrationOptions
	sampler    transform.Sampler
	subsampler *perturb.Subsampler
	jitter     *perturb.Jitter
}

func NewRegistration(src PointSource, opts RegistrationOptions, options ...Option) (*Registration, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s := newSettings(options)
	return &Registration{
		source: src,
		opts:   opts,
		sampler: transform.Sampler{
			Magnitude:          opts.Magnitude,
			RandomizeMagnitude: opts.RandomizeMagnitude,
		},
		subsampler: &perturb.Subsampler{
			Points: opts.SubsamplePoints,
			Logger: s.logger,
		},
		jitter: &perturb.Jitter{
			Clip:     opts.Clip,
			MaxSigma: perturb.DefaultMaxSigma,
		},
	}, nil
}

func (r *Registration) SetSource(src PointSource) {
	r.source = src
}

func (r *Registration) Len() int {
	return r.source.Len()
}

// Get builds the i-th pair.
// Partial overlap and noise are applied to the source, outliers to the template.
func (r *Registration) Get(rng *rand.Rand, i int) (*Sample, error) {
	template, label, err := r.source.Get(rng, i)
	if err != nil {
		return nil, err
	}
	mask := cloud.Ones(template.Len())

	source, tr := r.sampler.Perturb(rng, template)
	if r.opts.PartialSource {
		if source, mask, err = r.subsampler.Subsample(rng, source); err != nil {
			return nil, err
		}
	}
	if r.opts.Noise {
		source = r.jitter.Apply(rng, source)
	}
	if r.opts.Outliers {
		if template, mask, err = perturb.AddOutliers(rng, template, mask); err != nil {
			return nil, err
		}
	}
	return &Sample{
		Template:    template,
		Source:      source,
		GroundTruth: tr.GroundTruth,
		Mask:        mask,
		Label:       label,
	}, nil
}
