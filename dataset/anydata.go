package dataset

import (
	"math/rand/v2"

	"github.com/seqsense/pclearn/cloud"
	"github.com/seqsense/pclearn/perturb"
	"github.com/seqsense/pclearn/transform"
)

const (
	DefaultAnyDataRepeat    = 1000
	DefaultAnyDataMagnitude = 0.5
	// anyDataPartialRatio is the ratio of points kept in the partial source.
	anyDataPartialRatio = 0.7
)

// AnyData synthesizes pairs from a single cloud repeated Repeat times.
type AnyData struct {
	template   *cloud.Cloud
	repeat     int
	sampler    transform.Sampler
	subsampler *perturb.Subsampler
}

// NewAnyData creates the dataset. If partial is set, sources keep 70% of the points.
func NewAnyData(c *cloud.Cloud, partial bool, repeat int, options ...Option) (*AnyData, error) {
	if c.Len() == 0 {
		return nil, invalid("cloud", "no point")
	}
	if repeat <= 0 {
		return nil, invalid("repeat", "must be positive, got %d", repeat)
	}
	s := newSettings(options)
	d := &AnyData{
		template: c.Clone(),
		repeat:   repeat,
		sampler: transform.Sampler{
			Magnitude:          DefaultAnyDataMagnitude,
			RandomizeMagnitude: true,
		},
	}
	if partial {
		k := int(float64(c.Len()) * anyDataPartialRatio)
		if k < 1 {
			k = 1
		}
		d.subsampler = &perturb.Subsampler{Points: k, Logger: s.logger}
	}
	return d, nil
}

func (d *AnyData) Len() int {
	return d.repeat
}

func (d *AnyData) Get(rng *rand.Rand, i int) (*Sample, error) {
	if err := checkIndex(i, d.repeat); err != nil {
		return nil, err
	}
	source, tr := d.sampler.Perturb(rng, d.template)
	mask := cloud.Ones(d.template.Len())
	if d.subsampler != nil {
		var err error
		if source, mask, err = d.subsampler.Subsample(rng, source); err != nil {
			return nil, err
		}
	}
	return &Sample{
		Template:    d.template.Clone(),
		Source:      source,
		GroundTruth: tr.GroundTruth,
		Mask:        mask,
		Label:       NoLabel,
	}, nil
}
