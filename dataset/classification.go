package dataset

import (
	"errors"
	"math/rand/v2"

	"github.com/seqsense/pclearn/cloud"
)

type LookupStatus int

const (
	LookupOK LookupStatus = iota
	// LookupUnsupported means the wrapped source has no category names.
	LookupUnsupported
	// LookupOutOfRange means the label is not a known category.
	LookupOutOfRange
)

func (s LookupStatus) String() string {
	switch s {
	case LookupOK:
		return "ok"
	case LookupUnsupported:
		return "unsupported"
	case LookupOutOfRange:
		return "out of range"
	}
	return "unknown"
}

// Lookup is a result of category name lookup.
type Lookup struct {
	Name   string
	Status LookupStatus
}

func (l Lookup) OK() bool {
	return l.Status == LookupOK
}

// Classification passes through labeled clouds of the wrapped source.
type Classification struct {
	source PointSource
}

func NewClassification(src PointSource) *Classification {
	return &Classification{source: src}
}

func (c *Classification) SetSource(src PointSource) {
	c.source = src
}

func (c *Classification) Len() int {
	return c.source.Len()
}

func (c *Classification) Get(rng *rand.Rand, i int) (*cloud.Cloud, int, error) {
	return c.source.Get(rng, i)
}

// Category looks up the category name. It never fails; the status tells why
// the name is not available.
func (c *Classification) Category(label int) Lookup {
	namer, ok := c.source.(CategoryNamer)
	if !ok {
		return Lookup{Status: LookupUnsupported}
	}
	name, err := namer.Category(label)
	switch {
	case err == nil:
		return Lookup{Name: name}
	case errors.Is(err, ErrLabelOutOfRange):
		return Lookup{Status: LookupOutOfRange}
	default:
		return Lookup{Status: LookupUnsupported}
	}
}
