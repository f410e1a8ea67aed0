package dataset

import (
	"math/rand/v2"

	"github.com/seqsense/pclearn/cloud"
)

// NoLabel is returned by sources without labels.
const NoLabel = -1

// PointSource is an indexable set of labeled point clouds.
// Returned clouds are owned by the caller.
type PointSource interface {
	Len() int
	Get(rng *rand.Rand, i int) (*cloud.Cloud, int, error)
}

// CategoryNamer is implemented by sources which know category names.
type CategoryNamer interface {
	Category(label int) (string, error)
}
