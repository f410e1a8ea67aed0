package perturb

import (
	"fmt"
	"math/rand/v2"

	"github.com/seqsense/pclearn/cloud"
)

// OutlierCount is the number of outliers added by AddOutliers.
const OutlierCount = 100

// AddOutliers appends OutlierCount points uniformly drawn from [-1, 1] on every
// channel, marks them as 0 in the mask and shuffles the points and the mask
// with the same permutation.
func AddOutliers(rng *rand.Rand, c *cloud.Cloud, m cloud.Mask) (*cloud.Cloud, cloud.Mask, error) {
	if len(m) != c.Len() {
		return nil, nil, fmt.Errorf("mask length %d differs from %d points", len(m), c.Len())
	}
	outliers, err := cloud.New(OutlierCount, c.Channels())
	if err != nil {
		return nil, nil, err
	}
	for i := range outliers.Data {
		outliers.Data[i] = float32(2*rng.Float64() - 1)
	}
	merged, err := c.Concat(outliers)
	if err != nil {
		return nil, nil, err
	}
	mask := m.Concat(cloud.Zeros(OutlierCount))

	perm := rng.Perm(merged.Len())
	out, err := merged.Permute(perm)
	if err != nil {
		return nil, nil, err
	}
	outMask, err := mask.Permute(perm)
	if err != nil {
		return nil, nil, err
	}
	return out, outMask, nil
}
