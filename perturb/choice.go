package perturb

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"
)

// Choice draws k distinct indice from [0, n).
func Choice(rng *rand.Rand, n, k int) ([]int, error) {
	if k < 0 || k > n {
		return nil, fmt.Errorf("cannot take %d samples from %d without replacement", k, n)
	}
	idx := make([]int, k)
	if k == 0 {
		return idx, nil
	}
	sampleuv.WithoutReplacement(idx, n, rng)
	return idx, nil
}
