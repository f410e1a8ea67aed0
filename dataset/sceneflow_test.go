package dataset

import (
	"math"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSceneFlow writes a sample of n points. Point i of the first cloud is
// (i, 0, 0) and its color and flow are (i, 0, 0). Point i of the second cloud
// is (i, 1, 0) with color (i, 0, 0). Even points are valid.
func writeSceneFlow(t *testing.T, path string, n int) {
	t.Helper()
	var p1, p2, c []float32
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		p1 = append(p1, float32(i), 0, 0)
		p2 = append(p2, float32(i), 1, 0)
		c = append(c, float32(i), 0, 0)
		mask[i] = i%2 == 0
	}
	writeNPZ(t, path, map[string]any{
		"points1":     points(p1),
		"points2":     points(p2),
		"color1":      points(c),
		"color2":      points(c),
		"flow":        points(c),
		"valid_mask1": mask,
	})
}

func sceneFlowDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSceneFlow(t, filepath.Join(dir, "TRAIN_A_0000_left_0006-0.npz"), 20)
	writeSceneFlow(t, filepath.Join(dir, "TRAIN_B_0001_left_0006-0.npz"), 30)
	writeSceneFlow(t, filepath.Join(dir, "TRAIN_C_0140_left_0006-0.npz"), 20)
	writeSceneFlow(t, filepath.Join(dir, "TEST_A_0000_left_0006-0.npz"), 20)
	return dir
}

func TestSceneFlowTrain(t *testing.T) {
	dir := sceneFlowDir(t)
	f, err := NewSceneFlow(SceneFlowOptions{Root: dir, NPoints: 8, Partition: "train", CacheSize: 10})
	require.NoError(t, err)
	require.Equal(t, 2, f.Len(), "known bad sample must be excluded")

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < f.Len(); i++ {
		s, err := f.Get(rng, i)
		require.NoError(t, err)
		require.Equal(t, 8, s.Pos1.Len())
		require.Equal(t, 8, s.Pos2.Len())
		require.Len(t, s.Mask1, 8)

		c, err := s.Pos1.Centroid()
		require.NoError(t, err)
		for k := 0; k < 3; k++ {
			require.InDelta(t, 0, c[k], 1e-4)
		}

		var offset float64
		seen := make(map[float32]bool)
		for j := 0; j < 8; j++ {
			idx := s.Flow.Point(j)[0]
			require.False(t, seen[idx], "index %v sampled twice", idx)
			seen[idx] = true
			require.Equal(t, idx, s.Color1.Point(j)[0])
			require.Equal(t, int(idx)%2 == 0, s.Mask1[j])
			offset += float64(idx)
		}
		offset /= 8
		for j := 0; j < 8; j++ {
			require.InDelta(t, float64(s.Flow.Point(j)[0])-offset, s.Pos1.Point(j)[0], 1e-4)
			require.InDelta(t, float64(s.Color2.Point(j)[0])-offset, s.Pos2.Point(j)[0], 1e-4)
			require.InDelta(t, 1, s.Pos2.Point(j)[1], 1e-6)
		}
	}

	_, err = f.Get(rng, 2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSceneFlowTest(t *testing.T) {
	dir := sceneFlowDir(t)
	f, err := NewSceneFlow(SceneFlowOptions{Root: dir, NPoints: 8, Partition: "test", CacheSize: 10})
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())

	a, err := f.Get(rand.New(rand.NewPCG(1, 1)), 0)
	require.NoError(t, err)
	b, err := f.Get(rand.New(rand.NewPCG(2, 2)), 0)
	require.NoError(t, err)
	require.Equal(t, a, b, "test partition must be deterministic")

	for j := 0; j < 8; j++ {
		require.Equal(t, float32(j), a.Flow.Point(j)[0])
		require.InDelta(t, float64(j)-3.5, a.Pos1.Point(j)[0], 1e-5)
		require.Equal(t, j%2 == 0, a.Mask1[j])
	}
}

func TestSceneFlowCache(t *testing.T) {
	dir := sceneFlowDir(t)
	f, err := NewSceneFlow(SceneFlowOptions{Root: dir, NPoints: 8, Partition: "train", CacheSize: 1})
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 1))
	for _, i := range []int{0, 1, 0, 1} {
		_, err := f.Get(rng, i)
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.cache.len())
	_, ok := f.cache.get(0)
	require.True(t, ok, "first entry must be retained")
	_, ok = f.cache.get(1)
	require.False(t, ok, "entry beyond capacity must not be stored")

	// Cached record must not be modified by re-centering.
	r, _ := f.cache.get(0)
	require.Equal(t, float32(0), r.pos1.Point(0)[0])
}

func TestSceneFlowConcurrent(t *testing.T) {
	dir := sceneFlowDir(t)
	f, err := NewSceneFlow(SceneFlowOptions{Root: dir, NPoints: 16, Partition: "train", CacheSize: 10})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for w := range errs {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(w), 0))
			for k := 0; k < 10; k++ {
				s, err := f.Get(rng, k%2)
				if err != nil {
					errs[w] = err
					return
				}
				c, _ := s.Pos1.Centroid()
				if math.Abs(float64(c[0])) > 1e-3 {
					errs[w] = ErrUnsupportedData
					return
				}
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 2, f.cache.len())
}

func TestSceneFlowErrors(t *testing.T) {
	_, err := NewSceneFlow(SceneFlowOptions{Root: filepath.Join(t.TempDir(), "missing"), NPoints: 8, Partition: "train"})
	require.ErrorIs(t, err, ErrNotFound)

	dir := sceneFlowDir(t)
	_, err = NewSceneFlow(SceneFlowOptions{Root: dir, NPoints: 0, Partition: "train"})
	require.ErrorIs(t, err, ErrValidation)

	// Not enough points to sample without replacement.
	f, err := NewSceneFlow(SceneFlowOptions{Root: dir, NPoints: 25, Partition: "train"})
	require.NoError(t, err)
	_, err = f.Get(rand.New(rand.NewPCG(1, 1)), 0)
	require.Error(t, err)
}
