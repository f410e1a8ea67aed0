package dataset

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/seqsense/pclearn/cloud"
	"github.com/seqsense/pclearn/perturb"
)

const (
	DefaultSceneFlowPoints    = 1024
	DefaultSceneFlowCacheSize = 30000

	// badSceneFlowSample contains NaN.
	badSceneFlowSample = "TRAIN_C_0140_left_0006-0"
)

// SceneFlowOptions configures SceneFlow.
type SceneFlowOptions struct {
	Root      string
	NPoints   int
	Partition string
	CacheSize int
}

func DefaultSceneFlowOptions() SceneFlowOptions {
	return SceneFlowOptions{
		NPoints:   DefaultSceneFlowPoints,
		Partition: "train",
		CacheSize: DefaultSceneFlowCacheSize,
	}
}

// FlowSample is a pair of clouds with flow of the first cloud.
// Color2 follows Pos2, and Color1, Flow and Mask1 follow Pos1.
type FlowSample struct {
	Pos1, Pos2     *cloud.Cloud
	Color1, Color2 *cloud.Cloud
	Flow           *cloud.Cloud
	Mask1          []bool
}

type flowRecord struct {
	pos1, pos2, color1, color2, flow *cloud.Cloud
	mask1                            []bool
}

// SceneFlow reads one archive per sample.
type SceneFlow struct {
	paths   []string
	npoints int
	train   bool
	cache   *recordCache
	group   singleflight.Group
	logger  *zap.Logger
}

func NewSceneFlow(opts SceneFlowOptions, options ...Option) (*SceneFlow, error) {
	s := newSettings(options)
	if opts.NPoints <= 0 {
		return nil, invalid("npoints", "must be positive, got %d", opts.NPoints)
	}
	if opts.CacheSize < 0 {
		return nil, invalid("cache_size", "must not be negative, got %d", opts.CacheSize)
	}
	if _, err := os.Stat(opts.Root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	train := opts.Partition == "train"
	pattern := "TEST*.npz"
	if train {
		pattern = "TRAIN*.npz"
	}
	matches, err := filepath.Glob(filepath.Join(opts.Root, pattern))
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(matches))
	for _, p := range matches {
		if strings.Contains(p, badSceneFlowSample) {
			continue
		}
		paths = append(paths, p)
	}
	s.logger.Info("scene flow dataset found",
		zap.String("partition", opts.Partition),
		zap.Int("samples", len(paths)),
	)

	return &SceneFlow{
		paths:   paths,
		npoints: opts.NPoints,
		train:   train,
		cache:   newRecordCache(opts.CacheSize),
		logger:  s.logger,
	}, nil
}

func (f *SceneFlow) Len() int {
	return len(f.paths)
}

func (f *SceneFlow) record(i int) (*flowRecord, error) {
	if r, ok := f.cache.get(i); ok {
		return r, nil
	}
	v, err, _ := f.group.Do(strconv.Itoa(i), func() (any, error) {
		r, err := readFlowRecord(f.paths[i])
		if err != nil {
			return nil, err
		}
		if !f.cache.add(i, r) {
			f.logger.Debug("scene flow cache is full", zap.Int("index", i))
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*flowRecord), nil
}

// Get returns the i-th pair re-centered on the centroid of Pos1.
// Training partition randomly samples NPoints points of each cloud;
// others take the first NPoints points.
func (f *SceneFlow) Get(rng *rand.Rand, i int) (*FlowSample, error) {
	if err := checkIndex(i, len(f.paths)); err != nil {
		return nil, err
	}
	r, err := f.record(i)
	if err != nil {
		return nil, err
	}

	var s *FlowSample
	if f.train {
		idx1, err := perturb.Choice(rng, r.pos1.Len(), f.npoints)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.paths[i], err)
		}
		idx2, err := perturb.Choice(rng, r.pos2.Len(), f.npoints)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.paths[i], err)
		}
		mask1 := make([]bool, len(idx1))
		for j, k := range idx1 {
			mask1[j] = r.mask1[k]
		}
		s = &FlowSample{
			Pos1:   r.pos1.Select(idx1),
			Pos2:   r.pos2.Select(idx2),
			Color1: r.color1.Select(idx1),
			Color2: r.color2.Select(idx2),
			Flow:   r.flow.Select(idx1),
			Mask1:  mask1,
		}
	} else {
		n := f.npoints
		if n > len(r.mask1) {
			n = len(r.mask1)
		}
		s = &FlowSample{
			Pos1:   r.pos1.Head(f.npoints),
			Pos2:   r.pos2.Head(f.npoints),
			Color1: r.color1.Head(f.npoints),
			Color2: r.color2.Head(f.npoints),
			Flow:   r.flow.Head(f.npoints),
			Mask1:  append([]bool{}, r.mask1[:n]...),
		}
	}

	center, err := s.Pos1.Centroid()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.paths[i], err)
	}
	offset := center.Mul(-1)
	s.Pos1.Translate(offset)
	s.Pos2.Translate(offset)
	return s, nil
}

func readFlowRecord(path string) (*flowRecord, error) {
	arrays, err := readNPZ(path)
	if err != nil {
		return nil, err
	}
	r := &flowRecord{}
	for _, a := range []struct {
		name string
		dst  **cloud.Cloud
	}{
		{"points1", &r.pos1},
		{"points2", &r.pos2},
		{"color1", &r.color1},
		{"color2", &r.color2},
		{"flow", &r.flow},
	} {
		arr, err := pointsArray(arrays, a.name, 2)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if *a.dst, err = cloud.FromSlice(arr.Float, 3); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	m, err := lookupArray(arrays, "valid_mask1")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if r.mask1, err = toMask(m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	n1, n2 := r.pos1.Len(), r.pos2.Len()
	if r.color1.Len() != n1 || r.flow.Len() != n1 || len(r.mask1) != n1 || r.color2.Len() != n2 {
		return nil, fmt.Errorf("%s: %w", path, unsupported("per-point arrays have inconsistent lengths"))
	}
	return r, nil
}
