package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/seqsense/pclearn/cloud"
)

const (
	// ModelNet40Categories is the number of categories of ModelNet40.
	ModelNet40Categories = 40
	// UnseenSplit is the first category held out for testing in unseen mode.
	UnseenSplit = 20

	shapeNamesFile = "shape_names.txt"
)

// ModelNet40Options configures ModelNet40.
type ModelNet40Options struct {
	// Root is the directory containing ply_data_{train,test}*.npz and shape_names.txt.
	Root      string
	Train     bool
	NumPoints int
	// Randomize shuffles order of the first NumPoints points on each Get.
	Randomize bool
	// Unseen keeps categories below UnseenSplit for training and the others for testing.
	Unseen     bool
	UseNormals bool
}

func DefaultModelNet40Options() ModelNet40Options {
	return ModelNet40Options{
		Train:     true,
		NumPoints: 1024,
	}
}

// ModelNet40 is an in-memory labeled point source.
type ModelNet40 struct {
	clouds    []*cloud.Cloud
	labels    []int
	names     []string
	numPoints int
	randomize bool
}

func partition(train bool) string {
	if train {
		return "train"
	}
	return "test"
}

// LoadModelNet40 reads the archives of the requested split.
// Each archive contains data[M,N,3], label[M,1] and optionally normal[M,N,3].
func LoadModelNet40(opts ModelNet40Options, options ...Option) (*ModelNet40, error) {
	s := newSettings(options)

	files, err := filepath.Glob(filepath.Join(opts.Root, fmt.Sprintf("ply_data_%s*.npz", partition(opts.Train))))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s archive in %q", ErrNotFound, partition(opts.Train), opts.Root)
	}

	var clouds []*cloud.Cloud
	var labels []int
	for _, f := range files {
		c, l, err := readModelNet40Archive(f, opts.UseNormals)
		if err != nil {
			return nil, err
		}
		clouds = append(clouds, c...)
		labels = append(labels, l...)
	}

	names, err := readShapeNames(filepath.Join(opts.Root, shapeNamesFile))
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && opts.Train:
		names = nil
	default:
		return nil, err
	}

	return NewModelNet40(clouds, labels, names, opts, WithLogger(s.logger))
}

// NewModelNet40 creates the source from decoded clouds.
// names may be nil if category names are unknown.
func NewModelNet40(clouds []*cloud.Cloud, labels []int, names []string, opts ModelNet40Options, options ...Option) (*ModelNet40, error) {
	s := newSettings(options)

	if len(clouds) != len(labels) {
		return nil, invalid("labels", "%d labels for %d clouds", len(labels), len(clouds))
	}
	if opts.NumPoints <= 0 {
		return nil, invalid("num_points", "must be positive, got %d", opts.NumPoints)
	}
	for i, l := range labels {
		if l < 0 {
			return nil, invalid("labels", "negative label %d for cloud %d", l, i)
		}
		if names != nil && l >= len(names) {
			return nil, invalid("labels", "label %d for cloud %d exceeds %d category names", l, i, len(names))
		}
	}
	if len(clouds) > 0 {
		ch := clouds[0].Channels()
		for i, c := range clouds {
			if c.Channels() != ch {
				return nil, unsupported("cloud %d has %d channels, expected %d", i, c.Channels(), ch)
			}
		}
	}

	if opts.Unseen {
		var cs []*cloud.Cloud
		var ls []int
		for i, l := range labels {
			if (l < UnseenSplit) == opts.Train {
				cs = append(cs, clouds[i])
				ls = append(ls, l)
			}
		}
		clouds, labels = cs, ls
		if opts.Train {
			s.logger.Info("loaded first categories for training, last categories are kept for testing",
				zap.Int("split", UnseenSplit),
				zap.Int("samples", len(clouds)),
			)
		}
	}

	return &ModelNet40{
		clouds:    clouds,
		labels:    labels,
		names:     names,
		numPoints: opts.NumPoints,
		randomize: opts.Randomize,
	}, nil
}

func (m *ModelNet40) Len() int {
	return len(m.clouds)
}

func (m *ModelNet40) Get(rng *rand.Rand, i int) (*cloud.Cloud, int, error) {
	if err := checkIndex(i, len(m.clouds)); err != nil {
		return nil, 0, err
	}
	c := m.clouds[i]
	n := m.numPoints
	if n > c.Len() {
		n = c.Len()
	}
	if m.randomize {
		return c.Select(rng.Perm(n)), m.labels[i], nil
	}
	return c.Head(n), m.labels[i], nil
}

func (m *ModelNet40) Category(label int) (string, error) {
	if m.names == nil {
		return "", ErrCategoryUnsupported
	}
	if label < 0 || label >= len(m.names) {
		return "", fmt.Errorf("%w: %d", ErrLabelOutOfRange, label)
	}
	return m.names[label], nil
}

func readModelNet40Archive(path string, useNormals bool) ([]*cloud.Cloud, []int, error) {
	arrays, err := readNPZ(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := pointsArray(arrays, "data", 3)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	label, err := lookupArray(arrays, "label")
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if label.Int == nil {
		return nil, nil, fmt.Errorf("%s: %w", path, unsupported("label is not integer"))
	}
	m, n := data.Shape[0], data.Shape[1]
	if label.size() != m {
		return nil, nil, fmt.Errorf("%s: %w", path, unsupported("%d labels for %d clouds", label.size(), m))
	}

	var normal *array
	ch := 3
	if useNormals {
		if normal, err = pointsArray(arrays, "normal", 3); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		if normal.Shape[0] != m || normal.Shape[1] != n {
			return nil, nil, fmt.Errorf("%s: %w", path, unsupported("normal shape %v differs from data shape %v", normal.Shape, data.Shape))
		}
		ch = 6
	}

	clouds := make([]*cloud.Cloud, m)
	labels := make([]int, m)
	for i := range clouds {
		c, err := cloud.New(n, ch)
		if err != nil {
			return nil, nil, err
		}
		for j := 0; j < n; j++ {
			p := c.Point(j)
			k := (i*n + j) * 3
			copy(p[:3], data.Float[k:k+3])
			if normal != nil {
				copy(p[3:6], normal.Float[k:k+3])
			}
		}
		clouds[i] = c
		labels[i] = int(label.Int[i])
	}
	return clouds, labels, nil
}

// readShapeNames reads newline separated category names. Line index is the label.
func readShapeNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		names = append(names, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
