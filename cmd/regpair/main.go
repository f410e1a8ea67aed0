// Command regpair writes registration pairs as PCD files.
//
// Pairs are generated either from a single PCD file or from the ModelNet40
// archives configured in the YAML file.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/filter/voxelgrid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/seqsense/pclearn/cloud"
	"github.com/seqsense/pclearn/dataset"
	"github.com/seqsense/pclearn/loader"
)

type pairInfo struct {
	Run         string        `yaml:"run"`
	Index       int           `yaml:"index"`
	Label       int           `yaml:"label"`
	GroundTruth [4][4]float32 `yaml:"ground_truth"`
	Overlap     int           `yaml:"overlap"`
	Mask        []float32     `yaml:"mask,flow"`
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		input      = flag.String("in", "", "input PCD file; ModelNet40 from config is used if empty")
		outDir     = flag.String("out", ".", "output directory")
		count      = flag.Int("n", 1, "number of pairs to write")
		anyData    = flag.Bool("any", false, "use PCD input as any-data source with fixed magnitude 0.5")
		partial    = flag.Bool("partial", false, "partial source for any-data mode")
		normals    = flag.Bool("normals", false, "read normals from input")
		voxel      = flag.Float64("voxel", 0, "voxel grid resolution applied to input; disabled if zero")
		check      = flag.Bool("verify", false, "register each pair by ICP and log the error")
		metrics    = flag.String("metrics", "", "address to serve prometheus metrics on, e.g. :9090")
		debug      = flag.Bool("debug", false, "enable debug log")
	)
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	runID := uuid.New().String()
	logger = logger.With(zap.String("run", runID))

	reg := prometheus.NewRegistry()
	if *metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metrics, mux); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	o := options{
		configPath: *configPath,
		input:      *input,
		outDir:     *outDir,
		count:      *count,
		anyData:    *anyData,
		partial:    *partial,
		normals:    *normals,
		voxel:      float32(*voxel),
		verify:     *check,
		runID:      runID,
		metrics:    loader.NewMetrics(reg, "regpair"),
	}
	if err := run(logger, o); err != nil {
		logger.Fatal("failed to write pairs", zap.Error(err))
	}
}

type options struct {
	configPath string
	input      string
	outDir     string
	count      int
	anyData    bool
	partial    bool
	normals    bool
	voxel      float32
	verify     bool
	runID      string
	metrics    *loader.Metrics
}

func run(logger *zap.Logger, o options) error {
	cfg := dataset.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = dataset.LoadConfig(o.configPath); err != nil {
			return err
		}
	}

	ds, err := newDataset(logger, cfg, o)
	if err != nil {
		return err
	}
	count := min(o.count, ds.Len())

	opts := cfg.Loader
	l, err := loader.New[*dataset.Sample](&limited{Dataset: ds, n: count}, opts, loader.WithLogger(logger), loader.WithMetrics(o.metrics))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.outDir, 0755); err != nil {
		return err
	}
	return l.Epoch(context.Background(), 0, func(b loader.Batch[*dataset.Sample]) error {
		for j, i := range b.Indice {
			if err := writePair(o.outDir, o.runID, i, b.Samples[j]); err != nil {
				return err
			}
			logger.Info("pair written", zap.Int("index", i))
			if o.verify {
				if err := verify(logger, i, b.Samples[j]); err != nil {
					logger.Warn("failed to verify pair", zap.Int("index", i), zap.Error(err))
				}
			}
		}
		return nil
	})
}

func newDataset(logger *zap.Logger, cfg *dataset.Config, o options) (loader.Dataset[*dataset.Sample], error) {
	if o.input == "" {
		if o.anyData {
			return nil, fmt.Errorf("-any requires -in")
		}
		opts := cfg.ModelNet40Options()
		opts.UseNormals = opts.UseNormals || o.normals
		src, err := dataset.LoadModelNet40(opts, dataset.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return dataset.NewRegistration(src, cfg.RegistrationOptions(), dataset.WithLogger(logger))
	}

	c, err := readInput(o.input, o.normals, o.voxel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.input, err)
	}
	logger.Info("point cloud loaded", zap.String("path", o.input), zap.Int("points", c.Len()))

	if o.anyData {
		return dataset.NewAnyData(c, o.partial, dataset.DefaultAnyDataRepeat, dataset.WithLogger(logger))
	}
	mopts := cfg.ModelNet40Options()
	mopts.NumPoints = c.Len()
	mopts.Unseen = false
	src, err := dataset.NewModelNet40([]*cloud.Cloud{c}, []int{0}, nil, mopts, dataset.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return dataset.NewRegistration(&repeated{PointSource: src, n: dataset.DefaultAnyDataRepeat}, cfg.RegistrationOptions(), dataset.WithLogger(logger))
}

func readInput(path string, normals bool, resolution float32) (*cloud.Cloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pp, err := pc.Unmarshal(f)
	if err != nil {
		return nil, err
	}
	if resolution > 0 {
		vg := voxelgrid.New(mat.Vec3{resolution, resolution, resolution})
		if pp, err = vg.Filter(pp); err != nil {
			return nil, err
		}
	}
	return cloud.FromPointCloud(pp, normals)
}

// repeated serves the single cloud of the source n times.
type repeated struct {
	dataset.PointSource
	n int
}

func (r *repeated) Len() int { return r.n }

func (r *repeated) Get(rng *rand.Rand, i int) (*cloud.Cloud, int, error) {
	if i < 0 || i >= r.n {
		return nil, 0, dataset.ErrIndexOutOfRange
	}
	return r.PointSource.Get(rng, 0)
}

// limited truncates the dataset to the first n samples.
type limited struct {
	loader.Dataset[*dataset.Sample]
	n int
}

func (l *limited) Len() int { return l.n }

func writePair(dir, runID string, i int, s *dataset.Sample) error {
	for name, c := range map[string]*cloud.Cloud{
		"template": s.Template,
		"source":   s.Source,
	} {
		if err := writePCD(filepath.Join(dir, fmt.Sprintf("%s_%04d.pcd", name, i)), c); err != nil {
			return err
		}
	}

	info := pairInfo{
		Run:     runID,
		Index:   i,
		Label:   s.Label,
		Overlap: s.Mask.Count(),
		Mask:    s.Mask,
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			info.GroundTruth[row][col] = s.GroundTruth[col*4+row]
		}
	}
	b, err := yaml.Marshal(&info)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fmt.Sprintf("pair_%04d.yaml", i)), b, 0644)
}

func writePCD(path string, c *cloud.Cloud) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.WritePCD(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
