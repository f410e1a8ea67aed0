package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seqsense/pclearn/loader"
)

// Config is a YAML description of the datasets.
type Config struct {
	ModelNet40   ModelNet40Config   `yaml:"modelnet40"`
	Registration RegistrationConfig `yaml:"registration"`
	SceneFlow    SceneFlowConfig    `yaml:"sceneflow"`
	Loader       loader.Options     `yaml:"loader"`
}

type ModelNet40Config struct {
	Root       string `yaml:"root"`
	Train      bool   `yaml:"train"`
	NumPoints  int    `yaml:"num_points"`
	Randomize  bool   `yaml:"randomize_data"`
	Unseen     bool   `yaml:"unseen"`
	UseNormals bool   `yaml:"use_normals"`
}

type RegistrationConfig struct {
	PartialSource      bool    `yaml:"partial_source"`
	Noise              bool    `yaml:"noise"`
	Outliers           bool    `yaml:"outliers"`
	Magnitude          float64 `yaml:"magnitude"`
	RandomizeMagnitude bool    `yaml:"randomize_magnitude"`
	SubsamplePoints    int     `yaml:"subsample_points"`
	Clip               float64 `yaml:"clip"`
}

type SceneFlowConfig struct {
	Root      string `yaml:"root"`
	NPoints   int    `yaml:"npoints"`
	Partition string `yaml:"partition"`
	CacheSize int    `yaml:"cache_size"`
}

func DefaultConfig() *Config {
	m := DefaultModelNet40Options()
	r := DefaultRegistrationOptions()
	s := DefaultSceneFlowOptions()
	return &Config{
		ModelNet40: ModelNet40Config{
			Train:     m.Train,
			NumPoints: m.NumPoints,
		},
		Registration: RegistrationConfig{
			Magnitude:          r.Magnitude,
			RandomizeMagnitude: r.RandomizeMagnitude,
			SubsamplePoints:    r.SubsamplePoints,
			Clip:               r.Clip,
		},
		SceneFlow: SceneFlowConfig{
			NPoints:   s.NPoints,
			Partition: s.Partition,
			CacheSize: s.CacheSize,
		},
		Loader: loader.DefaultOptions(),
	}
}

// LoadConfig reads YAML file. Omitted fields keep default values.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

func ParseConfig(b []byte) (*Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.ModelNet40.NumPoints <= 0 {
		return invalid("modelnet40.num_points", "must be positive, got %d", c.ModelNet40.NumPoints)
	}
	if err := c.RegistrationOptions().validate(); err != nil {
		return err
	}
	if c.SceneFlow.NPoints <= 0 {
		return invalid("sceneflow.npoints", "must be positive, got %d", c.SceneFlow.NPoints)
	}
	switch c.SceneFlow.Partition {
	case "train", "test":
	default:
		return invalid("sceneflow.partition", "must be train or test, got %q", c.SceneFlow.Partition)
	}
	if err := c.Loader.Validate(); err != nil {
		return &ValidationError{Field: "loader", Message: err.Error()}
	}
	return nil
}

func (c *Config) ModelNet40Options() ModelNet40Options {
	return ModelNet40Options(c.ModelNet40)
}

func (c *Config) RegistrationOptions() RegistrationOptions {
	return RegistrationOptions(c.Registration)
}

func (c *Config) SceneFlowOptions() SceneFlowOptions {
	return SceneFlowOptions(c.SceneFlow)
}
