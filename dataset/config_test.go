package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(`
modelnet40:
  root: /data/modelnet40
  unseen: true
registration:
  partial_source: true
  magnitude: 0.5
sceneflow:
  partition: test
loader:
  batch_size: 8
  seed: 42
`))
	require.NoError(t, err)

	want := DefaultConfig()
	want.ModelNet40.Root = "/data/modelnet40"
	want.ModelNet40.Unseen = true
	want.Registration.PartialSource = true
	want.Registration.Magnitude = 0.5
	want.SceneFlow.Partition = "test"
	want.Loader.BatchSize = 8
	want.Loader.Seed = 42
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}

	m := c.ModelNet40Options()
	require.Equal(t, 1024, m.NumPoints)
	require.True(t, m.Train)
	r := c.RegistrationOptions()
	require.Equal(t, 768, r.SubsamplePoints)
	require.True(t, r.RandomizeMagnitude)
	s := c.SceneFlowOptions()
	require.Equal(t, DefaultSceneFlowCacheSize, s.CacheSize)
}

func TestParseConfigErrors(t *testing.T) {
	testCases := map[string]string{
		"Syntax":          "modelnet40: [",
		"NumPoints":       "modelnet40: {num_points: 0}",
		"SubsamplePoints": "registration: {partial_source: true, subsample_points: -1}",
		"NPoints":         "sceneflow: {npoints: 0}",
		"Partition":       "sceneflow: {partition: valid}",
		"Workers":         "loader: {workers: 0}",
	}
	for name, in := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(in))
			require.Error(t, err)
			if name != "Syntax" {
				require.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sceneflow:\n  npoints: 2048\n"), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2048, c.SceneFlow.NPoints)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
