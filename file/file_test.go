package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/CK6170/Sammon-go/models"
	"github.com/CK6170/Sammon-go/sammon"
)

func TestDecodeDataset_JSONKeepsDefaults(t *testing.T) {
	raw := []byte(`{"X": [[0,0],[1,0],[0,1]], "LABELS": ["a","b","c"], "OPTIONS": {"maxiter": 50, "init": "random", "seed": 3}}`)
	ds, err := DecodeDataset(raw, "points.json")
	require.NoError(t, err)

	assert.Len(t, ds.X, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ds.LABELS)
	assert.Equal(t, 50, ds.OPTIONS.MaxIter)
	assert.Equal(t, sammon.InitRandom, ds.OPTIONS.Init)
	assert.Equal(t, uint64(3), ds.OPTIONS.Seed)
	assert.Equal(t, 2, ds.OPTIONS.Dims)
	assert.Equal(t, 20, ds.OPTIONS.MaxHalves)
	assert.Equal(t, 1e-9, ds.OPTIONS.TolFun)
}

func TestDecodeDataset_YAML(t *testing.T) {
	raw := []byte(`
X:
  - [0, 2, 3]
  - [2, 0, 4]
  - [3, 4, 0]
OPTIONS:
  input: distance
  display: 0
`)
	ds, err := DecodeDataset(raw, "d.yml")
	require.NoError(t, err)
	assert.Equal(t, sammon.InputDistance, ds.OPTIONS.Input)
	assert.Equal(t, 0, ds.OPTIONS.Display)
	assert.Equal(t, 500, ds.OPTIONS.MaxIter)
	assert.Equal(t, 3.0, ds.X[0][2])
}

func TestDecodeDataset_CSV(t *testing.T) {
	t.Run("header", func(t *testing.T) {
		ds, err := DecodeDataset([]byte("x,y\n0,0\n1,0\n# comment\n0,1\n"), "p.csv")
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {0, 1}}, ds.X)
		assert.Empty(t, ds.LABELS)
	})
	t.Run("labels", func(t *testing.T) {
		ds, err := DecodeDataset([]byte("name,x,y\nfoo,0,0\nbar,1,0\n"), "p.csv")
		require.NoError(t, err)
		assert.Equal(t, []string{"foo", "bar"}, ds.LABELS)
		assert.Equal(t, [][]float64{{0, 0}, {1, 0}}, ds.X)
	})
	t.Run("bad cell", func(t *testing.T) {
		_, err := DecodeDataset([]byte("0,0\n1,zz\n"), "p.csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func TestDecodeDataset_Errors(t *testing.T) {
	_, err := DecodeDataset([]byte("{}"), "p.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DecodeDataset([]byte(`{"X": []}`), "p.json")
	require.Error(t, err)

	_, err = DecodeDataset([]byte(`{"X": [[0],[1]], "LABELS": ["a"]}`), "p.json")
	require.Error(t, err)
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dims: 3\ntolfun: 1e-6\n"), 0644))

	opts, err := LoadOptions(path, sammon.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Dims)
	assert.Equal(t, 1e-6, opts.TolFun)
	assert.Equal(t, sammon.InitPCA, opts.Init)

	_, err = LoadOptions(filepath.Join(dir, "missing.yaml"), sammon.DefaultOptions())
	require.Error(t, err)
}

func TestSaveAndLoadResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	in := &models.RESULT{
		Y:           [][]float64{{0, 1}, {1, 0}},
		STRESS:      0.01,
		ITERATIONS:  7,
		TERMINATION: "converged",
		OPTIONS:     sammon.DefaultOptions(),
	}
	require.NoError(t, SaveResult(path, in, "1.2.3", "42"))

	out, err := LoadResult(path)
	require.NoError(t, err)
	assert.Equal(t, in.Y, out.Y)
	assert.Equal(t, 7, out.ITERATIONS)

	ver, err := os.ReadFile(filepath.Join(dir, "out.version"))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3 42\n", string(ver))
}

func TestAppendToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.log")
	AppendToFile(path, "a")
	AppendToFile(path, "b")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", ""}, strings.Split(string(b), "\n"))
}
