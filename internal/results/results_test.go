package results

import (
	"bytes"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDropsHeader(t *testing.T) {
	in := "step,messages,guided,blind\n" +
		"0,10,0.1,0.2\n" +
		"1,5,0.2,0.3\n" +
		"2,1,0.3,0.4\n"

	m, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 4, m.Width())
	assert.Equal(t, []float64{10, 5, 1}, m.Col(ColMessages))
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, m.Col(ColGuided))
	assert.Equal(t, []float64{0.2, 0.3, 0.4}, m.Col(ColBlind))
	assert.Equal(t, 1.0, m.At(1, ColStep))
}

func TestReadKeepsExtraColumns(t *testing.T) {
	m, err := Read(strings.NewReader("a,b,c,d,e\n1,2,3,4,5\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 5, m.Width())
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, m.Row(0))
}

func TestReadNonNumericCellsAreNaN(t *testing.T) {
	m, err := Read(strings.NewReader("h1,h2\n1,\nx, 2.5\n"))
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.True(t, math.IsNaN(m.At(0, 1)))
	assert.True(t, math.IsNaN(m.At(1, 0)))
	assert.Equal(t, 2.5, m.At(1, 1))
}

func TestReadRaggedRowsFail(t *testing.T) {
	_, err := Read(strings.NewReader("a,b,c\n1,2,3\n4,5\n"))
	assert.Error(t, err)
}

func TestReadHeaderOnly(t *testing.T) {
	m, err := Read(strings.NewReader("a,b,c,d\n"))
	require.NoError(t, err)
	assert.Zero(t, m.Len())
	assert.Zero(t, m.Width())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "results.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadNamesFileOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestNewMatrixRejectsRagged(t *testing.T) {
	_, err := NewMatrix([][]float64{{1, 2}, {3}})
	assert.Error(t, err)

	m, err := NewMatrix(nil)
	require.NoError(t, err)
	assert.Zero(t, m.Len())
}

func TestWriteGolden(t *testing.T) {
	rows := [][]float64{
		{0, 450000, 0.125, 0.5},
		{1, 436667, 0.0625, 0.25},
		{2, 1000000, 0, 0.00001},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Header, rows))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sweep", buf.Bytes())
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	rows := [][]float64{{0, 20, 0.5, 0.75}, {1, 10, 0.25, 0.5}}

	require.NoError(t, WriteFile(path, Header, rows))
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rows[0], m.Row(0))
	assert.Equal(t, rows[1], m.Row(1))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}
