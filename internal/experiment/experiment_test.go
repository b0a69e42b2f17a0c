package experiment

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	return Config{
		Clusters:     8,
		Fanals:       4,
		MinOrder:     3,
		MaxOrder:     4,
		MinMessages:  10,
		MaxMessages:  30,
		Steps:        2,
		Unknowns:     1,
		Iterations:   2,
		TargetErrors: 5,
		MinTrials:    2,
		MaxTrials:    4,
		Seed:         42,
		Workers:      1,
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 13333, cfg.StepSize())
	assert.Equal(t, 450000, cfg.Messages(0))
	assert.Equal(t, 450000-30*13333, cfg.Messages(30))
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := smallConfig()
	cfg.Clusters = 1
	cfg.Unknowns = 3
	cfg.Workers = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clusters")
	assert.Contains(t, err.Error(), "unknowns")
	assert.Contains(t, err.Error(), "workers")
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clusters: 50\nsteps: 5\nseed: 9\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Clusters)
	assert.Equal(t, 5, cfg.Steps)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, 64, cfg.Fanals)
	assert.Equal(t, 3, cfg.Unknowns)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fanals: 0\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestRunSweep(t *testing.T) {
	cfg := smallConfig()
	var seen []int
	sw, err := Run(context.Background(), cfg, func(s Step) { seen = append(seen, s.Index) })
	require.NoError(t, err)

	require.Len(t, sw.Steps, 3)
	assert.ElementsMatch(t, []int{0, 1, 2}, seen)
	assert.NotEmpty(t, sw.RunID)

	rows := sw.Rows()
	require.Len(t, rows, 3)
	for i, row := range rows {
		require.Len(t, row, 4)
		assert.Equal(t, float64(i), row[0])
		assert.GreaterOrEqual(t, row[2], 0.0)
		assert.LessOrEqual(t, row[2], 1.0)
		assert.GreaterOrEqual(t, row[3], 0.0)
		assert.LessOrEqual(t, row[3], 1.0)
		if i > 0 {
			assert.Less(t, row[1], rows[i-1][1], "message counts must decrease")
		}
	}
	assert.Equal(t, []float64{30, 20, 10}, []float64{rows[0][1], rows[1][1], rows[2][1]})
	for _, st := range sw.Steps {
		assert.LessOrEqual(t, st.Trials, cfg.MaxTrials)
		assert.Positive(t, st.Recalls)
	}
}

func TestRunIsIndependentOfWorkers(t *testing.T) {
	cfg := smallConfig()
	one, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	cfg.Workers = 3
	three, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, one.Steps, three.Steps)
}

func TestRunStopsEarlyWithoutBlindErrors(t *testing.T) {
	cfg := Config{
		Clusters:     16,
		Fanals:       32,
		MinOrder:     4,
		MaxOrder:     4,
		MinMessages:  1,
		MaxMessages:  1,
		Steps:        0,
		Unknowns:     1,
		Iterations:   4,
		TargetErrors: 1,
		MinTrials:    3,
		Workers:      1,
	}
	sw, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, sw.Steps, 1)

	st := sw.Steps[0]
	assert.Equal(t, 4, st.Trials)
	assert.Equal(t, 4, st.Recalls)
	assert.Zero(t, st.GuidedErrors)
	assert.Zero(t, st.BlindErrors)
	assert.Equal(t, [][]float64{{0, 1, 0, 0}}, sw.Rows())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, smallConfig(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Iterations = 0
	_, err := Run(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestProgressPrinterGroupsDigits(t *testing.T) {
	var buf bytes.Buffer
	p := ProgressPrinter(&buf, 31)
	p(Step{Index: 0, Messages: 450000, Trials: 2, Recalls: 1200, GuidedErrors: 100, BlindErrors: 600})

	out := buf.String()
	assert.Contains(t, out, "[1/31] step 0")
	assert.Contains(t, out, "450,000 messages")
	assert.Contains(t, out, "1,200 recalls")
	assert.Contains(t, out, "pe_blind 0.5000")
}
