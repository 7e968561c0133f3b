package metrics

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnergy(t *testing.T, path string, uj uint64) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strconv.FormatUint(uj, 10)+"\n"), 0o644))
}

func TestRaplCounter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "energy_uj")

	r := &raplCounter{path: path, maxWatts: maxCPUWatts}
	base := time.Now()

	// First sample only primes the counter
	writeEnergy(t, path, 1_000_000)
	reading := r.sample(base)
	assert.False(t, reading.Ok())
	assert.Equal(t, "Warmup", reading.Note)

	// 2 J over 1 s is 2 W
	writeEnergy(t, path, 3_000_000)
	reading = r.sample(base.Add(time.Second))
	require.True(t, reading.Ok())
	assert.InDelta(t, 2.0, reading.Value, 0.001)

	// Counter decreased: reset, not a negative rate
	writeEnergy(t, path, 500_000)
	reading = r.sample(base.Add(2 * time.Second))
	assert.False(t, reading.Ok())
	assert.Equal(t, "Reset", reading.Note)

	// Recovers on the next delta
	writeEnergy(t, path, 1_500_000)
	reading = r.sample(base.Add(3 * time.Second))
	require.True(t, reading.Ok())
	assert.InDelta(t, 1.0, reading.Value, 0.001)
}

func TestRaplCounterOutlier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "energy_uj")

	r := &raplCounter{path: path, maxWatts: maxGPUWatts}
	base := time.Now()

	writeEnergy(t, path, 0)
	r.sample(base)

	// 10 kJ in one second is firmware garbage, not a laptop iGPU
	writeEnergy(t, path, 10_000_000_000)
	reading := r.sample(base.Add(time.Second))
	assert.False(t, reading.Ok())
	assert.Equal(t, "Outlier", reading.Note)
}

func TestRaplCounterStaleWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "energy_uj")

	r := &raplCounter{path: path, maxWatts: maxCPUWatts}
	base := time.Now()

	writeEnergy(t, path, 1_000_000)
	r.sample(base)

	// A delta across a suspend gap is meaningless
	writeEnergy(t, path, 2_000_000)
	reading := r.sample(base.Add(30 * time.Second))
	assert.False(t, reading.Ok())
	assert.Equal(t, "Warmup", reading.Note)
}

func TestRaplCounterUnavailable(t *testing.T) {
	r := &raplCounter{maxWatts: maxCPUWatts}
	reading := r.sample(time.Now())
	assert.False(t, reading.Ok())
	assert.Equal(t, "No RAPL", reading.Note)

	r = &raplCounter{path: "/does/not/exist", maxWatts: maxCPUWatts}
	reading = r.sample(time.Now())
	assert.False(t, reading.Ok())
	assert.Equal(t, "Unreadable", reading.Note)
}

func TestDetectGPURaplPath(t *testing.T) {
	dir := t.TempDir()

	// Domain named for the iGPU at the top level
	gfx := filepath.Join(dir, "intel-rapl:0:0")
	require.NoError(t, os.MkdirAll(gfx, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gfx, "name"), []byte("gfx\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(gfx, "energy_uj"), []byte("12345\n"), 0o644))

	assert.Equal(t, filepath.Join(gfx, "energy_uj"), detectGPURaplPath(dir))
}

func TestDetectGPURaplPathNested(t *testing.T) {
	dir := t.TempDir()

	// Parent package domain does not match; its uncore subzone does
	pkg := filepath.Join(dir, "intel-rapl:0")
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "name"), []byte("package-0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "energy_uj"), []byte("1\n"), 0o644))

	uncore := filepath.Join(pkg, "intel-rapl:0:1")
	require.NoError(t, os.MkdirAll(uncore, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(uncore, "name"), []byte("uncore\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(uncore, "energy_uj"), []byte("2\n"), 0o644))

	assert.Equal(t, filepath.Join(uncore, "energy_uj"), detectGPURaplPath(dir))
}
