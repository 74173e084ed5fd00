package methodology

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_AddGet(t *testing.T) {
	t.Parallel()
	lib := NewLibrary(nil)
	require.NoError(t, lib.Add(testConfig()))
	assert.Equal(t, 1, lib.Len())

	got, err := lib.Get("test-method", "1.0")
	require.NoError(t, err)
	assert.Equal(t, "test-method", got.ID)

	// Mutating the returned copy must not reach the cached version.
	got.KPIs[0].Weight = 0.99
	again, err := lib.Get("test-method", "1.0")
	require.NoError(t, err)
	assert.Equal(t, 0.6, again.KPIs[0].Weight)
}

func TestLibrary_AddDuplicate(t *testing.T) {
	t.Parallel()
	lib := NewLibrary(nil)
	require.NoError(t, lib.Add(testConfig()))
	err := lib.Add(testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already loaded")
}

func TestLibrary_AddEquivalentVersion(t *testing.T) {
	t.Parallel()
	lib := NewLibrary(nil)
	cfg := testConfig()
	cfg.Version = "1"
	require.NoError(t, lib.Add(cfg))

	err := lib.Add(testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already loaded as test-method@1")
	assert.Equal(t, 1, lib.Len())

	for i := 0; i < 50; i++ {
		latest, err := lib.Resolve("test-method", "")
		require.NoError(t, err)
		assert.Equal(t, "1", latest.Version)
	}
}

func TestLibrary_LatestSkipsDisabled(t *testing.T) {
	t.Parallel()
	lib := NewLibrary(nil)
	require.NoError(t, lib.Add(testConfig()))
	retired := testConfig()
	retired.Version = "2.0"
	retired.Enabled = ptr(false)
	require.NoError(t, lib.Add(retired))

	latest, err := lib.Latest("test-method")
	require.NoError(t, err)
	assert.Equal(t, "1.0", latest.Version)

	got, err := lib.Get("test-method", "2.0")
	require.NoError(t, err)
	assert.False(t, got.IsEnabled())

	only := NewLibrary(nil)
	require.NoError(t, only.Add(retired))
	_, err = only.Latest("test-method")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLibrary_AddInvalid(t *testing.T) {
	t.Parallel()
	lib := NewLibrary(nil)
	cfg := testConfig()
	cfg.RealizationCurve = nil
	err := lib.Add(cfg)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, 0, lib.Len())
}

func TestLibrary_NotFound(t *testing.T) {
	t.Parallel()
	lib := NewLibrary(nil)
	_, err := lib.Get("nope", "1.0")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = lib.Latest("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLibrary_LatestAndList(t *testing.T) {
	t.Parallel()
	lib := NewLibrary(nil)
	for _, v := range []string{"1.0", "1.10", "1.9", "2"} {
		cfg := testConfig()
		cfg.Version = v
		require.NoError(t, lib.Add(cfg))
	}
	other := testConfig()
	other.ID = "another"
	require.NoError(t, lib.Add(other))

	latest, err := lib.Latest("test-method")
	require.NoError(t, err)
	assert.Equal(t, "2", latest.Version)

	resolved, err := lib.Resolve("test-method", "1.9")
	require.NoError(t, err)
	assert.Equal(t, "1.9", resolved.Version)

	resolved, err = lib.Resolve("test-method", "")
	require.NoError(t, err)
	assert.Equal(t, "2", resolved.Version)

	assert.Equal(t, []Key{
		{ID: "another", Version: "1.0"},
		{ID: "test-method", Version: "1.0"},
		{ID: "test-method", Version: "1.9"},
		{ID: "test-method", Version: "1.10"},
		{ID: "test-method", Version: "2"},
	}, lib.List())
}

func TestLibrary_LoadDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(testYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(testJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	lib := NewLibrary(nil)
	n, err := lib.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = lib.Get("yaml-method", "2.1")
	assert.NoError(t, err)
	_, err = lib.Get("json-method", "1.0")
	assert.NoError(t, err)
}

func TestLibrary_LoadDirInvalidFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"id": "bad", "version": "1"}`), 0o644))

	lib := NewLibrary(nil)
	_, err := lib.LoadDir(dir)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = lib.LoadDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLibrary_ConcurrentReads(t *testing.T) {
	t.Parallel()
	lib, err := NewDefaultLibrary(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := lib.Latest(DefaultID)
			assert.NoError(t, err)
			cfg.KPIs[0].Weight = 0
		}()
	}
	wg.Wait()

	cfg, err := lib.Latest(DefaultID)
	require.NoError(t, err)
	assert.Equal(t, 0.30, cfg.KPIs[0].Weight)
}

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, DefaultID, cfg.ID)
	assert.NoError(t, Validate(cfg, nil))
}

func TestCompareVersions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1", "1.0", 0},
		{"1.9", "1.10", -1},
		{"2", "1.10", 1},
		{"1.0.1", "1.0", 1},
		{"1.0-beta", "1.0-alpha", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
