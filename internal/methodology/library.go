package methodology

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/kpi"
)

// ErrNotFound is returned when no methodology matches the requested key.
var ErrNotFound = errors.New("methodology: not found")

// Library holds validated methodologies keyed by (id, version). Returned
// configs are copies, so the cached versions stay immutable.
type Library struct {
	mu      sync.RWMutex
	reg     *kpi.Registry
	configs map[Key]*Config
}

// NewLibrary creates an empty library validating against reg (nil means the
// built-in registry).
func NewLibrary(reg *kpi.Registry) *Library {
	if reg == nil {
		reg = kpi.Default()
	}
	return &Library{reg: reg, configs: make(map[Key]*Config)}
}

// NewDefaultLibrary returns a library preloaded with the embedded
// methodologies.
func NewDefaultLibrary(reg *kpi.Registry) (*Library, error) {
	lib := NewLibrary(reg)
	cfgs, err := Defaults()
	if err != nil {
		return nil, err
	}
	for _, cfg := range cfgs {
		if err := lib.Add(cfg); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// Add validates cfg and stores a copy. Re-adding an existing (id, version)
// is an error: versions are immutable once published. Versions that order
// equally ("1" and "1.0") count as the same version.
func (l *Library) Add(cfg *Config) error {
	if err := Validate(cfg, l.reg); err != nil {
		return err
	}
	key := cfg.Key()

	l.mu.Lock()
	defer l.mu.Unlock()
	for existing := range l.configs {
		if existing.ID == key.ID && CompareVersions(existing.Version, key.Version) == 0 {
			if existing.Version == key.Version {
				return eris.Errorf("methodology: %s already loaded", key)
			}
			return eris.Errorf("methodology: %s already loaded as %s", key, existing)
		}
	}
	l.configs[key] = cfg.Clone()
	return nil
}

// LoadDir adds every *.json, *.yaml and *.yml file in dir. It returns the
// number of methodologies added.
func (l *Library) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, eris.Wrapf(err, "methodology: read dir %s", dir)
	}
	var n int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, err := FormatFromPath(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			return n, err
		}
		if err := l.Add(cfg); err != nil {
			return n, eris.Wrapf(err, "methodology: add %s", path)
		}
		zap.L().Debug("methodology: loaded",
			zap.String("key", cfg.Key().String()),
			zap.String("path", path),
		)
		n++
	}
	return n, nil
}

// Get returns a copy of the exact (id, version).
func (l *Library) Get(id, version string) (*Config, error) {
	key := Key{ID: id, Version: version}
	l.mu.RLock()
	cfg, ok := l.configs[key]
	l.mu.RUnlock()
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "methodology: get %s", key)
	}
	return cfg.Clone(), nil
}

// Latest returns a copy of the highest enabled version of id. Disabled
// versions stay reachable through Get.
func (l *Library) Latest(id string) (*Config, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var best *Config
	for key, cfg := range l.configs {
		if key.ID != id || !cfg.IsEnabled() {
			continue
		}
		if best == nil {
			best = cfg
			continue
		}
		c := CompareVersions(cfg.Version, best.Version)
		if c > 0 || (c == 0 && strings.Compare(cfg.Version, best.Version) > 0) {
			best = cfg
		}
	}
	if best == nil {
		return nil, eris.Wrapf(ErrNotFound, "methodology: latest %s", id)
	}
	return best.Clone(), nil
}

// Resolve returns the exact version when one is given, otherwise the latest.
func (l *Library) Resolve(id, version string) (*Config, error) {
	if version == "" {
		return l.Latest(id)
	}
	return l.Get(id, version)
}

// List returns every key ordered by id, then version ascending.
func (l *Library) List() []Key {
	l.mu.RLock()
	keys := make([]Key, 0, len(l.configs))
	for k := range l.configs {
		keys = append(keys, k)
	}
	l.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ID != keys[j].ID {
			return keys[i].ID < keys[j].ID
		}
		return CompareVersions(keys[i].Version, keys[j].Version) < 0
	})
	return keys
}

// Len returns the number of loaded methodologies.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.configs)
}

// CompareVersions orders dotted versions segment by segment. Numeric
// segments compare numerically; anything else falls back to string order.
// Missing trailing segments count as zero, so "1" == "1.0".
func CompareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		x, y := segment(as, i), segment(bs, i)
		xi, xerr := strconv.Atoi(x)
		yi, yerr := strconv.Atoi(y)
		if xerr == nil && yerr == nil {
			if xi != yi {
				if xi < yi {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(x, y); c != 0 {
			return c
		}
	}
	return 0
}

func segment(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return "0"
}

var (
	defaultOnce sync.Once
	defaultCfg  *Config
	defaultErr  error
)

// Default returns a copy of the embedded experience-transformation-design
// methodology, validated against the built-in registry.
func Default() (*Config, error) {
	defaultOnce.Do(func() {
		lib, err := NewDefaultLibrary(nil)
		if err != nil {
			defaultErr = err
			return
		}
		defaultCfg, defaultErr = lib.Latest(DefaultID)
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultCfg.Clone(), nil
}
