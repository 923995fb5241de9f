package cmd

import (
	"fmt"
	"sync"

	"github.com/drshade/linguist/internal/config"
	"github.com/drshade/linguist/internal/definitions"
	"github.com/drshade/linguist/internal/detector"
	"github.com/drshade/linguist/internal/store"
	"github.com/drshade/linguist/internal/vendored"
)

var (
	dirStoreMu sync.Mutex
	dirStores  = map[string]*store.Store{}
)

// loadStore returns the embedded store, or the store built from
// --definitions when set
func loadStore() (*store.Store, error) {
	dir := settings.DefinitionsDir
	if dir == "" {
		return store.Default()
	}

	dirStoreMu.Lock()
	defer dirStoreMu.Unlock()
	if s, ok := dirStores[dir]; ok {
		return s, nil
	}

	ds, err := definitions.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	s, err := store.New(ds, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	dirStores[dir] = s
	return s, nil
}

// vendorClassifier returns the dataset classifier extended with the
// project's vendor patterns
func vendorClassifier(s *store.Store, cfg *config.ProjectConfig) (*vendored.Classifier, error) {
	if cfg == nil || len(cfg.Vendor) == 0 {
		return s.Vendor(), nil
	}
	c, err := s.Vendor().With(cfg.Vendor)
	if err != nil {
		return nil, fmt.Errorf("vendor patterns: %w", err)
	}
	return c, nil
}

// newDetector builds a detector applying the vendor patterns and overrides
// of cfg, which may be nil
func newDetector(cfg *config.ProjectConfig) (*detector.Detector, error) {
	s, err := loadStore()
	if err != nil {
		return nil, err
	}

	vendor, err := vendorClassifier(s, cfg)
	if err != nil {
		return nil, err
	}

	opts := []detector.Option{
		detector.WithVendor(vendor),
		detector.WithClassifier(!settings.NoClassifier),
		detector.WithLogger(logger),
	}
	if cfg != nil && len(cfg.Overrides) > 0 {
		opts = append(opts, detector.WithOverrides(cfg.Overrides))
	}
	return detector.New(s, opts...)
}

// loadProjectConfig reads .linguist.yml or .linguist.toml from dir
func loadProjectConfig(dir string) (*config.ProjectConfig, error) {
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debug("Loaded project config", "path", cfg.Path,
			"exclude", len(cfg.Exclude), "vendor", len(cfg.Vendor), "overrides", len(cfg.Overrides))
	}
	return cfg, nil
}
