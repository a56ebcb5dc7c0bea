package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ConnectorStore = (*Store)(nil)

// FileName is the configuration file name inside the config directory.
const FileName = "config.toml"

// Store holds the parsed configuration file.
// It serves connector records and can reload itself when the file changes.
type Store struct {
	mu       sync.RWMutex
	filePath string
	config   Config
	records  map[string]domain.Connector
}

// NewStore loads the configuration from configDir.
// If configDir is empty, defaults to ~/.hub. A missing file yields an
// empty configuration.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".hub")
	}

	s := &Store{
		filePath: filepath.Join(configDir, FileName),
		records:  make(map[string]domain.Connector),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Load reads and validates the configuration file. On error the previous
// configuration stays in effect.
func (s *Store) Load() error {
	cfg, err := readConfig(s.filePath)
	if err != nil {
		return err
	}

	records := make(map[string]domain.Connector, len(cfg.Connectors))
	for _, c := range cfg.ConnectorRecords() {
		records[c.ID] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.records = records
	return nil
}

func readConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file yet - that's fine, start empty
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Get retrieves a connector by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Connector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	connector, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &connector, nil
}

// List returns all connectors in file order.
func (s *Store) List(_ context.Context) ([]domain.Connector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Connector, 0, len(s.config.Connectors))
	for _, c := range s.config.Connectors {
		result = append(result, s.records[c.ID])
	}
	return result, nil
}

// Watch reloads the configuration whenever the file changes and calls
// onChange with the new version. Invalid edits are logged and ignored.
// The watch ends when ctx is done or the returned function is called.
func (s *Store) Watch(ctx context.Context, onChange func(Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(s.filePath), err)
	}

	// Debounce bursts of write events from a single save.
	debounced := debounce.New(100 * time.Millisecond)
	reload := func() {
		if err := s.Load(); err != nil {
			logger.Warn("config reload failed, keeping previous configuration: %v", err)
			return
		}
		logger.Info("configuration reloaded from %s", s.filePath)
		if onChange != nil {
			onChange(s.Config())
		}
	}

	var once sync.Once
	stop := func() { once.Do(func() { _ = watcher.Close() }) }

	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					debounced(reload)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher: %v", err)
			}
		}
	}()

	return stop, nil
}
