package levels

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/pushbox/game/engine"
	"github.com/wricardo/mcp-training/pushbox/game/service"
)

var (
	ErrLevelNotFound = service.ErrLevelNotFound
	ErrInvalidLevel  = service.ErrInvalidLevel
)

// DefaultLevelID is preferred as the default level when a file with that
// name exists. It also names the built-in level used when the directory has
// no valid level at all.
const DefaultLevelID = "classic"

// Extensions lists the level file extensions in lookup order
var Extensions = []string{".json", ".yaml", ".yml"}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Manager handles level loading and caching
type Manager struct {
	levelDir     string
	defaultLevel *engine.Level
	defaultID    string
	levels       map[string]*engine.Level
	mu           sync.RWMutex
}

var _ service.LevelManager = (*Manager)(nil)

// NewManager creates a new level manager over levelDir
func NewManager(levelDir string) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, errors.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir: levelDir,
		levels:   make(map[string]*engine.Level),
	}
	m.loadDefaultLevel()

	return m, nil
}

// Dir returns the directory the manager reads from
func (m *Manager) Dir() string {
	return m.levelDir
}

// Load loads a level by id. The id is the file name with or without its
// extension.
func (m *Manager) Load(name string) (*engine.Level, error) {
	id := LevelID(name)

	m.mu.RLock()
	if level, exists := m.levels[id]; exists {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, exists := m.levels[id]; exists {
		return level, nil
	}

	path, err := m.find(name)
	if err != nil {
		if errors.Is(err, ErrLevelNotFound) && id == DefaultLevelID {
			level := engine.DefaultLevel()
			m.levels[id] = level
			return level, nil
		}
		return nil, err
	}

	level, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	m.levels[id] = level
	return level, nil
}

// List returns information about every valid level in the directory.
// Invalid files are skipped.
func (m *Manager) List() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read level directory")
	}

	var infos []*service.LevelInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !IsLevelFile(entry.Name()) {
			continue
		}
		id := LevelID(entry.Name())
		if seen[id] {
			continue
		}
		seen[id] = true

		level, err := m.Load(id)
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("Skipping invalid level")
			continue
		}

		info, err := Describe(entry.Name(), level)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// Default returns the default level
func (m *Manager) Default() *engine.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// DefaultID returns the id of the default level
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default level by id
func (m *Manager) SetDefault(name string) error {
	level, err := m.Load(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = level
	m.defaultID = LevelID(name)
	return nil
}

// Refresh drops the cache and picks the default level again
func (m *Manager) Refresh() {
	m.mu.Lock()
	m.levels = make(map[string]*engine.Level)
	m.mu.Unlock()

	m.loadDefaultLevel()
}

// Save validates a level and writes it as JSON
func (m *Manager) Save(name string, level *engine.Level) error {
	if err := engine.ValidateLevel(level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	id := LevelID(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: bad level id %q", ErrInvalidLevel, name)
	}

	data, err := json.MarshalIndent(level, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal level")
	}

	path := filepath.Join(m.levelDir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write level file")
	}

	m.mu.Lock()
	m.levels[id] = level
	m.mu.Unlock()

	log.Info().Str("level", id).Str("path", path).Msg("Level saved")
	return nil
}

// Watch refreshes the cache whenever a level file in the directory is
// created, written, removed or renamed. It blocks until ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create level watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(m.levelDir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", m.levelDir)
	}

	log.Info().Str("dir", m.levelDir).Msg("Watching level directory")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsLevelFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			log.Info().Str("file", filepath.Base(event.Name)).Str("op", event.Op.String()).Msg("Level files changed, reloading")
			m.Refresh()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Level watcher error")
		}
	}
}

// loadDefaultLevel prefers classic, then the first valid level in the
// directory, then the built-in level
func (m *Manager) loadDefaultLevel() {
	id, level := m.pickDefault()

	m.mu.Lock()
	m.defaultID = id
	m.defaultLevel = level
	m.mu.Unlock()
}

func (m *Manager) pickDefault() (string, *engine.Level) {
	if m.hasFile(DefaultLevelID) {
		if level, err := m.Load(DefaultLevelID); err == nil {
			return DefaultLevelID, level
		}
	}
	if infos, err := m.List(); err == nil && len(infos) > 0 {
		if level, err := m.Load(infos[0].LevelID); err == nil {
			return infos[0].LevelID, level
		}
	}
	return DefaultLevelID, engine.DefaultLevel()
}

func (m *Manager) hasFile(name string) bool {
	_, err := m.find(name)
	return err == nil
}

// find resolves a level id to an existing file path
func (m *Manager) find(name string) (string, error) {
	if IsLevelFile(name) {
		path := filepath.Join(m.levelDir, filepath.Base(name))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", errors.WithMessagef(ErrLevelNotFound, "%q", name)
	}

	for _, ext := range Extensions {
		path := filepath.Join(m.levelDir, filepath.Base(name)+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.WithMessagef(ErrLevelNotFound, "%q", name)
}

// ReadFile reads and validates a level file. The format follows the
// extension.
func ReadFile(path string) (*engine.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read level file %s", filepath.Base(path))
	}

	level, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, errors.WithMessage(err, filepath.Base(path))
	}
	return level, nil
}

// Parse decodes and validates a level. ext selects the format: ".json",
// ".yaml" or ".yml".
func Parse(ext string, data []byte) (*engine.Level, error) {
	var level engine.Level
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &level); err != nil {
			return nil, fmt.Errorf("%w: bad JSON: %v", ErrInvalidLevel, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &level); err != nil {
			return nil, fmt.Errorf("%w: bad YAML: %v", ErrInvalidLevel, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported level format %q", ErrInvalidLevel, ext)
	}

	if err := engine.ValidateLevel(&level); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return &level, nil
}

// Describe summarizes a level for listings
func Describe(filename string, level *engine.Level) (*service.LevelInfo, error) {
	board, _, err := engine.ParseLayout(level.Layout)
	if err != nil {
		return nil, err
	}
	return &service.LevelInfo{
		Filename:    filename,
		LevelID:     LevelID(filename),
		Name:        level.Name,
		Description: level.Description,
		Width:       board.Width(),
		Height:      board.Height(),
		Goals:       board.Count(engine.Goal),
		Objects:     board.Count(engine.Object),
	}, nil
}

// IsLevelFile reports whether name has a level file extension
func IsLevelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LevelID strips any directory and level extension from name
func LevelID(name string) string {
	base := filepath.Base(name)
	if IsLevelFile(base) {
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}
