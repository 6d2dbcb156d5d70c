package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	ExportsDir    string
	CacheDir      string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	// Directory structure:
	//   <exe dir>/
	//   ├── data/
	//   │   ├── exports/   (CSV and XLSX artifacts)
	//   │   └── cache/
	//   └── logs/
	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths lays the standard directory structure out under baseDir
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, DefaultDataDir)
	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		ExportsDir:    filepath.Join(dataDir, DefaultExportsDir),
		CacheDir:      filepath.Join(dataDir, DefaultCacheDir),
		LogsDir:       filepath.Join(baseDir, DefaultLogsDir),
	}
}

// ResolvePaths applies the PathsConfig overrides on top of the executable-relative layout
func (c *Config) ResolvePaths() (*Paths, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(paths.ExecutableDir, p)
	}

	if c.Paths.DataDir != "" {
		paths.DataDir = resolve(c.Paths.DataDir)
		paths.ExportsDir = filepath.Join(paths.DataDir, DefaultExportsDir)
		paths.CacheDir = filepath.Join(paths.DataDir, DefaultCacheDir)
	}
	if c.Paths.ExportsDir != "" {
		paths.ExportsDir = resolve(c.Paths.ExportsDir)
	}
	if c.Paths.LogsDir != "" {
		paths.LogsDir = resolve(c.Paths.LogsDir)
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ExportsDir,
		p.CacheDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetExportPath returns the path for an exported artifact
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("data_dir", p.DataDir),
		slog.String("exports_dir", p.ExportsDir),
		slog.String("cache_dir", p.CacheDir),
		slog.String("logs_dir", p.LogsDir),
	)
}
