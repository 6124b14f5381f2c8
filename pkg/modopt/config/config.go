package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MaxSizeBytes parses MaxSize ("5MB", "512KiB"). An empty value yields 0.
func (r RotationConfig) MaxSizeBytes() (int64, error) {
	if strings.TrimSpace(r.MaxSize) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(r.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("parsing logging.rotation.max_size: %w", err)
	}
	return int64(n), nil
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// SelectorConfig configures modopt-selector.
type SelectorConfig struct {
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	FSNotify          bool          `mapstructure:"fsnotify"`
	BuilderExecutable string        `mapstructure:"builder_executable"`
}

// BuilderConfig configures modopt-builder.
type BuilderConfig struct {
	SelectorExecutable string `mapstructure:"selector_executable"`
	PackageFormat      string `mapstructure:"package_format"`
}

// CacheConfig configures the archive listing cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	Selector SelectorConfig `mapstructure:"selector"`
	Builder  BuilderConfig  `mapstructure:"builder"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Load reads $XDG_CONFIG_HOME/modopt/config.yaml, falling back to defaults
// when the file is absent. Environment variables prefixed with MODOPT_
// override file values (MODOPT_SELECTOR_POLL_INTERVAL=5s).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())

	v.SetEnvPrefix("MODOPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Selector.PollInterval <= 0 {
		cfg.Selector.PollInterval = DefaultPollInterval
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	expanded, err := ExpandPath(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = expanded

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir)

	v.SetDefault("selector.poll_interval", DefaultPollInterval)
	v.SetDefault("selector.fsnotify", true)
	v.SetDefault("selector.builder_executable", "")

	v.SetDefault("builder.selector_executable", "")
	v.SetDefault("builder.package_format", DefaultPackageFormat)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_age", 14)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.components", map[string]string{
		"installer": "info",
		"watch":     "warn",
		"packager":  "info",
		"tui":       "info",
	})
}

// Layout locates the files inside a data folder. Paths stored in the
// manifest ("data/zips/a.zip") are relative to Root, the data folder's parent.
type Layout struct {
	Root    string
	DataDir string
}

// NewLayout returns the layout for dataDir.
func NewLayout(dataDir string) Layout {
	clean := filepath.Clean(dataDir)
	return Layout{Root: filepath.Dir(clean), DataDir: clean}
}

// Layout returns the layout for the configured data folder.
func (c *Config) Layout() Layout {
	return NewLayout(c.DataDir)
}

// ManifestPath returns data/mod_options.json.
func (l Layout) ManifestPath() string { return filepath.Join(l.DataDir, ManifestFile) }

// SettingsPath returns data/settings.json.
func (l Layout) SettingsPath() string { return filepath.Join(l.DataDir, SettingsFile) }

// ThemePath returns data/theme.json.
func (l Layout) ThemePath() string { return filepath.Join(l.DataDir, ThemeFile) }

// ZipsDir returns data/zips.
func (l Layout) ZipsDir() string { return filepath.Join(l.DataDir, ZipsDir) }

// PreviewsDir returns data/zips/previews.
func (l Layout) PreviewsDir() string { return filepath.Join(l.DataDir, ZipsDir, PreviewsDir) }

// BuilderAssetsDir returns data/assets/options_builder, which is left out of packages.
func (l Layout) BuilderAssetsDir() string {
	return filepath.Join(l.DataDir, AssetsDir, BuilderAssets)
}

// PlaceholderImage returns the preview shown when an entry has none.
func (l Layout) PlaceholderImage() string {
	return filepath.Join(l.BuilderAssetsDir(), PlaceholderFile)
}

// Resolve turns a manifest path into a filesystem path. Absolute paths are
// returned unchanged.
func (l Layout) Resolve(p string) string {
	if p == "" {
		return ""
	}
	native := filepath.FromSlash(p)
	if filepath.IsAbs(native) {
		return native
	}
	return filepath.Join(l.Root, native)
}

// Rel turns a filesystem path under Root into the forward-slash form
// stored in the manifest.
func (l Layout) Rel(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ConfigDir returns $XDG_CONFIG_HOME/modopt.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "modopt")
}

// StateDir returns $XDG_STATE_HOME/modopt for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "modopt")
}

// CacheDir returns $XDG_CACHE_HOME/modopt.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "modopt")
}

// DefaultListingCachePath returns the badger directory for archive listings.
func DefaultListingCachePath() string {
	return filepath.Join(CacheDir(), "listing")
}

// ListingCachePath returns the configured listing cache directory.
func (c *Config) ListingCachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return DefaultListingCachePath()
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// WriteDefault writes a commented default config file if none exists and
// returns its path.
func WriteDefault() (string, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	content := fmt.Sprintf(`# modopt configuration

# Folder holding mod_options.json, settings.json, theme.json, zips/ and assets/
data_dir: %s

selector:
  # How often the manifest is checked for changes
  poll_interval: %s
  # Also react to filesystem notifications between polls
  fsnotify: true
  # Builder program launched from the selector (empty: next to the selector)
  builder_executable: ""

builder:
  # Selector program copied into packages (empty: next to the builder)
  selector_executable: ""
  # zip or tar.xz
  package_format: %s

cache:
  # Remember archive listings between runs
  enabled: true
  # Empty means $XDG_CACHE_HOME/modopt/listing
  path: ""

logging:
  # debug, info, warn, error
  level: info
  # Empty means $XDG_STATE_HOME/modopt/<program>.log
  path: ""
  rotation:
    max_size: %s
    max_age: 14
    max_backups: 3
  components:
    installer: info
    watch: warn
    packager: info
    tui: info
`, DefaultDataDir, DefaultPollInterval, DefaultPackageFormat, DefaultLogMaxSize)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return path, nil
}
