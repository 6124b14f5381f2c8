// Package config loads modopt configuration and derives the data folder layout.
package config

import "time"

// Default configuration values.
const (
	// DefaultDataDir is the data folder shared by the builder and selector.
	DefaultDataDir = "data"

	// DefaultPollInterval is how often the selector checks the manifest.
	DefaultPollInterval = 2 * time.Second

	// DefaultPackageFormat is the archive format the builder produces.
	DefaultPackageFormat = "zip"

	// DefaultLogMaxSize is the log size that triggers rotation.
	DefaultLogMaxSize = "5MB"
)

// Names of the files and folders inside the data folder.
const (
	ManifestFile    = "mod_options.json"
	SettingsFile    = "settings.json"
	ThemeFile       = "theme.json"
	ZipsDir         = "zips"
	PreviewsDir     = "previews"
	AssetsDir       = "assets"
	BuilderAssets   = "options_builder"
	PlaceholderFile = "default.png"
)
