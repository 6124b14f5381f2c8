// Package settings stores selector preferences and the UI theme as flat JSON
// documents in the data folder.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
)

// Recognized settings keys.
const (
	KeyInstallDir         = "install_dir"
	KeyCanInstallMultiple = "CanInstallMultiple"
	KeyPromptUser         = "PromptUser"
	KeyPromptBeforeExit   = "PromptBeforeExit"
)

// ErrUnknownKey is returned by Set for keys that are not settings.
var ErrUnknownKey = errors.New("unknown settings key")

// Settings is the content of settings.json. Keys other than the recognized
// ones are kept as read and written back on Save.
type Settings struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// Load reads the settings at path. A missing or malformed file yields the
// defaults; the file itself is left alone until the next Save. Other read
// errors are returned together with usable defaults.
func Load(path string) (*Settings, error) {
	s := &Settings{path: path, values: map[string]any{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil || values == nil {
		return s, nil
	}
	s.values = values
	return s, nil
}

// Path returns the file the settings are saved to.
func (s *Settings) Path() string { return s.path }

// InstallDir returns the install directory, or "" when unset.
func (s *Settings) InstallDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.values[KeyInstallDir].(string)
	return v
}

// SetInstallDir sets the install directory. An empty dir removes the key.
func (s *Settings) SetInstallDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir == "" {
		delete(s.values, KeyInstallDir)
		return
	}
	s.values[KeyInstallDir] = dir
}

// CanInstallMultiple reports whether several options may be installed at once.
func (s *Settings) CanInstallMultiple() bool { return s.bool(KeyCanInstallMultiple) }

// PromptUser reports whether install and uninstall ask for confirmation.
func (s *Settings) PromptUser() bool { return s.bool(KeyPromptUser) }

// PromptBeforeExit reports whether quitting asks for confirmation.
func (s *Settings) PromptBeforeExit() bool { return s.bool(KeyPromptBeforeExit) }

// SetCanInstallMultiple sets CanInstallMultiple.
func (s *Settings) SetCanInstallMultiple(v bool) { s.setBool(KeyCanInstallMultiple, v) }

// SetPromptUser sets PromptUser.
func (s *Settings) SetPromptUser(v bool) { s.setBool(KeyPromptUser, v) }

// SetPromptBeforeExit sets PromptBeforeExit.
func (s *Settings) SetPromptBeforeExit(v bool) { s.setBool(KeyPromptBeforeExit, v) }

func (s *Settings) bool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.values[key].(bool)
	return v
}

func (s *Settings) setBool(key string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

// Set assigns a recognized key from its string form, as given on the
// command line.
func (s *Settings) Set(key, value string) error {
	switch key {
	case KeyInstallDir:
		s.SetInstallDir(value)
		return nil
	case KeyCanInstallMultiple, KeyPromptUser, KeyPromptBeforeExit:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.setBool(key, b)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Keys returns the recognized keys in display order.
func Keys() []string {
	return []string{KeyInstallDir, KeyCanInstallMultiple, KeyPromptUser, KeyPromptBeforeExit}
}

// Values returns a copy of every stored key, unknown ones included.
func (s *Settings) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Extra returns the sorted names of stored keys that are not settings.
func (s *Settings) Extra() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.values {
		switch k {
		case KeyInstallDir, KeyCanInstallMultiple, KeyPromptUser, KeyPromptBeforeExit:
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Save writes the settings back to their file as indented JSON.
func (s *Settings) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "    ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}
