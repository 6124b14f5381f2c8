// Package logging provides component loggers for the modopt builder and selector.
//
// Both programs log to a rotating file under $XDG_STATE_HOME/modopt. The
// interactive UIs keep console output off and read recent entries from a
// ring buffer instead.
//
//	if err := logging.Init(logging.Config{App: "modopt-selector", Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logging.Get("installer").Info("installed option", "title", e.Title)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level is a record severity. The log panel relies on the values being
// consecutive from LevelDebug.
type Level int

// Levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levels = [...]struct {
	name  string
	charm log.Level
}{
	LevelDebug: {"debug", log.DebugLevel},
	LevelInfo:  {"info", log.InfoLevel},
	LevelWarn:  {"warn", log.WarnLevel},
	LevelError: {"error", log.ErrorLevel},
}

func (l Level) valid() bool { return l >= LevelDebug && l <= LevelError }

func (l Level) String() string {
	if !l.valid() {
		return "unknown"
	}
	return levels[l].name
}

func (l Level) charm() log.Level {
	if !l.valid() {
		return log.InfoLevel
	}
	return levels[l].charm
}

// ErrInvalidLevel is returned for a level name ParseLevel does not know.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level name. The empty string is info.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}
	for l, def := range levels {
		if def.name == s {
			return Level(l), nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
}

// Config configures the logging system.
type Config struct {
	// App names the log file when Path is empty.
	App string

	// Level applies to every component without its own entry in Components.
	Level string

	// Path is the log file. Empty uses DefaultLogPath(App).
	Path string

	Rotation RotationConfig

	// Components overrides Level per component name.
	Components map[string]string

	// ConsoleLevel adds stderr output at that level. Ignored in TUI mode.
	ConsoleLevel string

	// TUIMode keeps recent entries in a ring buffer instead of writing to stderr.
	TUIMode bool
}

// LogEntry is one record kept for the TUI log panel.
type LogEntry struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string
}

// Logger writes one component's records to the log file, the console when
// enabled, and the TUI buffer.
type Logger struct {
	component string
	level     Level
	file      *log.Logger
	console   *log.Logger
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.emit(LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.emit(LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.emit(LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.emit(LevelError, msg, args) }

func (l *Logger) emit(level Level, msg string, args []interface{}) {
	l.file.Log(level.charm(), msg, args...)
	if l.console != nil {
		l.console.Log(level.charm(), msg, args...)
	}
	if level >= l.level {
		if buf := GetLogBuffer(); buf != nil {
			buf.Add(LogEntry{Time: time.Now(), Level: level, Component: l.component, Message: msg})
		}
	}
}

// setup is the parsed form of Config.
type setup struct {
	level      Level
	components map[string]Level
	console    *Level
}

func parseConfig(cfg Config) (setup, error) {
	var s setup
	var err error
	if s.level, err = ParseLevel(cfg.Level); err != nil {
		return s, fmt.Errorf("parsing log level: %w", err)
	}
	s.components = make(map[string]Level, len(cfg.Components))
	for comp, name := range cfg.Components {
		lvl, err := ParseLevel(name)
		if err != nil {
			return s, fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		s.components[comp] = lvl
	}
	if cfg.ConsoleLevel != "" && !cfg.TUIMode {
		lvl, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return s, fmt.Errorf("parsing console level: %w", err)
		}
		s.console = &lvl
	}
	return s, nil
}

var (
	mu      sync.RWMutex
	current = setup{level: LevelInfo}
	writer  *RotatingWriter
	buffer  *LogBuffer
	loggers = map[string]*Logger{}
)

// Init starts writing to the log file. It may be called again to switch
// modes; loggers handed out earlier are rebuilt in place.
func Init(cfg Config) error {
	parsed, err := parseConfig(cfg)
	if err != nil {
		return err
	}
	path := cfg.Path
	if path == "" {
		path = DefaultLogPath(cfg.App)
	}

	mu.Lock()
	defer mu.Unlock()

	if writer != nil {
		if err := writer.Close(); err != nil {
			return fmt.Errorf("closing existing writer: %w", err)
		}
		writer = nil
	}
	w, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}
	writer = w
	current = parsed
	buffer = nil
	if cfg.TUIMode {
		buffer = NewLogBuffer(DefaultBufferSize)
	}
	rebuildLocked()
	return nil
}

// Get returns the logger for component. Loggers obtained before Init
// discard their output until Init runs.
func Get(component string) *Logger {
	mu.RLock()
	l, ok := loggers[component]
	mu.RUnlock()
	if ok {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[component]; ok {
		return l
	}
	l = newLoggerLocked(component)
	loggers[component] = l
	return l
}

func rebuildLocked() {
	for name, l := range loggers {
		*l = *newLoggerLocked(name)
	}
}

func newLoggerLocked(component string) *Logger {
	level := current.level
	if lvl, ok := current.components[component]; ok {
		level = lvl
	}
	l := &Logger{component: component, level: level}

	if writer == nil {
		l.file = log.NewWithOptions(io.Discard, log.Options{Level: level.charm(), Prefix: component})
		return l
	}
	l.file = log.NewWithOptions(writer, log.Options{
		Level:           level.charm(),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	})
	if current.console != nil {
		l.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           current.console.charm(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}
	return l
}

// Close closes the log file and drops the TUI buffer. Loggers keep working
// and discard their output.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if writer == nil {
		return nil
	}
	err := writer.Close()
	writer = nil
	buffer = nil
	current = setup{level: LevelInfo}
	rebuildLocked()
	if err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}

// GetLogBuffer returns the TUI ring buffer, or nil outside TUI mode.
func GetLogBuffer() *LogBuffer {
	mu.RLock()
	defer mu.RUnlock()
	return buffer
}

// DefaultLogPath returns $XDG_STATE_HOME/modopt/<app>.log.
func DefaultLogPath(app string) string {
	if app == "" {
		app = "modopt"
	}
	return filepath.Join(xdg.StateHome, "modopt", app+".log")
}
