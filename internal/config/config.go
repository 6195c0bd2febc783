package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

const (
	maxConfigFileBytes int64 = 1 << 20 // 1MB
	maxRenameRetry           = 10
	// Windows file lock releases (antivirus/indexing) typically settle quickly.
	renameRetryBaseDelay = 10 * time.Millisecond

	appDirName      = "shorty"
	defaultFileName = "config.yaml"
	legacyFileName  = "globby_shorty.toml"

	minDigit = 1
	maxDigit = 9
)

// ErrInvalidConfig wraps every validation failure reported by Load and Save.
var ErrInvalidConfig = errors.New("invalid config")

var userHomeDirFn = os.UserHomeDir
var windowsEnvTokenPattern = regexp.MustCompile(`%[A-Za-z_][A-Za-z0-9_]*%`)
var posixEnvTokenPattern = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}|\$[A-Za-z_][A-Za-z0-9_]*`)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// knownFields lists the top-level keys Load understands. num1..num9 are the
// flat keys of the legacy globby_shorty.toml layout.
var knownFields = map[string]struct{}{
	"shortcuts":     {},
	"notifications": {},
	"log_level":     {},
	"watch":         {},
}

// Config is the shorty runtime configuration.
type Config struct {
	// Shortcuts maps a digit ("1".."9") to the application opened by
	// Ctrl+Shift+digit. After Load every path is expanded and absolute.
	Shortcuts map[string]string `yaml:"shortcuts" toml:"shortcuts"`
	// Notifications enables desktop notifications for errors.
	Notifications bool   `yaml:"notifications" toml:"notifications"`
	LogLevel      string `yaml:"log_level" toml:"log_level"`
	// Watch reloads the shortcuts when the file changes.
	Watch bool `yaml:"watch" toml:"watch"`
}

// DefaultConfig returns a configuration with no active shortcuts.
func DefaultConfig() Config {
	return Config{
		Shortcuts:     map[string]string{},
		Notifications: true,
		LogLevel:      "info",
	}
}

// Format is the on-disk encoding of a config file.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

// FormatOf picks the encoding from the file extension. Anything that is not
// .toml is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	return filepath.Join(configBaseDir(), appDirName, defaultFileName)
}

// LegacyPath returns the location used by globby_shorty.
func LegacyPath() string {
	home, err := userHomeDirFn()
	if err != nil {
		return filepath.Join(os.TempDir(), legacyFileName)
	}
	return filepath.Join(home, ".config", legacyFileName)
}

func configBaseDir() string {
	for _, env := range []string{"XDG_CONFIG_HOME", "LOCALAPPDATA", "APPDATA"} {
		if base := strings.TrimSpace(os.Getenv(env)); base != "" {
			return base
		}
	}
	home, err := userHomeDirFn()
	if err != nil {
		slog.Warn("[WARN-CONFIG] using temp dir as config path fallback", "error", err)
		return os.TempDir()
	}
	return filepath.Join(home, ".config")
}

// ResolvePath returns explicit when set. Otherwise it prefers DefaultPath and
// falls back to LegacyPath when only the legacy file exists.
func ResolvePath(explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	path := DefaultPath()
	if fileExists(path) {
		return path
	}
	if legacy := LegacyPath(); fileExists(legacy) {
		slog.Info("[config] using legacy config file", "path", legacy)
		return legacy
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Load reads and validates the config at path. A missing or empty file yields
// DefaultConfig; a file that cannot be parsed or validated is an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("[WARN-CONFIG] config file not found, no shortcuts are active", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		slog.Warn("[WARN-CONFIG] config file is empty, no shortcuts are active", "path", path)
		return cfg, nil
	}

	format := FormatOf(path)
	var rawMap map[string]any
	if err := unmarshal(format, raw, &rawMap); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s config %s: %w", format, path, err)
	}
	if err := unmarshal(format, raw, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s config %s: %w", format, path, err)
	}
	if err := mergeLegacyShortcuts(&cfg, rawMap); err != nil {
		return DefaultConfig(), fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	warnUnknownFields(rawMap)

	if err := normalizeAndValidate(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func unmarshal(format Format, raw []byte, out any) error {
	if format == FormatTOML {
		return toml.Unmarshal(raw, out)
	}
	return yaml.Unmarshal(raw, out)
}

func marshal(format Format, cfg Config) ([]byte, error) {
	if format == FormatTOML {
		return toml.Marshal(cfg)
	}
	return yaml.Marshal(cfg)
}

// mergeLegacyShortcuts folds num1..num9 into Shortcuts. A digit set both ways
// must name the same application.
func mergeLegacyShortcuts(cfg *Config, rawMap map[string]any) error {
	for digit := minDigit; digit <= maxDigit; digit++ {
		key := "num" + strconv.Itoa(digit)
		value, ok := rawMap[key]
		if !ok {
			continue
		}
		path, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a string, got %T", key, value)
		}
		digitKey := strconv.Itoa(digit)
		if existing, dup := cfg.Shortcuts[digitKey]; dup && existing != path {
			return fmt.Errorf("digit %d is mapped by both shortcuts and %s", digit, key)
		}
		if cfg.Shortcuts == nil {
			cfg.Shortcuts = map[string]string{}
		}
		cfg.Shortcuts[digitKey] = path
	}
	return nil
}

func warnUnknownFields(rawMap map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(rawMap)) {
		if _, ok := knownFields[key]; ok {
			continue
		}
		if isLegacyKey(key) {
			continue
		}
		slog.Warn("[WARN-CONFIG] ignoring unknown config field", "field", key)
	}
}

func isLegacyKey(key string) bool {
	digit, ok := strings.CutPrefix(key, "num")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(digit)
	return err == nil && n >= minDigit && n <= maxDigit
}

func normalizeAndValidate(cfg *Config) error {
	level := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if level == "" {
		level = DefaultConfig().LogLevel
	}
	if _, ok := logLevels[level]; !ok {
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", cfg.LogLevel)
	}
	cfg.LogLevel = level

	normalized := make(map[string]string, len(cfg.Shortcuts))
	for key, path := range cfg.Shortcuts {
		digit, err := parseDigit(key)
		if err != nil {
			return err
		}
		canonical := strconv.Itoa(digit)
		if _, dup := normalized[canonical]; dup {
			return fmt.Errorf("digit %d is mapped more than once", digit)
		}
		resolved, err := resolveAppPath(path)
		if err != nil {
			return fmt.Errorf("shortcut %d: %w", digit, err)
		}
		normalized[canonical] = resolved
	}
	cfg.Shortcuts = normalized
	return nil
}

func parseDigit(key string) (int, error) {
	digit, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || digit < minDigit || digit > maxDigit {
		return 0, fmt.Errorf("shortcut key %q must be a digit from %d to %d", key, minDigit, maxDigit)
	}
	return digit, nil
}

func resolveAppPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("application path is empty")
	}
	expanded, err := expandHome(expandEnv(trimmed))
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		return "", fmt.Errorf("application path %q must be absolute", path)
	}
	return filepath.Clean(expanded), nil
}

// expandEnv replaces %VAR% on every platform and $VAR / ${VAR} outside
// Windows, where '$' is a legal path character. Unset variables are kept.
func expandEnv(path string) string {
	expanded := windowsEnvTokenPattern.ReplaceAllStringFunc(path, func(token string) string {
		if value, ok := os.LookupEnv(token[1 : len(token)-1]); ok {
			return value
		}
		return token
	})
	if runtime.GOOS == "windows" {
		return expanded
	}
	return posixEnvTokenPattern.ReplaceAllStringFunc(expanded, func(token string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(token, "$"), "{"), "}")
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return token
	})
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := userHomeDirFn()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	level, ok := logLevels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// ShortcutMap returns the validated shortcuts keyed by digit.
func (c Config) ShortcutMap() map[int]string {
	out := make(map[int]string, len(c.Shortcuts))
	for key, path := range c.Shortcuts {
		digit, err := parseDigit(key)
		if err != nil {
			continue
		}
		out[digit] = path
	}
	return out
}

// SampleConfig returns the config written by "shorty init".
func SampleConfig() Config {
	cfg := DefaultConfig()
	switch runtime.GOOS {
	case "windows":
		cfg.Shortcuts["1"] = `%SystemRoot%\System32\notepad.exe`
		cfg.Shortcuts["2"] = `%SystemRoot%\System32\calc.exe`
	case "darwin":
		cfg.Shortcuts["1"] = "/System/Applications/TextEdit.app"
		cfg.Shortcuts["2"] = "/System/Applications/Calculator.app"
	default:
		cfg.Shortcuts["1"] = "/usr/bin/xterm"
		cfg.Shortcuts["2"] = "~/Applications"
	}
	return cfg
}

// Save validates cfg and writes it atomically in the format implied by path.
func Save(path string, cfg Config) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return cfg, errors.New("config path required")
	}
	// Validate a copy so the file keeps the unexpanded paths the user wrote.
	check := cfg
	check.Shortcuts = maps.Clone(cfg.Shortcuts)
	if err := normalizeAndValidate(&check); err != nil {
		return cfg, fmt.Errorf("save config: %w: %w", ErrInvalidConfig, err)
	}
	cfg.LogLevel = check.LogLevel

	raw, err := marshal(FormatOf(path), cfg)
	if err != nil {
		return cfg, fmt.Errorf("save config: marshal: %w", err)
	}
	if err := atomicWrite(path, raw); err != nil {
		return cfg, err
	}
	slog.Debug("[DEBUG-CONFIG] config saved", "path", path)
	return cfg, nil
}

func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save config: mkdir: %w", err)
	}

	// Temp file in the same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("save config: create temp: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			if closeErr := tmpFile.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
				slog.Warn("[WARN-CONFIG] failed to close temp file", "path", tmpPath, "error", closeErr)
			}
		}
		if err != nil {
			if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				slog.Warn("[WARN-CONFIG] failed to remove temp file", "path", tmpPath, "error", removeErr)
			}
		}
	}()

	if err = tmpFile.Chmod(0o600); err != nil {
		return fmt.Errorf("save config: chmod temp: %w", err)
	}
	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("save config: write: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("save config: sync: %w", err)
	}
	err = tmpFile.Close()
	tmpFile = nil
	if err != nil {
		return fmt.Errorf("save config: close: %w", err)
	}

	if err = renameFileWithRetry(tmpPath, path); err != nil {
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}

func renameFileWithRetry(sourcePath string, targetPath string) error {
	var lastErr error
	for attempt := range maxRenameRetry {
		err := os.Rename(sourcePath, targetPath)
		if err == nil {
			return nil
		}
		lastErr = err
		if runtime.GOOS != "windows" {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * renameRetryBaseDelay)
	}
	return lastErr
}
