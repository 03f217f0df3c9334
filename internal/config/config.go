// Package config loads the startup configuration from
// <config dir>/ra-multiplex/config.toml.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ramux/ra-multiplex/internal/dirs"
	apperrors "github.com/ramux/ra-multiplex/internal/errors"
	"github.com/ramux/ra-multiplex/internal/logger"
	"github.com/ramux/ra-multiplex/internal/metrics"
)

// FileName is the name of the configuration file inside ConfigDir.
const FileName = "config.toml"

//go:embed defaults.toml
var defaultsTOML []byte

// Config is immutable once loaded.
type Config struct {
	// InstanceTimeout is how long an instance without clients is kept
	// around.  Disabled instances live until the server exits.
	InstanceTimeout Timeout   `toml:"instance_timeout"`
	// GCInterval is how often idle instances are collected.
	GCInterval      Interval  `toml:"gc_interval"`
	Listen          Address   `toml:"listen"`
	Connect         Address   `toml:"connect"`
	LogFilters      string    `toml:"log_filters"`
	LogMode         string    `toml:"log_mode"`
	PassEnvironment StringSet `toml:"pass_environment" validate:"dive,envname"`
}

/* ------------------------------------------------------------------ *
|  Defaults                                                           |
* -------------------------------------------------------------------*/

func defaultInstanceTimeout() Timeout { return TimeoutSeconds(5 * 60) }

func defaultGCInterval() Interval { return 10 }

func defaultListen() Address {
	return TCPAddress(netip.AddrFrom4([4]byte{127, 0, 0, 1}), 27631)
}

func defaultConnect() Address { return defaultListen() }

func defaultLogFilters() string { return logger.DefaultFilter }

func defaultLogMode() string { return logger.ModeTerminal }

func defaultPassEnvironment() StringSet { return NewStringSet() }

// Default returns the configuration used for every key the file omits.
func Default() *Config {
	return &Config{
		InstanceTimeout: defaultInstanceTimeout(),
		GCInterval:      defaultGCInterval(),
		Listen:          defaultListen(),
		Connect:         defaultConnect(),
		LogFilters:      defaultLogFilters(),
		LogMode:         defaultLogMode(),
		PassEnvironment: defaultPassEnvironment(),
	}
}

// DefaultsTOML returns the committed defaults document.
func DefaultsTOML() []byte {
	return bytes.Clone(defaultsTOML)
}

/* ------------------------------------------------------------------ *
|  Loading                                                            |
* -------------------------------------------------------------------*/

// Parse decodes a TOML document over the defaults.  Unknown keys, values of
// the wrong shape and failed field rules are CONFIG_PARSE_FAILED errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, decodeError(err)
	}

	if unknown := unknownKeys(md); len(unknown) > 0 {
		quoted := make([]string, len(unknown))
		for i, k := range unknown {
			quoted[i] = fmt.Sprintf("%q", k)
		}
		return nil, apperrors.New(apperrors.ErrorTypeConfig, apperrors.CodeConfigParse, "invalid configuration").
			WithDetails(fmt.Sprintf("unknown field %s, expected one of %s",
				strings.Join(quoted, ", "), strings.Join(knownKeys(), ", "))).
			WithField(unknown[0])
	}

	if err := validate.Struct(cfg); err != nil {
		details, field := formatValidationError(err)
		appErr := apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.CodeConfigParse, "invalid configuration").
			WithDetails(details)
		if field != "" {
			appErr = appErr.WithField(field)
		}
		return nil, appErr
	}
	return cfg, nil
}

// Load reads ConfigPath.  A missing file is an error, not a fallback to
// the defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		recordLoad(err)
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and parses the configuration at path.
func LoadFile(path string) (*Config, error) {
	cfg, err := loadFile(path)
	recordLoad(err)
	return cfg, err
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.CodeConfigRead,
			fmt.Sprintf("cannot read config file `%s`", path)).WithPath(path)
	}

	cfg, err := Parse(data)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.Message = fmt.Sprintf("cannot parse config file `%s`", path)
			return nil, appErr.WithPath(path)
		}
		return nil, err
	}
	return cfg, nil
}

func recordLoad(err error) {
	result := "ok"
	if err != nil {
		if result = apperrors.Code(err); result == "" {
			result = "error"
		}
	}
	metrics.ConfigLoads.WithLabelValues(result).Inc()
}

// ConfigDir returns the platform configuration directory for ra-multiplex.
func ConfigDir() (string, error) {
	dir, err := dirs.Config()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.CodeConfigDirNotFound,
			"project config directory not found")
	}
	return dir, nil
}

// ConfigPath returns the path of config.toml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

/* ------------------------------------------------------------------ *
|  Encoding                                                           |
* -------------------------------------------------------------------*/

// Encode writes c as a TOML document in field order.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c *Config) TOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

/* ------------------------------------------------------------------ *
|  Logging                                                            |
* -------------------------------------------------------------------*/

// IsFileMode reports whether records go to the log file.  Every log_mode
// other than "file" means the terminal.
func (c *Config) IsFileMode() bool {
	return c.LogMode == logger.ModeFile
}

// LoggerOptions maps the logging keys onto logger.Init options.
func (c *Config) LoggerOptions() []logger.Option {
	mode := logger.ModeTerminal
	if c.IsFileMode() {
		mode = logger.ModeFile
	}
	return []logger.Option{
		logger.WithMode(mode),
		logger.WithFilters(c.LogFilters),
	}
}

// InitLogger installs the process-wide logger described by c.
func (c *Config) InitLogger() error {
	return logger.Init(c.LoggerOptions()...)
}

// Warnings lists settings that are accepted but silently replaced at
// runtime.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.LogMode != logger.ModeTerminal && c.LogMode != logger.ModeFile {
		warnings = append(warnings, fmt.Sprintf(
			"log_mode %q is not %q or %q, logging to the terminal",
			c.LogMode, logger.ModeTerminal, logger.ModeFile))
	}
	if _, err := logger.ParseFilter(c.LogFilters); err != nil {
		used := logger.ResolveFilter(c.LogFilters)
		from := "the default"
		if used.Source() == logger.FilterFromEnv {
			from = logger.FilterEnv
		}
		warnings = append(warnings, fmt.Sprintf(
			"log_filters %q is invalid (%v), using %q from %s", c.LogFilters, err, used.String(), from))
	}
	return warnings
}

/* ------------------------------------------------------------------ *
|  Helpers                                                            |
* -------------------------------------------------------------------*/

// decodeError turns a TOML error into a CONFIG_PARSE_FAILED error naming the
// last key the decoder saw.
func decodeError(err error) error {
	appErr := apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.CodeConfigParse, "invalid configuration")

	var pe toml.ParseError
	if errors.As(err, &pe) {
		if pe.LastKey != "" {
			appErr = appErr.WithField(pe.LastKey)
		}
		return appErr
	}
	var ppe *toml.ParseError
	if errors.As(err, &ppe) && ppe.LastKey != "" {
		appErr = appErr.WithField(ppe.LastKey)
	}
	return appErr
}

// knownKeys lists the TOML keys of Config in field order.
func knownKeys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}

// unknownKeys returns the sorted top-level keys that are not Config fields.
// The decoder matches keys case-insensitively, so decoded keys are checked
// for an exact match too.
func unknownKeys(md toml.MetaData) []string {
	known := knownKeys()
	var unknown []string
	add := func(k toml.Key) {
		if len(k) == 0 || slices.Contains(known, k[0]) || slices.Contains(unknown, k[0]) {
			return
		}
		unknown = append(unknown, k[0])
	}
	for _, k := range md.Undecoded() {
		add(k)
	}
	for _, k := range md.Keys() {
		add(k)
	}
	slices.Sort(unknown)
	return unknown
}
