package logger

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/ramux/ra-multiplex/internal/metrics"
	"github.com/rs/zerolog/diode"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

/* ------------------------------------------------------------------ *
|  1. Configuration & functional‑options                              |
* -------------------------------------------------------------------*/

const (
	ModeTerminal = "terminal"
	ModeFile     = "file"
)

// ErrAlreadyInitialized is returned by every Init call after the first
// successful one.  The installed sink is never replaced.
var ErrAlreadyInitialized = errors.New("logger already initialized")

// ErrNotInitialized is returned by Shutdown when no logger is installed.
var ErrNotInitialized = errors.New("logger not initialized")

type Config struct {
	Mode    string
	Filters string
}

type Option func(*Config)

func WithMode(mode string) Option       { return func(c *Config) { c.Mode = mode } }
func WithFilters(filters string) Option { return func(c *Config) { c.Filters = filters } }

/* ------------------------------------------------------------------ *
|  2. Package‑level state                                             |
* -------------------------------------------------------------------*/

var (
	root   *zap.Logger
	filter Filter
	queue  *diode.Writer // nil in terminal mode

	initialized bool
	active      bool
	mu          sync.RWMutex

	logSink = newLogFile(LogFilePath)
)

/* ------------------------------------------------------------------ *
|  3. Init / Shutdown                                                 |
* -------------------------------------------------------------------*/

// Init installs the process-wide logger.  "file" mode writes to
// <cache dir>/ra_multiplex.log through a diode queue, any other mode writes
// to stderr.  Init succeeds at most once; later calls return
// ErrAlreadyInitialized.  A failed Init leaves the logger uninitialized.
func Init(opts ...Option) error {
	cfg := defaultConfig()
	for _, apply := range opts {
		apply(cfg)
	}

	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return ErrAlreadyInitialized
	}

	f := ResolveFilter(cfg.Filters)

	var (
		core zapcore.Core
		w    *diode.Writer
		mode = ModeTerminal
	)
	if cfg.Mode == ModeFile {
		var err error
		if w, err = logSink.open(); err != nil {
			return err
		}
		core = newFilterCore(zapcore.NewConsoleEncoder(fileEncoderConfig()), zapcore.AddSync(w), f)
		mode = ModeFile
	} else {
		core = newFilterCore(zapcore.NewConsoleEncoder(terminalEncoderConfig()), zapcore.Lock(os.Stderr), f)
	}

	root = zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	filter = f
	queue = w
	initialized = true
	active = true
	zap.ReplaceGlobals(root)
	metrics.LogMode.WithLabelValues(mode).Set(1)

	root.Debug("logger initialized",
		zap.String("mode", mode),
		zap.String("filter", f.String()),
		zap.String("filter_source", string(f.Source())),
	)
	return nil
}

// Shutdown drains queued records and closes the log file.  The host must
// call it before exiting; records logged afterwards are discarded.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()

	if !active || root == nil {
		return ErrNotInitialized
	}
	active = false
	zap.ReplaceGlobals(zap.NewNop())

	if err := root.Sync(); err != nil && !isPathErr(err) {
		return err
	}
	if queue != nil {
		return queue.Close()
	}
	return nil
}

/* ------------------------------------------------------------------ *
|  4. Helpers                                                         |
* -------------------------------------------------------------------*/

func defaultConfig() *Config {
	return &Config{
		Mode:    ModeTerminal,
		Filters: DefaultFilter,
	}
}

// isPathErr matches the error returned when syncing a terminal.
func isPathErr(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !active {
		return nil
	}
	return root
}

// ActiveFilter returns the filter chosen by Init.
func ActiveFilter() Filter {
	mu.RLock()
	defer mu.RUnlock()
	return filter
}

/* ------------------------------------------------------------------ *
|  5. Child loggers                                                   |
* -------------------------------------------------------------------*/

// L returns the installed logger, or a no-op logger before Init and after
// Shutdown.
func L() *zap.Logger {
	if l := current(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Diagnostic returns the installed logger, or a terminal-style logger at
// info level writing to fallback when none is installed.  It reports fatal
// startup errors, which may happen before Init or after Shutdown.
func Diagnostic(fallback io.Writer) *zap.Logger {
	if l := current(); l != nil {
		return l
	}
	f, _ := ParseFilter(DefaultFilter)
	ws := zapcore.Lock(zapcore.AddSync(fallback))
	return zap.New(newFilterCore(zapcore.NewConsoleEncoder(terminalEncoderConfig()), ws, f))
}

// New returns a component‑scoped child logger.  The component name is what
// "name=level" filter directives match.
func New(component string) *zap.Logger {
	return L().Named(component)
}

/* ------------------------------------------------------------------ *
|  6. Convenience wrappers                                            |
* -------------------------------------------------------------------*/

func Debug(msg string, fields ...zap.Field) {
	if l := current(); l != nil {
		l.Debug(msg, fields...)
	}
}
func Info(msg string, fields ...zap.Field) {
	if l := current(); l != nil {
		l.Info(msg, fields...)
	}
}
func Warn(msg string, fields ...zap.Field) {
	if l := current(); l != nil {
		l.Warn(msg, fields...)
	}
}
func Error(msg string, fields ...zap.Field) {
	if l := current(); l != nil {
		l.Error(msg, fields...)
	}
}
