package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	// FilterEnv overrides the configured log_filters when set to a valid
	// expression.
	FilterEnv = "RA_MUX_LOG"
	// DefaultFilter is used when neither the environment nor the
	// configuration provide a valid expression.
	DefaultFilter = "info"
)

// offLevel disables every record.
const offLevel = zapcore.FatalLevel + 1

// FilterSource tells where a resolved filter came from.
type FilterSource string

const (
	FilterFromEnv     FilterSource = "env"
	FilterFromConfig  FilterSource = "config"
	FilterFromDefault FilterSource = "default"
)

// Filter is a parsed filter expression.
//
// Grammar: a comma-separated list of directives.  A bare level
// ("debug") sets the default level; "name=level" sets the level for the
// logger called name and its children ("name.child"), and a bare name is
// short for "name=trace".  The longest matching
// name wins.  Levels are trace, debug, info, warn, error and off; trace is
// treated as debug.  Without a bare level the default is error.
type Filter struct {
	expr       string
	source     FilterSource
	level      zapcore.Level
	directives []directive
}

type directive struct {
	name  string
	level zapcore.Level
}

// ParseFilter parses expr.
func ParseFilter(expr string) (Filter, error) {
	f := Filter{
		expr:  strings.TrimSpace(expr),
		level: zapcore.ErrorLevel,
	}
	seen := 0
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		seen++

		name, value, scoped := strings.Cut(part, "=")
		if !scoped {
			if lvl, err := parseLevel(part); err == nil {
				f.level = lvl
				continue
			}
			// a bare name enables every level for that logger
			name, value = part, "trace"
		}

		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t=") {
			return Filter{}, fmt.Errorf("invalid filter directive %q: bad logger name", part)
		}
		lvl, err := parseLevel(strings.TrimSpace(value))
		if err != nil {
			return Filter{}, fmt.Errorf("invalid filter directive %q: %w", part, err)
		}
		f.directives = append(f.directives, directive{name: name, level: lvl})
	}
	if seen == 0 {
		return Filter{}, fmt.Errorf("empty filter expression")
	}

	sort.SliceStable(f.directives, func(i, j int) bool {
		return len(f.directives[i].name) > len(f.directives[j].name)
	})
	return f, nil
}

// ResolveFilter picks the filter in order: FilterEnv, configured, "info".
// It never fails.
func ResolveFilter(configured string) Filter {
	if expr, ok := os.LookupEnv(FilterEnv); ok {
		if f, err := ParseFilter(expr); err == nil {
			f.source = FilterFromEnv
			return f
		}
	}
	if f, err := ParseFilter(configured); err == nil {
		f.source = FilterFromConfig
		return f
	}
	f, _ := ParseFilter(DefaultFilter)
	f.source = FilterFromDefault
	return f
}

// String returns the expression the filter was parsed from.
func (f Filter) String() string { return f.expr }

// Source reports where ResolveFilter found the expression.
func (f Filter) Source() FilterSource { return f.source }

// Enabled reports whether a record at lvl from the logger called name passes.
func (f Filter) Enabled(name string, lvl zapcore.Level) bool {
	return lvl >= f.levelFor(name)
}

func (f Filter) levelFor(name string) zapcore.Level {
	for _, d := range f.directives {
		if name == d.name || strings.HasPrefix(name, d.name+".") {
			return d.level
		}
	}
	return f.level
}

// minLevel is the most verbose level any directive allows.
func (f Filter) minLevel() zapcore.Level {
	lvl := f.level
	for _, d := range f.directives {
		if d.level < lvl {
			lvl = d.level
		}
	}
	return lvl
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "off":
		return offLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
