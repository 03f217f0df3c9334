package logger

import (
	"go.uber.org/zap/zapcore"
)

// filterCore applies a Filter per logger name on top of an ioCore.
type filterCore struct {
	zapcore.Core
	filter Filter
}

func newFilterCore(enc zapcore.Encoder, ws zapcore.WriteSyncer, f Filter) zapcore.Core {
	return &filterCore{
		Core:   zapcore.NewCore(enc, ws, zapcore.DebugLevel),
		filter: f,
	}
}

func (c *filterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.filter.minLevel()
}

func (c *filterCore) Level() zapcore.Level {
	return c.filter.minLevel()
}

func (c *filterCore) With(fields []zapcore.Field) zapcore.Core {
	return &filterCore{Core: c.Core.With(fields), filter: c.filter}
}

func (c *filterCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.filter.Enabled(ent.LoggerName, ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// terminalEncoderConfig omits time, logger name and caller.
func terminalEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// fileEncoderConfig is a compact single line without colors, logger name,
// file or line number.
func fileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}
