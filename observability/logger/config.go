package logger

import (
	"github.com/code19m/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	messageKey = "msg"
	levelKey   = "level"
	nameKey    = "logger"
	timeKey    = "time"

	encJSON    = "json"
	encPretty  = "pretty"
	levelDebug = "debug"
)

// Config defines configuration options for the logger.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn or error.
	Level string `yaml:"level" validate:"oneof=debug info warn error" default:"debug"`

	// Encoding is "pretty" for a coloured header line with indented fields,
	// or "json" for one compact object per line.
	Encoding string `yaml:"encoding" validate:"oneof=json pretty" default:"pretty"`

	// Output is where entries are written, "stdout" or "stderr".
	Output string `yaml:"output" validate:"oneof=stdout stderr" default:"stdout"`

	// Disable creates a no-op logger.
	Disable bool `yaml:"disable"`
}

func (c Config) output() string {
	if c.Output == "" {
		return "stdout"
	}
	return c.Output
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     messageKey,
		LevelKey:       levelKey,
		NameKey:        nameKey,
		TimeKey:        timeKey,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// build creates the zap logger described by c.
func (c Config) build() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"level": c.Level}))
	}

	if c.Encoding == encPretty {
		return newPrettyLogger(level, c.output()), nil
	}

	zl, err := zap.Config{
		Level:            level,
		Encoding:         encJSON,
		EncoderConfig:    encoderConfig(),
		OutputPaths:      []string{c.output()},
		ErrorOutputPaths: []string{"stderr"},
	}.Build()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return zl, nil
}
