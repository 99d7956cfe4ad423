package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals // palette is a static lookup shared across encoder instances.
var levelPalette = map[zapcore.Level]*color.Color{
	zapcore.DebugLevel:  color.New(color.FgCyan, color.Bold),
	zapcore.InfoLevel:   color.New(color.FgGreen, color.Bold),
	zapcore.WarnLevel:   color.New(color.FgYellow, color.Bold),
	zapcore.ErrorLevel:  color.New(color.FgRed, color.Bold),
	zapcore.DPanicLevel: color.New(color.FgRed, color.Bold),
	zapcore.PanicLevel:  color.New(color.FgRed, color.Bold),
	zapcore.FatalLevel:  color.New(color.FgMagenta, color.Bold),
}

//nolint:gochecknoglobals // shared styles
var (
	timeStyle = color.New(color.Faint)
	nameStyle = color.New(color.FgHiBlack)
	keyStyle  = color.New(color.FgHiCyan)
)

// prettyEncoder wraps zap's JSON encoder and re-renders each entry as a
// coloured header line followed by indented fields.
type prettyEncoder struct {
	zapcore.Encoder
}

// Clone keeps derived loggers on the pretty wrapper.
func (e *prettyEncoder) Clone() zapcore.Encoder {
	return &prettyEncoder{Encoder: e.Encoder.Clone()}
}

func newPrettyLogger(level zap.AtomicLevel, output string) *zap.Logger {
	out := os.Stdout
	if output == "stderr" {
		out = os.Stderr
	}
	enc := &prettyEncoder{Encoder: zapcore.NewJSONEncoder(encoderConfig())}
	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)
	return zap.New(core, zap.ErrorOutput(zapcore.AddSync(os.Stderr)))
}

// EncodeEntry renders the entry. Falls back to the raw JSON line if it can't be decoded.
func (e *prettyEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}

	raw := append([]byte(nil), bytes.TrimSpace(buf.Bytes())...)
	var payload map[string]any
	if json.Unmarshal(raw, &payload) != nil {
		return buf, nil
	}
	buf.Reset()

	ts := entry.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.AppendString(timeStyle.Sprint("[" + ts.Format(time.DateTime) + "] "))
	buf.AppendString(styleLevel(entry.Level))
	if entry.LoggerName != "" {
		buf.AppendString(" " + nameStyle.Sprint(entry.LoggerName))
	}
	if entry.Message != "" {
		buf.AppendString(" " + entry.Message)
	}
	buf.AppendByte('\n')

	for _, line := range fieldLines(payload) {
		buf.AppendString(line)
		buf.AppendByte('\n')
	}
	return buf, nil
}

func styleLevel(lvl zapcore.Level) string {
	c, ok := levelPalette[lvl]
	if !ok {
		return lvl.CapitalString()
	}
	return c.Sprint(lvl.CapitalString())
}

// fieldLines returns "  key: value" lines sorted by key, skipping reserved keys.
func fieldLines(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		switch k {
		case timeKey, levelKey, messageKey, nameKey:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, "  "+keyStyle.Sprint(k)+": "+renderValue(payload[k]))
	}
	return lines
}

func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any, []any:
		out, err := json.MarshalIndent(val, "  ", "  ")
		if err != nil {
			return "<unprintable>"
		}
		return string(out)
	default:
		out, err := json.Marshal(val)
		if err != nil {
			return "<unprintable>"
		}
		return strings.TrimSpace(string(out))
	}
}
