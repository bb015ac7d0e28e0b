package logging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/turtacn/ClauseWise/pkg/errors"
)

func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), buf, zapcore.DebugLevel)
	return NewLoggerFromCore(core), buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: LevelInfo, Format: format, OutputPaths: []string{"stdout"}})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewLogger_UnopenablePath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{filepath.Join(t.TempDir(), "missing", "dir", "out.log")}})
	assert.Error(t, err)
}

func TestNewLogger_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clausewise.log")
	l, err := NewLogger(LogConfig{
		Level:       LevelInfo,
		OutputPaths: []string{filepath.Join(t.TempDir(), "main.log")},
		File:        FileConfig{Enabled: true, Path: path, MaxSizeMB: 1, MaxBackups: 1},
	})
	require.NoError(t, err)
	l.Info("rotated entry")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rotated entry")
}

func TestNewLogger_FileWithoutPath(t *testing.T) {
	_, err := NewLogger(LogConfig{File: FileConfig{Enabled: true}})
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.Equal(t, l, l.WithContext(context.Background()))
	assert.Equal(t, l, l.WithError(errors.New("err")))
	assert.NoError(t, l.Sync())
}

func TestZapLogger_Levels(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	for _, lv := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, out, `"level":"`+lv+`"`)
		assert.Contains(t, out, lv+" msg")
	}
}

func TestZapLogger_TypedFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Info("fields",
		String("s", "v"),
		Int("i", 3),
		Int64("i64", 4),
		Float64("f", 0.5),
		Bool("b", true),
		Duration("d", time.Second),
		Any("a", []string{"x"}),
	)
	out := buf.String()
	assert.Contains(t, out, `"s":"v"`)
	assert.Contains(t, out, `"i":3`)
	assert.Contains(t, out, `"i64":4`)
	assert.Contains(t, out, `"f":0.5`)
	assert.Contains(t, out, `"b":true`)
	assert.Contains(t, out, `"a":["x"]`)
}

func TestZapLogger_With(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String("foo", "bar")).Info("msg")
	assert.Contains(t, buf.String(), `"foo":"bar"`)
}

func TestZapLogger_WithContext(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithContext(WithRequestID(context.Background(), "req-123")).Info("msg")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestZapLogger_WithError(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithError(apperrors.New(apperrors.ErrCodeCollaboratorUnavailable, "granite unavailable")).Warn("fallback")
	assert.Contains(t, buf.String(), `"error_code":"CW_002"`)
	assert.Contains(t, buf.String(), `"error":"[CW_002] granite unavailable"`)
}

func TestZapLogger_WithNilError(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithError(nil).Info("msg")
	assert.NotContains(t, buf.String(), `"error"`)
}

func TestSetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo})
	require.NoError(t, err)
	assert.NoError(t, SetLevel(l, LevelDebug))
	assert.Error(t, SetLevel(l, "loud"))
	assert.NoError(t, SetLevel(NewNopLogger(), LevelDebug))
}

func TestParseLevel(t *testing.T) {
	lv, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lv)

	lv, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lv)

	_, err = ParseLevel("invalid")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())
	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	//nolint:staticcheck
	assert.Equal(t, "", RequestIDFromContext(nil))
	assert.Equal(t, "r1", RequestIDFromContext(WithRequestID(context.Background(), "r1")))
}

func TestLogOperationDuration(t *testing.T) {
	l, buf := newTestLogger(t)
	LogOperationDuration(l, "classify", time.Now())
	assert.Contains(t, buf.String(), "operation completed")
	assert.Contains(t, buf.String(), `"operation":"classify"`)

	buf.Reset()
	LogOperationDuration(l, "simplify", time.Now().Add(-2*time.Second))
	assert.Contains(t, buf.String(), "slow operation")
}

//Personal.AI order the ending
