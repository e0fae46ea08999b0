package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"admincms/config"
)

func TestFieldsToZapFields(t *testing.T) {
	fields := fieldsToZapFields("id", 7, errors.New("boom"), 3.5, "dangling")

	require.Len(t, fields, 3)
	assert.Equal(t, "id", fields[0].Key)
	assert.Equal(t, "error", fields[1].Key)
	assert.Equal(t, "field", fields[2].Key)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestFileLoggerWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLoggerWithConfig("info", config.LogFileConfig{
		Enabled: true,
		Path:    filepath.Join(dir, "app.log"),
		MaxSize: 1,
	})
	l.Info("hello", "k", "v")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(dailyFileName(dir, time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
