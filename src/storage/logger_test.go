package storage

import (
	"BikeDashboard/src/config"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	var console bytes.Buffer
	logger.SetConsole(&console)

	logger.Info("数据集已加载")
	logger.Debug("不会出现")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO: 数据集已加载")
	assert.NotContains(t, string(data), "不会出现")
	assert.Equal(t, string(data), console.String())
}

func TestLoggerLevelFilter(t *testing.T) {
	logger, err := NewLogger("")
	require.NoError(t, err)

	var out bytes.Buffer
	logger.SetConsole(&out)
	logger.SetLevel(ERROR)

	logger.Warning("w")
	logger.Error("e")

	assert.NotContains(t, out.String(), "WARNING")
	assert.Contains(t, out.String(), "ERROR: e")
}

func TestLoggerSubscribe(t *testing.T) {
	logger, err := NewLogger("")
	require.NoError(t, err)

	sub := logger.Subscribe()
	logger.Warning("hujan")

	entry := <-sub
	assert.True(t, strings.HasSuffix(entry, "WARNING: hujan\n"), entry)

	logger.Unsubscribe(sub)
	_, ok := <-sub
	assert.False(t, ok)

	// 取消订阅后继续写日志不应阻塞或 panic
	logger.Info("after")
}

func TestLoggerCheckRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	cfg := config.Default()
	cfg.LogMaxSize = "1 * 16"

	logger.Info("this line is longer than sixteen bytes")
	require.NoError(t, logger.CheckRotate(cfg))

	matches, err := filepath.Glob(filepath.Join(dir, "app.*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestLoggerRotateRenameFailureKeepsLogging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	cfg := config.Default()
	cfg.LogMaxSize = "1 * 16"

	logger.Info("this line is longer than sixteen bytes")
	// 文件被外部删除，改名必然失败
	require.NoError(t, os.Remove(path))
	assert.Error(t, logger.CheckRotate(cfg))

	logger.Info("after rotate")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "after rotate")

	// 新文件仍可正常 Stat 和轮转
	assert.NoError(t, logger.CheckRotate(cfg))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warn":    WARNING,
		"WARNING": WARNING,
		"error":   ERROR,
		"fatal":   FATAL,
		"":        INFO,
		"verbose": INFO,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestEval(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), eval("10 * 1024 * 1024"))
	assert.Equal(t, int64(2048), eval("2048"))
	assert.Equal(t, int64(0), eval(""))
	assert.Equal(t, int64(0), eval("10 * MB"))
}
