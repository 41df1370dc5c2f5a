package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigsDefaultsWhenMissing(t *testing.T) {
	t.Setenv("BIKEDASH_DATA_PATH", "")
	t.Setenv("BIKEDASH_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, dcfg, err := loadConfigs(t.TempDir(), DefaultFile, DefaultDataFile)
	require.NoError(t, err)

	assert.Equal(t, "dashboard/df_hour_cleaned.csv", cfg.DataPath)
	assert.Equal(t, "127.0.0.1:8501", cfg.Server.Addr)
	assert.Equal(t, 10*time.Minute, cfg.ChartCacheTTL.Std())
	assert.Equal(t, []string{"cnt", "casual", "registered", "windspeed", "hum"}, dcfg.BoxplotColumns)
	assert.Equal(t, 5, dcfg.HeadRows)
	assert.Equal(t, "Berawan", dcfg.WeatherLabel("2"))
	assert.Equal(t, "9", dcfg.WeatherLabel("9"))
}

func TestLoadConfigsFromFiles(t *testing.T) {
	t.Setenv("BIKEDASH_DATA_PATH", "")
	t.Setenv("BIKEDASH_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`{
		"server": {"addr": ":9000", "read_timeout": "5s"},
		"data_path": "data/hour.xlsx",
		"sheet_name": "hour",
		"chart_cache_ttl": "1m30s"
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultDataFile), []byte(`{
		"boxplotcolumns": ["cnt"],
		"headrows": 0
	}`), 0644))

	cfg, dcfg, err := loadConfigs(dir, DefaultFile, DefaultDataFile)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Std())
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout.Std())
	assert.Equal(t, "data/hour.xlsx", cfg.DataPath)
	assert.Equal(t, "hour", cfg.SheetName)
	assert.Equal(t, 90*time.Second, cfg.ChartCacheTTL.Std())
	assert.Equal(t, []string{"cnt"}, dcfg.BoxplotColumns)
	assert.Equal(t, 5, dcfg.HeadRows)
	assert.Len(t, dcfg.RequiredColumns, 9)
}

func TestLoadConfigsEnvOverride(t *testing.T) {
	t.Setenv("BIKEDASH_DATA_PATH", "/tmp/hour.csv")
	t.Setenv("BIKEDASH_ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, _, err := loadConfigs(t.TempDir(), DefaultFile, DefaultDataFile)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/hour.csv", cfg.DataPath)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadConfigsBadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`{"server":`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultDataFile), []byte(`[]`), 0644))

	_, _, err := loadConfigs(dir, DefaultFile, DefaultDataFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "解析Config失败")
	assert.Contains(t, err.Error(), "解析DataConfig失败")
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"2m"`)))
	assert.Equal(t, 2*time.Minute, d.Std())

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(out))

	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
}
