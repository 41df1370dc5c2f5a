package main

import (
	"BikeDashboard/src/chart"
	"BikeDashboard/src/config"
	"BikeDashboard/src/datasource/file"
	"BikeDashboard/src/processor"
	"BikeDashboard/src/storage"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `dteday,yr,hr,weathersit,hum,windspeed,casual,registered,cnt
2011-01-01,0,8,1,0.8,0.1,2,8,10
2011-06-15,0,12,1,0.6,0.2,5,15,20
2012-12-31,1,22,2,0.4,0.3,10,20,30
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "df_hour_cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func buildView(t *testing.T, page processor.Page) processor.View {
	t.Helper()
	df, err := file.Load(writeSample(t, sample), "")
	require.NoError(t, err)
	view, err := processor.BuildView(df, page, nil, config.DefaultData())
	require.NoError(t, err)
	return view
}

func TestWriteSummaryAbout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, buildView(t, processor.PageAbout)))

	out := buf.String()
	assert.Contains(t, out, "Capital Bikeshare")
	assert.NotContains(t, out, "**")
	assert.Contains(t, out, "2011, 2012")
	assert.Contains(t, out, "2011-01-01 - 2012-12-31")
}

func TestWriteSummaryOverview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, buildView(t, processor.PageOverview)))

	out := buf.String()
	assert.Contains(t, out, "Statistik Deskriptif:")
	assert.Contains(t, out, "2012-12-31")
	// 印尼语小数点为逗号
	assert.Contains(t, out, "20,00")
}

func TestWriteSummaryCharts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, buildView(t, processor.PageVisual)))
	out := buf.String()
	assert.Contains(t, out, "Boxplot of cnt: n=3")
	assert.Contains(t, out, "Jam dalam Sehari")

	buf.Reset()
	require.NoError(t, writeSummary(&buf, buildView(t, processor.PageClustering)))
	assert.Contains(t, buf.String(), "Off-Peak Hours")
}

func TestReloadHandler(t *testing.T) {
	path := writeSample(t, sample)
	ds := file.NewDataset(path, "")
	df, err := ds.GetDF()
	require.NoError(t, err)
	require.Equal(t, 3, df.Nrow())

	logger, err := storage.NewLogger("")
	require.NoError(t, err)
	charts := chart.NewRenderer(time.Minute)
	_, err = charts.SVG("k", processor.ChartSpec{Kind: processor.ChartBar, Labels: []string{"1"}, Values: []float64{1}})
	require.NoError(t, err)

	reload := reloadHandler(ds, charts, logger)

	// 文件损坏时保留旧数据和缓存
	require.NoError(t, os.WriteFile(path, []byte("dteday,cnt\nkemarin,1\n"), 0644))
	reload(path)
	df, _ = ds.GetDF()
	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, 1, charts.Len())

	twoRows := strings.Join(strings.Split(sample, "\n")[:3], "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(twoRows), 0644))
	reload(path)
	df, _ = ds.GetDF()
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, 0, charts.Len())
}

func TestStartRotation(t *testing.T) {
	logger, err := storage.NewLogger("")
	require.NoError(t, err)

	cfg := config.Default()
	c, err := startRotation(cfg, logger)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	c.Stop()

	cfg.RotateInterval = 0
	c, err = startRotation(cfg, logger)
	require.NoError(t, err)
	assert.Empty(t, c.Entries())
	c.Stop()
}

func TestLoadConfigDataOverride(t *testing.T) {
	configDir = t.TempDir()
	dataPath = "elsewhere/df_hour.xlsx"
	defer func() { configDir, dataPath = config.DefaultFolder, "" }()

	cfg, dcfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "elsewhere/df_hour.xlsx", cfg.DataPath)
	assert.Equal(t, 5, dcfg.HeadRows)
}

func TestHandleHangupReloads(t *testing.T) {
	path := writeSample(t, sample)
	ds := file.NewDataset(path, "")
	_, err := ds.GetDF()
	require.NoError(t, err)

	logName := filepath.Join(t.TempDir(), "app.log")
	logger, err := storage.NewLogger(logName)
	require.NoError(t, err)
	defer logger.Close()

	cfg := config.Default()
	cfg.LogName = logName

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hup := make(chan os.Signal, 1)
	go handleHangup(ctx, hup, cfg, ds, chart.NewRenderer(0), logger)

	twoRows := strings.Join(strings.Split(sample, "\n")[:3], "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(twoRows), 0644))
	hup <- syscall.SIGHUP

	assert.Eventually(t, func() bool {
		df, _ := ds.GetDF()
		return df.Nrow() == 2
	}, 2*time.Second, 10*time.Millisecond)
}
