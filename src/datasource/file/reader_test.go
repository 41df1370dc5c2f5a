package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `dteday,yr,hr,weathersit,hum,windspeed,casual,registered,cnt
2011-01-01,0,0,1,0.81,0.0,3,13,16
2011-01-03,0,8,2,0.44,0.2537,5,90,95
2012-12-31,1,17,1,0.6,0.1642,20,100,120
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "df_hour_cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSVDerivesWeekday(t *testing.T) {
	df, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, series.Int, df.Col("cnt").Type())
	assert.Equal(t, series.Float, df.Col("hum").Type())

	// 2011-01-01 周六, 2011-01-03 周一, 2012-12-31 周一
	weekdays, err := df.Col(WeekdayColumn).Int()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 0, 0}, weekdays)
}

func TestReadCSVBadDate(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("dteday,cnt\nkemarin,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kemarin")
}

func TestReadCSVMissingDate(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("hr,cnt\n1,1\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2011-01-01", "2011-01-01 00:00:00", "2011/01/01", "1/1/2011", "40544"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s -> %s", in, got)
	}
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hour.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"dteday", "hr", "cnt"},
		{"2011-01-01", 0, 16},
		{"2011-01-02", 1, 40},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	df, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"2011-01-01", "2011-01-02"}, df.Col(DateColumn).Records())

	cnt, err := df.Col("cnt").Int()
	require.NoError(t, err)
	assert.Equal(t, []int{16, 40}, cnt)

	_, err = Load(path, "missing")
	assert.Error(t, err)
}

func TestDatasetCachesUntilReload(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	ds := NewDataset(path, "")

	df, err := ds.GetDF()
	require.NoError(t, err)
	assert.Equal(t, 3, df.Nrow())

	// 文件被改写后，缓存值不变
	require.NoError(t, os.WriteFile(path, []byte("dteday,cnt\n2011-01-01,1\n"), 0644))
	df, err = ds.GetDF()
	require.NoError(t, err)
	assert.Equal(t, 3, df.Nrow())

	require.NoError(t, ds.Reload())
	df, err = ds.GetDF()
	require.NoError(t, err)
	assert.Equal(t, 1, df.Nrow())
}

func TestDatasetReloadKeepsOldOnError(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	ds := NewDataset(path, "")
	_, err := ds.GetDF()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("dteday,cnt\nbukan-tanggal,1\n"), 0644))
	assert.Error(t, ds.Reload())

	df, err := ds.GetDF()
	require.NoError(t, err)
	assert.Equal(t, 3, df.Nrow())
}

func TestDatasetSnapshotGeneration(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	ds := NewDataset(path, "")

	_, gen1, err := ds.Snapshot()
	require.NoError(t, err)
	_, again, _ := ds.Snapshot()
	assert.Equal(t, gen1, again)

	require.NoError(t, ds.Reload())
	_, gen2, _ := ds.Snapshot()
	assert.Greater(t, gen2, gen1)

	// 重新加载失败不改变版本号
	require.NoError(t, os.WriteFile(path, []byte("dteday,cnt\nbukan-tanggal,1\n"), 0644))
	assert.Error(t, ds.Reload())
	_, gen3, _ := ds.Snapshot()
	assert.Equal(t, gen2, gen3)
}

func TestDatasetLoadError(t *testing.T) {
	ds := NewDataset(filepath.Join(t.TempDir(), "missing.csv"), "")
	_, err := ds.GetDF()
	assert.Error(t, err)
}

func TestFileMonitorNotifiesOnWrite(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	monitor, err := NewFileMonitor(path)
	require.NoError(t, err)
	defer monitor.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan string, 1)
	go func() {
		_ = monitor.Watch(ctx, func(name string) {
			select {
			case changed <- name:
			default:
			}
		})
	}()

	// 同目录下其他文件不触发
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.csv"), []byte("x"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	select {
	case name := <-changed:
		assert.Equal(t, filepath.Base(path), filepath.Base(name))
	case <-ctx.Done():
		t.Fatal("no change notification")
	}
}
