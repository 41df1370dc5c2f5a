// reader.go
package file

import (
	"BikeDashboard/src/utils"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

const (
	DateColumn    = "dteday"
	WeekdayColumn = "weekday"
	DateLayout    = "2006-01-02"

	Number string = "^[0-9.]+$"
)

var numberRe = regexp.MustCompile(Number)

// 需要固定类型的列，其余列交给 gota 自动推断
var columnTypes = map[string]series.Type{
	DateColumn:   series.String,
	"yr":         series.Int,
	"hr":         series.Int,
	"weathersit": series.Int,
	"cnt":        series.Int,
	"casual":     series.Int,
	"registered": series.Int,
}

// Load 按扩展名读取数据集(.csv / .xlsx)，解析日期并派生 weekday 列
func Load(path, sheetName string) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSXToDataFrame(path, sheetName)
	default:
		f, err := os.Open(path)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("failed to open dataset: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

// ReadCSV 从 r 读取 CSV
func ReadCSV(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r, dataframe.WithTypes(columnTypes))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse csv: %w", df.Err)
	}
	return prepare(df)
}

// ReadXLSXToDataFrame 读取 xlsx，第一行为表头；sheetName 为空时取第一个工作表
func ReadXLSXToDataFrame(filePath, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("excel文件中没有工作表: %s", filePath)
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("工作表 %s 不存在", sheetName)
		}
		sheet = s
	}

	records, err := sheetRecords(sheet)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	df := dataframe.LoadRecords(records, dataframe.WithTypes(columnTypes))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("转换为dataframe失败: %w", df.Err)
	}
	return prepare(df)
}

// sheetRecords 把工作表转成字符串记录，短行补空
func sheetRecords(sheet *xlsx.Sheet) ([][]string, error) {
	if len(sheet.Rows) < 2 {
		return nil, fmt.Errorf("工作表 %s 没有数据行", sheet.Name)
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, strings.TrimSpace(cell.String()))
	}

	records := make([][]string, 0, len(sheet.Rows))
	records = append(records, headers)
	for _, row := range sheet.Rows[1:] {
		if row == nil || len(row.Cells) == 0 {
			continue
		}
		rec := make([]string, len(headers))
		for i, cell := range row.Cells {
			if i < len(headers) { // 确保不超出列数范围
				rec[i] = cell.String()
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// prepare 统一日期格式并追加 weekday(周一=0)
func prepare(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !utils.HasColumn(df, DateColumn) {
		return dataframe.DataFrame{}, fmt.Errorf("missing column %q", DateColumn)
	}

	raw := df.Col(DateColumn).Records()
	dates := make([]string, len(raw))
	weekdays := make([]int, len(raw))
	for i, s := range raw {
		t, err := ParseDate(s)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("row %d: %w", i, err)
		}
		dates[i] = t.Format(DateLayout)
		weekdays[i] = (int(t.Weekday()) + 6) % 7
	}

	df = df.Mutate(series.New(dates, series.String, DateColumn)).
		Mutate(series.New(weekdays, series.Int, WeekdayColumn))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("派生 weekday 失败: %w", df.Err)
	}
	return df, nil
}

// ParseDate 尝试多种日期格式，也接受 Excel 序列号
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	formats := []string{
		DateLayout,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006/01/02",
		"01-02-06",
		"1-2-06",
		"1/2/2006",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	if numberRe.MatchString(s) {
		if days, err := strconv.ParseFloat(s, 64); err == nil {
			return excelToTime(days), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期 %q", s)
}

// excelToTime Excel 序列号转日期(1900 日期系统)
func excelToTime(excelDays float64) time.Time {
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(excelDays))
}

