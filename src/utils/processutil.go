package utils

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 页面和命令行统一用印尼语数字格式(千分位 "."，小数点 ",")
var printer = message.NewPrinter(language.Indonesian)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	return Contains(df.Names(), name)
}

// MissingColumns 返回 df 中缺少的列
func MissingColumns(df dataframe.DataFrame, names ...string) []string {
	var missing []string
	for _, n := range names {
		if !HasColumn(df, n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// IsNumeric 判断列是否为数值类型
func IsNumeric(s series.Series) bool {
	return s.Type() == series.Int || s.Type() == series.Float
}

// FormatNumber 按印尼语习惯格式化数字；NaN 原样输出
func FormatNumber(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// FormatInt 整数千分位
func FormatInt(v int) string {
	return printer.Sprintf("%d", v)
}

// WriteExcel 把 DataFrame 写成 xlsx 输出到 w
func WriteExcel(df dataframe.DataFrame, sheetName string, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return fmt.Errorf("重命名工作表失败: %w", err)
		}
	}

	// 写入列名
	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	// 写入数据
	for colIdx, colName := range colNames {
		col := df.Col(colName)
		for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, cellValue(col.Elem(rowIdx))); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}

// cellValue 数值列按数值写入，缺失值写空
func cellValue(el series.Element) interface{} {
	if el.IsNA() {
		return nil
	}
	switch el.Type() {
	case series.Int:
		v, err := el.Int()
		if err != nil {
			return nil
		}
		return v
	case series.Float:
		return el.Float()
	case series.Bool:
		v, err := el.Bool()
		if err != nil {
			return nil
		}
		return v
	default:
		return el.String()
	}
}
