package processor

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	HourColumn         = "hr"
	HourCategoryColumn = "Hour_Category"

	PeakHours    = "Peak Hours"
	NormalHours  = "Normal Hours"
	OffPeakHours = "Off-Peak Hours"
)

// HourCategory 按固定阈值把小时分成三类
//
//	7-9, 16-19 -> Peak Hours
//	10-15      -> Normal Hours
//	其余       -> Off-Peak Hours
func HourCategory(h int) string {
	switch {
	case 7 <= h && h <= 9, 16 <= h && h <= 19:
		return PeakHours
	case 10 <= h && h <= 15:
		return NormalHours
	default:
		return OffPeakHours
	}
}

// WithHourCategory 返回追加了 Hour_Category 列的新 DataFrame
func WithHourCategory(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := requireColumns(df, HourColumn); err != nil {
		return df, err
	}

	hours := df.Col(HourColumn)
	labels := make([]string, hours.Len())
	for i := 0; i < hours.Len(); i++ {
		h, err := hours.Elem(i).Int()
		if err != nil {
			return df, fmt.Errorf("row %d: hr: %w", i, err)
		}
		labels[i] = HourCategory(h)
	}

	out := df.Mutate(series.New(labels, series.String, HourCategoryColumn))
	if out.Err != nil {
		return df, out.Err
	}
	return out, nil
}
