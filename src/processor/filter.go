package processor

import (
	"BikeDashboard/src/datasource/file"
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DateRange 用户选择的日期。只有恰好两个日期时才过滤，
// 只选了一个日期(或没有)时原样返回整张表
type DateRange []time.Time

// ParseDateRange 解析页面提交的起止日期；无法解析的一端视为未填写
func ParseDateRange(start, end string) DateRange {
	var dr DateRange
	for _, s := range []string{start, end} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		t, err := file.ParseDate(s)
		if err != nil {
			continue
		}
		dr = append(dr, t)
	}
	return dr
}

func (dr DateRange) IsRange() bool { return len(dr) == 2 }

// String 用于缓存键和日志
func (dr DateRange) String() string {
	parts := make([]string, len(dr))
	for i, t := range dr {
		parts[i] = t.Format(file.DateLayout)
	}
	return strings.Join(parts, "..")
}

// FilterByDate 保留 dteday 落在 [dr[0], dr[1]] 内的行，两端都包含
func FilterByDate(df dataframe.DataFrame, dr DateRange) (dataframe.DataFrame, error) {
	if !dr.IsRange() {
		return df, nil
	}
	if err := requireColumns(df, file.DateColumn); err != nil {
		return df, err
	}

	// dteday 在加载时已统一成 2006-01-02，字符串比较即日期比较
	from := dr[0].Format(file.DateLayout)
	to := dr[1].Format(file.DateLayout)

	out := df.Filter(
		dataframe.F{
			Colname:    file.DateColumn,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool {
				s := el.String()
				return s >= from && s <= to
			},
		},
	)
	if out.Err != nil {
		return df, fmt.Errorf("按日期过滤失败: %w", out.Err)
	}
	return out, nil
}

// DateBounds 返回数据集的最早和最晚日期，用于限制日期选择器
func DateBounds(df dataframe.DataFrame) (time.Time, time.Time, error) {
	if err := requireColumns(df, file.DateColumn); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if df.Nrow() == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("数据集为空")
	}

	dates := df.Col(file.DateColumn).Records()
	lo, hi := dates[0], dates[0]
	for _, s := range dates[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	first, err := time.Parse(file.DateLayout, lo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last, err := time.Parse(file.DateLayout, hi)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return first, last, nil
}
