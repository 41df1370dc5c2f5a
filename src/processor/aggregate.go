package processor

import (
	"BikeDashboard/src/utils"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

var ErrMissingColumn = errors.New("missing column")

// GroupMean 分组均值的一行
type GroupMean struct {
	Key   string
	Mean  float64
	Count int

	order float64 // 数值型分组键的排序值
}

// KeyFloat 数值型分组键的数值
func (g GroupMean) KeyFloat() float64 { return g.order }

func requireColumns(df dataframe.DataFrame, names ...string) error {
	if missing := utils.MissingColumns(df, names...); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// MeanBy 按 keyCol 分组求 valueCol 的算术平均；没有行的分组不出现。
// 数值型分组键按数值排序，其余按字符串排序
func MeanBy(df dataframe.DataFrame, keyCol, valueCol string) ([]GroupMean, error) {
	if err := requireColumns(df, keyCol, valueCol); err != nil {
		return nil, err
	}
	if df.Nrow() == 0 {
		return nil, nil
	}

	numeric := utils.IsNumeric(df.Col(keyCol))
	groups := df.GroupBy(keyCol).GetGroups()

	out := make([]GroupMean, 0, len(groups))
	for _, g := range groups {
		if g.Nrow() == 0 {
			continue
		}
		key := g.Col(keyCol).Elem(0)
		gm := GroupMean{
			Key:   key.String(),
			Mean:  g.Col(valueCol).Mean(),
			Count: g.Nrow(),
		}
		if numeric {
			gm.order = key.Float()
		}
		out = append(out, gm)
	}

	sort.Slice(out, func(i, j int) bool {
		if numeric {
			return out[i].order < out[j].order
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// MeanByHourCategory 按派生的小时类别求 cnt 均值
func MeanByHourCategory(df dataframe.DataFrame) ([]GroupMean, error) {
	withCat, err := WithHourCategory(df)
	if err != nil {
		return nil, err
	}
	return MeanBy(withCat, HourCategoryColumn, CountColumn)
}
