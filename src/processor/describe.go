package processor

import (
	"BikeDashboard/src/utils"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/montanaflynn/stats"
)

// SummaryStats describe() 输出的统计项顺序
var SummaryStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Summary 数值列的描述性统计，Values[统计项][列]
type Summary struct {
	Columns []string
	Stats   []string
	Values  [][]float64
}

// Value 取某列某统计项
func (s Summary) Value(stat, column string) (float64, bool) {
	si, ci := -1, -1
	for i, v := range s.Stats {
		if v == stat {
			si = i
		}
	}
	for i, v := range s.Columns {
		if v == column {
			ci = i
		}
	}
	if si < 0 || ci < 0 {
		return math.NaN(), false
	}
	return s.Values[si][ci], true
}

// Describe 对每个数值列计算 count/mean/std/min/25%/50%/75%/max；
// 缺失值不计入，std 为样本标准差
func Describe(df dataframe.DataFrame) Summary {
	s := Summary{Stats: SummaryStats}
	for _, name := range df.Names() {
		if utils.IsNumeric(df.Col(name)) {
			s.Columns = append(s.Columns, name)
		}
	}

	s.Values = make([][]float64, len(SummaryStats))
	for i := range s.Values {
		s.Values[i] = make([]float64, len(s.Columns))
	}

	for ci, name := range s.Columns {
		for si, v := range describeColumn(dropNaN(df.Col(name).Float())) {
			s.Values[si][ci] = v
		}
	}
	return s
}

func describeColumn(data stats.Float64Data) []float64 {
	nan := math.NaN()
	out := []float64{float64(len(data)), nan, nan, nan, nan, nan, nan, nan}
	if len(data) == 0 {
		return out
	}

	out[1] = orNaN(stats.Mean(data))
	out[2] = orNaN(stats.StandardDeviationSample(data))
	out[3] = orNaN(stats.Min(data))
	sorted := stats.Float64Data(append([]float64(nil), data...))
	sort.Float64s(sorted)
	out[4] = quantile(sorted, 0.25)
	out[5] = quantile(sorted, 0.50)
	out[6] = quantile(sorted, 0.75)
	out[7] = orNaN(stats.Max(data))
	return out
}

// quantile 线性插值分位数，与 pandas describe() 一致；sorted 须已升序
func quantile(sorted stats.Float64Data, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func orNaN(v float64, err error) float64 {
	if err != nil {
		return math.NaN()
	}
	return v
}

func dropNaN(in []float64) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(in))
	for _, v := range in {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
