// data.go
package processor

import (
	"BikeDashboard/src/datasource/file"
	"sort"

	"github.com/go-gota/gota/dataframe"
)

const (
	CountColumn = "cnt"
	YearColumn  = "yr"

	// yr=0 表示 2011，yr=1 表示 2012
	BaseYear = 2011
)

// Metrics 数据集概览指标
type Metrics struct {
	Rows         int
	FirstDate    string
	LastDate     string
	Years        []int
	TotalRentals float64
	MeanCount    float64
}

type DataProcessor struct {
	df dataframe.DataFrame
}

func NewDataProcessor(df dataframe.DataFrame) *DataProcessor {
	return &DataProcessor{df: df}
}

// CalculateMetrics 计算概览指标
func (p *DataProcessor) CalculateMetrics() (Metrics, error) {
	if err := requireColumns(p.df, file.DateColumn, YearColumn, CountColumn); err != nil {
		return Metrics{}, err
	}

	m := Metrics{Rows: p.df.Nrow()}
	if m.Rows == 0 {
		return m, nil
	}

	first, last, err := DateBounds(p.df)
	if err != nil {
		return Metrics{}, err
	}
	m.FirstDate = first.Format(file.DateLayout)
	m.LastDate = last.Format(file.DateLayout)

	cnt := p.df.Col(CountColumn)
	m.MeanCount = cnt.Mean()
	for _, v := range cnt.Float() {
		m.TotalRentals += v
	}

	seen := map[int]bool{}
	years := p.df.Col(YearColumn)
	for i := 0; i < years.Len(); i++ {
		yr, err := years.Elem(i).Int()
		if err != nil {
			continue
		}
		if !seen[yr] {
			seen[yr] = true
			m.Years = append(m.Years, BaseYear+yr)
		}
	}
	sort.Ints(m.Years)
	return m, nil
}

// Head 返回前 n 行(含表头)的字符串记录
func (p *DataProcessor) Head(n int) [][]string {
	if n > p.df.Nrow() {
		n = p.df.Nrow()
	}
	if n <= 0 {
		return [][]string{p.df.Names()}
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return p.df.Subset(idx).Records()
}
