package processor

import (
	"BikeDashboard/src/config"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// Page 侧边栏上的页面名称(印尼语原文)
type Page string

const (
	PageAbout      Page = "Tentang Dataset"
	PageOverview   Page = "Data Overview"
	PageVisual     Page = "Visualisasi Data"
	PageClustering Page = "Clustering"
)

// Pages 侧边栏显示顺序
var Pages = []Page{PageAbout, PageOverview, PageVisual, PageClustering}

var ErrUnknownPage = errors.New("unknown page")

// ParsePage 空字符串取第一个页面
func ParsePage(s string) (Page, error) {
	if s == "" {
		return PageAbout, nil
	}
	for _, p := range Pages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
}

type ChartKind string

const (
	ChartBox  ChartKind = "box"
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

// ChartSpec 与绘图库无关的图表描述
//
//	box:  Labels[0] 为列名，Values 为样本
//	bar:  Labels 为类别，Values 为柱高
//	line: X 为横坐标，Values 为纵坐标
type ChartSpec struct {
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string
	Labels []string
	X      []float64
	Values []float64
}

// Section 页面上的一个小标题及其图表
type Section struct {
	Heading string
	Charts  []ChartSpec
}

// Table 字符串表格，第一行为表头
type Table [][]string

// View 一个页面渲染所需的全部内容
type View struct {
	Page       Page
	Title      string
	Intro      string
	InfoTitle  string
	Bullets    []string
	Metrics    *Metrics
	HeadLabel  string
	Head       Table
	StatsLabel string
	Summary    *Summary
	Sections   []Section
}

// BuildView 加载之后的整条流水线：过滤 -> 选页面 -> 聚合 -> 图表描述。
// 不做任何 I/O，相同输入得到相同输出
func BuildView(df dataframe.DataFrame, page Page, dr DateRange, dcfg *config.DataConfig) (View, error) {
	filtered, err := FilterByDate(df, dr)
	if err != nil {
		return View{}, err
	}

	switch page {
	case PageAbout:
		return aboutView(filtered)
	case PageOverview:
		return overviewView(filtered, dcfg)
	case PageVisual:
		return visualView(filtered, dcfg)
	case PageClustering:
		return clusteringView(filtered)
	default:
		return View{}, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
}

func aboutView(df dataframe.DataFrame) (View, error) {
	v := View{
		Page:  PageAbout,
		Title: "Tentang Dataset 🚴‍♂️",
		Intro: "Dataset ini berisi **data penyewaan sepeda** dari sistem **Capital Bikeshare** di " +
			"**Washington D.C., USA** selama tahun **2011-2012**.",
		InfoTitle: "Informasi Dataset",
		Bullets: []string{
			"**Sumber Data**: Capital Bikeshare system, Washington D.C., USA.",
			"**Periode Data**: Tahun **2011 - 2012**.",
		},
	}

	m, err := NewDataProcessor(df).CalculateMetrics()
	if err != nil {
		return View{}, err
	}
	v.Metrics = &m
	return v, nil
}

func overviewView(df dataframe.DataFrame, dcfg *config.DataConfig) (View, error) {
	n := 5
	if dcfg != nil && dcfg.HeadRows > 0 {
		n = dcfg.HeadRows
	}
	summary := Describe(df)
	return View{
		Page:       PageOverview,
		Title:      "Ringkasan Data",
		HeadLabel:  "Tampilan pertama dari dataset:",
		Head:       NewDataProcessor(df).Head(n),
		StatsLabel: "Statistik Deskriptif:",
		Summary:    &summary,
	}, nil
}

func visualView(df dataframe.DataFrame, dcfg *config.DataConfig) (View, error) {
	columns := config.DefaultData().BoxplotColumns
	if dcfg != nil && len(dcfg.BoxplotColumns) > 0 {
		columns = dcfg.BoxplotColumns
	}

	boxes, err := BoxplotSpecs(df, columns)
	if err != nil {
		return View{}, err
	}
	weather, err := WeatherChart(df, dcfg)
	if err != nil {
		return View{}, err
	}
	hourly, err := HourlyTrendChart(df)
	if err != nil {
		return View{}, err
	}

	return View{
		Page:  PageVisual,
		Title: "Visualisasi Data Penyewaan Sepeda",
		Sections: []Section{
			{Heading: "Boxplot Variabel Utama", Charts: boxes},
			{Heading: "Pengaruh Kondisi Cuaca terhadap Penyewaan Sepeda", Charts: []ChartSpec{weather}},
			{Heading: "Tren Permintaan Penyewaan Sepeda Berdasarkan Jam", Charts: []ChartSpec{hourly}},
		},
	}, nil
}

func clusteringView(df dataframe.DataFrame) (View, error) {
	chart, err := HourCategoryChart(df)
	if err != nil {
		return View{}, err
	}
	return View{
		Page:     PageClustering,
		Title:    "Clustering Kategori Jam",
		Sections: []Section{{Charts: []ChartSpec{chart}}},
	}, nil
}

// BoxplotSpecs 每列一个箱线图
func BoxplotSpecs(df dataframe.DataFrame, columns []string) ([]ChartSpec, error) {
	if err := requireColumns(df, columns...); err != nil {
		return nil, err
	}
	specs := make([]ChartSpec, 0, len(columns))
	for _, col := range columns {
		specs = append(specs, ChartSpec{
			Kind:   ChartBox,
			Title:  "Boxplot of " + col,
			YLabel: col,
			Labels: []string{col},
			Values: dropNaN(df.Col(col).Float()),
		})
	}
	return specs, nil
}

// WeatherChart 各天气状况下每小时平均租车量
func WeatherChart(df dataframe.DataFrame, dcfg *config.DataConfig) (ChartSpec, error) {
	groups, err := MeanBy(df, "weathersit", CountColumn)
	if err != nil {
		return ChartSpec{}, err
	}
	spec := barSpec(groups)
	spec.XLabel = weatherAxisLabel(dcfg)
	spec.YLabel = "Rata-rata Penyewaan Sepeda per Jam"
	return spec, nil
}

// HourlyTrendChart 每个小时的平均租车量折线
func HourlyTrendChart(df dataframe.DataFrame) (ChartSpec, error) {
	groups, err := MeanBy(df, HourColumn, CountColumn)
	if err != nil {
		return ChartSpec{}, err
	}
	spec := ChartSpec{
		Kind:   ChartLine,
		XLabel: "Jam dalam Sehari",
		YLabel: "Rata-rata Penyewaan Sepeda",
	}
	for _, g := range groups {
		spec.X = append(spec.X, g.KeyFloat())
		spec.Values = append(spec.Values, g.Mean)
	}
	return spec, nil
}

// HourCategoryChart 三类小时的平均租车量
func HourCategoryChart(df dataframe.DataFrame) (ChartSpec, error) {
	groups, err := MeanByHourCategory(df)
	if err != nil {
		return ChartSpec{}, err
	}
	spec := barSpec(groups)
	spec.XLabel = "Kategori Jam"
	spec.YLabel = "Rata-rata Penyewaan Sepeda"
	return spec, nil
}

func barSpec(groups []GroupMean) ChartSpec {
	spec := ChartSpec{Kind: ChartBar}
	for _, g := range groups {
		spec.Labels = append(spec.Labels, g.Key)
		spec.Values = append(spec.Values, g.Mean)
	}
	return spec
}

// weatherAxisLabel 例如 "Kondisi Cuaca (1 = Cerah, 2 = Berawan, 3 = Hujan ringan, 4 = Badai)"
func weatherAxisLabel(dcfg *config.DataConfig) string {
	if dcfg == nil {
		dcfg = config.DefaultData()
	}
	codes := make([]string, 0, len(dcfg.WeatherLabels))
	for code := range dcfg.WeatherLabels {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = fmt.Sprintf("%s = %s", code, dcfg.WeatherLabel(code))
	}
	return fmt.Sprintf("Kondisi Cuaca (%s)", strings.Join(parts, ", "))
}
