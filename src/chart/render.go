package chart

import (
	"BikeDashboard/src/processor"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoData 过滤后没有可画的数据
var ErrNoData = errors.New("no data to plot")

const (
	barWidth   = 640
	barHeight  = 400
	lineWidth  = 800
	lineHeight = 400
)

// Render 按图表类型输出 SVG
func Render(spec processor.ChartSpec, w io.Writer) error {
	switch spec.Kind {
	case processor.ChartBox:
		return renderBox(spec, w)
	case processor.ChartBar:
		return renderBar(spec, w)
	case processor.ChartLine:
		return renderLine(spec, w)
	default:
		return fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
}

// renderBox 单列箱线图，gonum/plot 负责四分位数和离群点
func renderBox(spec processor.ChartSpec, w io.Writer) error {
	if len(spec.Values) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.Y.Label.Text = spec.YLabel

	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(spec.Values))
	if err != nil {
		return fmt.Errorf("boxplot %s: %w", spec.Title, err)
	}
	box.FillColor = drawing.ColorFromHex("8DB0FE")
	p.Add(box)
	if len(spec.Labels) > 0 {
		p.NominalX(spec.Labels...)
	}

	wt, err := p.WriterTo(3*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return err
	}
	_, err = w.Write(stripXMLProlog(buf.Bytes()))
	return err
}

// renderBar 柱状图，颜色取 coolwarm 色带
func renderBar(spec processor.ChartSpec, w io.Writer) error {
	if len(spec.Values) == 0 {
		return ErrNoData
	}

	colors := coolwarm(len(spec.Values))
	bars := make([]chart.Value, len(spec.Values))
	for i, v := range spec.Values {
		bars[i] = chart.Value{
			Label: spec.Labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   colors[i],
				StrokeColor: colors[i],
				StrokeWidth: 1,
			},
		}
	}

	graph := chart.BarChart{
		Title:      spec.Title,
		Width:      barWidth,
		Height:     barHeight,
		BarWidth:   80,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:           spec.YLabel,
			Range:          &chart.ContinuousRange{Min: 0, Max: upper(spec.Values)},
			ValueFormatter: chart.IntValueFormatter,
		},
		Bars: bars,
	}
	return graph.Render(chart.SVG, w)
}

// renderLine 折线图，横轴为 0-23 时
func renderLine(spec processor.ChartSpec, w io.Writer) error {
	if len(spec.X) == 0 || len(spec.X) != len(spec.Values) {
		return ErrNoData
	}

	lo, hi := spec.X[0], spec.X[0]
	for _, x := range spec.X {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	var ticks []chart.Tick
	for x := math.Ceil(lo); x <= hi; x++ {
		ticks = append(ticks, chart.Tick{Value: x, Label: strconv.Itoa(int(x))})
	}

	style := chart.Style{
		StrokeColor: chart.ColorBlue,
		StrokeWidth: 2,
		DotColor:    chart.ColorBlue,
		DotWidth:    4,
	}

	graph := chart.Chart{
		Title:      spec.Title,
		Width:      lineWidth,
		Height:     lineHeight,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 24, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  spec.XLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: upper(spec.Values)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.YLabel,
				XValues: spec.X,
				YValues: spec.Values,
				Style:   style,
			},
		},
	}
	return graph.Render(chart.SVG, w)
}

// upper 纵轴上限，留 10% 空白；全为 0 时取 1 避免区间为零
func upper(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		if !math.IsNaN(v) && v > top {
			top = v
		}
	}
	if top <= 0 {
		return 1
	}
	return top * 1.1
}

// coolwarm 在蓝(3B4CC0)与红(B40426)之间经浅灰插值出 n 个颜色
func coolwarm(n int) []drawing.Color {
	cool := drawing.Color{R: 0x3B, G: 0x4C, B: 0xC0, A: 0xFF}
	mid := drawing.Color{R: 0xDD, G: 0xDD, B: 0xDD, A: 0xFF}
	warm := drawing.Color{R: 0xB4, G: 0x04, B: 0x26, A: 0xFF}

	out := make([]drawing.Color, n)
	for i := range out {
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		if t <= 0.5 {
			out[i] = lerp(cool, mid, t*2)
		} else {
			out[i] = lerp(mid, warm, (t-0.5)*2)
		}
	}
	return out
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xFF}
}

// stripXMLProlog 内联到 HTML 时去掉 <svg 之前的 XML 声明
func stripXMLProlog(b []byte) []byte {
	if i := bytes.Index(b, []byte("<svg")); i > 0 {
		return b[i:]
	}
	return b
}
