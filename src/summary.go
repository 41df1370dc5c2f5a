package main

import (
	"BikeDashboard/src/datasource/file"
	"BikeDashboard/src/processor"
	"BikeDashboard/src/utils"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	summaryPage  string
	summaryStart string
	summaryEnd   string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "在终端输出某个页面的数据",
	Long:  `与 Web 页面使用同一条计算流水线，把指标、表格和图表数据以文本表格输出。`,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryPage, "page", string(processor.PageOverview), "页面名称")
	summaryCmd.Flags().StringVar(&summaryStart, "start", "", "起始日期 YYYY-MM-DD")
	summaryCmd.Flags().StringVar(&summaryEnd, "end", "", "结束日期 YYYY-MM-DD")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, dcfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	page, err := processor.ParsePage(summaryPage)
	if err != nil {
		return err
	}

	df, err := file.Load(cfg.DataPath, cfg.SheetName)
	if err != nil {
		return err
	}
	dr := processor.ParseDateRange(summaryStart, summaryEnd)
	view, err := processor.BuildView(df, page, dr, dcfg)
	if err != nil {
		return err
	}
	return writeSummary(cmd.OutOrStdout(), view)
}

// writeSummary 把 View 输出为文本表格
func writeSummary(w io.Writer, view processor.View) error {
	fmt.Fprintf(w, "== %s ==\n", view.Title)
	if view.Intro != "" {
		fmt.Fprintln(w, plain(view.Intro))
	}
	for _, b := range view.Bullets {
		fmt.Fprintln(w, "- "+plain(b))
	}

	if m := view.Metrics; m != nil {
		table := newTable(w, []string{"Metrik", "Nilai"})
		table.Append([]string{"Jumlah Baris", utils.FormatInt(m.Rows)})
		table.Append([]string{"Rentang Tanggal", m.FirstDate + " - " + m.LastDate})
		table.Append([]string{"Tahun", joinInts(m.Years)})
		table.Append([]string{"Total Penyewaan", utils.FormatNumber(m.TotalRentals, 0)})
		table.Append([]string{"Rata-rata per Jam", utils.FormatNumber(m.MeanCount, 2)})
		table.Render()
	}

	if len(view.Head) > 0 {
		fmt.Fprintln(w, view.HeadLabel)
		table := newTable(w, view.Head[0])
		table.AppendBulk(view.Head[1:])
		table.Render()
	}

	if s := view.Summary; s != nil {
		fmt.Fprintln(w, view.StatsLabel)
		table := newTable(w, append([]string{""}, s.Columns...))
		for i, stat := range s.Stats {
			row := []string{stat}
			for _, v := range s.Values[i] {
				row = append(row, utils.FormatNumber(v, 2))
			}
			table.Append(row)
		}
		table.Render()
	}

	for _, sec := range view.Sections {
		if sec.Heading != "" {
			fmt.Fprintf(w, "-- %s --\n", sec.Heading)
		}
		for _, spec := range sec.Charts {
			writeChartData(w, spec)
		}
	}
	return nil
}

func writeChartData(w io.Writer, spec processor.ChartSpec) {
	switch spec.Kind {
	case processor.ChartBox:
		data := stats.Float64Data(spec.Values)
		q, _ := stats.Quartile(data)
		minV, _ := data.Min()
		maxV, _ := data.Max()
		fmt.Fprintf(w, "%s: n=%d min=%s Q1=%s median=%s Q3=%s max=%s\n", spec.Title, len(data),
			utils.FormatNumber(minV, 2), utils.FormatNumber(q.Q1, 2), utils.FormatNumber(q.Q2, 2),
			utils.FormatNumber(q.Q3, 2), utils.FormatNumber(maxV, 2))
	case processor.ChartLine:
		table := newTable(w, []string{spec.XLabel, spec.YLabel})
		for i, x := range spec.X {
			table.Append([]string{strconv.FormatFloat(x, 'f', -1, 64), utils.FormatNumber(spec.Values[i], 2)})
		}
		table.Render()
	default:
		table := newTable(w, []string{spec.XLabel, spec.YLabel})
		for i, label := range spec.Labels {
			table.Append([]string{label, utils.FormatNumber(spec.Values[i], 2)})
		}
		table.Render()
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

// plain 去掉 markdown 粗体标记
func plain(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
