package web

import (
	"BikeDashboard/src/chart"
	"BikeDashboard/src/datasource/file"
	"BikeDashboard/src/processor"
	"BikeDashboard/src/utils"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-gota/gota/dataframe"
)

type renderedChart struct {
	Title  string
	XLabel string
	SVG    template.HTML
	Empty  bool
}

type renderedSection struct {
	Heading string
	Charts  []renderedChart
}

// pageData 模板数据
type pageData struct {
	View     processor.View
	Pages    []processor.Page
	Start    string
	End      string
	MinDate  string
	MaxDate  string
	Sections []renderedSection
	Export   string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := processor.ParsePage(q.Get("page"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	df, gen, err := s.dataset.Snapshot()
	if err != nil {
		s.fail(w, "读取数据集失败", err)
		return
	}

	data := pageData{Pages: processor.Pages}
	if first, last, err := processor.DateBounds(df); err == nil {
		data.MinDate = first.Format(file.DateLayout)
		data.MaxDate = last.Format(file.DateLayout)
	}

	dr := processor.ParseDateRange(q.Get("start"), q.Get("end"))
	data.Start, data.End = data.MinDate, data.MaxDate
	if len(dr) > 0 {
		data.Start = dr[0].Format(file.DateLayout)
		data.End = ""
	}
	if dr.IsRange() {
		data.End = dr[1].Format(file.DateLayout)
	}

	view, err := processor.BuildView(df, page, dr, s.dcfg)
	if err != nil {
		s.fail(w, fmt.Sprintf("页面 %s 生成失败", page), err)
		return
	}
	data.View = view
	data.Export = exportQuery(dr)

	for i, sec := range view.Sections {
		rs := renderedSection{Heading: sec.Heading}
		for j, spec := range sec.Charts {
			rc := renderedChart{Title: spec.Title, XLabel: spec.XLabel}
			svg, err := s.charts.SVG(chart.Key(gen, page, dr, i, j), spec)
			switch {
			case errors.Is(err, chart.ErrNoData):
				rc.Empty = true
			case err != nil:
				s.fail(w, "图表渲染失败", err)
				return
			default:
				rc.SVG = svg
			}
			rs.Charts = append(rs.Charts, rc)
		}
		data.Sections = append(data.Sections, rs)
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		s.fail(w, "模板渲染失败", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// filtered 按查询参数中的日期过滤后的数据
func (s *Server) filtered(r *http.Request) (dataframe.DataFrame, error) {
	df, err := s.dataset.GetDF()
	if err != nil {
		return df, err
	}
	dr := processor.ParseDateRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	return processor.FilterByDate(df, dr)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	df, err := s.filtered(r)
	if err != nil {
		s.fail(w, "导出CSV失败", err)
		return
	}

	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		s.fail(w, "导出CSV失败", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="df_hour_filtered.csv"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	df, err := s.filtered(r)
	if err != nil {
		s.fail(w, "导出Excel失败", err)
		return
	}

	var buf bytes.Buffer
	if err := utils.WriteExcel(df, "df_hour", &buf); err != nil {
		s.fail(w, "导出Excel失败", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="df_hour_filtered.xlsx"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok", "path": s.dataset.Path()}
	code := http.StatusOK

	df, err := s.dataset.GetDF()
	if err != nil {
		resp["status"] = "error"
		resp["error"] = err.Error()
		code = http.StatusServiceUnavailable
	} else {
		resp["rows"] = df.Nrow()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// handleLogs 以 chunked 文本流推送实时日志，直到客户端断开
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.logger == nil {
		http.Error(w, "logger not configured", http.StatusNotFound)
		return
	}

	// 流式响应不受 WriteTimeout 限制
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	logChan := s.logger.Subscribe()
	defer s.logger.Unsubscribe(logChan)

	for {
		select {
		case msg, ok := <-logChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprint(w, msg); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

// fail 记录错误并返回 500
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	if s.logger != nil {
		s.logger.Error(fmt.Sprintf("%s: %v", msg, err))
	}
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusInternalServerError)
}

func exportQuery(dr processor.DateRange) string {
	if !dr.IsRange() {
		return ""
	}
	return fmt.Sprintf("?start=%s&end=%s", dr[0].Format(file.DateLayout), dr[1].Format(file.DateLayout))
}
