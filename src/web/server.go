package web

import (
	"BikeDashboard/src/chart"
	"BikeDashboard/src/config"
	"BikeDashboard/src/datasource/file"
	"BikeDashboard/src/processor"
	"BikeDashboard/src/storage"
	"BikeDashboard/src/utils"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server 仪表盘的 HTTP 层：数据集只读，每个请求独立计算视图
type Server struct {
	router  *chi.Mux
	dataset *file.Dataset
	dcfg    *config.DataConfig
	logger  *storage.Logger
	charts  *chart.Renderer
	tmpl    *template.Template
}

// NewServer 解析模板并注册路由
func NewServer(ds *file.Dataset, dcfg *config.DataConfig, logger *storage.Logger, charts *chart.Renderer) (*Server, error) {
	funcMap := template.FuncMap{
		"md": func(s string) template.HTML {
			return template.HTML(markdown.ToHTML([]byte(s), nil, nil))
		},
		"num": func(v float64) string { return utils.FormatNumber(v, 2) },
		"int": utils.FormatInt,
		"pageURL": func(p processor.Page, start, end string) string {
			q := url.Values{}
			q.Set("page", string(p))
			if start != "" {
				q.Set("start", start)
			}
			if end != "" {
				q.Set("end", end)
			}
			return "/?" + q.Encode()
		},
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if dcfg == nil {
		dcfg = config.DefaultData()
	}
	if charts == nil {
		charts = chart.NewRenderer(0)
	}

	s := &Server{
		router:  chi.NewRouter(),
		dataset: ds,
		dcfg:    dcfg,
		logger:  logger,
		charts:  charts,
		tmpl:    tmpl,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/", s.handleDashboard)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
		r.Get("/healthz", s.handleHealth)
	})

	// 长连接，不压缩
	s.router.Get("/logs", s.handleLogs)
}

// ServeHTTP 实现 http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer 按配置包装成 *http.Server
func (s *Server) HTTPServer(cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}
}

// requestLogger 每个请求一行访问日志
func requestLogger(logger *storage.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			if logger == nil {
				return
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			msg := fmt.Sprintf("%s %s %d %dB %v reqid=%s",
				r.Method, r.URL.RequestURI(), status, ww.BytesWritten(),
				time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
			if status >= http.StatusInternalServerError {
				logger.Error(msg)
			} else {
				logger.Debug(msg)
			}
		})
	}
}
