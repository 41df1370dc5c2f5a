package main

import (
	"BikeDashboard/src/chart"
	"BikeDashboard/src/config"
	"BikeDashboard/src/datasource/file"
	"BikeDashboard/src/storage"
	"BikeDashboard/src/utils"
	"BikeDashboard/src/web"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动仪表盘 Web 服务",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, dcfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	// 初始化日志系统
	logger, err := storage.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	// 启动时加载一次，失败直接退出
	ds := file.NewDataset(cfg.DataPath, cfg.SheetName)
	df, err := ds.GetDF()
	if err != nil {
		logger.Fatal(fmt.Sprintf("加载数据集 %s 失败: %v", cfg.DataPath, err))
		return err
	}
	logger.Info(fmt.Sprintf("已加载数据集 %s (%d 行, %d 列)", cfg.DataPath, df.Nrow(), df.Ncol()))
	if missing := utils.MissingColumns(df, dcfg.RequiredColumns...); len(missing) > 0 {
		logger.Warning("数据集缺少列，相关页面将无法显示: " + strings.Join(missing, ", "))
	}

	charts := chart.NewRenderer(cfg.ChartCacheTTL.Std())
	srv, err := web.NewServer(ds, dcfg, logger, charts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := startRotation(cfg, logger)
	if err != nil {
		logger.Error("创建日志轮转任务失败: " + err.Error())
		return err
	}
	defer c.Stop()

	if cfg.WatchData {
		go watchDataset(ctx, ds, charts, logger)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go handleHangup(ctx, hup, cfg, ds, charts, logger)

	httpSrv := srv.HTTPServer(cfg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	logger.Info(fmt.Sprintf("仪表盘已启动: http://%s ，按Ctrl+C退出", cfg.Server.Addr))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP服务异常退出: " + err.Error())
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("收到退出信号，正在关闭...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warning("关闭HTTP服务超时: " + err.Error())
		}
		return nil
	}
}

// startRotation 按 RotateInterval 定时检查日志大小
func startRotation(cfg *config.Config, logger *storage.Logger) (*cron.Cron, error) {
	c := cron.New()
	interval := cfg.RotateInterval.Std()
	if interval <= 0 {
		return c, nil
	}

	cronSpec := fmt.Sprintf("@every %s", interval)
	err := c.AddFunc(cronSpec, func() {
		if err := logger.CheckRotate(cfg); err != nil {
			logger.Error("日志轮转失败: " + err.Error())
		}
	})
	if err != nil {
		return c, err
	}
	c.Start()
	return c, nil
}

// watchDataset 数据文件变化时重新加载，直到 ctx 结束
func watchDataset(ctx context.Context, ds *file.Dataset, charts *chart.Renderer, logger *storage.Logger) {
	monitor, err := file.NewFileMonitor(ds.Path())
	if err != nil {
		logger.Error("创建文件监控失败: " + err.Error())
		return
	}
	defer monitor.Close()

	logger.Info("开始监控数据集: " + ds.Path())
	if err := monitor.Watch(ctx, reloadHandler(ds, charts, logger)); err != nil {
		logger.Error("文件监控出错: " + err.Error())
	}
}

// handleHangup 收到 SIGHUP 时重新打开日志文件并重新加载数据集，
// 配合外部 logrotate 使用
func handleHangup(ctx context.Context, hup <-chan os.Signal, cfg *config.Config,
	ds *file.Dataset, charts *chart.Renderer, logger *storage.Logger) {
	reload := reloadHandler(ds, charts, logger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if cfg.LogName != "" {
				if err := logger.Reopen(cfg.LogName); err != nil {
					logger.Error("重新打开日志文件失败: " + err.Error())
				}
			}
			logger.Info("收到 SIGHUP")
			reload(ds.Path())
		}
	}
}

// reloadHandler 重新加载失败时继续使用旧数据
func reloadHandler(ds *file.Dataset, charts *chart.Renderer, logger *storage.Logger) func(string) {
	return func(path string) {
		t1 := time.Now()
		if err := ds.Reload(); err != nil {
			logger.Error(fmt.Sprintf("重新加载 %s 失败，继续使用旧数据: %v", path, err))
			return
		}
		charts.Flush()
		logger.Info(fmt.Sprintf("数据集已重新加载(%v): %s", time.Since(t1), path))
	}
}
