package main

import (
	"BikeDashboard/src/config"
	"os"

	"github.com/spf13/cobra"
)

var (
	configDir string
	dataPath  string
)

var rootCmd = &cobra.Command{
	Use:   "bikedash",
	Short: "Capital Bikeshare 每小时租车数据仪表盘",
	Long: `bikedash 读取清洗后的每小时租车数据集(df_hour_cleaned.csv)，
在浏览器中提供数据概览、描述统计、天气与小时维度的可视化以及小时类别聚类。`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultFolder, "配置文件目录")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "数据集路径(.csv/.xlsx)，覆盖配置文件")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 读取配置，命令行 --data 优先
func loadConfig() (*config.Config, *config.DataConfig, error) {
	cfg, dcfg, err := config.LoadConfig(configDir, config.DefaultFile, config.DefaultDataFile)
	if err != nil {
		return nil, nil, err
	}
	if dataPath != "" {
		cfg.DataPath = dataPath
	}
	return cfg, dcfg, nil
}
