package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Server struct {
		Addr         string   `json:"addr"`          // 监听地址，默认只绑定本机
		ReadTimeout  Duration `json:"read_timeout"`  // 读取请求超时
		WriteTimeout Duration `json:"write_timeout"` // 写响应超时
	} `json:"server"`

	DataPath  string `json:"data_path"`  // 数据集路径(.csv 或 .xlsx)
	SheetName string `json:"sheet_name"` // xlsx 数据集的工作表，空则取第一个
	WatchData bool   `json:"watch_data"` // 数据文件变化时重新加载

	LogName        string   `json:"log_name"`
	LogLevel       string   `json:"log_level"`
	LogMaxSize     string   `json:"log_max_size"` // 例如 "10 * 1024 * 1024"
	LogStdout      bool     `json:"log_stdout"`
	RotateInterval Duration `json:"rotate_interval"` // 日志轮转检查间隔

	ChartCacheTTL Duration `json:"chart_cache_ttl"`
}

// DataConfig 数据相关配置：列名、图表列、天气标签
type DataConfig struct {
	RequiredColumns []string          `json:"requiredcolumns"`
	BoxplotColumns  []string          `json:"boxplotcolumns"`
	WeatherLabels   map[string]string `json:"weatherlabels"`
	HeadRows        int               `json:"headrows"`
}

const (
	DefaultFolder   = "./config"
	DefaultFile     = "config.json"
	DefaultDataFile = "dataconfig.json"
)

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
)

// Default 返回内置默认配置
func Default() *Config {
	cfg := &Config{
		DataPath:       "dashboard/df_hour_cleaned.csv",
		LogName:        "app.log",
		LogLevel:       "INFO",
		LogMaxSize:     "10 * 1024 * 1024",
		LogStdout:      true,
		RotateInterval: Duration(time.Minute),
		ChartCacheTTL:  Duration(10 * time.Minute),
	}
	cfg.Server.Addr = "127.0.0.1:8501"
	cfg.Server.ReadTimeout = Duration(15 * time.Second)
	cfg.Server.WriteTimeout = Duration(60 * time.Second)
	return cfg
}

// DefaultData 返回内置默认数据配置
func DefaultData() *DataConfig {
	return &DataConfig{
		RequiredColumns: []string{"dteday", "yr", "hr", "weathersit", "cnt", "casual", "registered", "windspeed", "hum"},
		BoxplotColumns:  []string{"cnt", "casual", "registered", "windspeed", "hum"},
		WeatherLabels: map[string]string{
			"1": "Cerah",
			"2": "Berawan",
			"3": "Hujan ringan",
			"4": "Badai",
		},
		HeadRows: 5,
	}
}

// LoadConfig 只加载一次配置，后续调用返回同一实例
func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	// .env 可选，缺失的文件跳过
	for _, env := range []string{filepath.Join(jsonFolder, ".env"), ".env"} {
		_ = godotenv.Load(env)
	}
	applyEnv(cfg)

	return cfg, dcfg, nil
}

// readFile 文件不存在时返回 nil，由调用方使用默认值
func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	cfg := Default()
	if len(data) > 0 {
		if err := json.Unmarshal(data, cfg); err != nil {
			errChan <- fmt.Errorf("解析Config失败: %w", err)
			return
		}
	}
	resultChan <- cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	dcfg := DefaultData()
	if len(data) > 0 {
		if err := json.Unmarshal(data, dcfg); err != nil {
			errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
			return
		}
	}
	if dcfg.HeadRows <= 0 {
		dcfg.HeadRows = 5
	}
	resultChan <- dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg  *Config
		dcfg *DataConfig
		errs []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, nil, combineErrors(errs)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return fmt.Errorf("配置加载遇到多个错误: %w", errors.Join(errs...))
}

// applyEnv 环境变量覆盖配置文件
func applyEnv(cfg *Config) {
	if v := os.Getenv("BIKEDASH_DATA_PATH"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("BIKEDASH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToUpper(v)
	}
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// WeatherLabel 返回天气代码对应的标签，未配置时返回代码本身
func (dc *DataConfig) WeatherLabel(code string) string {
	if label, ok := dc.WeatherLabels[code]; ok {
		return label
	}
	return code
}
