package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Server struct {
		Addr string `json:"addr"` // 仪表盘监听地址
	} `json:"server"`

	Source struct {
		File      string `json:"file"`       // 数据集文件(.csv/.xlsx)
		SheetName string `json:"sheet_name"` // xlsx工作表名
		Encoding  string `json:"encoding"`   // csv编码: utf-8 / gbk
		Watch     bool   `json:"watch"`      // 文件变化时重新加载
	} `json:"source"`

	Email struct {
		Enabled       bool     `json:"enabled"`
		Server        string   `json:"server"`         // 邮件服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码
		TargetSubject string   `json:"target_subject"` // 需要匹配的邮件主题
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	DataDir        string   `json:"data_dir"`        // 附件保存目录
	OutputDir      string   `json:"output_dir"`      // 图表导出目录
	ExportInterval Duration `json:"export_interval"` // 定时导出间隔, 0表示不定时
	LogName        string   `json:"log_name"`
	LogMaxSize     string   `json:"log_max_size"`

	SendEmail struct {
		Enabled  bool     `json:"enabled"`
		Server   string   `json:"server"`   // smtp服务器地址
		Username string   `json:"username"` // 发件人
		Password string   `json:"password"`
		To       []string `json:"to"`
		Subject  string   `json:"subject"`
	} `json:"send_email"`
}

// DataConfig 数据列映射与图表配色
type DataConfig struct {
	Columns     map[string]string `json:"columns"`      // 逻辑列名 -> 源文件表头
	ClassColors map[string]string `json:"class_colors"` // 舱位 -> 颜色(#rrggbb)
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	loadErr            error
	mu                 sync.RWMutex
)

// LoadConfig 只加载一次配置, 后续调用返回同一实例
func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	once.Do(func() {
		instance, dataConfigInstance, loadErr = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, loadErr
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

	// .env 可选, 不存在时忽略
	_ = godotenv.Load(filepath.Join(jsonFolder, ".env"))
	cfg.ApplyEnv()
	cfg.applyDefaults()
	dcfg.applyDefaults()

	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// ApplyEnv 用环境变量覆盖邮箱凭据
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MAIL_USERNAME"); v != "" {
		c.Email.Username = v
	}
	if v := os.Getenv("MAIL_PASSWORD"); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SendEmail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SendEmail.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.LogName == "" {
		c.LogName = "app.log"
	}
	if c.Source.SheetName == "" {
		c.Source.SheetName = "Sheet1"
	}
	if c.Email.CheckInterval == 0 {
		c.Email.CheckInterval = Duration(5 * time.Minute)
	}
}

// 默认列名与原始数据集表头一致
var defaultColumns = map[string]string{
	"passenger_id": "PassengerId",
	"survived":     "Survived",
	"class":        "Pclass",
	"sex":          "Sex",
	"age":          "Age",
	"fare":         "Fare",
	"cabin":        "Cabin",
	"embarked":     "Embarked",
}

var defaultClassColors = map[string]string{
	"1": "#ff0000",
	"2": "#008000",
	"3": "#0000ff",
}

func (dc *DataConfig) applyDefaults() {
	mu.Lock()
	defer mu.Unlock()

	if dc.Columns == nil {
		dc.Columns = make(map[string]string, len(defaultColumns))
	}
	for k, v := range defaultColumns {
		if _, ok := dc.Columns[k]; !ok {
			dc.Columns[k] = v
		}
	}
	// 配色只在整体缺省时补齐, 部分缺失交给图表构建时报错
	if len(dc.ClassColors) == 0 {
		dc.ClassColors = make(map[string]string, len(defaultClassColors))
		for k, v := range defaultClassColors {
			dc.ClassColors[k] = v
		}
	}
}

// DefaultDataConfig 返回默认的数据配置
func DefaultDataConfig() *DataConfig {
	dc := &DataConfig{}
	dc.applyDefaults()
	return dc
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
	if s == "" {
		*d = 0
		return nil
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

// ColumnMap 返回列映射的副本
func (dc *DataConfig) ColumnMap() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]string, len(dc.Columns))
	for k, v := range dc.Columns {
		out[k] = v
	}
	return out
}

// ClassColorMap 返回舱位配色的副本
func (dc *DataConfig) ClassColorMap() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]string, len(dc.ClassColors))
	for k, v := range dc.ClassColors {
		out[k] = v
	}
	return out
}
