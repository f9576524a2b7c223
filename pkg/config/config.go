package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/pkg/logger"
)

// 远程仓库默认地址
const upstreamBase = "https://raw.githubusercontent.com/slyfox1186/pihole-regex/main/domains/"

// ListConfig 一个远程列表的配置
type ListConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Kind    string `yaml:"kind"` // exact | allow | regex
	Comment string `yaml:"comment"`
	File    string `yaml:"file"`
	Sidecar string `yaml:"sidecar"`
	Format  string `yaml:"format"` // plain | hosts
}

// Config 应用配置结构
type Config struct {
	// 基础配置
	App struct {
		Name  string `yaml:"name"`
		Debug bool   `yaml:"debug"`
	} `yaml:"app"`

	// 本地存储
	Store struct {
		Dir      string `yaml:"dir"`
		Database string `yaml:"database"`
	} `yaml:"store"`

	// 容器部署
	Docker struct {
		Enabled   bool   `yaml:"enabled"`
		Container string `yaml:"container"`
	} `yaml:"docker"`

	// 下载配置
	Fetch struct {
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`

	Lists []ListConfig `yaml:"lists"`

	// 日志配置
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`

	// 监控配置
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`

	// 管理接口
	Serve struct {
		Listen     string        `yaml:"listen"`
		AdminToken string        `yaml:"admin_token"`
		Interval   time.Duration `yaml:"interval"`
	} `yaml:"serve"`
}

// DefaultLists 未配置时使用的三个上游列表
func DefaultLists() []ListConfig {
	return []ListConfig{
		{
			Name:    "regex-blacklist",
			URL:     upstreamBase + "blacklist/regex-blacklist.txt",
			Kind:    "regex",
			Comment: "SlyRBL - github.com/slyfox1186/pihole-regex",
			File:    "regex-blacklist.txt",
			Sidecar: "slyfox1186-regex-blacklist.txt",
		},
		{
			Name:    "exact-blacklist",
			URL:     upstreamBase + "blacklist/exact-blacklist.txt",
			Kind:    "exact",
			Comment: "SlyEBL - github.com/slyfox1186/pihole-regex",
			File:    "blacklist.txt",
			Sidecar: "slyfox1186-blacklist.txt",
		},
		{
			Name:    "regex-whitelist",
			URL:     upstreamBase + "whitelist/regex-whitelist.txt",
			Kind:    "allow",
			Comment: "SlyRWL - github.com/slyfox1186/pihole-regex",
			File:    "regex-whitelist.txt",
			Sidecar: "slyfox1186-regex-whitelist.txt",
		},
	}
}

// Default 返回只含默认值的配置
func Default() *Config {
	var config Config
	setDefaults(&config)
	return &config
}

// LoadConfig 加载配置文件，路径为空时返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}

	// 检查配置文件是否存在
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	return Parse(data)
}

// Parse 解析 YAML 配置
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 设置默认值
	setDefaults(&config)

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(config *Config) {
	if config.App.Name == "" {
		config.App.Name = "listsync"
	}

	// 存储默认值
	if config.Store.Dir == "" {
		config.Store.Dir = "/etc/pihole"
	}
	if config.Store.Database == "" {
		config.Store.Database = "gravity.db"
	}

	if config.Docker.Container == "" {
		config.Docker.Container = "pihole"
	}

	// 下载默认值
	if config.Fetch.Timeout == 0 {
		config.Fetch.Timeout = 60 * time.Second
	}

	if len(config.Lists) == 0 {
		config.Lists = DefaultLists()
	}
	for i := range config.Lists {
		if config.Lists[i].Format == "" {
			config.Lists[i].Format = string(lists.FormatPlain)
		}
	}

	// 日志默认值
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
	if config.Logging.Output == "" {
		config.Logging.Output = "stderr"
	}

	if config.Serve.Listen == "" {
		config.Serve.Listen = "127.0.0.1:8088"
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Store.Dir == "" {
		return fmt.Errorf("存储目录不能为空")
	}
	if strings.ContainsRune(c.Store.Database, filepath.Separator) {
		return fmt.Errorf("数据库文件名不能包含路径: %s", c.Store.Database)
	}

	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("下载超时不能为负数")
	}

	// 验证列表
	if _, err := c.ToLists(); err != nil {
		return err
	}

	// 验证日志配置
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("无效的日志级别: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("无效的日志格式: %s", c.Logging.Format)
	}

	if c.Serve.Interval < 0 {
		return fmt.Errorf("同步间隔不能为负数")
	}
	return nil
}

// isValidLogLevel 验证日志级别
func isValidLogLevel(level string) bool {
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	level = strings.ToLower(level)
	for _, valid := range validLevels {
		if level == valid {
			return true
		}
	}
	return false
}

// ToLists 转换并校验列表定义，名称与来源标记不能重复
func (c *Config) ToLists() ([]lists.List, error) {
	out := make([]lists.List, 0, len(c.Lists))
	names := make(map[string]bool)
	markers := make(map[string]bool)

	for _, lc := range c.Lists {
		kind, err := lists.ParseKind(lc.Kind)
		if err != nil {
			return nil, fmt.Errorf("列表 %s: %w", lc.Name, err)
		}

		l := lists.List{
			Name:    lc.Name,
			URL:     lc.URL,
			Kind:    kind,
			Comment: lc.Comment,
			File:    lc.File,
			Sidecar: lc.Sidecar,
			Format:  lists.Format(lc.Format),
		}
		if err := l.Validate(); err != nil {
			return nil, err
		}

		if names[l.Name] {
			return nil, fmt.Errorf("列表名称重复: %s", l.Name)
		}
		key := l.Kind.String() + "\x00" + l.Comment
		if markers[key] {
			return nil, fmt.Errorf("列表 %s 的来源标记与其他同类型列表重复", l.Name)
		}
		names[l.Name] = true
		markers[key] = true

		out = append(out, l)
	}
	return out, nil
}

// SelectLists 按名称选择列表，names 为空时返回全部，保持配置顺序
func (c *Config) SelectLists(names []string) ([]lists.List, error) {
	all, err := c.ToLists()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []lists.List
	for _, l := range all {
		if want[l.Name] {
			out = append(out, l)
			delete(want, l.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("未知的列表: %s", n)
	}
	return out, nil
}

// LoggerConfig 转换为日志配置
func (c *Config) LoggerConfig() *logger.Config {
	level, _ := logger.ParseLevel(c.Logging.Level)
	if c.IsDebug() {
		level = logger.DEBUG
	}
	return &logger.Config{
		Level:  level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// IsDebug 检查是否启用调试模式
func (c *Config) IsDebug() bool {
	return c.App.Debug
}
