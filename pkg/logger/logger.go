package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Level 日志级别
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String 返回日志级别的字符串表示
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 解析日志级别字符串，大小写不敏感
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	default:
		return INFO, fmt.Errorf("无效的日志级别: %s", s)
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	case FATAL:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger 日志记录器
type Logger struct {
	level  Level
	zl     zerolog.Logger
	file   *os.File
	prefix string
}

// Config 日志配置
type Config struct {
	Level  Level  `yaml:"level"`
	Format string `yaml:"format"` // json | text
	Output string `yaml:"output"` // stdout | stderr | 文件路径
	Prefix string `yaml:"prefix"`
}

// NewLogger 创建新的日志记录器
func NewLogger(config *Config) (*Logger, error) {
	if config == nil {
		config = &Config{Level: INFO, Format: "text", Output: "stderr"}
	}

	l := &Logger{level: config.Level, prefix: config.Prefix}

	out, err := l.setOutput(config.Output)
	if err != nil {
		return nil, err
	}

	l.zl = build(out, config.Format, config.Level, config.Prefix)
	return l, nil
}

// New 基于给定 writer 创建日志记录器，主要用于测试和嵌入场景
func New(w io.Writer, format string, level Level) *Logger {
	return &Logger{level: level, zl: build(w, format, level, "")}
}

// Discard 返回丢弃所有输出的日志记录器
func Discard() *Logger {
	return &Logger{level: FATAL + 1, zl: zerolog.Nop()}
}

func build(w io.Writer, format string, level Level, prefix string) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: "2006-01-02 15:04:05.000",
		}
	}

	ctx := zerolog.New(w).Level(level.zerolog()).With().Timestamp()
	if prefix != "" {
		ctx = ctx.Str("prefix", prefix)
	}
	return ctx.Logger()
}

// setOutput 设置日志输出
func (l *Logger) setOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		return l.setFileOutput(output)
	}
}

// setFileOutput 设置文件输出
func (l *Logger) setFileOutput(path string) (io.Writer, error) {
	// 确保目录存在
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}

	l.file = file
	return file, nil
}

// With 返回附带固定字段的子记录器
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{
		level:  l.level,
		zl:     l.zl.With().Interface(key, value).Logger(),
		prefix: l.prefix,
	}
}

// Debug 记录调试日志
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Info 记录信息日志
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warn 记录警告日志
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error 记录错误日志
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Fatal 记录致命错误日志并退出
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.zl.WithLevel(zerolog.FatalLevel).Msgf(format, args...)
	os.Exit(1)
}

// SetLevel 设置日志级别
func (l *Logger) SetLevel(level Level) {
	l.level = level
	l.zl = l.zl.Level(level.zerolog())
}

// GetLevel 获取日志级别
func (l *Logger) GetLevel() Level {
	return l.level
}

// IsDebug 检查是否为调试级别
func (l *Logger) IsDebug() bool {
	return l.level <= DEBUG
}

// Close 关闭日志记录器
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
