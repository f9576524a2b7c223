package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/winspan/listsync/internal/lists"
)

// DefaultUserAgent 远程托管服务会拒绝默认的 Go 客户端标识，使用浏览器 UA
const DefaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:108.0) Gecko/20100101 Firefox/108.0"

const (
	defaultTimeout  = 60 * time.Second
	defaultMaxBytes = 64 << 20
)

var (
	// ErrEmptyURL 未提供 URL
	ErrEmptyURL = errors.New("URL 为空")
	// ErrEmptyList 远程文档没有任何可用条目
	ErrEmptyList = errors.New("远程列表没有可用条目")
	// ErrTooLarge 响应超过大小上限，截断的内容不能用于同步
	ErrTooLarge = errors.New("远程列表超过大小上限")
)

// StatusError 非 2xx 响应
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.Code, e.Status, e.URL)
}

// Config 下载配置
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
}

// Fetcher 远程列表下载器
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// New 创建下载器
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return NewWithClient(&http.Client{Timeout: cfg.Timeout}, cfg)
}

// NewWithClient 使用给定的 HTTP 客户端创建下载器
func NewWithClient(client *http.Client, cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	return &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBytes,
	}
}

// Fetch 下载并解析远程列表，返回去重后的条目集合
//
// 空结果视为错误，否则会清空此前同步的全部条目。
func (f *Fetcher) Fetch(ctx context.Context, url string, format lists.Format) (lists.Set, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	content, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	entries := lists.Parse(content, format)
	if entries.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyList, url)
	}
	return entries, nil
}

// download 下载规则文件
func (f *Fetcher) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求 %s 失败: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: url, Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}
	if int64(len(content)) > f.maxBytes {
		return "", fmt.Errorf("%w: %s 超过 %d 字节", ErrTooLarge, url, f.maxBytes)
	}

	return string(content), nil
}
