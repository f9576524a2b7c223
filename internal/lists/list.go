package lists

import (
	"fmt"
	"strings"

	"github.com/winspan/listsync/pkg/utils"
)

// Kind 对应 domainlist.type 列
type Kind int

const (
	KindExact Kind = 1 // 精确黑名单
	KindAllow Kind = 2 // 正则白名单
	KindRegex Kind = 3 // 正则黑名单
)

// String 返回类型名称
func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindAllow:
		return "allow"
	case KindRegex:
		return "regex"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind 解析配置中的类型名称
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return KindExact, nil
	case "allow":
		return KindAllow, nil
	case "regex":
		return KindRegex, nil
	default:
		return 0, fmt.Errorf("不支持的列表类型: %q", s)
	}
}

// Format 远程文档格式
type Format string

const (
	FormatPlain Format = "plain"
	FormatHosts Format = "hosts"
)

// List 一个远程列表与本地存储槽位的绑定
type List struct {
	Name    string
	URL     string
	Kind    Kind
	Comment string // 写入 domainlist.comment 的来源标记
	File    string // 文件模式下的主文件名
	Sidecar string // 文件模式下记录上次同步快照的附属文件名
	Format  Format
}

// Validate 校验列表定义
func (l List) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("列表名称不能为空")
	}
	if l.URL == "" {
		return fmt.Errorf("列表 %s 的 URL 不能为空", l.Name)
	}
	if !utils.IsURL(l.URL) {
		return fmt.Errorf("列表 %s 的 URL 无效: %s", l.Name, l.URL)
	}
	if _, err := ParseKind(l.Kind.String()); err != nil {
		return fmt.Errorf("列表 %s: %w", l.Name, err)
	}
	if l.Comment == "" {
		return fmt.Errorf("列表 %s 的来源标记不能为空", l.Name)
	}
	if l.File == "" || l.Sidecar == "" {
		return fmt.Errorf("列表 %s 缺少文件模式的文件名", l.Name)
	}
	if l.File == l.Sidecar {
		return fmt.Errorf("列表 %s 的主文件与快照文件不能相同", l.Name)
	}
	switch l.Format {
	case FormatPlain, FormatHosts, "":
	default:
		return fmt.Errorf("列表 %s 的格式不受支持: %s", l.Name, l.Format)
	}
	return nil
}

// Filter 过滤掉不适合写入该列表的条目
//
// 精确黑名单只接受合法域名；正则列表原样保留，设备端的正则方言与 RE2 不同。
func (l List) Filter(entries Set) (kept Set, dropped []string) {
	if l.Kind != KindExact {
		return entries, nil
	}
	kept = make(Set, len(entries))
	for e := range entries {
		if utils.IsValidDomain(e) {
			kept.Add(e)
			continue
		}
		dropped = append(dropped, e)
	}
	return kept, dropped
}
