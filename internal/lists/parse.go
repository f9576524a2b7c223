package lists

import (
	"strings"
)

// hosts 文件中常见的本机条目，不作为过滤规则
var hostsLocalNames = map[string]bool{
	"localhost":             true,
	"localhost.localdomain": true,
	"local":                 true,
	"broadcasthost":         true,
	"ip6-localhost":         true,
	"ip6-loopback":          true,
	"ip6-localnet":          true,
	"ip6-mcastprefix":       true,
	"ip6-allnodes":          true,
	"ip6-allrouters":        true,
	"ip6-allhosts":          true,
	"0.0.0.0":               true,
}

// Parse 按格式解析远程文档或本地文件内容
func Parse(content string, format Format) Set {
	switch format {
	case FormatHosts:
		return parseHosts(content)
	default:
		return parsePlain(content)
	}
}

// Lines 统一换行并逐行去除首尾空白
func Lines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// parsePlain 每行一个条目，跳过空行与 # 注释
func parsePlain(content string) Set {
	out := make(Set)
	for _, line := range Lines(content) {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out.Add(line)
	}
	return out
}

// parseHosts 解析 hosts 格式: 0.0.0.0 example.com
func parseHosts(content string) Set {
	out := make(Set)
	for _, line := range Lines(content) {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// 去掉行尾注释
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		// 一行可列出多个主机名，首列为地址
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			fields = fields[1:]
		}

		for _, domain := range fields {
			domain = strings.ToLower(strings.TrimSuffix(domain, "."))
			if domain == "" || hostsLocalNames[domain] {
				continue
			}
			out.Add(domain)
		}
	}
	return out
}
