package utils

import (
	"net/url"
	"os"
	"strings"

	"github.com/miekg/dns"
)

// NetworkUtils 网络工具函数
type NetworkUtils struct{}

// IsValidDomain 检查是否为有效的域名
//
// 只接受不含空白和通配符的普通域名，长度与标签规则由 miekg/dns 校验。
func (n *NetworkUtils) IsValidDomain(domain string) bool {
	if domain == "" || strings.ContainsAny(domain, " \t*/\\") {
		return false
	}
	labels, ok := dns.IsDomainName(domain)
	return ok && labels > 0
}

// IsURL 检查是否为 http(s) URL
func (n *NetworkUtils) IsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FileUtils 文件工具函数
type FileUtils struct{}

// FileExists 检查文件是否存在
func (f *FileUtils) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// IsDir 检查路径是否为目录
func (f *FileUtils) IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsNonEmptyFile 检查路径是否为非空普通文件
func (f *FileUtils) IsNonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// IsWritableDir 检查目录是否存在且当前用户可写、可进入
func (f *FileUtils) IsWritableDir(path string) bool {
	return f.IsDir(path) && writable(path)
}

// 全局工具实例
var (
	Network = &NetworkUtils{}
	File    = &FileUtils{}
)

// 便捷函数
func IsValidDomain(domain string) bool {
	return Network.IsValidDomain(domain)
}

func IsURL(raw string) bool {
	return Network.IsURL(raw)
}

func FileExists(path string) bool {
	return File.FileExists(path)
}

func IsDir(path string) bool {
	return File.IsDir(path)
}

func IsNonEmptyFile(path string) bool {
	return File.IsNonEmptyFile(path)
}

func IsWritableDir(path string) bool {
	return File.IsWritableDir(path)
}
