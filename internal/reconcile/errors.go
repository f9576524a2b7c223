package reconcile

import (
	"errors"
	"fmt"

	"github.com/winspan/listsync/internal/fetch"
)

var (
	// ErrTransport 远程不可达或返回非 2xx
	ErrTransport = errors.New("传输错误")
	// ErrValidation URL 或远程内容为空或超限、存储目录缺失或不可写、列表定义无效
	ErrValidation = errors.New("校验错误")
	// ErrStore 本地存储连接或读写失败
	ErrStore = errors.New("存储错误")
	// ErrBusy 已有同步在进行中
	ErrBusy = errors.New("同步正在进行中")
)

// fetchError 将下载错误归入错误分类
func fetchError(list string, err error) error {
	if errors.Is(err, fetch.ErrEmptyURL) || errors.Is(err, fetch.ErrEmptyList) ||
		errors.Is(err, fetch.ErrTooLarge) {
		return fmt.Errorf("%w: 列表 %s: %w", ErrValidation, list, err)
	}
	return fmt.Errorf("%w: 列表 %s: %w", ErrTransport, list, err)
}

func storeError(list string, err error) error {
	return fmt.Errorf("%w: 列表 %s: %w", ErrStore, list, err)
}

// Reason 返回错误所属类别，用作指标标签
func Reason(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrStore):
		return "store"
	default:
		return "error"
	}
}
