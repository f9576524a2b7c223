package docker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ConfigDir 容器内设备配置目录
const ConfigDir = "/etc/pihole"

var (
	// ErrNotFound 没有名称匹配的运行中容器
	ErrNotFound = errors.New("未找到运行中的容器")
	// ErrNoMount 容器没有挂载配置目录
	ErrNoMount = errors.New("容器未挂载 " + ConfigDir)
)

// Mount docker inspect 输出中的挂载信息
type Mount struct {
	Type        string `json:"Type"`
	Source      string `json:"Source"`
	Destination string `json:"Destination"`
}

type outputRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ContainerID 查找名称匹配的第一个运行中容器
func ContainerID(ctx context.Context, r outputRunner, name string) (string, error) {
	out, err := r.Output(ctx, "docker", "ps", "--filter", "name="+name, "-q")
	if err != nil {
		return "", fmt.Errorf("docker ps 失败: %w", err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Mounts 读取容器的挂载列表
func Mounts(ctx context.Context, r outputRunner, id string) ([]Mount, error) {
	out, err := r.Output(ctx, "docker", "inspect", "--format", "{{json .Mounts}}", id)
	if err != nil {
		return nil, fmt.Errorf("docker inspect 失败: %w", err)
	}

	var mounts []Mount
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(out))), &mounts); err != nil {
		return nil, fmt.Errorf("解析挂载信息失败: %w", err)
	}
	return mounts, nil
}

// HostConfigDir 返回容器配置目录在宿主机上的路径
func HostConfigDir(ctx context.Context, r outputRunner, name string) (string, error) {
	id, err := ContainerID(ctx, r, name)
	if err != nil {
		return "", err
	}

	mounts, err := Mounts(ctx, r, id)
	if err != nil {
		return "", err
	}

	for _, m := range mounts {
		if strings.TrimSuffix(m.Destination, "/") == ConfigDir && m.Source != "" {
			return m.Source, nil
		}
	}
	return "", ErrNoMount
}
