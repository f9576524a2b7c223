package reload

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultContainer 默认容器名称
const DefaultContainer = "pihole"

// DefaultCommand 直接部署时的重载命令
var DefaultCommand = []string{"pihole", "restartdns", "reload"}

// Reloader 请求 DNS 服务重新加载列表
type Reloader interface {
	Reload(ctx context.Context) error
}

// Func 函数适配器
type Func func(ctx context.Context) error

// Reload 调用 f
func (f Func) Reload(ctx context.Context) error {
	return f(ctx)
}

type runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// Command 通过外部命令重载，只关心退出状态
type Command struct {
	run  runner
	argv []string
}

// NewCommand 使用给定命令行创建重载器，argv 为空时使用默认命令
func NewCommand(r runner, argv []string) *Command {
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	return &Command{run: r, argv: append([]string(nil), argv...)}
}

// NewDocker 将命令包装为 docker exec，在容器内执行
func NewDocker(r runner, container string, argv []string) *Command {
	if container == "" {
		container = DefaultContainer
	}
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	wrapped := append([]string{"docker", "exec", "-i", container}, argv...)
	return &Command{run: r, argv: wrapped}
}

// Argv 返回实际执行的命令行
func (c *Command) Argv() []string {
	return append([]string(nil), c.argv...)
}

// String 命令行的可读形式
func (c *Command) String() string {
	return strings.Join(c.argv, " ")
}

// Reload 执行命令
func (c *Command) Reload(ctx context.Context) error {
	if len(c.argv) == 0 {
		return errors.New("重载命令为空")
	}
	if err := c.run.Run(ctx, c.argv[0], c.argv[1:]...); err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	return nil
}
