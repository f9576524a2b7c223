// Package executil 对 os/exec 做一层抽象，使调用外部命令（pihole、docker）
// 的代码无需 root 权限或真实设备即可测试。
//
// 生产代码注入 Real，测试注入 *Mock 并断言调用记录。
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner 外部命令执行接口
type Runner interface {
	// Run 执行命令，非零退出码返回错误
	Run(ctx context.Context, name string, args ...string) error

	// Output 执行命令并返回标准输出
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Real 通过 os/exec 执行命令
type Real struct{}

func (Real) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (Real) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Call 记录一次命令调用
type Call struct {
	Name string
	Args []string
}

// String 返回 "name arg1 arg2" 形式，便于断言和失败信息
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// MockResult 预设的命令返回
type MockResult struct {
	Output []byte
	Err    error
}

// Mock 记录全部调用并按完整命令字符串返回预设结果
//
// 未预设的命令 Run 返回 nil，Output 返回 (nil, nil)。
type Mock struct {
	Calls []Call

	responses map[string]MockResult
}

// Expect 为命令 "name arg1 arg2 ..." 预设返回
func (m *Mock) Expect(command string, result MockResult) {
	if m.responses == nil {
		m.responses = make(map[string]MockResult)
	}
	m.responses[command] = result
}

func (m *Mock) record(name string, args []string) MockResult {
	c := Call{Name: name, Args: args}
	m.Calls = append(m.Calls, c)
	if r, ok := m.responses[c.String()]; ok {
		return r
	}
	return MockResult{}
}

func (m *Mock) Run(ctx context.Context, name string, args ...string) error {
	return m.record(name, args).Err
}

func (m *Mock) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r := m.record(name, args)
	return r.Output, r.Err
}

// WasCalled 是否调用过给定命令
func (m *Mock) WasCalled(command string) bool {
	return m.CallCount(command) > 0
}

// CallCount 给定命令的调用次数
func (m *Mock) CallCount(command string) int {
	count := 0
	for _, c := range m.Calls {
		if c.String() == command {
			count++
		}
	}
	return count
}

// Commands 按顺序返回全部调用的字符串形式
func (m *Mock) Commands() []string {
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.String())
	}
	return out
}
