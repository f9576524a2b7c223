package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	app := NewApp(os.Stdout, os.Stderr)
	if err := app.Execute(ctx, os.Args[1:]); err != nil {
		app.logError(err)
		cancel()
		os.Exit(1)
	}
}

// logError 通过日志输出错误，日志尚未初始化时直接写 stderr
func (a *App) logError(err error) {
	if a.log != nil {
		a.log.Error("%v", err)
		return
	}
	fmt.Fprintf(a.stderr, "listsync: %v\n", err)
}
