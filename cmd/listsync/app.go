package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/winspan/listsync/internal/docker"
	"github.com/winspan/listsync/internal/executil"
	"github.com/winspan/listsync/internal/fetch"
	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/internal/metrics"
	"github.com/winspan/listsync/internal/reconcile"
	"github.com/winspan/listsync/internal/reload"
	"github.com/winspan/listsync/pkg/config"
	"github.com/winspan/listsync/pkg/logger"
)

// flags 命令行参数，只有显式给出的才覆盖配置文件
type flags struct {
	config      string
	dir         string
	docker      bool
	container   string
	lists       []string
	dryRun      bool
	metricsFile string
	logLevel    string
	logFormat   string
}

// App 命令行应用
type App struct {
	stdout io.Writer
	stderr io.Writer
	runner executil.Runner

	flags       flags
	dirExplicit bool

	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewApp 创建应用
func NewApp(stdout, stderr io.Writer) *App {
	return &App{stdout: stdout, stderr: stderr, runner: executil.Real{}}
}

// Execute 解析参数并执行命令
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "listsync",
		Short: "Sync remote regex and domain lists into a pihole installation",
		Long: `listsync downloads curated regex and exact-domain lists and merges them
into the pihole domainlist table (gravity.db) or, on legacy installs, the
plain list files. Entries it added earlier but that disappeared upstream are
removed; entries added by anyone else are never touched.

Running without a subcommand is the same as "listsync sync".`,
		Version:           version,
		PersistentPreRunE: a.setup,
		RunE:              a.runSync,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.config, "config", "c", "", "optional YAML config file")
	pf.StringVarP(&a.flags.dir, "dir", "d", "", "pihole config directory (default /etc/pihole)")
	pf.BoolVarP(&a.flags.docker, "docker", "D", false, "pihole runs in a docker container")
	pf.StringVar(&a.flags.container, "container", "", "docker container name (default pihole)")
	pf.StringArrayVarP(&a.flags.lists, "list", "l", nil, "list name to process, repeatable (default all)")
	pf.BoolVar(&a.flags.dryRun, "dry-run", false, "show the changes without writing anything")
	pf.StringVar(&a.flags.metricsFile, "metrics-file", "", "write prometheus metrics to this textfile")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: text, json")

	root.AddCommand(a.syncCommand(), a.uninstallCommand(), a.listsCommand(), a.serveCommand())
	return root
}

// setup 加载配置，用显式给出的参数覆盖，并初始化日志与指标
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.flags.config)
	if err != nil {
		return err
	}

	fs := cmd.Flags()
	a.dirExplicit = fs.Changed("dir")
	if a.dirExplicit {
		cfg.Store.Dir = a.flags.dir
	}
	if fs.Changed("docker") {
		cfg.Docker.Enabled = a.flags.docker
	}
	if fs.Changed("container") {
		cfg.Docker.Container = a.flags.container
	}
	if fs.Changed("metrics-file") {
		cfg.Metrics.Textfile = a.flags.metricsFile
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = a.flags.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = a.flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	lc := cfg.LoggerConfig()
	if lc.Output == "stderr" {
		a.log = logger.New(a.stderr, lc.Format, lc.Level)
	} else if a.log, err = logger.NewLogger(lc); err != nil {
		return err
	}

	a.cfg = cfg
	a.metrics = metrics.New()
	return nil
}

// selectedLists 按 --list 选择列表
func (a *App) selectedLists() ([]lists.List, error) {
	ls, err := a.cfg.SelectLists(a.flags.lists)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrValidation, err)
	}
	return ls, nil
}

// storeDir 确定存储目录，容器模式下优先使用挂载到宿主机的目录
func (a *App) storeDir(ctx context.Context) string {
	dir := a.cfg.Store.Dir
	if !a.cfg.Docker.Enabled || a.dirExplicit {
		return dir
	}

	host, err := docker.HostConfigDir(ctx, a.runner, a.cfg.Docker.Container)
	if err != nil {
		a.log.Warn("未能检测容器 %s 的挂载目录，使用 %s: %v", a.cfg.Docker.Container, dir, err)
		return dir
	}
	a.log.Info("检测到容器 %s 的配置目录: %s", a.cfg.Docker.Container, host)
	return host
}

func (a *App) reloader() reload.Reloader {
	if a.cfg.Docker.Enabled {
		return reload.NewDocker(a.runner, a.cfg.Docker.Container, nil)
	}
	return reload.NewCommand(a.runner, nil)
}

// reconciler 按当前配置组装同步器
func (a *App) reconciler(ctx context.Context) *reconcile.Reconciler {
	return reconcile.New(reconcile.Config{
		Dir:      a.storeDir(ctx),
		Database: a.cfg.Store.Database,
		DryRun:   a.flags.dryRun,
		Fetcher: fetch.New(fetch.Config{
			UserAgent: a.cfg.Fetch.UserAgent,
			Timeout:   a.cfg.Fetch.Timeout,
		}),
		Reloader: a.reloader(),
		Logger:   a.log,
		Metrics:  a.metrics,
	})
}

// writeMetrics 写出 textfile 指标，失败只记录警告
func (a *App) writeMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.log.Warn("写入指标文件失败: %v", err)
	}
}
