package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/internal/metrics"
	"github.com/winspan/listsync/internal/reload"
	"github.com/winspan/listsync/internal/store"
	"github.com/winspan/listsync/pkg/logger"
	"github.com/winspan/listsync/pkg/utils"
)

// Fetcher 远程列表来源
type Fetcher interface {
	Fetch(ctx context.Context, url string, format lists.Format) (lists.Set, error)
}

// Config 同步器依赖与参数
type Config struct {
	Dir      string // 存储目录
	Database string // 数据库文件名，默认 gravity.db
	DryRun   bool

	Fetcher  Fetcher
	Reloader reload.Reloader // 为空时不重载
	Logger   *logger.Logger
	Metrics  *metrics.Metrics

	// Open 打开存储，测试可替换
	Open func(dir, database string) (store.Store, error)
}

// Reconciler 将远程列表同步到本地存储
type Reconciler struct {
	dir      string
	database string
	dryRun   bool

	fetcher  Fetcher
	reloader reload.Reloader
	log      *logger.Logger
	metrics  *metrics.Metrics
	open     func(dir, database string) (store.Store, error)

	// 同一进程内一次只允许一个同步
	runMu sync.Mutex

	mu     sync.RWMutex
	status Status
}

// New 创建同步器
func New(cfg Config) *Reconciler {
	r := &Reconciler{
		dir:      cfg.Dir,
		database: cfg.Database,
		dryRun:   cfg.DryRun,
		fetcher:  cfg.Fetcher,
		reloader: cfg.Reloader,
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
		open:     cfg.Open,
	}
	if r.database == "" {
		r.database = store.DefaultDatabase
	}
	if r.log == nil {
		r.log = logger.Discard()
	}
	if r.open == nil {
		r.open = store.Open
	}
	return r
}

// Dir 存储目录
func (r *Reconciler) Dir() string {
	return r.dir
}

// CheckDir 存储目录必须存在且可写
func (r *Reconciler) CheckDir() error {
	if r.dir == "" {
		return fmt.Errorf("%w: 未指定存储目录", ErrValidation)
	}
	if !utils.IsDir(r.dir) {
		return fmt.Errorf("%w: 存储目录不存在: %s", ErrValidation, r.dir)
	}
	if !utils.IsWritableDir(r.dir) {
		return fmt.Errorf("%w: 存储目录不可写: %s", ErrValidation, r.dir)
	}
	return nil
}

// Run 同步单个列表并重载
func (r *Reconciler) Run(ctx context.Context, l lists.List) (*Report, error) {
	res, err := r.RunAll(ctx, []lists.List{l})
	if err != nil {
		return nil, err
	}
	return res.Reports[0], nil
}

// RunAll 按顺序同步多个列表，全部成功后重载一次
//
// 任一列表失败立即中止，不再重载。
func (r *Reconciler) RunAll(ctx context.Context, ls []lists.List) (*Result, error) {
	return r.invoke(ctx, "sync", ls, r.sync)
}

// Uninstall 移除所选列表中本工具写入的全部条目，然后重载一次
func (r *Reconciler) Uninstall(ctx context.Context, ls []lists.List) (*Result, error) {
	return r.invoke(ctx, "uninstall", ls, r.purge)
}

type stepFunc func(ctx context.Context, log *logger.Logger, st store.Store, l lists.List) (*Report, error)

func (r *Reconciler) invoke(ctx context.Context, action string, ls []lists.List, step stepFunc) (*Result, error) {
	if !r.runMu.TryLock() {
		return nil, ErrBusy
	}
	defer r.runMu.Unlock()

	res := &Result{
		RunID:     uuid.NewString(),
		Action:    action,
		StartedAt: time.Now(),
	}
	log := r.log.With("run_id", res.RunID)

	r.setRunning(true)
	err := r.execute(ctx, log, res, ls, step)
	r.record(res, err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Reconciler) execute(ctx context.Context, log *logger.Logger, res *Result, ls []lists.List, step stepFunc) error {
	if len(ls) == 0 {
		return fmt.Errorf("%w: 没有选择任何列表", ErrValidation)
	}
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	if err := r.CheckDir(); err != nil {
		return err
	}

	st, err := r.open(r.dir, r.database)
	if err != nil {
		return fmt.Errorf("%w: 打开存储失败: %w", ErrStore, err)
	}
	defer st.Close()

	log.Info("开始%s: 目录=%s 模式=%s 列表数=%d", res.Action, r.dir, st.Mode(), len(ls))

	for _, l := range ls {
		rep, err := step(ctx, log.With("list", l.Name), st, l)
		if err != nil {
			return err
		}
		res.Reports = append(res.Reports, rep)
	}

	if r.dryRun {
		log.Info("试运行，跳过重载")
		return nil
	}
	r.reload(ctx, log, res)
	return nil
}

// sync 单个列表的 下载 → 读取 → 计算 → 写入 流程
func (r *Reconciler) sync(ctx context.Context, log *logger.Logger, st store.Store, l lists.List) (*Report, error) {
	start := time.Now()
	rep, err := r.syncList(ctx, log, st, l)
	took := time.Since(start)
	if err != nil {
		r.metrics.ObserveFailure(l.Name, Reason(err), took)
		return nil, err
	}

	rep.Duration = took
	if !r.dryRun {
		r.metrics.ObserveSync(l.Name, rep.Remote, len(rep.Added), len(rep.Removed), len(rep.Entries), took)
	}
	return rep, nil
}

func (r *Reconciler) syncList(ctx context.Context, log *logger.Logger, st store.Store, l lists.List) (*Report, error) {
	fetched, err := r.fetcher.Fetch(ctx, l.URL, l.Format)
	if err != nil {
		return nil, fetchError(l.Name, err)
	}

	remote, dropped := l.Filter(fetched)
	for _, d := range dropped {
		log.Warn("丢弃无效条目: %q", d)
	}
	if remote.Len() == 0 {
		return nil, fmt.Errorf("%w: 列表 %s 过滤后没有可用条目", ErrValidation, l.Name)
	}
	log.Debug("远程条目 %d 个", remote.Len())

	state, err := st.Load(ctx, l)
	if err != nil {
		return nil, storeError(l.Name, err)
	}

	change := Plan(remote, state)
	rep := &Report{
		List:    l.Name,
		Kind:    l.Kind.String(),
		Mode:    st.Mode(),
		DryRun:  r.dryRun,
		Remote:  remote.Len(),
		Added:   change.Added.Sorted(),
		Removed: change.Removed.Sorted(),
		Dropped: dropped,
	}

	if r.dryRun {
		rep.Entries = preview(state, change)
		log.Info("试运行: 将新增 %d 个, 删除 %d 个", len(rep.Added), len(rep.Removed))
		return rep, nil
	}

	if err := st.Apply(ctx, l, remote, change); err != nil {
		return nil, storeError(l.Name, err)
	}

	rep.Entries, err = st.Entries(ctx, l)
	if err != nil {
		return nil, storeError(l.Name, err)
	}

	log.Info("同步完成: 远程 %d 个, 新增 %d 个, 删除 %d 个, 当前 %d 个",
		rep.Remote, len(rep.Added), len(rep.Removed), len(rep.Entries))
	return rep, nil
}

// purge 单个列表的卸载
func (r *Reconciler) purge(ctx context.Context, log *logger.Logger, st store.Store, l lists.List) (*Report, error) {
	start := time.Now()
	rep := &Report{
		List:   l.Name,
		Kind:   l.Kind.String(),
		Mode:   st.Mode(),
		DryRun: r.dryRun,
		Added:  []string{},
	}

	var removed lists.Set
	if r.dryRun {
		state, err := st.Load(ctx, l)
		if err != nil {
			return nil, storeError(l.Name, err)
		}
		removed = state.Owned.Intersect(state.Present)
		rep.Entries = state.Present.Difference(removed).Sorted()
	} else {
		var err error
		removed, err = st.Purge(ctx, l)
		if err != nil {
			return nil, storeError(l.Name, err)
		}
		rep.Entries, err = st.Entries(ctx, l)
		if err != nil {
			return nil, storeError(l.Name, err)
		}
	}

	rep.Removed = removed.Sorted()
	rep.Duration = time.Since(start)
	log.Info("卸载完成: 删除 %d 个, 剩余 %d 个", len(rep.Removed), len(rep.Entries))
	return rep, nil
}

// reload 尽力重载，失败只记录警告
func (r *Reconciler) reload(ctx context.Context, log *logger.Logger, res *Result) {
	if r.reloader == nil {
		return
	}

	err := r.reloader.Reload(ctx)
	r.metrics.ObserveReload(err)
	if err != nil {
		res.ReloadError = err.Error()
		log.Warn("重载失败，列表已写入但尚未生效: %v", err)
		return
	}
	res.Reloaded = true
	log.Info("已重载 DNS 服务")
}

func (r *Reconciler) setRunning(running bool) {
	r.mu.Lock()
	r.status.Running = running
	r.mu.Unlock()
}

// record 更新运行统计
func (r *Reconciler) record(res *Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.Running = false
	r.status.LastRun = res.StartedAt
	r.status.TotalRuns++
	if err != nil {
		r.status.FailedRuns++
		r.status.LastError = err.Error()
	} else {
		r.status.SuccessfulRuns++
		r.status.LastSuccess = res.StartedAt
		r.status.LastError = ""
		r.status.LastResult = res
	}
	r.status.SuccessRate = float64(r.status.SuccessfulRuns) / float64(r.status.TotalRuns) * 100
}

// Status 返回运行状态快照
func (r *Reconciler) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}
