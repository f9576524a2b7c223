package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/winspan/listsync/internal/lists"
)

// Start 立即同步一次，之后按间隔定期同步，直到 ctx 结束
//
// 每次同步后调用 after（可为空），用于写出指标等收尾工作。
func (r *Reconciler) Start(ctx context.Context, interval time.Duration, ls []lists.List, after func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.tick(ctx, ls, after)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx, ls, after)
		}
	}
}

func (r *Reconciler) tick(ctx context.Context, ls []lists.List, after func()) {
	_, err := r.RunAll(ctx, ls)
	switch {
	case errors.Is(err, ErrBusy):
		r.log.Debug("上一次同步尚未结束，跳过本次定时同步")
	case err != nil:
		r.log.Error("定时同步失败: %v", err)
	}
	if after != nil {
		after()
	}
}
