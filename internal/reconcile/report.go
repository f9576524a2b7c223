package reconcile

import (
	"encoding/json"
	"time"

	"github.com/winspan/listsync/internal/store"
)

// Report 单个列表一次同步的结果
type Report struct {
	List     string        `json:"list"`
	Kind     string        `json:"kind"`
	Mode     store.Mode    `json:"mode"`
	DryRun   bool          `json:"dry_run"`
	Remote   int           `json:"remote"`
	Added    []string      `json:"added"`
	Removed  []string      `json:"removed"`
	Dropped  []string      `json:"dropped,omitempty"`
	Entries  []string      `json:"entries"`
	Duration time.Duration `json:"-"`
}

// MarshalJSON 耗时以毫秒输出
func (r *Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		*plain
		DurationMs int64 `json:"duration_ms"`
	}{(*plain)(r), r.Duration.Milliseconds()})
}

// Changed 是否修改了本地存储
func (r *Report) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Result 一次调用（可能包含多个列表）的结果
type Result struct {
	RunID       string    `json:"run_id"`
	Action      string    `json:"action"` // sync | uninstall
	StartedAt   time.Time `json:"started_at"`
	Reports     []*Report `json:"reports"`
	Reloaded    bool      `json:"reloaded"`
	ReloadError string    `json:"reload_error,omitempty"`
}

// Status 运行状态统计，供管理接口查询
type Status struct {
	Running        bool      `json:"running"`
	LastRun        time.Time `json:"last_run"`
	LastSuccess    time.Time `json:"last_success"`
	TotalRuns      int64     `json:"total_runs"`
	SuccessfulRuns int64     `json:"successful_runs"`
	FailedRuns     int64     `json:"failed_runs"`
	SuccessRate    float64   `json:"success_rate"`
	LastError      string    `json:"last_error"`
	LastResult     *Result   `json:"last_result,omitempty"`
}
