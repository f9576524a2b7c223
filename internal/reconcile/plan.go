package reconcile

import (
	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/internal/store"
)

// Plan 计算远程集合与本地状态之间的增删
//
// 新增为本地尚不存在的远程条目；删除只取自本工具拥有且仍存在的条目，
// 用户自行添加或其他来源的条目永远不会出现在删除集合中。
func Plan(remote lists.Set, st *store.State) store.Change {
	return store.Change{
		Added:   remote.Difference(st.Present),
		Removed: st.Owned.Intersect(st.Present).Difference(remote),
	}
}

// preview 预测施加增删后的槽位内容
func preview(st *store.State, change store.Change) []string {
	return st.Present.Difference(change.Removed).Union(change.Added).Sorted()
}
