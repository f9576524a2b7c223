package lists

import (
	"sort"
)

// Set 条目集合，键为域名或正则表达式
type Set map[string]struct{}

// NewSet 用给定条目创建集合
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Add 添加条目
func (s Set) Add(item string) {
	s[item] = struct{}{}
}

// Has 判断条目是否存在
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Len 条目数量
func (s Set) Len() int {
	return len(s)
}

// Sorted 返回按字典序排列的条目
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Difference 返回 s - o
func (s Set) Difference(o Set) Set {
	out := make(Set)
	for k := range s {
		if !o.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Intersect 返回 s ∩ o
func (s Set) Intersect(o Set) Set {
	out := make(Set)
	for k := range s {
		if o.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Union 返回 s ∪ o
func (s Set) Union(o Set) Set {
	out := make(Set, len(s)+len(o))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range o {
		out[k] = struct{}{}
	}
	return out
}

// Equal 判断两个集合是否相同
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o.Has(k) {
			return false
		}
	}
	return true
}
