package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/internal/reconcile"
	"github.com/winspan/listsync/pkg/logger"
)

// Syncer 管理接口依赖的同步能力
type Syncer interface {
	RunAll(ctx context.Context, ls []lists.List) (*reconcile.Result, error)
	Status() reconcile.Status
}

// Config 管理接口配置
type Config struct {
	Token   string       // 为空时不认证
	Lists   []lists.List // 可同步的列表，按配置顺序
	Metrics http.Handler // 为空时不暴露 /metrics
	Logger  *logger.Logger
}

type Api struct {
	syncer  Syncer
	lists   []lists.List
	token   string
	log     *logger.Logger
	started time.Time
}

// listView 对外展示的列表定义
type listView struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Comment string `json:"comment"`
	File    string `json:"file"`
	Sidecar string `json:"sidecar"`
	Format  string `json:"format"`
}

func BindRoutes(r *chi.Mux, s Syncer, cfg Config) {
	api := &Api{
		syncer:  s,
		lists:   cfg.Lists,
		token:   cfg.Token,
		log:     cfg.Logger,
		started: time.Now(),
	}
	if api.log == nil {
		api.log = logger.Discard()
	}

	// 中间件
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/api/health", api.health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(api.auth)

		pr.Group(func(qr chi.Router) {
			qr.Use(middleware.Timeout(10 * time.Second))
			qr.Get("/api/status", api.getStatus)
			qr.Get("/api/lists", api.getLists)
		})

		// 同步耗时取决于远程下载，不设置统一超时
		pr.Post("/api/sync", api.syncNow)
	})
}

func (a *Api) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 如果token为空，跳过认证
		if a.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") || strings.TrimPrefix(h, "Bearer ") != a.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"error": err.Error()})
}

func (a *Api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// 获取同步状态
func (a *Api) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime": time.Since(a.started).Round(time.Second).String(),
		"sync":   a.syncer.Status(),
	})
}

// 获取已配置的列表
func (a *Api) getLists(w http.ResponseWriter, r *http.Request) {
	out := make([]listView, 0, len(a.lists))
	for _, l := range a.lists {
		out = append(out, listView{
			Name:    l.Name,
			URL:     l.URL,
			Kind:    l.Kind.String(),
			Comment: l.Comment,
			File:    l.File,
			Sidecar: l.Sidecar,
			Format:  string(l.Format),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"lists": out, "total": len(out)})
}

// 手动触发同步，?list= 可重复，缺省同步全部
func (a *Api) syncNow(w http.ResponseWriter, r *http.Request) {
	selected, ok := a.selectLists(r.URL.Query()["list"])
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown list"))
		return
	}

	res, err := a.syncer.RunAll(r.Context(), selected)
	if err != nil {
		a.log.Warn("管理接口触发的同步失败: %v", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *Api) selectLists(names []string) ([]lists.List, bool) {
	if len(names) == 0 {
		return a.lists, true
	}

	var out []lists.List
	for _, n := range names {
		found := false
		for _, l := range a.lists {
			if l.Name == n {
				out = append(out, l)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

// statusFor 错误分类到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, reconcile.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, reconcile.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
