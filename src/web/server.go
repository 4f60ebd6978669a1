package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"SurvivalDashboard/src/chart"
	"SurvivalDashboard/src/processor"
	"SurvivalDashboard/src/storage"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// Exporter 按当前状态写出图表文件, 返回写出的文件路径
type Exporter func(state processor.RenderState) ([]string, error)

// Server 仪表盘 HTTP 服务
type Server struct {
	router    *chi.Mux
	ctrl      *processor.Controller
	panels    *chart.Panels
	export    Exporter
	logger    *storage.Logger
	templates *template.Template
}

// NewServer 创建仪表盘服务
// export 为 nil 时 /export 返回 501
func NewServer(ctrl *processor.Controller, panels *chart.Panels, export Exporter, logger *storage.Logger) (*Server, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		ctrl:      ctrl,
		panels:    panels,
		export:    export,
		logger:    logger,
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// logPrinter 把请求日志写入 storage.Logger
type logPrinter struct{ logger *storage.Logger }

func (p logPrinter) Print(v ...interface{}) { p.logger.Info(fmt.Sprint(v...)) }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logPrinter{s.logger},
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/charts/{view}", s.handleChart)
	s.router.Get("/api/views", s.handleViews)
	s.router.Post("/api/filter", s.handleFilter)
	s.router.Post("/export", s.handleExport)
	s.router.Get("/logs", s.handleLogs)
	s.router.Get("/healthz", s.handleHealth)
}

// ServeHTTP 实现 http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type dashboardData struct {
	Selection     processor.FilterSelection
	ClassOptions  []string
	GenderOptions []string
	Views         []chart.View
	Rows          int
	Version       int
}

// handleDashboard 查询参数 class/gender 存在时先派发筛选事件
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.State()

	q := r.URL.Query()
	if q.Has("class") || q.Has("gender") {
		ev := processor.FilterChanged{Class: state.Selection.Class, Gender: state.Selection.Gender}
		if q.Has("class") {
			ev.Class = q.Get("class")
		}
		if q.Has("gender") {
			ev.Gender = q.Get("gender")
		}
		next, err := s.dispatch(ev)
		if err != nil {
			s.writeFilterError(w, err)
			return
		}
		state = next
	}

	s.renderTemplate(w, "dashboard.html", dashboardData{
		Selection:     state.Selection,
		ClassOptions:  processor.ClassOptions,
		GenderOptions: processor.GenderOptions,
		Views:         chart.Views,
		Rows:          state.Views.Rows,
		Version:       state.Version,
	})
}

// dispatch 选择没有变化时不产生新版本
func (s *Server) dispatch(ev processor.FilterChanged) (processor.RenderState, error) {
	cur := s.ctrl.State()
	if ev.Class == cur.Selection.Class && ev.Gender == cur.Selection.Gender {
		return cur, nil
	}
	state, err := s.ctrl.Dispatch(ev)
	if err != nil {
		return state, err
	}
	s.logger.Info(fmt.Sprintf("筛选变更: class=%s gender=%s rows=%d",
		state.Selection.Class, state.Selection.Gender, state.Views.Rows))
	return state, nil
}

func (s *Server) writeFilterError(w http.ResponseWriter, err error) {
	var de *processor.DataError
	if errors.As(err, &de) {
		http.Error(w, de.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Error("筛选失败: " + err.Error())
	http.Error(w, "filter failed", http.StatusInternalServerError)
}

// renderTemplate 先渲染到缓冲区, 出错时不输出半截页面
func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error(fmt.Sprintf("模板 %s 渲染失败: %v", name, err))
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	view, err := chart.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	data, _, ok := s.panels.Get(view)
	if !ok {
		http.Error(w, "chart not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateResponse(s.ctrl.State()))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	state, err := s.dispatch(processor.FilterChanged{Class: req.Class, Gender: req.Gender})
	if err != nil {
		s.writeFilterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(state))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.export == nil {
		http.Error(w, "export not configured", http.StatusNotImplemented)
		return
	}
	files, err := s.export(s.ctrl.State())
	if err != nil {
		s.logger.Error("导出失败: " + err.Error())
		http.Error(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}

// handleLogs 持续推送日志, 直到客户端断开
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	logChan := s.logger.Subscribe()
	defer s.logger.Unsubscribe(logChan)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	for {
		select {
		case msg := <-logChan:
			if _, err := fmt.Fprint(w, msg); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"rows":    s.ctrl.Table().Len(),
		"version": state.Version,
	})
}
