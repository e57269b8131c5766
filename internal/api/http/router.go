package http

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"

	"week-planner/internal/api/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	handler    *Handler
	middleware *middleware.Middleware
}

// NewRouter 创建新的 HTTP 路由器
func NewRouter(handler *Handler, mw *middleware.Middleware) *Router {
	if mw == nil {
		mw = middleware.NewMiddleware(nil)
	}
	return &Router{handler: handler, middleware: mw}
}

// Build 创建 Hertz 实例并注册路由；opts 用于注入 tracer 等服务端选项
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	opts = append([]config.Option{server.WithHostPorts(addr)}, opts...)
	h := server.Default(opts...)
	h.Use(r.middleware.CORS(), r.middleware.AccessLog())
	r.SetupRoutes(h)
	return h
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(h *server.Hertz) {
	api := h.Group("/api")
	api.GET("/health", r.handler.HealthCheck)
	api.GET("/tools", r.handler.ListTools)

	api.POST("/sessions", r.handler.CreateSession)
	api.GET("/sessions/:id", r.handler.GetSession)
	api.POST("/sessions/:id/messages", r.handler.SendMessage)

	h.GET("/metrics", r.handler.Metrics)
}
