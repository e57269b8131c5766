package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"week-planner/internal/conversation"
	"week-planner/internal/runtime/session"
	"week-planner/internal/tool/registry"
	pkgerrors "week-planner/pkg/errors"
	"week-planner/pkg/metrics"
)

// Handler HTTP 处理器
type Handler struct {
	sessions *session.Manager
	tools    *registry.Registry
}

// NewHandler 创建新的 HTTP 处理器
func NewHandler(sessions *session.Manager, tools *registry.Registry) *Handler {
	return &Handler{sessions: sessions, tools: tools}
}

// TurnResponse 一轮对话的响应
type TurnResponse struct {
	SessionID string   `json:"session_id"`
	Replies   []string `json:"replies"`
	Messages  int      `json:"messages"`
}

// SessionResponse 会话完整状态
type SessionResponse struct {
	SessionID string              `json:"session_id"`
	State     *conversation.State `json:"state"`
}

// SendMessageRequest POST /api/sessions/:id/messages 请求体
type SendMessageRequest struct {
	Message string `json:"message"`
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   "weekplan",
	})
}

// CreateSession 创建会话并返回问候
// POST /api/sessions
func (h *Handler) CreateSession(ctx context.Context, c *app.RequestContext) {
	res, err := h.sessions.Start(ctx)
	if err != nil {
		hlog.CtxErrorf(ctx, "create session failed: %v", err)
		writeError(c, err, consts.StatusBadGateway)
		return
	}
	c.JSON(consts.StatusCreated, turnResponse(res))
}

// SendMessage 追加一条用户输入并执行一轮
// POST /api/sessions/:id/messages
func (h *Handler) SendMessage(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	var req SendMessageRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	res, err := h.sessions.Send(ctx, id, req.Message)
	if err != nil {
		hlog.CtxErrorf(ctx, "turn failed for session %s: %v", id, err)
		writeError(c, err, consts.StatusBadGateway)
		return
	}
	c.JSON(consts.StatusOK, turnResponse(res))
}

// GetSession 返回会话完整状态
// GET /api/sessions/:id
func (h *Handler) GetSession(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	st, err := h.sessions.Get(ctx, id)
	if err != nil {
		writeError(c, err, consts.StatusInternalServerError)
		return
	}
	c.JSON(consts.StatusOK, SessionResponse{SessionID: id, State: st})
}

// ListTools 工具目录
// GET /api/tools
func (h *Handler) ListTools(ctx context.Context, c *app.RequestContext) {
	schemas := h.tools.Schemas()
	c.JSON(consts.StatusOK, map[string]any{
		"tools": schemas,
		"total": len(schemas),
	})
}

// Metrics Prometheus 文本格式
// GET /metrics
func (h *Handler) Metrics(ctx context.Context, c *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	c.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

func turnResponse(res *session.TurnResult) TurnResponse {
	replies := res.Replies()
	if replies == nil {
		replies = []string{}
	}
	return TurnResponse{
		SessionID: res.SessionID,
		Replies:   replies,
		Messages:  res.State.Len(),
	}
}

// writeError 轮次内部失败一律用 fallback；其余按哨兵错误映射状态码
func writeError(c *app.RequestContext, err error, fallback int) {
	status := fallback
	var turnErr *session.TurnError
	switch {
	case errors.As(err, &turnErr):
	case errors.Is(err, pkgerrors.ErrNotFound):
		status = consts.StatusNotFound
	case errors.Is(err, pkgerrors.ErrInvalidArg):
		status = consts.StatusBadRequest
	}
	c.JSON(status, map[string]string{"error": err.Error()})
}
