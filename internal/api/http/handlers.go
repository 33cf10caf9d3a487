package http

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voxshell/backend/internal/call/controller"
	"github.com/voxshell/backend/internal/call/filter"
	"github.com/voxshell/backend/internal/lifecycle"
	"github.com/voxshell/backend/internal/push"
	"github.com/voxshell/backend/internal/service"
	"github.com/voxshell/backend/internal/shared/types"
	"github.com/voxshell/backend/internal/storage"
)

// Handlers contains the HTTP surface of the shell core: the three push
// entry points, lifecycle reports from the host, and the dev harness.
type Handlers struct {
	receiver   *push.Receiver
	controller *controller.Controller
	observer   *lifecycle.Observer
	registry   *service.Registry
	store      *storage.Store
	version    string
}

// NewHandlers creates a new handler set
func NewHandlers(
	receiver *push.Receiver,
	ctrl *controller.Controller,
	observer *lifecycle.Observer,
	registry *service.Registry,
	store *storage.Store,
	version string,
) *Handlers {
	return &Handlers{
		receiver:   receiver,
		controller: ctrl,
		observer:   observer,
		registry:   registry,
		store:      store,
		version:    version,
	}
}

// Root handles the banner endpoint
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "VoxShell Core",
		"version": h.version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"device_id": h.store.DeviceID(),
		"lifecycle": string(h.observer.Current()),
		"providers": h.registry.Stats(),
	})
}

// PushForeground ingests a delivery from the live event stream
func (h *Handlers) PushForeground(c *gin.Context) {
	h.handlePush(c, h.receiver.HandleForeground)
}

// PushBackground ingests a data-only delivery to a backgrounded process
func (h *Handlers) PushBackground(c *gin.Context) {
	h.handlePush(c, h.receiver.HandleBackground)
}

// PushWake ingests a delivery from the killed-process wake task
func (h *Handlers) PushWake(c *gin.Context) {
	h.handlePush(c, h.receiver.HandleWake)
}

func (h *Handlers) handlePush(c *gin.Context, entry func(ctx context.Context, raw []byte) (filter.Decision, error)) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	dec, err := entry(c.Request.Context(), raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admitted": dec.Admitted,
		"reason":   string(dec.Reason),
	})
}

// PushToken persists and re-registers a refreshed device token
func (h *Handlers) PushToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	if err := h.receiver.RefreshToken(c.Request.Context(), req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"registered": true})
}

// ReportLifecycle records an app state transition from the host shell
func (h *Handlers) ReportLifecycle(c *gin.Context) {
	var req struct {
		State string `json:"state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state required"})
		return
	}

	state := lifecycle.State(req.State)
	switch state {
	case lifecycle.StateActive, lifecycle.StateBackground, lifecycle.StateRelaunched:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state: " + req.State})
		return
	}

	h.observer.Report(state)
	c.JSON(http.StatusOK, gin.H{"state": string(h.observer.Current())})
}

// CallSession returns the live session, if any
func (h *Handlers) CallSession(c *gin.Context) {
	info := h.controller.Snapshot(c.Request.Context())
	if info == nil {
		c.JSON(http.StatusOK, gin.H{"live": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"live": true, "session": info})
}

// EndCall force-ends a live session by call id
func (h *Handlers) EndCall(c *gin.Context) {
	h.controller.End(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"ended": true})
}

// ListServices lists registered capability providers
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if cat := c.Query("category"); cat != "" {
		typed := types.Category(cat)
		category = &typed
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// ExecuteService runs a provider tool from the dev harness
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req struct {
		ToolID string                 `json:"tool_id" binding:"required"`
		Params map[string]interface{} `json:"params"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tool_id required"})
		return
	}

	origin := "http"
	deviceID := h.store.DeviceID()
	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, &types.Context{
		Origin:   &origin,
		DeviceID: &deviceID,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}
