// Package journey exposes the planning dashboard over HTTP: screen
// lifecycle, panel snapshots, the agent's action surface and the chat relay
// that feeds the response interceptor.
package journey

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/voyplan/voyplan/internal/app/actions"
	"github.com/voyplan/voyplan/internal/app/intercept"
	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/app/observability/metrics"
	"github.com/voyplan/voyplan/internal/app/panels"
	"github.com/voyplan/voyplan/internal/pkg/config"
)

// Handler wires the dashboard, the dispatch table and the intercepting HTTP
// client together behind the journey routes.
type Handler struct {
	cfg         config.ChatConfig
	dash        *panels.Dashboard
	dispatcher  *actions.Dispatcher
	chain       *intercept.Chain
	interceptor *intercept.CopilotInterceptor
	client      *http.Client
	logger      *zap.Logger
}

func NewHandler(cfg config.ChatConfig, dash *panels.Dashboard, dispatcher *actions.Dispatcher,
	chain *intercept.Chain, interceptor *intercept.CopilotInterceptor, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:         cfg,
		dash:        dash,
		dispatcher:  dispatcher,
		chain:       chain,
		interceptor: interceptor,
		client:      chain.Client(),
		logger:      logger,
	}
}

// MountScreen brings the dashboard up: seed defaults, attach handlers (which
// drains any queued updates), rebuild the action table and install the
// response interceptor.
func (h *Handler) MountScreen(c *gin.Context) {
	h.dash.Mount()
	h.dispatcher.Rebuild(h.dash)
	h.chain.Use(h.interceptor)
	h.logger.Info("Dashboard mounted")
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": gin.H{"mounted": true}})
}

// UnmountScreen tears the screen down in the reverse order of MountScreen.
// Updates arriving after this queue up until the next mount.
func (h *Handler) UnmountScreen(c *gin.Context) {
	h.chain.Remove(h.interceptor.Name())
	h.dispatcher.Teardown()
	h.dash.Unmount()
	h.logger.Info("Dashboard unmounted")
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": gin.H{"mounted": false}})
}

// GetPanels handles GET /api/panels and returns the full snapshot.
func (h *Handler) GetPanels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": h.dash.Snapshot()})
}

// GetPanel handles GET /api/panels/:panel. The hot-activities panel accepts
// a 1-based ?page= query and pages client-side over the full list.
func (h *Handler) GetPanel(c *gin.Context) {
	name := c.Param("panel")
	snap := h.dash.Snapshot()

	var data any
	switch name {
	case panels.PanelItinerary:
		data = snap.Itinerary
	case panels.PanelFeaturedSpots:
		data = snap.FeaturedSpots
	case panels.PanelSocialPosts:
		data = snap.SocialPosts
	case panels.PanelTripInfo:
		data = snap.TripInfo
	case panels.PanelHotActivities:
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		items, totalPages := h.dash.HotActivitiesPage(page)
		data = gin.H{"items": items, "page": page, "totalPages": totalPages}
	default:
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "message": models.ErrUnknownPanel.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": data})
}

// ListActions handles GET /api/agent/actions.
func (h *Handler) ListActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": h.dispatcher.Names()})
}

// InvokeAction handles POST /api/agent/actions/:name. The request body is
// the raw action payload. Failures come back as a structured result with
// HTTP 200; only transport-level problems get an error status.
func (h *Handler) InvokeAction(c *gin.Context) {
	name := c.Param("name")
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "message": "unreadable payload"})
		return
	}
	if len(payload) == 0 {
		payload = []byte("null")
	}

	result := h.dispatcher.Invoke(c.Request.Context(), name, json.RawMessage(payload))
	metrics.Get().ActionDispatchTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(
			attribute.String("action", name),
			attribute.Bool("success", result.Success)))

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": result})
}

// RelayChat handles POST /api/chat/relay: forward the widget's request to
// the agent backend through the intercepting client and stream the response
// back untouched. The interceptor sees the response on the way through.
func (h *Handler) RelayChat(c *gin.Context) {
	target := strings.TrimRight(h.cfg.BackendURL, "/") + h.cfg.RelayPath

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, target, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "message": "relay request build failed"})
		return
	}
	if ct := c.GetHeader("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if accept := c.GetHeader("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	m := metrics.Get()
	m.RelayDuration.Record(c.Request.Context(), time.Since(start).Seconds())
	if err != nil {
		m.RelayRequestsTotal.Add(c.Request.Context(), 1,
			metric.WithAttributes(attribute.Bool("success", false)))
		h.logger.Error("Chat relay failed", zap.String("target", target), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"code": 1, "message": "agent backend unreachable"})
		return
	}
	defer resp.Body.Close()

	m.RelayRequestsTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.Bool("success", true)))

	for key, values := range resp.Header {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		h.logger.Warn("Chat relay body copy interrupted", zap.Error(err))
	}
}

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"mounted": h.dash.Mounted(),
		"actions": len(h.dispatcher.Names()),
	})
}
