package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/app/panels"
)

// Handler exposes the trip REST surface. When a dashboard is present,
// successful writes also refresh the itinerary and trip-header panels.
type Handler struct {
	svc    *Service
	dash   *panels.Dashboard
	logger *zap.Logger
}

func NewHandler(svc *Service, dash *panels.Dashboard, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, dash: dash, logger: logger}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    1,
		"message": fmt.Errorf("%w: %v", models.ErrBadRequest, err).Error(),
	})
}

type baseInfoRequest struct {
	UserID        string `json:"userId"`
	ItineraryID   string `json:"itineraryId"`
	CityName      string `json:"cityName" binding:"required"`
	CityCode      string `json:"cityCode"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	TravelerCount int    `json:"travelerCount"`
	Preferences   string `json:"preferences"`
}

// SetBaseInfo handles POST /api/itinerary/base-info.
func (h *Handler) SetBaseInfo(c *gin.Context) {
	var req baseInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.CityName = NormalizeCity(req.CityName)

	it, sameCity := h.svc.SetBaseInfo(req.UserID, req.ItineraryID, req.CityName, req.CityCode,
		req.StartDate, req.EndDate, req.TravelerCount, req.Preferences)

	if h.dash != nil {
		h.dash.TripInfo.RequestUpdate(c.Request.Context(), it.TripInfo(), panels.ModeReplace)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"itineraryId":           it.ID,
			"sameCityTravelerCount": sameCity,
			"interests":             it.Interests,
		},
	})
}

type generateRequest struct {
	UserID        string `json:"userId"`
	ItineraryID   string `json:"itineraryId"`
	CityName      string `json:"cityName" binding:"required"`
	CityCode      string `json:"cityCode"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	TravelerCount int    `json:"travelerCount"`
	BudgetAmount  string `json:"budgetAmount"`
}

// Generate handles POST /api/itinerary/generate.
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.CityName = NormalizeCity(req.CityName)

	it, err := h.svc.Generate(req.UserID, req.ItineraryID, req.CityName, req.CityCode,
		req.StartDate, req.EndDate, req.BudgetAmount, req.TravelerCount)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrInvalidDateSpan) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"code": 1, "message": err.Error()})
		return
	}

	if h.dash != nil {
		ctx := c.Request.Context()
		h.dash.Itinerary.RequestUpdate(ctx, it.DayPlans(), panels.ModeReplace)
		h.dash.TripInfo.RequestUpdate(ctx, it.TripInfo(), panels.ModeReplace)
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": it})
}

// GetProgress handles POST /api/itinerary/progress.
func (h *Handler) GetProgress(c *gin.Context) {
	var req struct {
		ItineraryID string `json:"itineraryId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := h.svc.GetProgress(req.ItineraryID)
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"itineraryId":     req.ItineraryID,
			"progressPercent": p.Percent,
			"statusCode":      p.Status,
		},
	})
}

// refreshItinerary pushes the stored itinerary into the day-plan panel so
// REST mutations and chat actions share one delivery path.
func (h *Handler) refreshItinerary(c *gin.Context, it *Itinerary) {
	if h.dash != nil {
		h.dash.Itinerary.RequestUpdate(c.Request.Context(), it.DayPlans(), panels.ModeReplace)
	}
}

type addPOIRequest struct {
	ItineraryID           string   `json:"itineraryId" binding:"required"`
	DayIndex              int      `json:"dayIndex" binding:"required"`
	TimeSlotCode          string   `json:"timeSlotCode"`
	POIID                 string   `json:"poiId" binding:"required"`
	ExpectedDurationHours *float64 `json:"expectedDurationHours"`
	ExpectedCostAmount    *float64 `json:"expectedCostAmount"`
}

// AddPOI handles POST /api/itinerary/poi/add.
func (h *Handler) AddPOI(c *gin.Context) {
	var req addPOIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	it, err := h.svc.AddPOI(req.ItineraryID, req.DayIndex, req.TimeSlotCode, req.POIID,
		req.ExpectedDurationHours, req.ExpectedCostAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "message": err.Error()})
		return
	}

	h.refreshItinerary(c, it)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": gin.H{"success": true}})
}

// ReplaceSegment handles POST /api/itinerary/segment/replace.
func (h *Handler) ReplaceSegment(c *gin.Context) {
	var req struct {
		ItineraryID string `json:"itineraryId" binding:"required"`
		DayIndex    int    `json:"dayIndex" binding:"required"`
		SegmentID   string `json:"segmentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	it, replaced, err := h.svc.ReplaceSegment(req.ItineraryID, req.DayIndex, req.SegmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "message": err.Error(), "data": gin.H{"success": false}})
		return
	}
	if replaced {
		h.refreshItinerary(c, it)
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": gin.H{"success": replaced}})
}

// SaveDraft handles POST /api/itinerary/save-draft.
func (h *Handler) SaveDraft(c *gin.Context) {
	var req struct {
		UserID      string          `json:"userId" binding:"required"`
		ItineraryID string          `json:"itineraryId" binding:"required"`
		Title       string          `json:"title" binding:"required"`
		Data        json.RawMessage `json:"itineraryData" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.svc.SaveDraft(req.UserID, req.ItineraryID, req.Title, req.Data)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": gin.H{"success": true}})
}

// Export handles POST /api/itinerary/export.
func (h *Handler) Export(c *gin.Context) {
	var req struct {
		ItineraryID      string `json:"itineraryId" binding:"required"`
		ExportFormatCode string `json:"exportFormatCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	url := h.svc.Export(req.ItineraryID, req.ExportFormatCode)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": gin.H{"downloadUrl": url}})
}

// Share handles POST /api/itinerary/share.
func (h *Handler) Share(c *gin.Context) {
	var req struct {
		ItineraryID   string `json:"itineraryId" binding:"required"`
		ShareTypeCode string `json:"shareTypeCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": gin.H{"shareUrl": h.svc.Share(req.ItineraryID)}})
}

// GetItinerary handles GET /api/itinerary/:id.
func (h *Handler) GetItinerary(c *gin.Context) {
	it, ok := h.svc.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "message": models.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok", "data": it})
}

// pageRequest is the shared POST body of the list endpoints. Page numbers
// are 1-based and default when absent or nonsense.
type pageRequest struct {
	CityName     string   `json:"cityName" binding:"required"`
	CategoryCode string   `json:"categoryCode"`
	Tags         []string `json:"tags"`
	PageNumber   int      `json:"pageNumber"`
	PageSize     int      `json:"pageSize"`
}

func (p *pageRequest) normalize() {
	p.CityName = NormalizeCity(p.CityName)
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
}

func pageResponse(items any, total int, req pageRequest) gin.H {
	return gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"list":       items,
			"total":      total,
			"pageNumber": req.PageNumber,
			"pageSize":   req.PageSize,
		},
	}
}

// ListPOIs handles POST /api/poi/list.
func (h *Handler) ListPOIs(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.normalize()
	if req.CategoryCode == "" {
		req.CategoryCode = "poi"
	}

	items, total := h.svc.ListPOIs(req.CityName, req.CategoryCode, req.PageNumber, req.PageSize)
	c.JSON(http.StatusOK, pageResponse(items, total, req))
}

// ListActivities handles POST /api/activity/list.
func (h *Handler) ListActivities(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.normalize()

	items, total := h.svc.ListActivities(req.CityName, req.PageNumber, req.PageSize)
	c.JSON(http.StatusOK, pageResponse(items, total, req))
}

// ListFeed handles POST /api/social/feed.
func (h *Handler) ListFeed(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.normalize()

	items, total := h.svc.ListFeed(req.CityName, req.PageNumber, req.PageSize)
	c.JSON(http.StatusOK, pageResponse(items, total, req))
}

// SearchTravelmates handles POST /api/travelmate/search.
func (h *Handler) SearchTravelmates(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.normalize()

	items, total := h.svc.SearchTravelmates(req.CityName, req.Tags, req.PageNumber, req.PageSize)
	c.JSON(http.StatusOK, pageResponse(items, total, req))
}
