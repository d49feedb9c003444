package trip

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyplan/voyplan/internal/app/panels"
	"github.com/voyplan/voyplan/internal/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(dash *panels.Dashboard) *gin.Engine {
	h := NewHandler(NewService(nil), dash, nil)
	r := gin.New()
	r.POST("/api/itinerary/base-info", h.SetBaseInfo)
	r.POST("/api/itinerary/generate", h.Generate)
	r.POST("/api/itinerary/progress", h.GetProgress)
	r.POST("/api/itinerary/poi/add", h.AddPOI)
	r.POST("/api/itinerary/segment/replace", h.ReplaceSegment)
	r.POST("/api/itinerary/save-draft", h.SaveDraft)
	r.POST("/api/itinerary/export", h.Export)
	r.POST("/api/itinerary/share", h.Share)
	r.GET("/api/itinerary/:id", h.GetItinerary)
	r.POST("/api/travelmate/search", h.SearchTravelmates)
	r.POST("/api/poi/list", h.ListPOIs)
	r.POST("/api/activity/list", h.ListActivities)
	r.POST("/api/social/feed", h.ListFeed)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data any) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

type pageData struct {
	List  []json.RawMessage `json:"list"`
	Total int               `json:"total"`
}

func TestBaseInfoEndpoint(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/api/itinerary/base-info",
		`{"cityName": "上海", "travelerCount": 2, "preferences": "想吃美食"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		ItineraryID           string   `json:"itineraryId"`
		SameCityTravelerCount int      `json:"sameCityTravelerCount"`
		Interests             []string `json:"interests"`
	}
	resp := decodeResponse(t, w, &data)
	assert.Equal(t, 0, resp.Code)
	assert.NotEmpty(t, data.ItineraryID)
	assert.Equal(t, 2, data.SameCityTravelerCount)
	assert.Equal(t, []string{"美食"}, data.Interests)
}

func TestBaseInfoRequiresCity(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/api/itinerary/base-info", `{"travelerCount": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateEndpointUpdatesPanels(t *testing.T) {
	dash := panels.NewDashboard(config.PanelConfig{ApplyDelay: 0, HotActivityPageSize: 5}, nil)
	dash.Mount()
	r := newTestRouter(dash)

	w := doJSON(r, http.MethodPost, "/api/itinerary/generate",
		`{"cityName": "杭州", "startDate": "2026-09-01", "endDate": "2026-09-02", "travelerCount": 2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var generated Itinerary
	decodeResponse(t, w, &generated)
	assert.NotEmpty(t, generated.ID)
	assert.Len(t, generated.Days, 2)

	assert.Eventually(t, func() bool {
		snap := dash.Snapshot()
		return snap.TripInfo.Destination == "杭州" && len(snap.Itinerary) == 2
	}, time.Second, 5*time.Millisecond)

	// Progress is immediately finished for the synchronous scaffold.
	w = doJSON(r, http.MethodPost, "/api/itinerary/progress",
		fmt.Sprintf(`{"itineraryId": %q}`, generated.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var p struct {
		ItineraryID string `json:"itineraryId"`
		Progress
	}
	decodeResponse(t, w, &p)
	assert.Equal(t, generated.ID, p.ItineraryID)
	assert.Equal(t, 100, p.Percent)
	assert.Equal(t, "finished", p.Status)
}

func TestGenerateEndpointRejectsBadDates(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/api/itinerary/generate",
		`{"cityName": "杭州", "startDate": "2026-09-05", "endDate": "2026-09-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetItineraryNotFound(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodGet, "/api/itinerary/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgressRequiresID(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/api/itinerary/progress", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddPOIBuildsDaysAndRefreshesPanel(t *testing.T) {
	dash := panels.NewDashboard(config.PanelConfig{ApplyDelay: 0, HotActivityPageSize: 5}, nil)
	dash.Mount()
	r := newTestRouter(dash)

	w := doJSON(r, http.MethodPost, "/api/itinerary/poi/add",
		`{"itineraryId": "trip_x", "dayIndex": 2, "timeSlotCode": "morning", "poiId": "poi_9"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Success bool `json:"success"`
	}
	decodeResponse(t, w, &data)
	assert.True(t, data.Success)

	// Day 1 is padded in, the POI lands on day 2.
	w = doJSON(r, http.MethodGet, "/api/itinerary/trip_x", "")
	require.Equal(t, http.StatusOK, w.Code)

	var it Itinerary
	decodeResponse(t, w, &it)
	require.Len(t, it.Days, 2)
	assert.Empty(t, it.Days[0].Segments)
	require.Len(t, it.Days[1].Segments, 1)
	seg := it.Days[1].Segments[0]
	assert.Equal(t, "游玩 poi_9", seg.Title)
	require.NotNil(t, seg.Detail)
	assert.Equal(t, "poi_9", seg.Detail.POIID)
	assert.Equal(t, "morning", seg.Detail.TimeSlotCode)

	assert.Eventually(t, func() bool {
		return len(dash.Snapshot().Itinerary) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestAddPOIRejectsMissingFields(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/api/itinerary/poi/add",
		`{"itineraryId": "trip_x", "dayIndex": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceSegment(t *testing.T) {
	dash := panels.NewDashboard(config.PanelConfig{ApplyDelay: 0, HotActivityPageSize: 5}, nil)
	dash.Mount()
	r := newTestRouter(dash)

	w := doJSON(r, http.MethodPost, "/api/itinerary/generate",
		`{"cityName": "南京", "startDate": "2026-10-01", "endDate": "2026-10-01"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var generated Itinerary
	decodeResponse(t, w, &generated)
	require.Len(t, generated.Days, 1)
	target := generated.Days[0].Segments[0]

	w = doJSON(r, http.MethodPost, "/api/itinerary/segment/replace",
		fmt.Sprintf(`{"itineraryId": %q, "dayIndex": 1, "segmentId": %q}`, generated.ID, target.SegmentID))
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Success bool `json:"success"`
	}
	decodeResponse(t, w, &data)
	assert.True(t, data.Success)

	w = doJSON(r, http.MethodGet, "/api/itinerary/"+generated.ID, "")
	var after Itinerary
	decodeResponse(t, w, &after)
	replaced := after.Days[0].Segments[0]
	assert.NotEqual(t, target.SegmentID, replaced.SegmentID)
	assert.Equal(t, "替换后的景点", replaced.Title)
	assert.Equal(t, target.StartTime, replaced.StartTime, "the time window survives the swap")

	// Unknown segment id is a soft failure, unknown itinerary a 404.
	w = doJSON(r, http.MethodPost, "/api/itinerary/segment/replace",
		fmt.Sprintf(`{"itineraryId": %q, "dayIndex": 1, "segmentId": "seg_missing"}`, generated.ID))
	require.Equal(t, http.StatusOK, w.Code)
	decodeResponse(t, w, &data)
	assert.False(t, data.Success)

	w = doJSON(r, http.MethodPost, "/api/itinerary/segment/replace",
		`{"itineraryId": "nope", "dayIndex": 1, "segmentId": "seg_missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveDraftExportShare(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/api/itinerary/save-draft",
		`{"userId": "u1", "itineraryId": "trip_1", "title": "周末去苏州", "itineraryData": {"days": []}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var saved struct {
		Success bool `json:"success"`
	}
	decodeResponse(t, w, &saved)
	assert.True(t, saved.Success)

	w = doJSON(r, http.MethodPost, "/api/itinerary/export",
		`{"itineraryId": "trip_1", "exportFormatCode": "pdf"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var exported struct {
		DownloadURL string `json:"downloadUrl"`
	}
	decodeResponse(t, w, &exported)
	assert.Equal(t, "https://example.com/download/trip_1.pdf", exported.DownloadURL)

	w = doJSON(r, http.MethodPost, "/api/itinerary/share",
		`{"itineraryId": "trip_1", "shareTypeCode": "link"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var shared struct {
		ShareURL string `json:"shareUrl"`
	}
	decodeResponse(t, w, &shared)
	assert.Equal(t, "https://example.com/share/trip_1", shared.ShareURL)
}

func TestTravelmateSearchPaginates(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/api/travelmate/search",
		`{"cityName": "上海", "pageNumber": 2, "pageSize": 8}`)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		List  []Travelmate `json:"list"`
		Total int          `json:"total"`
	}
	decodeResponse(t, w, &page)
	assert.Equal(t, 20, page.Total)
	require.Len(t, page.List, 8)
	assert.Equal(t, "上海玩家9", page.List[0].Nickname)
	assert.Equal(t, []string{"Citywalk", "摄影"}, page.List[0].Tags)
}

func TestListEndpointsPaginate(t *testing.T) {
	r := newTestRouter(nil)

	var page pageData

	w := doJSON(r, http.MethodPost, "/api/poi/list",
		`{"cityName": "深圳", "categoryCode": "museum", "pageNumber": 1, "pageSize": 5}`)
	require.Equal(t, http.StatusOK, w.Code)
	decodeResponse(t, w, &page)
	assert.Len(t, page.List, 5)
	assert.Equal(t, 40, page.Total)

	w = doJSON(r, http.MethodPost, "/api/activity/list", `{"cityName": "深圳"}`)
	require.Equal(t, http.StatusOK, w.Code)
	decodeResponse(t, w, &page)
	assert.Equal(t, 30, page.Total)

	w = doJSON(r, http.MethodPost, "/api/social/feed",
		`{"cityName": "深圳", "pageNumber": 3, "pageSize": 20}`)
	require.Equal(t, http.StatusOK, w.Code)
	decodeResponse(t, w, &page)
	assert.Len(t, page.List, 10)
	assert.Equal(t, 50, page.Total)
}

func TestListEndpointsRequireCity(t *testing.T) {
	r := newTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/api/poi/list", `{"pageNumber": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
