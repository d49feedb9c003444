package intercept

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/app/panels"
	"github.com/voyplan/voyplan/internal/pkg/config"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, keyword string, limit int) ([]models.VideoResult, error) {
	args := m.Called(ctx, keyword, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VideoResult), args.Error(1)
}

func mountedDashboard() *panels.Dashboard {
	d := panels.NewDashboard(config.PanelConfig{ApplyDelay: 0, HotActivityPageSize: 5}, nil)
	d.Mount()
	return d
}

const envelopeWithActions = `{
	"data": {
		"generateCopilotResponse": {
			"threadId": "t-1",
			"runId": "r-1",
			"extensions": {
				"frontendActions": {
					"updateFeaturedSpots": [{"id": "s1", "title": "Test", "rating": 4.9}],
					"updateTripInfo": "not an object"
				}
			}
		}
	}
}`

func relayThrough(t *testing.T, ci *CopilotInterceptor, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	chain := NewChain(http.DefaultTransport)
	chain.Use(ci)

	resp, err := chain.Client().Post(srv.URL+"/copilotkit_remote", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(got)
}

func TestInterceptorBodyPassesThroughUntouched(t *testing.T) {
	dash := mountedDashboard()
	search := new(MockSearcher)
	search.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	ci := NewCopilotInterceptor("/copilotkit_remote", dash, search, 3, nil)

	got := relayThrough(t, ci, envelopeWithActions)
	ci.Wait()

	assert.Equal(t, envelopeWithActions, got, "caller must receive the exact original bytes")
}

func TestInterceptorForwardsActionsAndSkipsMalformedKeys(t *testing.T) {
	dash := mountedDashboard()
	search := new(MockSearcher)
	search.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	ci := NewCopilotInterceptor("/copilotkit_remote", dash, search, 3, nil)

	tripBefore := dash.Snapshot().TripInfo

	relayThrough(t, ci, envelopeWithActions)
	ci.Wait()

	assert.Eventually(t, func() bool {
		snap := dash.Snapshot()
		return len(snap.FeaturedSpots) == 1 && snap.FeaturedSpots[0].Title == "Test"
	}, time.Second, 5*time.Millisecond)

	// The malformed updateTripInfo payload is skipped without disturbing
	// its panel or its sibling action.
	assert.Equal(t, tripBefore, dash.Snapshot().TripInfo)
}

func TestInterceptorIgnoresUnrelatedURLs(t *testing.T) {
	dash := mountedDashboard()
	search := new(MockSearcher)
	ci := NewCopilotInterceptor("/copilotkit_remote", dash, search, 3, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, envelopeWithActions)
	}))
	defer srv.Close()

	chain := NewChain(http.DefaultTransport)
	chain.Use(ci)
	resp, err := chain.Client().Get(srv.URL + "/api/other")
	require.NoError(t, err)
	resp.Body.Close()
	ci.Wait()

	search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestInterceptorHeuristicSearchFeedsSocialPanel(t *testing.T) {
	dash := mountedDashboard()
	search := new(MockSearcher)
	results := []models.VideoResult{
		{ID: "v2", Title: "香港美食", Link: "http://example.com/2", PlayCount: 50},
		{ID: "v1", Title: "香港攻略", Link: "http://example.com/1", PlayCount: 900},
	}
	search.On("Search", mock.Anything, "香港", 3).Return(results, nil).Once()
	ci := NewCopilotInterceptor("/copilotkit_remote", dash, search, 3, nil)

	relayThrough(t, ci, `{"data": {"messages": [{"content": "我想去香港旅游"}]}}`)
	ci.Wait()

	assert.Eventually(t, func() bool {
		snap := dash.Snapshot()
		return len(snap.SocialPosts) == 2 &&
			snap.SocialPosts[0].ID == "v1" &&
			snap.SocialPosts[0].Platform == "bilibili"
	}, time.Second, 5*time.Millisecond)
	search.AssertExpectations(t)
}

func TestInterceptorSearchFailureLeavesPanelAlone(t *testing.T) {
	dash := mountedDashboard()
	search := new(MockSearcher)
	search.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()
	ci := NewCopilotInterceptor("/copilotkit_remote", dash, search, 3, nil)

	before := dash.Snapshot().SocialPosts

	relayThrough(t, ci, `{"content": "想去东京"}`)
	ci.Wait()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, before, dash.Snapshot().SocialPosts)
	search.AssertExpectations(t)
}

func TestInterceptorDoesNotDelayStreamingDelivery(t *testing.T) {
	dash := mountedDashboard()
	ci := NewCopilotInterceptor("/copilotkit_remote", dash, nil, 3, nil)

	release := make(chan struct{})
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "first")
		w.(http.Flusher).Flush()
		<-release
		io.WriteString(w, " second")
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(unblock)

	chain := NewChain(http.DefaultTransport)
	chain.Use(ci)

	resp, err := chain.Client().Post(srv.URL+"/copilotkit_remote", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// The first chunk must reach the caller while the upstream is still
	// holding the connection open.
	firstChunk := make(chan string, 1)
	go func() {
		buf := make([]byte, len("first"))
		if _, err := io.ReadFull(resp.Body, buf); err != nil {
			firstChunk <- "read error: " + err.Error()
			return
		}
		firstChunk <- string(buf)
	}()

	select {
	case got := <-firstChunk:
		assert.Equal(t, "first", got)
	case <-time.After(2 * time.Second):
		t.Fatal("first chunk was held back until upstream EOF")
	}

	unblock()
	rest, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, " second", string(rest))
	ci.Wait()
}

func TestInterceptorRedeliveryIsIdempotent(t *testing.T) {
	dash := mountedDashboard()
	search := new(MockSearcher)
	search.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	ci := NewCopilotInterceptor("/copilotkit_remote", dash, search, 3, nil)

	relayThrough(t, ci, envelopeWithActions)
	ci.Wait()
	assert.Eventually(t, func() bool {
		return len(dash.Snapshot().FeaturedSpots) == 1
	}, time.Second, 5*time.Millisecond)
	once := dash.Snapshot()

	relayThrough(t, ci, envelopeWithActions)
	ci.Wait()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, once, dash.Snapshot(),
		"delivering the same envelope twice must end in the same panel state")
}

func TestForwardRejectsMismatchedPayloadShape(t *testing.T) {
	dash := mountedDashboard()
	ci := NewCopilotInterceptor("/copilotkit_remote", dash, nil, 3, nil)

	err := ci.forward(context.Background(), models.ActionUpdateTripInfo, json.RawMessage(`[1, 2]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPayloadShape)
}
