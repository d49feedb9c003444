package videosearch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.SearchConfig{
		Endpoint: srv.URL,
		Limit:    3,
		CacheTTL: time.Minute,
	}, srv.Client(), nil)
}

func TestSearchParsesJSONArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "香港", r.URL.Query().Get("keyword"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": "v1", "title": "香港攻略", "link": "http://x/1", "playCount": 10},
			{"id": "v2", "title": "香港美食", "link": "http://x/2", "playCount": 99},
			{"id": "v3", "title": "extra", "link": "http://x/3"}
		]`)
	})

	results, err := c.Search(context.Background(), "香港", 2)
	require.NoError(t, err)
	require.Len(t, results, 2, "results are clamped to the requested limit")
	assert.Equal(t, "v1", results[0].ID)
}

func TestSearchParsesItemsWrapper(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"items": [{"id": "v1", "title": "東京", "link": "http://x/1"}]}`)
	})

	results, err := c.Search(context.Background(), "東京", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "東京", results[0].Title)
}

func TestSearchParsesHTMLFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body>
			<div class="video-item"><a href="http://x/1" title="第一条"></a><img src="http://x/1.png"></div>
			<div class="video-item"><a href="http://x/2">第二条</a></div>
			<div class="video-item"><a href=""></a></div>
		</body></html>`)
	})

	results, err := c.Search(context.Background(), "关键词", 5)
	require.NoError(t, err)
	require.Len(t, results, 2, "entries without title or link are dropped")
	assert.Equal(t, "第一条", results[0].Title)
	assert.Equal(t, "http://x/1.png", results[0].Thumbnail)
	assert.Equal(t, "第二条", results[1].Title)
}

func TestSearchCachesResults(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id": "v1", "title": "t", "link": "l"}]`)
	})

	ctx := context.Background()
	_, err := c.Search(ctx, "北京", 3)
	require.NoError(t, err)
	_, err = c.Search(ctx, "北京", 3)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second identical search is served from cache")
}

func TestSearchEmptyKeyword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called for an empty keyword")
	})

	results, err := c.Search(context.Background(), "", 3)
	assert.NoError(t, err)
	assert.Nil(t, results)
}

func TestSearchUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "上海", 3)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestToSocialPosts(t *testing.T) {
	results := []models.VideoResult{
		{ID: "low", Title: "l", PlayCount: 1},
		{ID: "high", Title: "h", PlayCount: 500},
		{ID: "mid", Title: "m", PlayCount: 20},
	}

	posts := ToSocialPosts(results)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	for _, p := range posts {
		assert.Equal(t, Platform, p.Platform)
	}
}
