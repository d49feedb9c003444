// Package videosearch talks to the external video-search collaborator that
// backs the heuristic social-panel population. The collaborator is reached
// over HTTP through a configured proxy; it normally answers JSON, but some
// proxies hand back the raw search page, so an HTML fallback parse is kept.
package videosearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/app/observability/metrics"
	"github.com/voyplan/voyplan/internal/pkg/config"
)

// Platform tag stamped onto posts built from search results.
const Platform = "bilibili"

// Searcher is the collaborator boundary the interceptor depends on.
type Searcher interface {
	Search(ctx context.Context, keyword string, limit int) ([]models.VideoResult, error)
}

// Client is the HTTP implementation of Searcher, with a short-TTL result
// cache and singleflight dedup of concurrent identical queries.
type Client struct {
	endpoint string
	httpc    *http.Client
	cache    *gocache.Cache
	group    singleflight.Group
	logger   *zap.Logger
}

func NewClient(cfg config.SearchConfig, httpc *http.Client, logger *zap.Logger) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		endpoint: cfg.Endpoint,
		httpc:    httpc,
		cache:    gocache.New(ttl, 2*ttl),
		logger:   logger,
	}
}

// Search returns up to limit results for the keyword. Identical concurrent
// searches share one upstream call.
func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]models.VideoResult, error) {
	if keyword == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	cacheKey := fmt.Sprintf("%s|%d", keyword, limit)
	if cached, found := c.cache.Get(cacheKey); found {
		c.logger.Debug("Video search cache hit", zap.String("keyword", keyword))
		return cached.([]models.VideoResult), nil
	}

	v, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		results, err := c.fetch(ctx, keyword, limit)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(cacheKey, results)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.VideoResult), nil
}

func (c *Client) fetch(ctx context.Context, keyword string, limit int) ([]models.VideoResult, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid video search endpoint")
	}
	q := u.Query()
	q.Set("keyword", keyword)
	q.Set("limit", fmt.Sprintf("%d", limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build video search request")
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	metrics.Get().VideoSearchDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrap(err, "video search call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("video search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read video search response")
	}

	contentType := resp.Header.Get("Content-Type")
	var results []models.VideoResult
	if strings.Contains(contentType, "text/html") {
		results, err = parseHTMLResults(body)
	} else {
		results, err = parseJSONResults(body)
	}
	if err != nil {
		return nil, err
	}

	if len(results) > limit {
		results = results[:limit]
	}
	c.logger.Debug("Video search completed",
		zap.String("keyword", keyword),
		zap.Int("results", len(results)))
	return results, nil
}

func parseJSONResults(body []byte) ([]models.VideoResult, error) {
	// The proxy answers either a bare array or an items wrapper.
	var direct []models.VideoResult
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var wrapper struct {
		Items []models.VideoResult `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, errors.Wrap(err, "parse video search response")
	}
	return wrapper.Items, nil
}

// parseHTMLResults scrapes a search page: one .video-item per hit with an
// anchor, a title attribute or text, and an optional play count.
func parseHTMLResults(body []byte) ([]models.VideoResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Wrap(err, "parse video search page")
	}

	var results []models.VideoResult
	doc.Find(".video-item").Each(func(i int, s *goquery.Selection) {
		anchor := s.Find("a").First()
		link, _ := anchor.Attr("href")
		title := strings.TrimSpace(anchor.AttrOr("title", anchor.Text()))
		if title == "" || link == "" {
			return
		}
		thumb, _ := s.Find("img").First().Attr("src")
		results = append(results, models.VideoResult{
			ID:        fmt.Sprintf("video_%d", i+1),
			Title:     title,
			Thumbnail: thumb,
			Link:      link,
		})
	})
	return results, nil
}

// ToSocialPosts maps results to social posts tagged with the platform,
// ordered by play count descending (the only merge key the panel uses).
func ToSocialPosts(results []models.VideoResult) []models.SocialPost {
	sorted := append([]models.VideoResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlayCount > sorted[j].PlayCount
	})

	posts := make([]models.SocialPost, 0, len(sorted))
	for _, r := range sorted {
		posts = append(posts, models.SocialPost{
			ID:        r.ID,
			Title:     r.Title,
			Image:     r.Thumbnail,
			Link:      r.Link,
			Platform:  Platform,
			PlayCount: r.PlayCount,
		})
	}
	return posts
}
