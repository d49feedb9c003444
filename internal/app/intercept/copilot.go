package intercept

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/app/observability/metrics"
	"github.com/voyplan/voyplan/internal/app/panels"
	"github.com/voyplan/voyplan/internal/app/textmine"
	"github.com/voyplan/voyplan/internal/app/videosearch"
	"github.com/voyplan/voyplan/internal/pkg/debugger"
)

const interceptorName = "copilot-frontend-actions"

// CopilotInterceptor recognizes chat-backend responses by a URL substring,
// mines them for frontend actions and feeds the panel registries. All of its
// work happens off the request path: the body is mirrored as the caller
// reads it, so delivery never waits on the interceptor.
type CopilotInterceptor struct {
	relayPath   string
	dash        *panels.Dashboard
	search      videosearch.Searcher
	searchLimit int
	logger      *zap.Logger

	// wg lets tests wait for the fire-and-forget processing to settle.
	wg sync.WaitGroup
}

func NewCopilotInterceptor(relayPath string, dash *panels.Dashboard, search videosearch.Searcher, searchLimit int, logger *zap.Logger) *CopilotInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if searchLimit <= 0 {
		searchLimit = 3
	}
	return &CopilotInterceptor{
		relayPath:   relayPath,
		dash:        dash,
		search:      search,
		searchLimit: searchLimit,
		logger:      logger,
	}
}

func (ci *CopilotInterceptor) Name() string { return interceptorName }

func (ci *CopilotInterceptor) Intercept(req *http.Request, resp *http.Response) *http.Response {
	if req == nil || resp == nil || resp.Body == nil {
		return resp
	}
	if !strings.Contains(req.URL.String(), ci.relayPath) {
		return resp
	}

	// The caller keeps driving the read; the body is copied as it streams
	// past and processed only once the stream ends. A slow or chunked
	// upstream reaches the caller chunk by chunk, untouched.
	ci.wg.Add(1)
	resp.Body = &captureBody{
		inner: resp.Body,
		done: func(raw []byte) {
			defer ci.wg.Done()
			metrics.Get().InterceptedBodyBytes.Add(context.Background(), int64(len(raw)))
			ci.process(raw)
		},
	}
	return resp
}

// captureBody mirrors a response body as its caller reads it and hands the
// captured bytes to done exactly once, at EOF or Close, whichever comes
// first.
type captureBody struct {
	inner io.ReadCloser
	buf   bytes.Buffer
	once  sync.Once
	done  func(raw []byte)
}

func (cb *captureBody) Read(p []byte) (int, error) {
	n, err := cb.inner.Read(p)
	if n > 0 {
		cb.buf.Write(p[:n])
	}
	if err == io.EOF {
		cb.fire()
	}
	return n, err
}

func (cb *captureBody) Close() error {
	err := cb.inner.Close()
	cb.fire()
	return err
}

func (cb *captureBody) fire() {
	cb.once.Do(func() {
		raw := append([]byte(nil), cb.buf.Bytes()...)
		go cb.done(raw)
	})
}

// Wait blocks until in-flight processing finishes. Test hook only.
func (ci *CopilotInterceptor) Wait() { ci.wg.Wait() }

func (ci *CopilotInterceptor) process(raw []byte) {
	ctx := context.Background()
	debugger.DebugPrintEnvelope(ci.logger, raw)

	var env models.CopilotEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Non-JSON chat responses are expected; never an error.
		ci.logger.Debug("Chat response is not a JSON envelope", zap.Error(err))
	} else {
		ci.dispatchActions(ctx, env.Data.GenerateCopilotResponse.Extensions.FrontendActions)
	}

	// Heuristic fallback runs regardless of whether structured actions
	// were found.
	ci.heuristicSearch(ctx, raw)
}

func (ci *CopilotInterceptor) dispatchActions(ctx context.Context, frontendActions map[string]json.RawMessage) {
	if len(frontendActions) == 0 {
		return
	}

	for _, name := range models.ActionNames {
		payload, ok := frontendActions[name]
		if !ok {
			continue
		}
		if err := ci.forward(ctx, name, payload); err != nil {
			ci.logger.Debug("Skipping malformed frontend action",
				zap.String("action", name),
				zap.Error(err))
			continue
		}
		ci.logger.Info("Frontend action forwarded", zap.String("action", name))
	}
}

// forward decodes one action payload into its entity type and hands it to
// the matching registry. A shape mismatch skips just this key.
func (ci *CopilotInterceptor) forward(ctx context.Context, name string, payload json.RawMessage) error {
	switch name {
	case models.ActionUpdateItinerary:
		var plans []models.DayPlan
		if err := json.Unmarshal(payload, &plans); err != nil {
			return fmt.Errorf("%w: %v", models.ErrPayloadShape, err)
		}
		ci.dash.Itinerary.RequestUpdate(ctx, plans, panels.ModeReplace)
	case models.ActionUpdateFeaturedSpots:
		var spots []models.Spot
		if err := json.Unmarshal(payload, &spots); err != nil {
			return fmt.Errorf("%w: %v", models.ErrPayloadShape, err)
		}
		ci.dash.FeaturedSpots.RequestUpdate(ctx, spots, panels.ModeReplace)
	case models.ActionUpdateSocialPosts:
		var posts []models.SocialPost
		if err := json.Unmarshal(payload, &posts); err != nil {
			return fmt.Errorf("%w: %v", models.ErrPayloadShape, err)
		}
		ci.dash.SocialPosts.RequestUpdate(ctx, posts, panels.ModeReplace)
	case models.ActionUpdateHotActivities:
		var items []models.HotActivityItem
		if err := json.Unmarshal(payload, &items); err != nil {
			return fmt.Errorf("%w: %v", models.ErrPayloadShape, err)
		}
		ci.dash.HotActivities.RequestUpdate(ctx, items, panels.ModeReplace)
	case models.ActionUpdateTripInfo:
		var info models.TripInfo
		if err := json.Unmarshal(payload, &info); err != nil {
			return fmt.Errorf("%w: %v", models.ErrPayloadShape, err)
		}
		ci.dash.TripInfo.RequestUpdate(ctx, info, panels.ModeReplace)
	}
	return nil
}

func (ci *CopilotInterceptor) heuristicSearch(ctx context.Context, raw []byte) {
	text := textmine.JoinStrings(raw)
	key := textmine.ExtractSearchKey(text)
	if key == "" {
		return
	}
	if ci.search == nil {
		ci.logger.Debug("No video search collaborator configured", zap.String("keyword", key))
		return
	}
	metrics.Get().HeuristicSearchTotal.Add(ctx, 1)

	results, err := ci.search.Search(ctx, key, ci.searchLimit)
	if err != nil {
		ci.logger.Warn("Secondary video search failed",
			zap.String("keyword", key),
			zap.Error(err))
		return
	}
	if len(results) == 0 {
		ci.logger.Debug("Secondary video search returned nothing", zap.String("keyword", key))
		return
	}

	posts := videosearch.ToSocialPosts(results)
	ci.dash.SocialPosts.RequestUpdate(ctx, posts, panels.ModeReplace)
	ci.logger.Info("Social panel populated from video search",
		zap.String("keyword", key),
		zap.Int("posts", len(posts)))
}
