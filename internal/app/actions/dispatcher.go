package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/app/panels"
)

// ActionFunc is one dispatch-table entry. It never propagates a failure to
// the caller; everything is folded into the result.
type ActionFunc func(ctx context.Context, payload json.RawMessage) models.ActionResult

// Dispatcher is the tab-lifetime action table the external agent invokes by
// name. It is rebuilt on every dashboard mount and emptied on unmount, so a
// stale agent call against an unmounted screen fails soft instead of
// touching dead state.
type Dispatcher struct {
	logger *zap.Logger

	mu    sync.RWMutex
	table map[string]ActionFunc
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger}
}

// Rebuild replaces the whole table with entries bound to the given
// dashboard's registries.
func (d *Dispatcher) Rebuild(dash *panels.Dashboard) {
	table := map[string]ActionFunc{
		models.ActionUpdateItinerary: func(ctx context.Context, payload json.RawMessage) models.ActionResult {
			var plans []models.DayPlan
			if err := json.Unmarshal(payload, &plans); err != nil {
				return failure(models.ActionUpdateItinerary, err)
			}
			dash.Itinerary.RequestUpdate(ctx, plans, panels.ModeReplace)
			return success(fmt.Sprintf("itinerary updated with %d day plans", len(plans)))
		},
		models.ActionUpdateFeaturedSpots: func(ctx context.Context, payload json.RawMessage) models.ActionResult {
			var spots []models.Spot
			if err := json.Unmarshal(payload, &spots); err != nil {
				return failure(models.ActionUpdateFeaturedSpots, err)
			}
			dash.FeaturedSpots.RequestUpdate(ctx, spots, panels.ModeReplace)
			return success(fmt.Sprintf("featured spots updated with %d spots", len(spots)))
		},
		models.ActionUpdateSocialPosts: func(ctx context.Context, payload json.RawMessage) models.ActionResult {
			var posts []models.SocialPost
			if err := json.Unmarshal(payload, &posts); err != nil {
				return failure(models.ActionUpdateSocialPosts, err)
			}
			dash.SocialPosts.RequestUpdate(ctx, posts, panels.ModeReplace)
			return success(fmt.Sprintf("social posts updated with %d posts", len(posts)))
		},
		models.ActionUpdateHotActivities: func(ctx context.Context, payload json.RawMessage) models.ActionResult {
			var items []models.HotActivityItem
			if err := json.Unmarshal(payload, &items); err != nil {
				return failure(models.ActionUpdateHotActivities, err)
			}
			dash.HotActivities.RequestUpdate(ctx, items, panels.ModeReplace)
			return success(fmt.Sprintf("hot activities updated with %d items", len(items)))
		},
		models.ActionUpdateTripInfo: func(ctx context.Context, payload json.RawMessage) models.ActionResult {
			var info models.TripInfo
			if err := json.Unmarshal(payload, &info); err != nil {
				return failure(models.ActionUpdateTripInfo, err)
			}
			dash.TripInfo.RequestUpdate(ctx, info, panels.ModeReplace)
			return success("trip info updated")
		},
	}

	d.mu.Lock()
	d.table = table
	d.mu.Unlock()
	d.logger.Info("Action dispatch table rebuilt", zap.Int("actions", len(table)))
}

// Teardown empties the table.
func (d *Dispatcher) Teardown() {
	d.mu.Lock()
	d.table = nil
	d.mu.Unlock()
	d.logger.Debug("Action dispatch table torn down")
}

// Register installs or replaces a single entry. Used by tests and by
// extensions that bring their own actions.
func (d *Dispatcher) Register(name string, fn ActionFunc) {
	d.mu.Lock()
	if d.table == nil {
		d.table = make(map[string]ActionFunc)
	}
	d.table[name] = fn
	d.mu.Unlock()
}

// Names returns the registered action names in unspecified order.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.table))
	for name := range d.table {
		names = append(names, name)
	}
	return names
}

// Invoke runs one action. A missing entry, a decode error or a panicking
// handler all come back as a structured failure; nothing escapes to the
// caller and sibling actions are unaffected.
func (d *Dispatcher) Invoke(ctx context.Context, name string, payload json.RawMessage) (result models.ActionResult) {
	d.mu.RLock()
	fn, ok := d.table[name]
	d.mu.RUnlock()

	if !ok {
		d.logger.Debug("Action not registered", zap.String("action", name))
		return models.ActionResult{Success: false, Error: models.ErrUnknownAction.Error()}
	}

	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("Action handler panicked",
				zap.String("action", name),
				zap.Any("panic", rec))
			result = models.ActionResult{
				Success: false,
				Error:   fmt.Sprintf("action %s panicked: %v", name, rec),
			}
		}
	}()

	result = fn(ctx, payload)
	if !result.Success {
		d.logger.Warn("Action failed",
			zap.String("action", name),
			zap.String("error", result.Error))
	}
	return result
}

func success(msg string) models.ActionResult {
	return models.ActionResult{Success: true, Message: msg}
}

func failure(name string, err error) models.ActionResult {
	return models.ActionResult{
		Success: false,
		Error:   fmt.Sprintf("%s: %v", name, err),
	}
}
