package panels

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/pkg/config"
)

// Panel names as exposed over the HTTP surface.
const (
	PanelItinerary     = "itinerary"
	PanelFeaturedSpots = "featuredSpots"
	PanelSocialPosts   = "socialPosts"
	PanelHotActivities = "hotActivities"
	PanelTripInfo      = "tripInfo"
)

// State is a point-in-time copy of every panel's entity list.
type State struct {
	Itinerary     []models.DayPlan         `json:"itinerary"`
	FeaturedSpots []models.Spot            `json:"featuredSpots"`
	SocialPosts   []models.SocialPost      `json:"socialPosts"`
	HotActivities []models.HotActivityItem `json:"hotActivities"`
	TripInfo      models.TripInfo          `json:"tripInfo"`
}

// Dashboard is the screen controller that owns the five panel registries and
// their current data. Registries outlive Mount/Unmount cycles; the entity
// lists do not.
type Dashboard struct {
	logger *zap.Logger
	cfg    config.PanelConfig

	Itinerary     *Registry[[]models.DayPlan]
	FeaturedSpots *Registry[[]models.Spot]
	SocialPosts   *Registry[[]models.SocialPost]
	HotActivities *Registry[[]models.HotActivityItem]
	TripInfo      *Registry[models.TripInfo]

	mu      sync.RWMutex
	state   State
	mounted bool
}

func NewDashboard(cfg config.PanelConfig, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dashboard{
		logger:        logger,
		cfg:           cfg,
		Itinerary:     NewRegistry[[]models.DayPlan](PanelItinerary, cfg.ApplyDelay, logger),
		FeaturedSpots: NewRegistry[[]models.Spot](PanelFeaturedSpots, cfg.ApplyDelay, logger),
		SocialPosts:   NewRegistry[[]models.SocialPost](PanelSocialPosts, cfg.ApplyDelay, logger),
		HotActivities: NewRegistry[[]models.HotActivityItem](PanelHotActivities, cfg.ApplyDelay, logger),
		TripInfo:      NewRegistry[models.TripInfo](PanelTripInfo, cfg.ApplyDelay, logger),
	}
	return d
}

// Mount seeds the default demo data and attaches every registry handler,
// which also drains whatever queued up while unmounted.
func (d *Dashboard) Mount() {
	d.mu.Lock()
	d.state = State{
		Itinerary:     defaultItinerary(),
		FeaturedSpots: defaultFeaturedSpots(),
		SocialPosts:   defaultSocialPosts(),
		HotActivities: defaultHotActivities(),
		TripInfo:      defaultTripInfo(),
	}
	d.mounted = true
	d.mu.Unlock()

	d.Itinerary.Attach(func(_ context.Context, plans []models.DayPlan, _ UpdateMode) error {
		d.mu.Lock()
		d.state.Itinerary = plans
		d.mu.Unlock()
		d.logger.Info("Itinerary panel updated", zap.Int("days", len(plans)))
		return nil
	})
	d.FeaturedSpots.Attach(func(_ context.Context, spots []models.Spot, _ UpdateMode) error {
		d.mu.Lock()
		d.state.FeaturedSpots = spots
		d.mu.Unlock()
		d.logger.Info("Featured spots panel updated", zap.Int("spots", len(spots)))
		return nil
	})
	d.SocialPosts.Attach(func(_ context.Context, posts []models.SocialPost, mode UpdateMode) error {
		d.mu.Lock()
		switch mode {
		case ModePrepend:
			d.state.SocialPosts = append(append([]models.SocialPost{}, posts...), d.state.SocialPosts...)
		case ModeAppend:
			d.state.SocialPosts = append(d.state.SocialPosts, posts...)
		default:
			d.state.SocialPosts = posts
		}
		count := len(d.state.SocialPosts)
		d.mu.Unlock()
		d.logger.Info("Social panel updated", zap.String("mode", string(mode)), zap.Int("posts", count))
		return nil
	})
	d.HotActivities.Attach(func(_ context.Context, items []models.HotActivityItem, _ UpdateMode) error {
		d.mu.Lock()
		d.state.HotActivities = items
		d.mu.Unlock()
		d.logger.Info("Hot activities panel updated", zap.Int("items", len(items)))
		return nil
	})
	d.TripInfo.Attach(func(_ context.Context, info models.TripInfo, _ UpdateMode) error {
		d.mu.Lock()
		d.state.TripInfo = info
		d.mu.Unlock()
		d.logger.Info("Trip header updated", zap.String("destination", info.Destination))
		return nil
	})
}

// Unmount detaches every handler and discards the entity lists. In-flight
// updates finish as no-ops.
func (d *Dashboard) Unmount() {
	d.Itinerary.Detach()
	d.FeaturedSpots.Detach()
	d.SocialPosts.Detach()
	d.HotActivities.Detach()
	d.TripInfo.Detach()

	d.mu.Lock()
	d.state = State{}
	d.mounted = false
	d.mu.Unlock()
}

// Mounted reports whether the dashboard currently has live handlers.
func (d *Dashboard) Mounted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mounted
}

// Snapshot returns a copy of the full panel state.
func (d *Dashboard) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info := d.state.TripInfo
	info.Interests = append([]string(nil), info.Interests...)
	s := State{
		Itinerary:     append([]models.DayPlan(nil), d.state.Itinerary...),
		FeaturedSpots: append([]models.Spot(nil), d.state.FeaturedSpots...),
		SocialPosts:   append([]models.SocialPost(nil), d.state.SocialPosts...),
		HotActivities: append([]models.HotActivityItem(nil), d.state.HotActivities...),
		TripInfo:      info,
	}
	return s
}

// HotActivitiesPage returns one fixed-size page of the hot-activities list
// plus the total page count. Pages are 1-based; out-of-range pages clamp to
// an empty slice.
func (d *Dashboard) HotActivitiesPage(page int) ([]models.HotActivityItem, int) {
	d.mu.RLock()
	items := append([]models.HotActivityItem(nil), d.state.HotActivities...)
	d.mu.RUnlock()

	size := d.cfg.HotActivityPageSize
	if size <= 0 {
		size = 5
	}
	totalPages := (len(items) + size - 1) / size
	if page < 1 || page > totalPages {
		return []models.HotActivityItem{}, totalPages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], totalPages
}
