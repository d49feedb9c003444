package panels

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/pkg/config"
)

func testDashboard() *Dashboard {
	return NewDashboard(config.PanelConfig{ApplyDelay: 0, HotActivityPageSize: 5}, nil)
}

func TestDashboardMountSeedsDefaults(t *testing.T) {
	d := testDashboard()
	d.Mount()

	snap := d.Snapshot()
	assert.True(t, d.Mounted())
	assert.NotEmpty(t, snap.Itinerary)
	assert.NotEmpty(t, snap.FeaturedSpots)
	assert.NotEmpty(t, snap.SocialPosts)
	assert.NotEmpty(t, snap.HotActivities)
	assert.NotEmpty(t, snap.TripInfo.Destination)
}

func TestDashboardUnmountClearsState(t *testing.T) {
	d := testDashboard()
	d.Mount()
	d.Unmount()

	snap := d.Snapshot()
	assert.False(t, d.Mounted())
	assert.Empty(t, snap.Itinerary)
	assert.Empty(t, snap.SocialPosts)
	assert.Empty(t, snap.TripInfo.Destination)
}

func TestDashboardUpdateWhileUnmountedAppliesOnMount(t *testing.T) {
	d := testDashboard()

	spots := []models.Spot{{ID: "s1", Title: "Test", Rating: 4.5}}
	d.FeaturedSpots.RequestUpdate(context.Background(), spots, ModeReplace)
	assert.Equal(t, 1, d.FeaturedSpots.PendingLen())

	d.Mount()
	assert.Eventually(t, func() bool {
		snap := d.Snapshot()
		return len(snap.FeaturedSpots) == 1 && snap.FeaturedSpots[0].Title == "Test"
	}, time.Second, 5*time.Millisecond)
}

func TestDashboardSocialModes(t *testing.T) {
	d := testDashboard()
	d.Mount()
	ctx := context.Background()

	base := []models.SocialPost{{ID: "a", Title: "A"}}
	d.SocialPosts.RequestUpdate(ctx, base, ModeReplace)
	assert.Eventually(t, func() bool {
		snap := d.Snapshot()
		return len(snap.SocialPosts) == 1 && snap.SocialPosts[0].ID == "a"
	}, time.Second, 5*time.Millisecond)

	d.SocialPosts.RequestUpdate(ctx, []models.SocialPost{{ID: "b", Title: "B"}}, ModePrepend)
	assert.Eventually(t, func() bool {
		snap := d.Snapshot()
		return len(snap.SocialPosts) == 2 && snap.SocialPosts[0].ID == "b"
	}, time.Second, 5*time.Millisecond)

	d.SocialPosts.RequestUpdate(ctx, []models.SocialPost{{ID: "c", Title: "C"}}, ModeAppend)
	assert.Eventually(t, func() bool {
		snap := d.Snapshot()
		return len(snap.SocialPosts) == 3 && snap.SocialPosts[2].ID == "c"
	}, time.Second, 5*time.Millisecond)
}

func TestHotActivitiesPage(t *testing.T) {
	d := testDashboard()
	d.Mount()

	snap := d.Snapshot()
	require.Greater(t, len(snap.HotActivities), 5, "default data must span more than one page")

	first, totalPages := d.HotActivitiesPage(1)
	assert.Len(t, first, 5)
	assert.Equal(t, 2, totalPages)

	second, _ := d.HotActivitiesPage(2)
	assert.Equal(t, len(snap.HotActivities)-5, len(second))

	outOfRange, _ := d.HotActivitiesPage(3)
	assert.Empty(t, outOfRange)

	zero, _ := d.HotActivitiesPage(0)
	assert.Empty(t, zero)
}

func TestSnapshotTripInfoInterestsAreDetached(t *testing.T) {
	d := testDashboard()
	d.Mount()

	info := models.TripInfo{Destination: "成都", Interests: []string{"美食", "文化"}}
	d.TripInfo.RequestUpdate(context.Background(), info, ModeReplace)
	assert.Eventually(t, func() bool {
		return d.Snapshot().TripInfo.Destination == "成都"
	}, time.Second, 5*time.Millisecond)

	snap := d.Snapshot()
	snap.TripInfo.Interests[0] = "mutated"

	assert.Equal(t, []string{"美食", "文化"}, d.Snapshot().TripInfo.Interests,
		"mutating a snapshot must not write through to the live state")
}
