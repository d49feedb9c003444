package models

// Panel entities. Every list is owned by its mounted panel instance and is
// replaced wholesale on update; nothing here survives a page reload.

// Activity is a single timeline entry inside a day plan. Ordering within
// Activities is display order.
type Activity struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	TimeRange   string `json:"timeRange"`
	Description string `json:"description,omitempty"`
}

// DayPlan is one day of the itinerary panel. Activity IDs are unique within
// a plan.
type DayPlan struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Activities []Activity `json:"activities"`
}

// Spot is a featured-spot card.
type Spot struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Rating   float64 `json:"rating"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
}

// SocialPost is an entry in the social panel. PlayCount is only used as a
// sort key when merging video-search results.
type SocialPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Link      string `json:"link"`
	Platform  string `json:"platform,omitempty"`
	PlayCount int64  `json:"playCount,omitempty"`
}

// HotActivityItem is a row in the hot-activities panel, paginated client
// side with a fixed page size.
type HotActivityItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link"`
	Hot   bool   `json:"hot,omitempty"`
}

// TripInfo is the trip header shown above the panels.
type TripInfo struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	People      int      `json:"people"`
	Budget      string   `json:"budget"`
	Interests   []string `json:"interests"`
}

// VideoResult is a single hit from the external video-search collaborator.
type VideoResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Link      string `json:"link"`
	PlayCount int64  `json:"playCount,omitempty"`
}
