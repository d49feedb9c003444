// Package trip carries the panel-adjacent REST glue: itinerary base info and
// generation, POI/activity/social listings. Everything lives in memory for
// the lifetime of the process; there is deliberately no store behind it.
package trip

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyplan/voyplan/internal/app/models"
	"github.com/voyplan/voyplan/internal/app/textmine"
)

const dateLayout = "2006-01-02"

// Itinerary is one stored trip scaffold.
type Itinerary struct {
	ID            string         `json:"itineraryId"`
	UserID        string         `json:"userId"`
	CityName      string         `json:"cityName"`
	CityCode      string         `json:"cityCode,omitempty"`
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	TravelerCount int            `json:"travelerCount"`
	Budget        string         `json:"budgetAmount,omitempty"`
	Interests     []string       `json:"interests,omitempty"`
	Days          []ItineraryDay `json:"days,omitempty"`
}

type ItineraryDay struct {
	DayIndex int       `json:"dayIndex"`
	Date     string    `json:"date"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	SegmentID string         `json:"segmentId"`
	TypeCode  string         `json:"segmentTypeCode"`
	Title     string         `json:"title"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
	Detail    *SegmentDetail `json:"detail,omitempty"`
}

// SegmentDetail carries the POI booking hints attached by poi/add.
type SegmentDetail struct {
	POIID                 string   `json:"poiId,omitempty"`
	TimeSlotCode          string   `json:"timeSlotCode,omitempty"`
	ExpectedDurationHours *float64 `json:"expectedDurationHours,omitempty"`
	ExpectedCostAmount    *float64 `json:"expectedCostAmount,omitempty"`
}

// Progress tracks generation state per itinerary.
type Progress struct {
	Percent int    `json:"progressPercent"`
	Status  string `json:"statusCode"`
}

// Draft is a user-named itinerary snapshot kept separate from the live one.
type Draft struct {
	Title string          `json:"title"`
	Data  json.RawMessage `json:"itineraryData"`
}

type draftKey struct {
	userID      string
	itineraryID string
}

// Service owns the in-memory trip state.
type Service struct {
	logger *zap.Logger

	mu          sync.RWMutex
	itineraries map[string]*Itinerary
	progress    map[string]Progress
	drafts      map[draftKey]Draft
	exports     map[string]string
	shares      map[string]string
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:      logger,
		itineraries: make(map[string]*Itinerary),
		progress:    make(map[string]Progress),
		drafts:      make(map[draftKey]Draft),
		exports:     make(map[string]string),
		shares:      make(map[string]string),
	}
}

func genID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
}

// SetBaseInfo stores trip basics, mining interests from the free-text
// preference field, and reports how many stored travelers share the city.
func (s *Service) SetBaseInfo(userID, itineraryID, cityName, cityCode, startDate, endDate string, travelerCount int, preferences string) (*Itinerary, int) {
	if itineraryID == "" {
		itineraryID = genID("trip")
	}

	interests := textmine.ExtractInterests(preferences)

	s.mu.Lock()
	it, ok := s.itineraries[itineraryID]
	if !ok {
		it = &Itinerary{ID: itineraryID}
		s.itineraries[itineraryID] = it
	}
	it.UserID = userID
	it.CityName = cityName
	it.CityCode = cityCode
	it.StartDate = startDate
	it.EndDate = endDate
	it.TravelerCount = travelerCount
	if len(interests) > 0 {
		it.Interests = interests
	}

	sameCity := 0
	for _, other := range s.itineraries {
		if other.CityName == cityName {
			sameCity += other.TravelerCount
		}
	}
	s.mu.Unlock()

	s.logger.Info("Trip base info set",
		zap.String("itineraryId", itineraryID),
		zap.String("city", cityName),
		zap.Strings("interests", interests))
	return it, sameCity
}

// Generate scaffolds one segment pair per day between the two dates.
func (s *Service) Generate(userID, itineraryID, cityName, cityCode, startDate, endDate, budget string, travelerCount int) (*Itinerary, error) {
	if startDate == "" || endDate == "" {
		return nil, fmt.Errorf("%w: startDate and endDate are required as YYYY-MM-DD", models.ErrValidation)
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startDate %q", models.ErrValidation, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endDate %q", models.ErrValidation, endDate)
	}
	daysCount := int(end.Sub(start).Hours()/24) + 1
	if daysCount <= 0 {
		return nil, models.ErrInvalidDateSpan
	}

	if itineraryID == "" {
		itineraryID = genID("trip")
	}

	days := make([]ItineraryDay, 0, daysCount)
	for i := 0; i < daysCount; i++ {
		date := start.AddDate(0, 0, i)
		dayIndex := i + 1
		days = append(days, ItineraryDay{
			DayIndex: dayIndex,
			Date:     date.Format(dateLayout),
			Segments: []Segment{
				{SegmentID: genID("seg"), TypeCode: "poi", Title: fmt.Sprintf("%s 打卡景点 %d", cityName, dayIndex), StartTime: "10:00", EndTime: "12:00"},
				{SegmentID: genID("seg"), TypeCode: "food", Title: fmt.Sprintf("%s 美食推荐 %d", cityName, dayIndex), StartTime: "12:30", EndTime: "14:00"},
			},
		})
	}

	it := &Itinerary{
		ID:            itineraryID,
		UserID:        userID,
		CityName:      cityName,
		CityCode:      cityCode,
		StartDate:     startDate,
		EndDate:       endDate,
		TravelerCount: travelerCount,
		Budget:        budget,
		Days:          days,
	}

	s.mu.Lock()
	s.itineraries[itineraryID] = it
	s.progress[itineraryID] = Progress{Percent: 100, Status: "finished"}
	s.mu.Unlock()

	s.logger.Info("Itinerary generated",
		zap.String("itineraryId", itineraryID),
		zap.String("city", cityName),
		zap.Int("days", daysCount))
	return it, nil
}

// GetProgress defaults to a generating state for unknown ids, matching the
// poll-until-done contract of the UI.
func (s *Service) GetProgress(itineraryID string) Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.progress[itineraryID]; ok {
		return p
	}
	return Progress{Percent: 0, Status: "generating"}
}

// Get returns a stored itinerary.
func (s *Service) Get(itineraryID string) (*Itinerary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.itineraries[itineraryID]
	return it, ok
}

// AddPOI appends a POI segment to the given day, creating the itinerary and
// padding missing days so draft-first clients can build out of order.
func (s *Service) AddPOI(itineraryID string, dayIndex int, timeSlotCode, poiID string, durationHours, costAmount *float64) (*Itinerary, error) {
	if dayIndex < 1 {
		return nil, fmt.Errorf("%w: dayIndex must be at least 1", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.itineraries[itineraryID]
	if !ok {
		it = &Itinerary{ID: itineraryID}
		s.itineraries[itineraryID] = it
	}
	for len(it.Days) < dayIndex {
		it.Days = append(it.Days, ItineraryDay{DayIndex: len(it.Days) + 1})
	}

	day := &it.Days[dayIndex-1]
	day.Segments = append(day.Segments, Segment{
		SegmentID: genID("seg"),
		TypeCode:  "poi",
		Title:     fmt.Sprintf("游玩 %s", poiID),
		StartTime: "09:00",
		EndTime:   "12:00",
		Detail: &SegmentDetail{
			POIID:                 poiID,
			TimeSlotCode:          timeSlotCode,
			ExpectedDurationHours: durationHours,
			ExpectedCostAmount:    costAmount,
		},
	})

	s.logger.Info("POI added to itinerary",
		zap.String("itineraryId", itineraryID),
		zap.Int("dayIndex", dayIndex),
		zap.String("poiId", poiID))
	return it, nil
}

// ReplaceSegment swaps one segment for a fresh placeholder, keeping the time
// window of the segment it replaces. The bool reports whether the segment
// was found; a missing itinerary or day is ErrNotFound.
func (s *Service) ReplaceSegment(itineraryID string, dayIndex int, segmentID string) (*Itinerary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.itineraries[itineraryID]
	if !ok {
		return nil, false, models.ErrNotFound
	}
	if dayIndex < 1 || dayIndex > len(it.Days) {
		return nil, false, models.ErrNotFound
	}

	segments := it.Days[dayIndex-1].Segments
	for i, seg := range segments {
		if seg.SegmentID != segmentID {
			continue
		}
		start, end := seg.StartTime, seg.EndTime
		if start == "" {
			start = "10:00"
		}
		if end == "" {
			end = "12:00"
		}
		segments[i] = Segment{
			SegmentID: genID("seg"),
			TypeCode:  "poi",
			Title:     "替换后的景点",
			StartTime: start,
			EndTime:   end,
		}
		s.logger.Info("Itinerary segment replaced",
			zap.String("itineraryId", itineraryID),
			zap.String("segmentId", segmentID))
		return it, true, nil
	}
	return it, false, nil
}

// SaveDraft stores a named draft per user and itinerary, overwriting any
// previous one.
func (s *Service) SaveDraft(userID, itineraryID, title string, data json.RawMessage) {
	s.mu.Lock()
	s.drafts[draftKey{userID, itineraryID}] = Draft{Title: title, Data: data}
	s.mu.Unlock()
	s.logger.Info("Draft saved",
		zap.String("itineraryId", itineraryID),
		zap.String("title", title))
}

// Export records an export request and returns the synthetic download link.
func (s *Service) Export(itineraryID, formatCode string) string {
	url := fmt.Sprintf("https://example.com/download/%s.%s", itineraryID, formatCode)
	s.mu.Lock()
	s.exports[itineraryID] = url
	s.mu.Unlock()
	return url
}

// Share records a share link for the itinerary and returns it.
func (s *Service) Share(itineraryID string) string {
	url := fmt.Sprintf("https://example.com/share/%s", itineraryID)
	s.mu.Lock()
	s.shares[itineraryID] = url
	s.mu.Unlock()
	return url
}

// DayPlans converts a stored itinerary into the panel's DayPlan shape.
func (it *Itinerary) DayPlans() []models.DayPlan {
	plans := make([]models.DayPlan, 0, len(it.Days))
	for _, day := range it.Days {
		plan := models.DayPlan{
			ID:    fmt.Sprintf("day_%d", day.DayIndex),
			Label: fmt.Sprintf("第%d天", day.DayIndex),
		}
		for _, seg := range day.Segments {
			icon := "🗺️"
			if seg.TypeCode == "food" {
				icon = "🍜"
			}
			plan.Activities = append(plan.Activities, models.Activity{
				ID:        seg.SegmentID,
				Icon:      icon,
				Title:     seg.Title,
				TimeRange: fmt.Sprintf("%s - %s", seg.StartTime, seg.EndTime),
			})
		}
		plans = append(plans, plan)
	}
	return plans
}

// TripInfo converts a stored itinerary into the trip-header shape.
func (it *Itinerary) TripInfo() models.TripInfo {
	budget := it.Budget
	if budget == "" {
		budget = "中"
	}
	return models.TripInfo{
		Destination: it.CityName,
		StartDate:   it.StartDate,
		EndDate:     it.EndDate,
		People:      it.TravelerCount,
		Budget:      budget,
		Interests:   append([]string{}, it.Interests...),
	}
}

// paginate slices one 1-based page out of items.
func paginate[T any](items []T, page, size int) ([]T, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	total := len(items)
	start := (page - 1) * size
	if start >= total {
		return []T{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], total
}

// POIItem is one point-of-interest row.
type POIItem struct {
	POIID       string  `json:"poiId"`
	POIName     string  `json:"poiName"`
	CoverImage  string  `json:"coverImageUrl"`
	RatingScore float64 `json:"ratingScore"`
	PriceAmount float64 `json:"priceAmount"`
	Description string  `json:"shortDescription"`
}

// ListPOIs returns demo POIs for the city/category, paginated.
func (s *Service) ListPOIs(cityName, categoryCode string, page, size int) ([]POIItem, int) {
	items := make([]POIItem, 0, 40)
	for i := 1; i <= 40; i++ {
		items = append(items, POIItem{
			POIID:       fmt.Sprintf("%s_%d", categoryCode, i),
			POIName:     fmt.Sprintf("%s景点 %d", cityName, i),
			CoverImage:  "https://example.com/poi.png",
			RatingScore: 4.0 + float64(i%10)/10,
			PriceAmount: float64(50 + i),
			Description: fmt.Sprintf("%s 的打卡地 %d", cityName, i),
		})
	}
	return paginate(items, page, size)
}

// ActivityItem is one bookable activity row.
type ActivityItem struct {
	ActivityID  string  `json:"activityId"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	PriceAmount float64 `json:"priceAmount"`
	ImageURL    string  `json:"imageUrl"`
}

// ListActivities returns demo activities for the city, paginated.
func (s *Service) ListActivities(cityName string, page, size int) ([]ActivityItem, int) {
	items := make([]ActivityItem, 0, 30)
	for i := 1; i <= 30; i++ {
		items = append(items, ActivityItem{
			ActivityID:  fmt.Sprintf("act_%d", i),
			Title:       fmt.Sprintf("%s 活动 %d", cityName, i),
			Summary:     "这是一个很不错的活动",
			PriceAmount: float64(199 + i),
			ImageURL:    "https://example.com/activity.png",
		})
	}
	return paginate(items, page, size)
}

// FeedPost is one social feed entry.
type FeedPost struct {
	PostID     string `json:"postId"`
	Title      string `json:"title"`
	CoverImage string `json:"coverImageUrl"`
	AuthorName string `json:"authorName"`
}

// ListFeed returns demo feed posts for the city, paginated.
func (s *Service) ListFeed(cityName string, page, size int) ([]FeedPost, int) {
	items := make([]FeedPost, 0, 50)
	for i := 1; i <= 50; i++ {
		items = append(items, FeedPost{
			PostID:     fmt.Sprintf("post_%d", i),
			Title:      fmt.Sprintf("%s 旅行日记 %d", cityName, i),
			CoverImage: "https://example.com/post.png",
			AuthorName: fmt.Sprintf("游客%d", i),
		})
	}
	return paginate(items, page, size)
}

// Travelmate is one suggested travel companion.
type Travelmate struct {
	MateID    string   `json:"mateId"`
	Nickname  string   `json:"nickname"`
	AvatarURL string   `json:"avatarUrl"`
	Tags      []string `json:"tags"`
}

// SearchTravelmates returns demo companions for the city, paginated. Tags
// default when the caller sends none.
func (s *Service) SearchTravelmates(cityName string, tags []string, page, size int) ([]Travelmate, int) {
	if len(tags) == 0 {
		tags = []string{"Citywalk", "摄影"}
	}
	items := make([]Travelmate, 0, 20)
	for i := 1; i <= 20; i++ {
		items = append(items, Travelmate{
			MateID:    fmt.Sprintf("mate_%d", i),
			Nickname:  fmt.Sprintf("%s玩家%d", cityName, i),
			AvatarURL: "https://example.com/avatar.png",
			Tags:      tags,
		})
	}
	return paginate(items, page, size)
}

// NormalizeCity trims whitespace that sneaks in from form posts.
func NormalizeCity(city string) string {
	return strings.TrimSpace(city)
}
