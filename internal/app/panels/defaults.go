package panels

import "github.com/voyplan/voyplan/internal/app/models"

// Default demo data shown before the agent pushes anything. Mirrors the
// placeholder content of the original planner UI.

func defaultItinerary() []models.DayPlan {
	return []models.DayPlan{
		{
			ID:    "day_1",
			Label: "第1天",
			Activities: []models.Activity{
				{ID: "day_1_spot_1", Icon: "🗺️", Title: "城市地标打卡", TimeRange: "09:00 - 12:00", Description: "经典景点 · 建议停留约 3 小时"},
				{ID: "day_1_lunch", Icon: "🍽️", Title: "当地午餐", TimeRange: "12:00 - 13:00", Description: "在附近找一家评价不错的餐厅"},
				{ID: "day_1_dinner", Icon: "🍜", Title: "夜市 / 街头小吃", TimeRange: "19:00 - 20:30"},
			},
		},
		{
			ID:    "day_2",
			Label: "第2天",
			Activities: []models.Activity{
				{ID: "day_2_free", Icon: "😌", Title: "自由活动", TimeRange: "10:00 - 16:00", Description: "留给你自由安排，逛逛街道、咖啡馆或商场"},
			},
		},
	}
}

func defaultFeaturedSpots() []models.Spot {
	return []models.Spot{
		{ID: "spot_1", Title: "热门景点", Rating: 4.6, Category: "景点", Price: 0, Image: "https://example.com/spot1.png"},
		{ID: "spot_2", Title: "特色美食街", Rating: 4.4, Category: "美食", Price: 0, Image: "https://example.com/spot2.png"},
		{ID: "spot_3", Title: "城市购物中心", Rating: 4.5, Category: "购物", Price: 0, Image: "https://example.com/spot3.png"},
	}
}

func defaultSocialPosts() []models.SocialPost {
	return []models.SocialPost{
		{ID: "post_1", Title: "旅行日记：三天两夜怎么玩", Image: "https://example.com/post1.png", Link: "https://example.com/post/1"},
		{ID: "post_2", Title: "本地人推荐的小众路线", Image: "https://example.com/post2.png", Link: "https://example.com/post/2"},
	}
}

func defaultHotActivities() []models.HotActivityItem {
	return []models.HotActivityItem{
		{ID: "hot_1", Title: "城市灯光秀", Link: "#", Hot: true},
		{ID: "hot_2", Title: "美食文化节", Link: "#", Hot: true},
		{ID: "hot_3", Title: "国际展览会", Link: "#"},
		{ID: "hot_4", Title: "周末市集", Link: "#"},
		{ID: "hot_5", Title: "户外音乐演出", Link: "#"},
		{ID: "hot_6", Title: "博物馆夜场", Link: "#"},
	}
}

func defaultTripInfo() models.TripInfo {
	return models.TripInfo{
		Destination: "",
		StartDate:   "",
		EndDate:     "",
		People:      1,
		Budget:      "中",
		Interests:   []string{},
	}
}
