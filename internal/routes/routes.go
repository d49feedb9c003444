package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyplan/voyplan/internal/app/actions"
	"github.com/voyplan/voyplan/internal/app/domain/journey"
	"github.com/voyplan/voyplan/internal/app/domain/trip"
	"github.com/voyplan/voyplan/internal/app/intercept"
	"github.com/voyplan/voyplan/internal/app/panels"
	"github.com/voyplan/voyplan/internal/app/videosearch"
	"github.com/voyplan/voyplan/internal/pkg/config"
)

type AppHandlers struct {
	Journey *journey.Handler
	Trip    *trip.Handler
}

// Setup builds the dependency graph and registers every route. The dashboard
// starts mounted so the widget has live panels from the first request.
func Setup(r *gin.Engine, cfg *config.Config, log *zap.Logger) *AppHandlers {
	handlers := setupDependencies(cfg, log)
	setupRouter(r, handlers)
	return handlers
}

func setupDependencies(cfg *config.Config, log *zap.Logger) *AppHandlers {
	dash := panels.NewDashboard(cfg.Panels, log)
	dispatcher := actions.NewDispatcher(log)

	searcher := videosearch.NewClient(cfg.Search, nil, log)
	interceptor := intercept.NewCopilotInterceptor(cfg.Chat.RelayPath, dash, searcher, cfg.Search.Limit, log)
	chain := intercept.NewChain(http.DefaultTransport)

	journeyHandler := journey.NewHandler(cfg.Chat, dash, dispatcher, chain, interceptor, log)

	tripService := trip.NewService(log)
	tripHandler := trip.NewHandler(tripService, dash, log)

	// Bring the screen up immediately; the widget can still cycle it
	// through the screen endpoints.
	dash.Mount()
	dispatcher.Rebuild(dash)
	chain.Use(interceptor)

	return &AppHandlers{
		Journey: journeyHandler,
		Trip:    tripHandler,
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers) {
	api := r.Group("/api")
	{
		api.GET("/health", h.Journey.Health)

		api.POST("/chat/relay", h.Journey.RelayChat)

		screen := api.Group("/screen")
		{
			screen.POST("/mount", h.Journey.MountScreen)
			screen.POST("/unmount", h.Journey.UnmountScreen)
		}

		api.GET("/panels", h.Journey.GetPanels)
		api.GET("/panels/:panel", h.Journey.GetPanel)

		agent := api.Group("/agent")
		{
			agent.GET("/actions", h.Journey.ListActions)
			agent.POST("/actions/:name", h.Journey.InvokeAction)
		}

		itinerary := api.Group("/itinerary")
		{
			itinerary.POST("/base-info", h.Trip.SetBaseInfo)
			itinerary.POST("/generate", h.Trip.Generate)
			itinerary.POST("/progress", h.Trip.GetProgress)
			itinerary.POST("/poi/add", h.Trip.AddPOI)
			itinerary.POST("/segment/replace", h.Trip.ReplaceSegment)
			itinerary.POST("/save-draft", h.Trip.SaveDraft)
			itinerary.POST("/export", h.Trip.Export)
			itinerary.POST("/share", h.Trip.Share)
			itinerary.GET("/:id", h.Trip.GetItinerary)
		}

		api.POST("/travelmate/search", h.Trip.SearchTravelmates)
		api.POST("/poi/list", h.Trip.ListPOIs)
		api.POST("/activity/list", h.Trip.ListActivities)
		api.POST("/social/feed", h.Trip.ListFeed)
	}
}
