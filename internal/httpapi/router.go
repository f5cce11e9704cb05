// Package httpapi assembles the gin engine: middleware, public auth
// routes, and the authenticated journal API.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vibeloghq/vibelog/internal/common"
	"github.com/vibeloghq/vibelog/internal/httpapi/handlers"
	"github.com/vibeloghq/vibelog/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger(), middleware.Recovery(), middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	api := r.Group("/", middleware.AuthRequired(h.Cfg.JWTSecret))
	{
		api.GET("/me", h.Me)

		api.POST("/sessions", h.StartSession)
		api.GET("/sessions", h.ListSessions)
		api.GET("/sessions/active", h.ActiveSession)
		api.POST("/sessions/:session_id/end", h.EndSession)
		api.POST("/sessions/:session_id/resume", h.ResumeSession)
		api.PATCH("/sessions/:session_id", h.UpdateSession)

		api.POST("/ideas", h.CreateIdea)
		api.GET("/ideas", h.ListIdeas)
		api.PATCH("/ideas/:idea_id", h.UpdateIdea)

		api.POST("/blockers", h.CreateBlocker)
		api.GET("/blockers", h.ListBlockers)
		api.PATCH("/blockers/:blocker_id", h.UpdateBlocker)
		api.POST("/blockers/:blocker_id/resolve", h.ResolveBlocker)

		api.GET("/timeline", h.GetTimeline)
		api.GET("/months", h.GetMonths)
		api.GET("/stats/daily", h.GetDailyStats)
		api.GET("/stats/heatmap", h.GetHeatmap)
		api.GET("/stats/summary", h.GetSummary)

		api.GET("/reports/:scope", h.GetReport)
		api.POST("/drafts/social", h.SocialDraft)

		api.POST("/exports", h.CreateExport)
		api.GET("/exports/:job_id", h.GetExport)
		api.GET("/exports/:job_id/download", h.DownloadExport)
	}

	return r
}
