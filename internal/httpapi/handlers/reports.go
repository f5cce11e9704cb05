package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibeloghq/vibelog/internal/common"
	"github.com/vibeloghq/vibelog/internal/report"
)

// GetReport renders the weekly or monthly Markdown report together with
// its structured summary. Same data in, same bytes out.
func (h *Handler) GetReport(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	scope := report.Scope(c.Param("scope"))
	if scope != report.ScopeWeekly && scope != report.ScopeMonthly {
		common.Fail(c, http.StatusBadRequest, 10030, "scope must be weekly or monthly")
		return
	}

	sessions, ideas, blockers, ok := h.fetchAll(c, uid)
	if !ok {
		return
	}

	sum := report.Build(scope, sessions, ideas, blockers, time.Now(), h.Loc)
	common.OK(c, gin.H{
		"summary":  sum,
		"markdown": report.RenderMarkdown(sum),
	})
}

// SocialDraft generates a short share text from today's counts and the
// all-time totals. Each call picks fresh phrasing, so repeated posts
// against the same data yield different drafts.
func (h *Handler) SocialDraft(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessions, ideas, blockers, ok := h.fetchAll(c, uid)
	if !ok {
		return
	}

	daily := h.Agg.DailyStats(sessions, blockers, time.Now())
	allTime := h.Agg.AllTime(sessions, ideas, blockers)

	common.OK(c, gin.H{"draft": report.RenderSocialDraft(daily, allTime, nil)})
}
