package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibeloghq/vibelog/internal/common"
	"github.com/vibeloghq/vibelog/internal/journal"
	"github.com/vibeloghq/vibelog/internal/timeline"
)

const defaultHeatmapDays = 112 // 16 weeks

func (h *Handler) fetchAll(c *gin.Context, uid uint64) ([]journal.Session, []journal.Idea, []journal.Blocker, bool) {
	ctx := c.Request.Context()
	sessions, err := h.Svc.ListSessions(ctx, uid)
	if err != nil {
		failFromErr(c, err)
		return nil, nil, nil, false
	}
	ideas, err := h.Svc.ListIdeas(ctx, uid)
	if err != nil {
		failFromErr(c, err)
		return nil, nil, nil, false
	}
	blockers, err := h.Svc.ListBlockers(ctx, uid)
	if err != nil {
		failFromErr(c, err)
		return nil, nil, nil, false
	}
	return sessions, ideas, blockers, true
}

// GetTimeline returns the date-grouped merge of all three record kinds,
// optionally filtered by type, month, and has_images. Filters AND.
func (h *Handler) GetTimeline(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	f := timeline.Filters{
		Type:  timeline.Kind(c.Query("type")),
		Month: c.Query("month"),
	}
	if c.Query("has_images") == "true" {
		f.HasImages = true
	}
	switch f.Type {
	case "", timeline.KindSession, timeline.KindIdea, timeline.KindBlocker:
	default:
		common.Fail(c, http.StatusBadRequest, 10020, "unknown type filter")
		return
	}

	sessions, ideas, blockers, ok := h.fetchAll(c, uid)
	if !ok {
		return
	}

	groups := h.Agg.Filter(h.Agg.Build(sessions, ideas, blockers), f)
	common.OK(c, gin.H{"timeline": groups})
}

func (h *Handler) GetMonths(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessions, ideas, blockers, ok := h.fetchAll(c, uid)
	if !ok {
		return
	}
	common.OK(c, gin.H{"months": h.Agg.AvailableMonths(sessions, ideas, blockers)})
}

// GetDailyStats returns counts for one calendar day (?date=YYYY-MM-DD,
// default today).
func (h *Handler) GetDailyStats(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	day := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, h.Loc)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, 10021, "invalid date, want YYYY-MM-DD")
			return
		}
		day = parsed
	}

	ctx := c.Request.Context()
	sessions, err := h.Svc.ListSessions(ctx, uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	blockers, err := h.Svc.ListBlockers(ctx, uid)
	if err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"date":  h.Agg.DateKey(day),
		"stats": h.Agg.DailyStats(sessions, blockers, day),
	})
}

// GetHeatmap returns the dense per-day activity histogram for the
// trailing window (?days, default 112). Served from the redis cache
// when warm.
func (h *Handler) GetHeatmap(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	days := defaultHeatmapDays
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 366 {
			days = n
		}
	}
	cacheKey := "heatmap:" + strconv.Itoa(days)

	ctx := c.Request.Context()
	if h.Cache != nil {
		var cached []timeline.HistogramDay
		if h.Cache.GetStats(ctx, uid, cacheKey, &cached) {
			common.OK(c, gin.H{"days": cached, "cached": true})
			return
		}
	}

	sessions, err := h.Svc.ListSessions(ctx, uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	hist := h.Agg.ActivityHistogram(sessions, days, time.Now())

	if h.Cache != nil {
		if err := h.Cache.SetStats(ctx, uid, cacheKey, hist); err != nil {
			log.Printf("stats cache set failed uid=%d err=%v", uid, err)
		}
	}
	common.OK(c, gin.H{"days": hist, "cached": false})
}

// GetSummary returns all-time totals.
func (h *Handler) GetSummary(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	ctx := c.Request.Context()
	if h.Cache != nil {
		var cached timeline.AllTimeStats
		if h.Cache.GetStats(ctx, uid, "summary", &cached) {
			common.OK(c, gin.H{"summary": cached, "cached": true})
			return
		}
	}

	sessions, ideas, blockers, ok := h.fetchAll(c, uid)
	if !ok {
		return
	}
	summary := h.Agg.AllTime(sessions, ideas, blockers)

	if h.Cache != nil {
		if err := h.Cache.SetStats(ctx, uid, "summary", summary); err != nil {
			log.Printf("stats cache set failed uid=%d err=%v", uid, err)
		}
	}
	common.OK(c, gin.H{"summary": summary, "cached": false})
}

// invalidateStats drops cached stats after a write that changes them.
// Cache failures are logged, never surfaced: the write already stuck.
func (h *Handler) invalidateStats(c *gin.Context, uid uint64) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.InvalidateStats(c.Request.Context(), uid); err != nil {
		log.Printf("stats cache invalidate failed uid=%d err=%v", uid, err)
	}
}
