package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibeloghq/vibelog/internal/common"
	"github.com/vibeloghq/vibelog/internal/timer"
)

type startSessionReq struct {
	Goal string `json:"goal" binding:"required"`
}

func (h *Handler) StartSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req startSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	sess, err := h.Svc.StartSession(c.Request.Context(), uid, req.Goal)
	if err != nil {
		failFromErr(c, err)
		return
	}
	h.invalidateStats(c, uid)
	common.OK(c, gin.H{"session": sess})
}

func (h *Handler) EndSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sess, err := h.Svc.EndSession(c.Request.Context(), uid, c.Param("session_id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	h.invalidateStats(c, uid)
	common.OK(c, gin.H{
		"session":  sess,
		"duration": timer.FormatHuman(sess.DurationSeconds()),
	})
}

func (h *Handler) ResumeSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sess, err := h.Svc.ResumeSession(c.Request.Context(), uid, c.Param("session_id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	h.invalidateStats(c, uid)
	common.OK(c, gin.H{"session": sess})
}

type editSessionReq struct {
	Goal string `json:"goal" binding:"required"`
}

func (h *Handler) UpdateSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req editSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	sess, err := h.Svc.EditSessionGoal(c.Request.Context(), uid, c.Param("session_id"), req.Goal)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"session": sess})
}

func (h *Handler) ListSessions(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessions, err := h.Svc.ListSessions(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"sessions": sessions})
}

// ActiveSession reports the running session with its current elapsed
// counter, or null when none is active. The client re-polls or ticks
// locally; elapsed here is the server-side snapshot.
func (h *Handler) ActiveSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sess, err := h.Svc.ActiveSession(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	if sess == nil {
		common.OK(c, gin.H{"session": nil})
		return
	}

	elapsed := timer.Elapsed(sess.StartTime, time.Now())
	common.OK(c, gin.H{
		"session":         sess,
		"elapsed_seconds": elapsed,
		"elapsed":         timer.Format(elapsed),
	})
}
