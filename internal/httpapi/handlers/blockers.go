package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vibeloghq/vibelog/internal/common"
)

type blockerReq struct {
	Problem string `json:"problem" binding:"required"`
}

func (h *Handler) CreateBlocker(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req blockerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	b, err := h.Svc.CreateBlocker(c.Request.Context(), uid, req.Problem)
	if err != nil {
		failFromErr(c, err)
		return
	}
	h.invalidateStats(c, uid)
	common.OK(c, gin.H{"blocker": b})
}

func (h *Handler) UpdateBlocker(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req blockerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	b, err := h.Svc.EditBlockerProblem(c.Request.Context(), uid, c.Param("blocker_id"), req.Problem)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"blocker": b})
}

type resolveBlockerReq struct {
	Solution string `json:"solution" binding:"required"`
}

func (h *Handler) ResolveBlocker(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req resolveBlockerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	b, err := h.Svc.ResolveBlocker(c.Request.Context(), uid, c.Param("blocker_id"), req.Solution)
	if err != nil {
		failFromErr(c, err)
		return
	}
	h.invalidateStats(c, uid)
	common.OK(c, gin.H{"blocker": b})
}

func (h *Handler) ListBlockers(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	blockers, err := h.Svc.ListBlockers(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"blockers": blockers})
}
