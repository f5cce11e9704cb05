package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vibeloghq/vibelog/internal/common"
)

type ideaReq struct {
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

func (h *Handler) CreateIdea(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req ideaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	idea, err := h.Svc.CreateIdea(c.Request.Context(), uid, req.Content, req.Images)
	if err != nil {
		failFromErr(c, err)
		return
	}
	h.invalidateStats(c, uid)
	common.OK(c, gin.H{"idea": idea})
}

func (h *Handler) UpdateIdea(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req ideaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	idea, err := h.Svc.UpdateIdea(c.Request.Context(), uid, c.Param("idea_id"), req.Content, req.Images)
	if err != nil {
		failFromErr(c, err)
		return
	}
	h.invalidateStats(c, uid)
	common.OK(c, gin.H{"idea": idea})
}

func (h *Handler) ListIdeas(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	ideas, err := h.Svc.ListIdeas(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"ideas": ideas})
}
