package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibeloghq/vibelog/internal/common"
	"github.com/vibeloghq/vibelog/internal/export"
	"github.com/vibeloghq/vibelog/internal/store/rabbitmq"
)

type createExportReq struct {
	Format string `json:"format" binding:"required"`
}

// CreateExport queues an export job. When the broker is up the worker
// renders the artifact; without a broker the job is rendered inline so
// a single-process deployment still works.
func (h *Handler) CreateExport(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req createExportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Format != export.FormatMarkdown && req.Format != export.FormatJSON {
		common.Fail(c, http.StatusBadRequest, 10040, "format must be markdown or json")
		return
	}

	id, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	job := &export.Job{
		ID:     id,
		UserID: uid,
		Format: req.Format,
		Status: export.JobQueued,
	}
	ctx := c.Request.Context()
	if err := h.ExportRepo.CreateJob(ctx, job); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	if h.Rabbit != nil {
		msg := rabbitmq.Message{JobID: job.ID, UserID: uid, Format: job.Format}
		if err := h.Rabbit.PublishJob(ctx, msg); err != nil {
			log.Printf("export publish failed job=%s err=%v", job.ID, err)
			_ = h.ExportRepo.MarkJobFailed(ctx, job.ID, "queue unavailable")
			common.Fail(c, http.StatusInternalServerError, 50002, "failed to queue export")
			return
		}
		common.OK(c, gin.H{"job": job})
		return
	}

	// inline fallback
	if err := h.ExportRepo.MarkJobRunning(ctx, job.ID); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	result, err := h.Generator.Generate(ctx, uid, job.Format)
	if err != nil {
		_ = h.ExportRepo.MarkJobFailed(ctx, job.ID, err.Error())
		common.Fail(c, http.StatusInternalServerError, 50003, "export failed")
		return
	}
	if err := h.ExportRepo.MarkJobSucceeded(ctx, job.ID, result); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	done, err := h.ExportRepo.JobByID(ctx, job.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"job": done})
}

// jobForUser fetches a job and hides other users' jobs behind the same
// not-found answer as missing ids.
func (h *Handler) jobForUser(c *gin.Context, uid uint64) (*export.Job, bool) {
	job, err := h.ExportRepo.JobByID(c.Request.Context(), c.Param("job_id"))
	if err != nil || job.UserID != uid {
		common.Fail(c, http.StatusNotFound, 40401, "record not found")
		return nil, false
	}
	return job, true
}

func (h *Handler) GetExport(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	job, ok := h.jobForUser(c, uid)
	if !ok {
		return
	}
	common.OK(c, gin.H{"job": job})
}

// DownloadExport streams a succeeded job's artifact with a date-stamped
// attachment filename.
func (h *Handler) DownloadExport(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	job, ok := h.jobForUser(c, uid)
	if !ok {
		return
	}
	if job.Status != export.JobSucceeded || job.Result == nil {
		common.Fail(c, http.StatusConflict, 40901, "export not ready")
		return
	}

	contentType := "text/markdown; charset=utf-8"
	if job.Format == export.FormatJSON {
		contentType = "application/json; charset=utf-8"
	}
	name := export.Filename(job.Format, time.Now(), h.Loc)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, []byte(*job.Result))
}
