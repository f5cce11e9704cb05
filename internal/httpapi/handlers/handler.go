package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vibeloghq/vibelog/internal/common"
	"github.com/vibeloghq/vibelog/internal/config"
	"github.com/vibeloghq/vibelog/internal/export"
	"github.com/vibeloghq/vibelog/internal/httpapi/middleware"
	"github.com/vibeloghq/vibelog/internal/journal"
	"github.com/vibeloghq/vibelog/internal/store/rabbitmq"
	"github.com/vibeloghq/vibelog/internal/timeline"
)

// StatsCache caches derived per-user statistics. Implemented by
// redisstore.Store; tests use an in-memory fake. A nil cache disables
// caching entirely.
type StatsCache interface {
	GetStats(ctx context.Context, userID uint64, name string, out any) bool
	SetStats(ctx context.Context, userID uint64, name string, v any) error
	InvalidateStats(ctx context.Context, userID uint64) error
}

type Handler struct {
	DB     *gorm.DB
	Cfg    config.Config
	Cache  StatsCache
	Rabbit *rabbitmq.Publisher

	Svc        *journal.Service
	Agg        *timeline.Aggregator
	ExportRepo *export.Repo
	Generator  *export.Generator
	Loc        *time.Location
}

// NewHandler wires the service layer over the given record store. A nil
// store falls back to the gorm repo on db; cmd/server passes the
// file-backed store when running in local mode.
func NewHandler(db *gorm.DB, cfg config.Config, store journal.Store, cache StatsCache, rabbit *rabbitmq.Publisher) *Handler {
	if store == nil {
		store = journal.NewRepo(db)
	}
	loc := cfg.Location()
	return &Handler{
		DB:     db,
		Cfg:    cfg,
		Cache:  cache,
		Rabbit: rabbit,

		Svc:        journal.NewService(store),
		Agg:        timeline.New(loc),
		ExportRepo: export.NewRepo(db),
		Generator:  export.NewGenerator(store, loc),
		Loc:        loc,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// failFromErr maps service errors onto the response envelope:
// validation -> 400, not found -> 404, everything else -> 500.
func failFromErr(c *gin.Context, err error) {
	var ve *journal.ValidationError
	switch {
	case errors.As(err, &ve):
		common.Fail(c, http.StatusBadRequest, 10010, ve.Error())
	case errors.Is(err, journal.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "record not found")
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}
