package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"growdash/internal/analytics"
	"growdash/internal/match"
)

type AnalyticsHandler struct {
	Service *analytics.Service
}

func (h *AnalyticsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/analytics")
	group.GET("", h.overview)
	group.GET("/summary", h.facet(func(s analytics.Snapshot) any { return s.Summary }))
	group.GET("/daily-pnl", h.facet(func(s analytics.Snapshot) any { return s.DailyPnL }))
	group.GET("/monthly-pnl", h.facet(func(s analytics.Snapshot) any { return s.MonthlyPnL }))
	group.GET("/ce-vs-pe", h.facet(func(s analytics.Snapshot) any { return s.CEvsPE }))
	group.GET("/most-traded-strike", h.facet(func(s analytics.Snapshot) any { return s.MostTradedStrike }))
	group.GET("/holding-time", h.facet(func(s analytics.Snapshot) any { return s.HoldingTime }))
}

// @Summary Full analytics snapshot
// @Tags analytics
// @Param from query string false "window start (RFC3339 or date)"
// @Param to query string false "window end (RFC3339 or date)"
// @Success 200 {object} analytics.Snapshot
// @Router /api/v1/analytics [get]
func (h *AnalyticsHandler) overview(c *gin.Context) {
	h.respond(c, func(s analytics.Snapshot) any { return s })
}

// facet serves a sub-view of the snapshot. Every facet is the same full
// recompute with unused fields discarded, so facets can never disagree with
// the overview.
func (h *AnalyticsHandler) facet(project func(analytics.Snapshot) any) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.respond(c, project)
	}
}

func (h *AnalyticsHandler) respond(c *gin.Context, project func(analytics.Snapshot) any) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "analytics unavailable", nil)
		return
	}
	from, ok := timeQuery(c, "from")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid from", nil)
		return
	}
	to, ok := timeQuery(c, "to")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid to", nil)
		return
	}

	snapshot, err := h.Service.Snapshot(c.Request.Context(), from, to)
	if err != nil {
		var violation *match.InvariantViolation
		if errors.As(err, &violation) {
			Error(c, http.StatusInternalServerError, violation.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, project(snapshot), nil)
}

func timeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts, true
		}
	}
	return nil, false
}
