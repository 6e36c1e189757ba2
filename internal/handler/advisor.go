package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"growdash/internal/advisor"
	"growdash/internal/analytics"
)

type AdvisorHandler struct {
	Advisor   *advisor.Advisor
	Analytics *analytics.Service
}

type copilotRequest struct {
	Question string `json:"question" binding:"required"`
}

func (h *AdvisorHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/ai/copilot", h.copilot)
}

// @Summary Ask the trading copilot a question about the current analytics
// @Tags ai
// @Accept json
// @Param body body copilotRequest true "question"
// @Success 200 {object} advisor.Advice
// @Router /api/v1/ai/copilot [post]
func (h *AdvisorHandler) copilot(c *gin.Context) {
	if h.Advisor == nil || h.Analytics == nil {
		Error(c, http.StatusInternalServerError, "advisor unavailable", nil)
		return
	}

	var req copilotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "question is required", nil)
		return
	}

	snapshot, err := h.Analytics.Snapshot(c.Request.Context(), nil, nil)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	advice, err := h.Advisor.Answer(c.Request.Context(), req.Question, snapshot)
	if err != nil {
		if errors.Is(err, advisor.ErrEmptyQuestion) {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, advice, nil)
}
