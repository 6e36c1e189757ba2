package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"growdash/internal/ingest"
	"growdash/internal/repository"
)

type TradeHandler struct {
	Ingest         *ingest.Service
	Repo           repository.TradeRepository
	Logger         *zap.Logger
	MaxUploadBytes int64
}

func (h *TradeHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/trades")
	group.POST("/upload", h.upload)
	group.GET("", h.list)
}

// @Summary Upload a tradebook CSV
// @Tags trades
// @Accept multipart/form-data
// @Param file formData file true "brokerage CSV export"
// @Success 200 {object} ingest.Result
// @Router /api/v1/trades/upload [post]
func (h *TradeHandler) upload(c *gin.Context) {
	if h.Ingest == nil {
		Error(c, http.StatusInternalServerError, "ingest unavailable", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		Error(c, http.StatusBadRequest, "file field is required", nil)
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		Error(c, http.StatusBadRequest, "only CSV files are supported", nil)
		return
	}
	if h.MaxUploadBytes > 0 && fileHeader.Size > h.MaxUploadBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		Error(c, http.StatusBadRequest, "unable to read upload", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		Error(c, http.StatusBadRequest, "unable to read upload", nil)
		return
	}

	result, err := h.Ingest.ImportCSV(c.Request.Context(), data)
	if err != nil {
		var parseErr *ingest.ParseError
		var csvErr *csv.ParseError
		if errors.As(err, &parseErr) || errors.As(err, &csvErr) {
			Error(c, http.StatusBadRequest, "unable to parse CSV: "+err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

// @Summary List stored trades, newest first
// @Tags trades
// @Param limit query int false "page size (max 1000)"
// @Param offset query int false "page offset"
// @Success 200 {array} models.Trade
// @Router /api/v1/trades [get]
func (h *TradeHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 200)
	offset := intQuery(c, "offset", 0)

	trades, err := h.Repo.ListTrades(c.Request.Context(), repository.ListTradesParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountTrades(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, trades, paginationMeta(limit, offset, total))
}
