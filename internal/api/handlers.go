package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hauswert/config"
	"hauswert/internal/database"
	"hauswert/internal/models"
	"hauswert/internal/orchestrator"
)

type Handler struct {
	orch   *orchestrator.Orchestrator
	db     *database.Database
	logger *logrus.Logger
}

// ValuationRequest is the request body of POST /api/valuations.
type ValuationRequest struct {
	Address  string               `json:"address" binding:"required"`
	Property models.PropertyInput `json:"property"`
}

func NewHandler(orch *orchestrator.Orchestrator, db *database.Database, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{orch: orch, db: db, logger: logger}
}

// CreateValuation runs the full pipeline for one address.
func (h *Handler) CreateValuation(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	if req.Property.Type != models.PropertyTypeHouse && req.Property.Type != models.PropertyTypeApartment {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property type must be \"house\" or \"apartment\""})
		return
	}

	result, opinion, err := h.orch.EvaluateWithAdvisory(c.Request.Context(), req.Address, req.Property)
	if err != nil {
		h.logger.WithError(err).Error("Valuation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute valuation"})
		return
	}

	resp := gin.H{"result": result}
	if opinion != nil {
		resp["advisory"] = opinion
	}
	c.JSON(http.StatusOK, resp)
}

// GetRecentValuations returns the latest history rows.
func (h *Handler) GetRecentValuations(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := h.db.RecentValuations(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent valuations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent valuations"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetRegions lists the supported regions with their average prices.
func (h *Handler) GetRegions(c *gin.Context) {
	c.JSON(http.StatusOK, config.SupportedRegions)
}

// GetHealth is the liveness probe.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
