package handlers

import (
	"errors"
	"net/http"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wagerpool/internal/models"
	"wagerpool/internal/services"
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the pool service.
type HTTPHandler struct {
	service *services.PoolService
	clock   quartz.Clock
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.PoolService, clock quartz.Clock) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		clock:   clock,
	}
}

// RegisterPublicRoutes registers the read-only routes any caller may use.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRoutes, gatherer prometheus.Gatherer) {
	router.GET("/healthz", h.Health)
	router.GET("/players", h.GetPlayers)
	router.GET("/pool", h.GetPool)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterCallerRoutes registers the state-changing routes. The group must
// carry GatewayAuth so that every request has a caller identity.
func (h *HTTPHandler) RegisterCallerRoutes(router gin.IRoutes) {
	router.POST("/enter", h.Enter)
	router.POST("/pick-winner", h.PickWinner)
}

// Health reports liveness.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetPlayers returns the participants in entry order.
func (h *HTTPHandler) GetPlayers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"players": h.service.GetPlayers()})
}

// GetPool returns the operator, balance and participants.
func (h *HTTPHandler) GetPool(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Snapshot())
}

type enterRequest struct {
	Stake *int64 `json:"stake" binding:"required"`
}

// Enter handles a stake deposit by the calling account.
func (h *HTTPHandler) Enter(c *gin.Context) {
	var req enterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stake is required"})
		return
	}

	caller := callerFrom(c)
	if err := h.service.Enter(c.Request.Context(), caller, models.Amount(*req.Stake)); err != nil {
		h.renderError(c, err)
		return
	}

	snapshot := h.service.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"entries": len(snapshot.Participants),
		"balance": snapshot.Balance,
	})
}

// PickWinner handles a settlement request from the operator.
func (h *HTTPHandler) PickWinner(c *gin.Context) {
	settlement, err := h.service.PickWinner(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}

func (h *HTTPHandler) renderError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("Error handling %s: %v", c.FullPath(), err)
	}
	c.JSON(status, gin.H{
		"error":  err.Error(),
		"reason": services.RejectReason(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInsufficientStake),
		errors.Is(err, services.ErrInvalidCaller),
		errors.Is(err, services.ErrBalanceOverflow),
		errors.Is(err, services.ErrReservedAccount):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrEmptyPool):
		return http.StatusConflict
	case errors.Is(err, services.ErrTransferFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrEntropyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
