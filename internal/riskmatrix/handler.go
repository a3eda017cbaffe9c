package riskmatrix

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/catalog"
	"governance-backend/internal/shared/server/middleware"
	"governance-backend/internal/shared/server/respond"
)

// Handler exposes the risk and control matrix endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the per-family agent routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	for _, family := range []catalog.Family{catalog.FamilyAI, catalog.FamilyCyber} {
		rg.POST("/agent/"+string(family)+"/risk", h.risk(family))
		rg.POST("/agent/"+string(family)+"/controls", h.controls(family))
	}
}

func (h *Handler) risk(family catalog.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RiskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		c.Set(middleware.SessionIDKey, req.SessionID)
		c.Set(middleware.ProjectIDKey, req.ProjectID)

		resp, err := h.Svc.Risks(family, req)
		if err != nil {
			h.fail(c, err)
			return
		}
		respond.OK(c, resp)
	}
}

func (h *Handler) controls(family catalog.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ControlsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		c.Set(middleware.SessionIDKey, req.SessionID)
		c.Set(middleware.ProjectIDKey, req.ProjectID)
		c.Set(middleware.AssessmentIDKey, req.RiskAssessmentID)

		resp, err := h.Svc.Controls(family, req)
		if err != nil {
			h.fail(c, err)
			return
		}
		respond.OK(c, resp)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.Internal(c, "risk matrix failed", err)
}
