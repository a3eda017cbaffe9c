package questionnaire

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/shared/server/middleware"
	"governance-backend/internal/shared/server/respond"
)

// Handler exposes questionnaire processing and session status.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches questionnaire routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/questionnaire")
	grp.POST("/process", h.process)
	grp.GET("/status/:sessionId", h.status)
	grp.DELETE("/status/:sessionId", h.remove)
}

func (h *Handler) process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set(middleware.ProjectIDKey, req.ProjectID)

	res, err := h.Svc.Process(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.SessionIDKey, res.SessionID)
	c.Set(middleware.AssessmentIDKey, res.RiskAssessmentID)
	respond.Created(c, res)
}

func (h *Handler) status(c *gin.Context) {
	sessionID := c.Param("sessionId")
	c.Set(middleware.SessionIDKey, sessionID)

	payload, err := h.Svc.Status(c.Request.Context(), sessionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.RawJSON(c, http.StatusOK, payload)
}

func (h *Handler) remove(c *gin.Context) {
	sessionID := c.Param("sessionId")
	c.Set(middleware.SessionIDKey, sessionID)

	if err := h.Svc.Delete(c.Request.Context(), sessionID); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Questionnaire processing result not found", nil)
	default:
		respond.Internal(c, "failed to process questionnaire", err)
	}
}
