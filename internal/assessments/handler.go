package assessments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/governance"
	"governance-backend/internal/shared/server/middleware"
	"governance-backend/internal/shared/server/respond"
)

// Handler exposes the governance assessment endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/agent/governance/assess", h.assess)
	rg.GET("/governance/:projectId/scores", h.latest)
	rg.GET("/governance/:projectId/history", h.history)
}

type assessRequest struct {
	Questions []governance.Question `json:"questions"`
	Answers   governance.Answers    `json:"answers"`
	Controls  governance.ControlSet `json:"controls"`
	ProjectID string                `json:"projectId"`
}

type assessResponse struct {
	AssessmentID     string                                                `json:"assessmentId"`
	Scores           map[governance.Framework]float64                      `json:"scores"`
	Overall          float64                                               `json:"overall"`
	Recommendations  []string                                              `json:"recommendations"`
	DetailedAnalysis map[governance.Framework]governance.FrameworkAnalysis `json:"detailedAnalysis"`
	FullReport       governance.Report                                     `json:"fullReport"`
	Stored           bool                                                  `json:"stored"`
}

func (h *Handler) assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set(middleware.ProjectIDKey, req.ProjectID)

	out, err := h.Svc.Assess(c.Request.Context(), middleware.UserIDFromContext(c), req.ProjectID, governance.Request{
		Questions: req.Questions,
		Answers:   req.Answers,
		Controls:  req.Controls,
	})
	if err != nil {
		if errors.Is(err, governance.ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Internal(c, "assessment failed", err)
		return
	}
	c.Set(middleware.AssessmentIDKey, out.ID)

	respond.OK(c, assessResponse{
		AssessmentID:     out.ID,
		Scores:           out.Report.Scores,
		Overall:          out.Report.Overall,
		Recommendations:  out.Report.Recommendations,
		DetailedAnalysis: out.Report.DetailedAnalysis,
		FullReport:       out.Report,
		Stored:           out.Record != nil,
	})
}

func (h *Handler) latest(c *gin.Context) {
	projectID := c.Param("projectId")
	c.Set(middleware.ProjectIDKey, projectID)

	rec, err := h.Svc.Latest(c.Request.Context(), projectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) history(c *gin.Context) {
	projectID := c.Param("projectId")
	c.Set(middleware.ProjectIDKey, projectID)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	items, err := h.Svc.History(c.Request.Context(), projectID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"projectId": projectID, "items": items})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "no scores recorded for project", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Internal(c, "failed to load scores", err)
	}
}
