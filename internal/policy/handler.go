package policy

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/shared/server/respond"
	"governance-backend/internal/shared/telemetry"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler exposes policy document upload and inspection.
type Handler struct {
	Provider *StoreProvider
}

// NewHandler constructs a Handler.
func NewHandler(p *StoreProvider) *Handler {
	return &Handler{Provider: p}
}

// RegisterRoutes attaches policy routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/policies", h.upload)
	rg.GET("/policies", h.list)
	rg.GET("/policies/context", h.context)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	info, err := h.Provider.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "supported types are pdf, docx, txt and md", nil)
			return
		}
		respond.Internal(c, "failed to store policy document", err)
		return
	}
	telemetry.Info("policy.uploaded", map[string]any{"key": info.Key, "size_bytes": info.SizeBytes})
	respond.Created(c, info)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Provider.Documents(c.Request.Context())
	if err != nil {
		respond.Internal(c, "failed to list policy documents", err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) context(c *gin.Context) {
	if _, err := h.Provider.PolicyContext(c.Request.Context()); err != nil {
		respond.Internal(c, "failed to load policy context", err)
		return
	}
	respond.OK(c, h.Provider.Stats())
}
