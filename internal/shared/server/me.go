package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/shared/server/middleware"
	"governance-backend/internal/shared/server/respond"
)

type identity struct {
	UserID  string `json:"userId"`
	IsGuest bool   `json:"isGuest"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	OrgID   string `json:"orgId,omitempty"`
}

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", func(c *gin.Context) {
		id := identity{
			UserID:  middleware.UserIDFromContext(c),
			IsGuest: middleware.IsGuest(c),
			Email:   middleware.UserEmailFromContext(c),
			Name:    middleware.UserNameFromContext(c),
			OrgID:   middleware.OrgIDFromContext(c),
		}
		if id.UserID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		respond.OK(c, id)
	})
}
