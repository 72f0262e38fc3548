package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/situsdata/ownertrace/config"
	"github.com/situsdata/ownertrace/models"
)

// Jurisdictions returns a handler for GET /api/v1/jurisdictions: the
// configured profiles in stable order, reduced to their public shape.
func Jurisdictions(profiles *config.ProfileSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := profiles.List()
		out := make([]models.JurisdictionInfo, 0, len(list))
		for _, p := range list {
			kinds := make([]string, 0, len(p.IdentifierKinds))
			for _, k := range p.IdentifierKinds {
				kinds = append(kinds, string(k))
			}
			out = append(out, models.JurisdictionInfo{
				ID:              p.ID,
				DisplayName:     p.DisplayName,
				Region:          p.Region,
				IdentifierKinds: kinds,
				Enabled:         p.Enabled,
			})
		}
		c.JSON(http.StatusOK, gin.H{"jurisdictions": out})
	}
}
