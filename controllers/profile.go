package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/middleware"
	"github.com/OmPrakash-X/Konnekt-sub001/models"
)

// UpdateProfileInput allows partial profile updates. A non-empty address
// is geocoded into the stored location.
type UpdateProfileInput struct {
	Name    string `json:"name,omitempty"`
	Bio     string `json:"bio,omitempty"`
	Address string `json:"address,omitempty"`
}

// Me returns the caller's profile.
func Me(c *gin.Context) {
	respond(c, http.StatusOK, "profile", middleware.CurrentUser(c))
}

// UpdateMe updates name, bio, and (via geocoding) location.
func UpdateMe(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	var loc *models.GeoPoint
	if input.Address != "" {
		place, err := deps.Geocoder.Forward(c.Request.Context(), input.Address)
		if err != nil {
			fail(c, apperr.Upstream(err, "could not resolve address"))
			return
		}
		loc = &models.GeoPoint{Lat: place.Lat, Lng: place.Lng, PlaceName: place.PlaceName}
	}

	user := middleware.CurrentUser(c)
	if err := deps.Store.Users().UpdateProfile(c.Request.Context(), user.ID, input.Name, input.Bio, loc); err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	updated, err := deps.Store.Users().GetByID(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusOK, "profile updated", updated)
}
