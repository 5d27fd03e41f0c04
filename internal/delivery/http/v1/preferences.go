package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
)

type preferencesResponse struct {
	ID            string `json:"id,omitempty"`
	Theme         string `json:"theme"`
	DefaultView   string `json:"default_view"`
	SortBy        string `json:"sort_by"`
	SortOrder     string `json:"sort_order"`
	ShowCompleted bool   `json:"show_completed"`
	Notifications bool   `json:"notifications"`
}

func newPreferencesResponse(prefs *models.Preferences) preferencesResponse {
	return preferencesResponse{
		ID:            prefs.ID,
		Theme:         prefs.Theme,
		DefaultView:   prefs.DefaultView,
		SortBy:        prefs.SortBy,
		SortOrder:     prefs.SortOrder,
		ShowCompleted: prefs.ShowCompleted,
		Notifications: prefs.Notifications,
	}
}

func (h *handlerImpl) HandleGetPreferences(c *gin.Context) {
	prefs, err := h.preferences.GetPreferences(c, h.callerID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get preferences")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPreferencesResponse(prefs))
}

type updatePreferencesRequest struct {
	Theme         *string `json:"theme,omitempty"`
	DefaultView   *string `json:"default_view,omitempty"`
	SortBy        *string `json:"sort_by,omitempty"`
	SortOrder     *string `json:"sort_order,omitempty"`
	ShowCompleted *bool   `json:"show_completed,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
}

func (h *handlerImpl) HandleUpdatePreferences(c *gin.Context) {
	var req updatePreferencesRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	prefs, err := h.preferences.UpdatePreferences(c, services.UpdatePreferencesParams{
		UserID:        h.callerID(c),
		Theme:         req.Theme,
		DefaultView:   req.DefaultView,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
		ShowCompleted: req.ShowCompleted,
		Notifications: req.Notifications,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update preferences")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPreferencesResponse(prefs))
}
