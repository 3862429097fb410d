package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dawless-studio/studio-api/internal/settings"
)

type SettingsHandler struct {
	store *settings.Store
}

func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetSettings returns the current settings document
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Get())
}

type UpdateSettingsRequest struct {
	APIKey   *string `json:"api_key"`
	Theme    *string `json:"theme"`
	GridSnap *bool   `json:"grid_snap"`
	AutoSave *bool   `json:"auto_save"`
}

// UpdateSettings applies a partial update and persists the whole document
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.store.Update(func(doc *settings.Settings) {
		if req.APIKey != nil {
			doc.APIKey = *req.APIKey
			doc.APIKeyValid = false
		}
		if req.Theme != nil {
			doc.Theme = *req.Theme
		}
		if req.GridSnap != nil {
			doc.GridSnap = *req.GridSnap
		}
		if req.AutoSave != nil {
			doc.AutoSave = *req.AutoSave
		}
	})
	if err != nil {
		log.Printf("❌ Settings: failed to persist update: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, doc)
}
