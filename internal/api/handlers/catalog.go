package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marble-roulette/internal/catalog"
	"github.com/playmatatu/marble-roulette/internal/game"
)

// GetCatalog returns the stored catalog, or the defaults
func GetCatalog(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"balls": store.Load(c.Request.Context())})
	}
}

// PutCatalog validates and stores a new catalog. Invalid entries are dropped.
func PutCatalog(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Balls []game.Ball `json:"balls" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "balls array required"})
			return
		}

		saved, err := store.Save(c.Request.Context(), req.Balls)
		switch {
		case errors.Is(err, catalog.ErrNoValidEntries):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, catalog.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save catalog"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"balls": saved, "dropped": len(req.Balls) - len(saved)})
	}
}

// RestoreCatalog drops the stored catalog
func RestoreCatalog(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"balls": store.RestoreDefaults(c.Request.Context())})
	}
}

// CheckUpload applies the image upload policy to a declared file or a data URL
func CheckUpload(c *gin.Context) {
	var req struct {
		MimeType string `json:"mime_type"`
		Size     int64  `json:"size"`
		DataURL  string `json:"data_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mime_type and size, or data_url, required"})
		return
	}

	mime, size := req.MimeType, req.Size
	if req.DataURL != "" {
		mime = catalog.DataURLMimeType(req.DataURL)
		size = dataURLSize(req.DataURL)
	}

	if err := catalog.ValidateUpload(mime, size); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mime_type": strings.ToLower(strings.TrimSpace(mime))})
}

// dataURLSize returns the decoded payload size of a base64 data URL.
func dataURLSize(dataURL string) int64 {
	i := strings.IndexByte(dataURL, ',')
	if i < 0 {
		return 0
	}
	payload := dataURL[i+1:]
	if strings.Contains(dataURL[:i], ";base64") {
		return int64(base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload, "="))
	}
	return int64(len(payload))
}
