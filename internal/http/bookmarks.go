package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

// BookmarkStore defines database operations for bookmark management.
type BookmarkStore interface {
	Toggle(documentID, location, label, note string) (*entities.Bookmark, uint, error)
	Remove(documentID string, bookmarkID uint) error
	List(documentID string) ([]entities.Bookmark, error)
}

type toggleRequest struct {
	Location string `json:"location" binding:"required"`
	Label    string `json:"label"`
	Note     string `json:"note"`
}

type BookmarksController struct {
	store BookmarkStore
}

func NewBookmarksController(store BookmarkStore) *BookmarksController {
	return &BookmarksController{store: store}
}

// List returns the document's bookmarks in creation order.
// GET /api/documents/:id/bookmarks
func (bc *BookmarksController) List(c *gin.Context) {
	bookmarks, err := bc.store.List(c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "list bookmarks")
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}

// Toggle creates a bookmark at the location, or removes the existing one if
// the location is already bookmarked. Toggling twice is a no-op.
// POST /api/documents/:id/bookmarks/toggle
func (bc *BookmarksController) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "location is required")
		return
	}

	created, removedID, err := bc.store.Toggle(c.Param("id"), req.Location, req.Label, req.Note)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "toggle bookmark")
		return
	}

	if created != nil {
		c.JSON(http.StatusCreated, gin.H{"toggled": "added", "bookmark": created})
		return
	}
	c.JSON(http.StatusOK, gin.H{"toggled": "removed", "removedId": removedID})
}

// Remove deletes a bookmark by ID. Removing an absent bookmark succeeds.
// DELETE /api/documents/:id/bookmarks/:bookmarkId
func (bc *BookmarksController) Remove(c *gin.Context) {
	bookmarkID, ok := parseIDParam(c, "bookmarkId")
	if !ok {
		return
	}

	if err := bc.store.Remove(c.Param("id"), bookmarkID); err != nil {
		respondInternalError(c, err, "remove bookmark")
		return
	}
	respondSuccess(c, "bookmark removed")
}
