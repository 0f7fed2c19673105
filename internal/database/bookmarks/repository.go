// Package bookmarks provides database operations for document bookmarks.
//
// Bookmarks are keyed by their location token: a CFI string for EPUBs or a
// stringified page number for PDFs. A document holds at most one bookmark
// per distinct token, and toggling is its own inverse.
//
// # Interface Implementation
//
//	var _ http.BookmarkStore = (*Repository)(nil)
package bookmarks

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/database/locks"
	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

// Repository handles all bookmark database operations.
type Repository struct {
	db    *gorm.DB
	locks *locks.KeyedMutex
}

// NewRepository creates a new bookmarks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, locks: locks.NewKeyedMutex()}
}

// CanonicalLocation normalizes a location token for equality checks.
// Page tokens are reduced to their canonical decimal form ("07" -> "7");
// CFI strings and anything non-numeric are compared verbatim.
func CanonicalLocation(token string) string {
	trimmed := strings.TrimSpace(token)
	if n, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		return strconv.FormatUint(n, 10)
	}
	return token
}

// Toggle adds a bookmark at the location if none exists, or removes the
// existing one. The read-then-write section is atomic per document, so two
// rapid toggles at different locations cannot lose each other's update.
// Returns the created bookmark, or the removed bookmark's id.
func (r *Repository) Toggle(documentID, location, label, note string) (*entities.Bookmark, uint, error) {
	unlock := r.locks.Lock(documentID)
	defer unlock()

	var count int64
	if err := r.db.Model(&entities.Document{}).Where("id = ?", documentID).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, gorm.ErrRecordNotFound
	}

	canonical := CanonicalLocation(location)

	var existing []entities.Bookmark
	if err := r.db.Where("document_id = ?", documentID).Find(&existing).Error; err != nil {
		return nil, 0, err
	}
	for _, b := range existing {
		if CanonicalLocation(b.Location) == canonical {
			if err := r.db.Delete(&entities.Bookmark{}, b.ID).Error; err != nil {
				return nil, 0, err
			}
			return nil, b.ID, nil
		}
	}

	bookmark := &entities.Bookmark{
		DocumentID: documentID,
		Location:   canonical,
		Label:      label,
		Note:       note,
		CreatedAt:  time.Now(),
	}
	if err := r.db.Create(bookmark).Error; err != nil {
		return nil, 0, err
	}
	return bookmark, 0, nil
}

// Remove deletes a bookmark by id. Removing an absent bookmark is a no-op.
func (r *Repository) Remove(documentID string, bookmarkID uint) error {
	unlock := r.locks.Lock(documentID)
	defer unlock()

	return r.db.Where("document_id = ?", documentID).Delete(&entities.Bookmark{}, bookmarkID).Error
}

// List returns the document's bookmarks in insertion order.
func (r *Repository) List(documentID string) ([]entities.Bookmark, error) {
	var marks []entities.Bookmark
	err := r.db.Where("document_id = ?", documentID).Order("id ASC").Find(&marks).Error
	return marks, err
}
