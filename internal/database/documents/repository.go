// Package documents provides database operations for library documents.
//
// # Interface Implementation
//
//	var _ http.DocumentStore = (*Repository)(nil)
//	var _ reading.ProgressStore = (*Repository)(nil)
//
// # Usage
//
//	repo := documents.NewRepository(db)
//	doc, err := repo.GetByID("3f6c...")
package documents

import (
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/database/locks"
	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

// Repository handles all document database operations.
type Repository struct {
	db    *gorm.DB
	locks *locks.KeyedMutex
}

// NewRepository creates a new documents repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, locks: locks.NewKeyedMutex()}
}

// Create stores a document together with its file reference and an empty
// stats record, atomically. A document without stats is a defect.
func (r *Repository) Create(doc *entities.Document, filePath, mimeType string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		file := &entities.DocumentFile{
			DocumentID: doc.ID,
			FilePath:   filePath,
			MimeType:   mimeType,
		}
		if err := tx.Create(file).Error; err != nil {
			return err
		}
		stats := &entities.ReadingStats{DocumentID: doc.ID, Sessions: []entities.ReadingSession{}}
		if err := tx.Create(stats).Error; err != nil {
			return err
		}

		// The caller may serialize the document straight away; attach what
		// was created so bookmarks and sessions render as arrays, not null.
		if doc.Bookmarks == nil {
			doc.Bookmarks = []entities.Bookmark{}
		}
		doc.File = file
		doc.Stats = stats
		return nil
	})
}

// GetByID retrieves a document with its bookmarks, stats and goal.
func (r *Repository) GetByID(id string) (*entities.Document, error) {
	var doc entities.Document
	err := r.db.
		Preload("Bookmarks", func(db *gorm.DB) *gorm.DB { return db.Order("bookmarks.id ASC") }).
		Preload("Stats.Sessions", func(db *gorm.DB) *gorm.DB { return db.Order("reading_sessions.id ASC") }).
		Preload("Stats").
		Preload("Goal").
		Preload("File").
		First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns all documents, most recently uploaded first.
func (r *Repository) List() ([]entities.Document, error) {
	var docs []entities.Document
	err := r.db.
		Preload("Bookmarks", func(db *gorm.DB) *gorm.DB { return db.Order("bookmarks.id ASC") }).
		Preload("Stats.Sessions", func(db *gorm.DB) *gorm.DB { return db.Order("reading_sessions.id ASC") }).
		Preload("Stats").
		Preload("Goal").
		Order("upload_date DESC").
		Find(&docs).Error
	return docs, err
}

// Delete removes a document and everything it owns: file reference,
// bookmarks, stats with sessions, and goal. Returns the stored file path so
// the caller can remove the blob and any cached page index.
func (r *Repository) Delete(id string) (string, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	var filePath string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var doc entities.Document
		if err := tx.Preload("File").Preload("Stats").First(&doc, "id = ?", id).Error; err != nil {
			return err
		}
		if doc.File != nil {
			filePath = doc.File.FilePath
		}

		if doc.Stats != nil {
			if err := tx.Where("stats_id = ?", doc.Stats.ID).Delete(&entities.ReadingSession{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("document_id = ?", id).Delete(&entities.ReadingStats{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&entities.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&entities.ReadingGoal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&entities.DocumentFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Document{}, "id = ?", id).Error
	})
	return filePath, err
}

// ApplyProgress merge-patches a location change onto the stored document.
// Page and location are updated when supplied; the stored progress percent
// is only replaced when the update carries one, so a worse estimate never
// regresses a known value. LastOpened is always refreshed.
func (r *Repository) ApplyProgress(id string, page int, location string, percent *int) error {
	unlock := r.locks.Lock(id)
	defer unlock()

	updates := map[string]any{
		"last_opened": time.Now(),
	}
	if page > 0 {
		updates["current_page"] = page
	}
	if location != "" {
		updates["current_location"] = location
	}
	if percent != nil {
		updates["reading_progress_percent"] = *percent
	}

	res := r.db.Model(&entities.Document{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateMetadata fills in extracted metadata. Empty or zero values are
// skipped so background extraction never erases renderer-reported data.
func (r *Repository) UpdateMetadata(id string, title string, totalPages int) error {
	unlock := r.locks.Lock(id)
	defer unlock()

	updates := map[string]any{}
	if title != "" {
		updates["title"] = title
	}
	if totalPages > 0 {
		updates["total_pages"] = totalPages
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&entities.Document{}).Where("id = ?", id).Updates(updates).Error
}

// SetShelf assigns or clears the document's shelf reference.
func (r *Repository) SetShelf(id string, shelfID *string) error {
	return r.db.Model(&entities.Document{}).Where("id = ?", id).Update("shelf_id", shelfID).Error
}

// KnownFilePaths returns the resolved absolute paths of every stored file,
// used by the scanner to dedupe imports across platforms.
func (r *Repository) KnownFilePaths() (map[string]struct{}, error) {
	var files []entities.DocumentFile
	if err := r.db.Select("file_path").Find(&files).Error; err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f.FilePath == "" {
			continue
		}
		resolved, err := filepath.Abs(f.FilePath)
		if err != nil {
			resolved = f.FilePath
		}
		known[filepath.Clean(resolved)] = struct{}{}
	}
	return known, nil
}
