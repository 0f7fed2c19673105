// Package sources provides database operations for library sources: named
// sets of watched directories polled for EPUB/PDF files.
//
// # Interface Implementation
//
//	var _ http.SourceStore = (*Repository)(nil)
//	var _ scanner.SourceUpdater = (*Repository)(nil)
package sources

import (
	"time"

	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

// Repository handles all library-source database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sources repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a source with its initial watched paths.
func (r *Repository) Create(name string, paths []string, pollingEnabled bool, pollingIntervalSeconds int) (*entities.LibrarySource, error) {
	source := &entities.LibrarySource{
		Name:                   name,
		PollingEnabled:         pollingEnabled,
		PollingIntervalSeconds: pollingIntervalSeconds,
	}
	for _, p := range paths {
		source.Paths = append(source.Paths, entities.LibrarySourcePath{Path: p})
	}
	if err := r.db.Create(source).Error; err != nil {
		return nil, err
	}
	return r.GetByID(source.ID)
}

// GetByID retrieves a source with its paths.
func (r *Repository) GetByID(id string) (*entities.LibrarySource, error) {
	var source entities.LibrarySource
	err := r.db.
		Preload("Paths", func(db *gorm.DB) *gorm.DB { return db.Order("library_source_paths.created_at ASC") }).
		First(&source, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// List returns all sources, newest first.
func (r *Repository) List() ([]entities.LibrarySource, error) {
	var sources []entities.LibrarySource
	err := r.db.
		Preload("Paths", func(db *gorm.DB) *gorm.DB { return db.Order("library_source_paths.created_at ASC") }).
		Order("created_at DESC").
		Find(&sources).Error
	return sources, err
}

// ListPollable returns sources with polling enabled.
func (r *Repository) ListPollable() ([]entities.LibrarySource, error) {
	var sources []entities.LibrarySource
	err := r.db.
		Preload("Paths").
		Where("polling_enabled = ?", true).
		Find(&sources).Error
	return sources, err
}

// Update applies partial changes. A non-nil paths slice is reconciled
// against the stored set: paths no longer listed are removed, unseen ones
// are added with a zero file count.
func (r *Repository) Update(id string, name *string, pollingEnabled *bool, pollingIntervalSeconds *int, paths []string) (*entities.LibrarySource, error) {
	source, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if name != nil {
			updates["name"] = *name
		}
		if pollingEnabled != nil {
			updates["polling_enabled"] = *pollingEnabled
		}
		if pollingIntervalSeconds != nil {
			updates["polling_interval_seconds"] = *pollingIntervalSeconds
		}
		if len(updates) > 0 {
			if err := tx.Model(&entities.LibrarySource{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		if paths == nil {
			return nil
		}

		wanted := make(map[string]struct{}, len(paths))
		for _, p := range paths {
			wanted[p] = struct{}{}
		}
		existing := make(map[string]struct{}, len(source.Paths))
		for _, p := range source.Paths {
			existing[p.Path] = struct{}{}
			if _, keep := wanted[p.Path]; !keep {
				if err := tx.Delete(&entities.LibrarySourcePath{}, "id = ?", p.ID).Error; err != nil {
					return err
				}
			}
		}
		for _, p := range paths {
			if _, known := existing[p]; known {
				continue
			}
			add := entities.LibrarySourcePath{SourceID: id, Path: p}
			if err := tx.Create(&add).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// Delete removes a source and its paths.
func (r *Repository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var source entities.LibrarySource
		if err := tx.First(&source, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("source_id = ?", id).Delete(&entities.LibrarySourcePath{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.LibrarySource{}, "id = ?", id).Error
	})
}

// MarkPathScanned stamps a path's scan time and last-known file count.
func (r *Repository) MarkPathScanned(pathID string, fileCount int, scannedAt time.Time) error {
	return r.db.Model(&entities.LibrarySourcePath{}).Where("id = ?", pathID).Updates(map[string]any{
		"file_count":      fileCount,
		"last_scanned_at": scannedAt,
	}).Error
}

// MarkSourceScanned stamps the source-level scan time.
func (r *Repository) MarkSourceScanned(sourceID string, scannedAt time.Time) error {
	return r.db.Model(&entities.LibrarySource{}).Where("id = ?", sourceID).Update("last_scanned_at", scannedAt).Error
}
