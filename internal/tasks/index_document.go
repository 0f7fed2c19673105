package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
	"github.com/ethanwheatthin/lib-reader/internal/metadata"
	"github.com/ethanwheatthin/lib-reader/internal/pageindex"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
)

// IndexDocumentTask extracts metadata from a stored document file and, for
// page-based formats, generates and caches its location index.
type IndexDocumentTask struct {
	DocumentID string `json:"document_id"`
}

// Config returns the queue configuration for document indexing tasks.
func (t IndexDocumentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "index_document",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// IndexDocumentStore is the slice of the documents repository the indexing
// task needs.
type IndexDocumentStore interface {
	GetByID(id string) (*entities.Document, error)
	UpdateMetadata(id string, title string, totalPages int) error
	ApplyProgress(id string, page int, location string, percent *int) error
}

// IndexDocumentProcessor creates a processor function for IndexDocumentTask.
func IndexDocumentProcessor(docs IndexDocumentStore, cache *pageindex.Cache) backlite.QueueProcessor[IndexDocumentTask] {
	return func(ctx context.Context, task IndexDocumentTask) error {
		doc, err := docs.GetByID(task.DocumentID)
		if err != nil {
			return fmt.Errorf("load document %s: %w", task.DocumentID, err)
		}
		if doc.File == nil {
			return fmt.Errorf("document %s has no stored file", task.DocumentID)
		}

		info, err := metadata.Extract(doc.File.FilePath, doc.Type)
		if err != nil {
			return fmt.Errorf("extract metadata for %s: %w", task.DocumentID, err)
		}

		if err := docs.UpdateMetadata(doc.ID, info.Title, info.TotalPages); err != nil {
			return fmt.Errorf("store metadata for %s: %w", task.DocumentID, err)
		}

		// PDF locations are just page numbers, so the index can be built
		// here. EPUB indexes come from the client renderer instead.
		if doc.Type == entities.DocumentTypePDF && info.TotalPages > 0 {
			index := reading.PageIndex(info.TotalPages)
			if err := cache.Put(doc.ID, index); err != nil {
				return fmt.Errorf("cache page index for %s: %w", task.DocumentID, err)
			}
			reapplyProgress(docs, doc, index)
		}

		log.Printf("[TASK] Indexed document %s (%s): title=%q pages=%d",
			doc.ID, doc.Type, info.Title, info.TotalPages)
		return nil
	}
}

// reapplyProgress re-resolves the stored position against the freshly built
// index, so a percent derived from a rough estimate is corrected as soon as
// the accurate index exists rather than on the next progress update.
func reapplyProgress(docs IndexDocumentStore, doc *entities.Document, index *reading.LocationIndex) {
	if doc.CurrentLocation == "" {
		return
	}
	pos := reading.Resolve(reading.Location{Page: doc.CurrentPage, Token: doc.CurrentLocation}, index)
	if pos.Percent == nil {
		return
	}
	if err := docs.ApplyProgress(doc.ID, pos.Page, pos.Token, pos.Percent); err != nil {
		log.Printf("[TASK ERROR] Failed to update progress for document %s: %v", doc.ID, err)
	}
}

// NewIndexDocumentQueue creates a backlite queue for document indexing tasks.
func NewIndexDocumentQueue(docs IndexDocumentStore, cache *pageindex.Cache) backlite.Queue {
	return backlite.NewQueue(IndexDocumentProcessor(docs, cache))
}
