package http

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
	"github.com/ethanwheatthin/lib-reader/internal/metadata"
	"github.com/ethanwheatthin/lib-reader/internal/pageindex"
	"github.com/ethanwheatthin/lib-reader/internal/tasks"
	"github.com/ethanwheatthin/lib-reader/internal/utils"
)

// DocumentStore defines database operations for document management.
type DocumentStore interface {
	List() ([]entities.Document, error)
	GetByID(id string) (*entities.Document, error)
	Create(doc *entities.Document, filePath, mimeType string) error
	Delete(id string) (string, error)
}

type DocumentsController struct {
	store      DocumentStore
	indexCache *pageindex.Cache
	taskClient *tasks.Client
	dataDir    string
}

func NewDocumentsController(store DocumentStore, indexCache *pageindex.Cache, taskClient *tasks.Client, dataDir string) *DocumentsController {
	return &DocumentsController{
		store:      store,
		indexCache: indexCache,
		taskClient: taskClient,
		dataDir:    dataDir,
	}
}

// List returns all documents, most recently uploaded first.
// GET /api/documents
func (dc *DocumentsController) List(c *gin.Context) {
	docs, err := dc.store.List()
	if err != nil {
		respondInternalError(c, err, "list documents")
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Get returns a single document with bookmarks, stats and goal.
// GET /api/documents/:id
func (dc *DocumentsController) Get(c *gin.Context) {
	doc, err := dc.store.GetByID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get document")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Upload stores an uploaded EPUB/PDF under the library data directory and
// creates its document record. Metadata extraction runs in the background.
// POST /api/documents (multipart, field "file")
func (dc *DocumentsController) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "missing file")
		return
	}

	docType, ok := documentTypeForFilename(fileHeader.Filename)
	if !ok {
		respondBadRequest(c, "unsupported file type, expected .epub or .pdf")
		return
	}

	name := utils.SanitizeFilename(filepath.Base(fileHeader.Filename))
	dest := filepath.Join(dc.dataDir, name)
	if _, err := os.Stat(dest); err == nil {
		respondError(c, http.StatusConflict, "a file with this name already exists")
		return
	}

	if err := c.SaveUploadedFile(fileHeader, dest); err != nil {
		respondInternalError(c, err, "store uploaded file")
		return
	}

	doc := &entities.Document{
		Title:    metadata.TitleFromFilename(name),
		Type:     docType,
		FileSize: fileHeader.Size,
	}
	if err := dc.store.Create(doc, dest, docType.MimeType()); err != nil {
		os.Remove(dest)
		respondInternalError(c, err, "create document")
		return
	}

	dc.enqueueIndexing(doc.ID)
	respondCreated(c, doc)
}

// Download serves the stored file with its document MIME type.
// GET /api/documents/:id/file
func (dc *DocumentsController) Download(c *gin.Context) {
	doc, err := dc.store.GetByID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get document")
		return
	}
	if doc.File == nil || doc.File.FilePath == "" {
		respondNotFound(c, "document file")
		return
	}
	if _, err := os.Stat(doc.File.FilePath); err != nil {
		respondNotFound(c, "document file")
		return
	}

	c.Header("Content-Type", doc.Type.MimeType())
	c.File(doc.File.FilePath)
}

// Delete removes the document, its cached page index, and, for uploaded
// files, the stored blob. Scanned files stay in place on disk.
// DELETE /api/documents/:id
func (dc *DocumentsController) Delete(c *gin.Context) {
	id := c.Param("id")

	filePath, err := dc.store.Delete(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete document")
		return
	}

	if err := dc.indexCache.Invalidate(id); err != nil {
		log.Printf("Failed to drop cached page index for %s: %v", id, err)
	}
	if filePath != "" && dc.ownsFile(filePath) {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove stored file %s: %v", filePath, err)
		}
	}

	respondSuccess(c, "document deleted")
}

// enqueueIndexing schedules background metadata extraction. A nil task
// client means indexing is disabled; failures never block the request.
func (dc *DocumentsController) enqueueIndexing(documentID string) {
	if dc.taskClient == nil {
		return
	}
	if _, err := dc.taskClient.Add(tasks.IndexDocumentTask{DocumentID: documentID}).Save(); err != nil {
		log.Printf("Failed to enqueue indexing for document %s: %v", documentID, err)
	}
}

// ownsFile reports whether the path lives under the library data directory.
// Only files the server itself stored are ever removed from disk.
func (dc *DocumentsController) ownsFile(path string) bool {
	absDir, err := filepath.Abs(dc.dataDir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(absPath, absDir+string(filepath.Separator))
}

// documentTypeForFilename maps a filename to its document type by extension.
func documentTypeForFilename(filename string) (entities.DocumentType, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".epub":
		return entities.DocumentTypeEPUB, true
	case ".pdf":
		return entities.DocumentTypePDF, true
	default:
		return "", false
	}
}
