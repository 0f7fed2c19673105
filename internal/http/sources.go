package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
	"github.com/ethanwheatthin/lib-reader/internal/scanner"
)

// SourceStore defines database operations for library-source management.
type SourceStore interface {
	Create(name string, paths []string, pollingEnabled bool, pollingIntervalSeconds int) (*entities.LibrarySource, error)
	GetByID(id string) (*entities.LibrarySource, error)
	List() ([]entities.LibrarySource, error)
	Update(id string, name *string, pollingEnabled *bool, pollingIntervalSeconds *int, paths []string) (*entities.LibrarySource, error)
	Delete(id string) error
}

type createSourceRequest struct {
	Name                   string   `json:"name"`
	Paths                  []string `json:"paths"`
	PollingEnabled         *bool    `json:"pollingEnabled"`
	PollingIntervalSeconds *int     `json:"pollingIntervalSeconds"`
}

type updateSourceRequest struct {
	Name                   *string  `json:"name"`
	PollingEnabled         *bool    `json:"pollingEnabled"`
	PollingIntervalSeconds *int     `json:"pollingIntervalSeconds"`
	Paths                  []string `json:"paths"`
}

type SourcesController struct {
	store   SourceStore
	scanner *scanner.Scanner
}

func NewSourcesController(store SourceStore, scn *scanner.Scanner) *SourcesController {
	return &SourcesController{store: store, scanner: scn}
}

// sourceDTO augments the stored source with its aggregated file count.
func sourceDTO(source *entities.LibrarySource) gin.H {
	return gin.H{
		"id":                     source.ID,
		"name":                   source.Name,
		"paths":                  source.Paths,
		"pollingEnabled":         source.PollingEnabled,
		"pollingIntervalSeconds": source.PollingIntervalSeconds,
		"createdAt":              source.CreatedAt,
		"lastScannedAt":          source.LastScannedAt,
		"totalFilesFound":        source.TotalFilesFound(),
		"scanning":               false,
	}
}

// List returns all library sources, newest first.
// GET /api/library-sources
func (sc *SourcesController) List(c *gin.Context) {
	sources, err := sc.store.List()
	if err != nil {
		respondInternalError(c, err, "list sources")
		return
	}

	dtos := make([]gin.H, 0, len(sources))
	for i := range sources {
		dtos = append(dtos, sourceDTO(&sources[i]))
	}
	c.JSON(http.StatusOK, dtos)
}

// Get returns a single library source.
// GET /api/library-sources/:id
func (sc *SourcesController) Get(c *gin.Context) {
	source, err := sc.store.GetByID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "library source")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get source")
		return
	}
	c.JSON(http.StatusOK, sourceDTO(source))
}

// Create stores a new library source with its watched paths.
// POST /api/library-sources
func (sc *SourcesController) Create(c *gin.Context) {
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || len(req.Paths) == 0 {
		respondBadRequest(c, "name and paths (string[]) are required")
		return
	}

	pollingEnabled := true
	if req.PollingEnabled != nil {
		pollingEnabled = *req.PollingEnabled
	}
	interval := 300
	if req.PollingIntervalSeconds != nil {
		interval = *req.PollingIntervalSeconds
	}

	source, err := sc.store.Create(req.Name, req.Paths, pollingEnabled, interval)
	if err != nil {
		respondInternalError(c, err, "create source")
		return
	}
	respondCreated(c, sourceDTO(source))
}

// Update applies partial changes; a supplied paths array is reconciled
// against the stored set.
// PUT /api/library-sources/:id
func (sc *SourcesController) Update(c *gin.Context) {
	var req updateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid source payload")
		return
	}

	source, err := sc.store.Update(c.Param("id"), req.Name, req.PollingEnabled, req.PollingIntervalSeconds, req.Paths)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "library source")
		return
	}
	if err != nil {
		respondInternalError(c, err, "update source")
		return
	}
	c.JSON(http.StatusOK, sourceDTO(source))
}

// Delete removes a source and its paths. Imported documents stay.
// DELETE /api/library-sources/:id
func (sc *SourcesController) Delete(c *gin.Context) {
	err := sc.store.Delete(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "library source")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete source")
		return
	}
	c.Status(http.StatusNoContent)
}

// Scan walks all of the source's paths, imports files not yet in the
// library, and returns the refreshed source with the import list.
// POST /api/library-sources/:id/scan
func (sc *SourcesController) Scan(c *gin.Context) {
	id := c.Param("id")

	source, err := sc.store.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "library source")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get source")
		return
	}

	imported, err := sc.scanner.ScanSource(source)
	if err != nil {
		respondInternalError(c, err, "scan source")
		return
	}
	if imported == nil {
		imported = []scanner.Imported{}
	}

	// Reload to pick up the scan timestamps and file counts
	reloaded, err := sc.store.GetByID(id)
	if err != nil {
		log.Printf("Failed to reload source %s after scan: %v", id, err)
		reloaded = source
	}

	c.JSON(http.StatusOK, gin.H{
		"source":   sourceDTO(reloaded),
		"imported": imported,
	})
}
