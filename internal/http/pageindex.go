package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/pageindex"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
)

// pageIndexRequest carries a renderer-generated location index. EPUB
// clients upload the CFI list their renderer produced; PDF indexes are
// generated server-side instead.
type pageIndexRequest struct {
	Tokens []string `json:"tokens" binding:"required"`
}

type PageIndexController struct {
	docs    DocumentStore
	tracker *reading.Tracker
	cache   *pageindex.Cache
}

func NewPageIndexController(docs DocumentStore, tracker *reading.Tracker, cache *pageindex.Cache) *PageIndexController {
	return &PageIndexController{docs: docs, tracker: tracker, cache: cache}
}

// Get returns the cached location index for a document.
// GET /api/documents/:id/page-index
func (pic *PageIndexController) Get(c *gin.Context) {
	index, err := pic.cache.Get(c.Param("id"))
	if errors.Is(err, pageindex.ErrNotCached) {
		respondNotFound(c, "page index")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load page index")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": index})
}

// Put stores a location index for a document, replacing any previous one.
// PUT /api/documents/:id/page-index
func (pic *PageIndexController) Put(c *gin.Context) {
	id := c.Param("id")

	var req pageIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid page index payload")
		return
	}
	if len(req.Tokens) < 2 {
		respondBadRequest(c, "a page index needs at least two locations")
		return
	}

	doc, err := pic.docs.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "document")
			return
		}
		respondInternalError(c, err, "get document")
		return
	}

	index := reading.NewLocationIndex(req.Tokens)
	if err := pic.cache.Put(id, index); err != nil {
		respondInternalError(c, err, "store page index")
		return
	}

	// Re-resolve the stored position right away: a percent derived from a
	// spine estimate must not outlive the arrival of the accurate index.
	if doc.CurrentLocation != "" {
		pos := reading.Resolve(reading.Location{Page: doc.CurrentPage, Token: doc.CurrentLocation}, index)
		if pos.Percent != nil {
			pic.tracker.OnLocationChanged(id, pos)
		}
	}

	respondSuccess(c, "page index stored")
}
