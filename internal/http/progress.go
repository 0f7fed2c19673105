package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/pageindex"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
)

// progressRequest is a renderer-reported location change. Every field is
// optional: whatever is present is merged onto the stored position.
type progressRequest struct {
	Page     int      `json:"page"`
	Location string   `json:"location"`
	Fraction *float64 `json:"fraction"`
	Percent  *int     `json:"percent"`
}

// sessionRequest brackets one finished reading session.
type sessionRequest struct {
	StartedAt time.Time `json:"startedAt" binding:"required"`
	EndedAt   time.Time `json:"endedAt" binding:"required"`
	StartPage int       `json:"startPage"`
	EndPage   int       `json:"endPage"`
}

type ProgressController struct {
	docs       DocumentStore
	tracker    *reading.Tracker
	recorder   *reading.Recorder
	indexCache *pageindex.Cache
}

func NewProgressController(docs DocumentStore, tracker *reading.Tracker, recorder *reading.Recorder, indexCache *pageindex.Cache) *ProgressController {
	return &ProgressController{
		docs:       docs,
		tracker:    tracker,
		recorder:   recorder,
		indexCache: indexCache,
	}
}

// UpdateProgress merge-patches a location change onto the document. A
// request without a usable percentage never regresses stored progress.
// PATCH /api/documents/:id/progress
func (pc *ProgressController) UpdateProgress(c *gin.Context) {
	id := c.Param("id")

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid progress payload")
		return
	}
	if req.Page <= 0 && req.Location == "" {
		respondBadRequest(c, "progress update carries neither page nor location")
		return
	}

	if _, err := pc.docs.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "document")
			return
		}
		respondInternalError(c, err, "get document")
		return
	}

	pos := pc.resolvePosition(id, req)
	pc.tracker.OnLocationChanged(id, pos)

	c.JSON(http.StatusOK, gin.H{
		"currentPage":            pos.Page,
		"currentCfi":             pos.Token,
		"readingProgressPercent": pos.Percent,
	})
}

// RecordSession persists an explicitly bracketed reading session. Sessions
// below the duration floor are discarded, reported as recorded: false.
// POST /api/documents/:id/sessions
func (pc *ProgressController) RecordSession(c *gin.Context) {
	id := c.Param("id")

	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid session payload")
		return
	}
	if req.EndedAt.Before(req.StartedAt) {
		respondBadRequest(c, "session ends before it starts")
		return
	}

	if _, err := pc.docs.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "document")
			return
		}
		respondInternalError(c, err, "get document")
		return
	}

	recorded := pc.recorder.Record(id, req.StartedAt, req.EndedAt, req.StartPage, req.EndPage)
	c.JSON(http.StatusOK, gin.H{"recorded": recorded})
}

// resolvePosition normalizes the request through the cached page index when
// one exists. An explicit percent wins over any derived estimate.
func (pc *ProgressController) resolvePosition(documentID string, req progressRequest) reading.Position {
	index, err := pc.indexCache.Get(documentID)
	if err != nil {
		index = nil
	}

	pos := reading.Resolve(reading.Location{
		Page:     req.Page,
		Token:    req.Location,
		Fraction: req.Fraction,
	}, index)

	if req.Percent != nil {
		pos.Percent = req.Percent
	}
	return pos
}
