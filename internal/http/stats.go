package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
)

// StatsStore defines database operations for reading stats and goals.
type StatsStore interface {
	GetByDocument(documentID string) (*entities.ReadingStats, error)
	GetGoal(documentID string) (*entities.ReadingGoal, error)
	SetGoal(documentID string, dailyMinutes int) (*entities.ReadingGoal, error)
}

type goalRequest struct {
	DailyMinutes int `json:"dailyMinutes" binding:"required"`
}

type StatsController struct {
	docs  DocumentStore
	stats StatsStore
}

func NewStatsController(docs DocumentStore, stats StatsStore) *StatsController {
	return &StatsController{docs: docs, stats: stats}
}

// GetStats returns the document's reading stats enriched with the derived
// speed estimate and today's accumulated reading time.
// GET /api/documents/:id/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	id := c.Param("id")

	doc, err := sc.docs.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get document")
		return
	}

	stats, err := sc.stats.GetByDocument(id)
	if err != nil {
		respondInternalError(c, err, "get stats")
		return
	}

	response := gin.H{
		"readingStats":     stats,
		"todayReadingTime": reading.DailyReadingTime(stats.Sessions, time.Now()),
	}
	if ppm, ok := reading.PagesPerMinute(stats.Sessions); ok {
		response["pagesPerMinute"] = ppm
	}
	if left, ok := reading.EstimateTimeLeft(stats.Sessions, doc.TotalPages, doc.CurrentPage); ok {
		response["timeLeft"] = left
	}

	c.JSON(http.StatusOK, response)
}

// GetGoal returns the document's reading goal with a fresh streak.
// GET /api/documents/:id/goal
func (sc *StatsController) GetGoal(c *gin.Context) {
	goal, err := sc.stats.GetGoal(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "reading goal")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get goal")
		return
	}
	c.JSON(http.StatusOK, goal)
}

// SetGoal creates or updates the document's daily reading target.
// PUT /api/documents/:id/goal
func (sc *StatsController) SetGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DailyMinutes <= 0 {
		respondBadRequest(c, "dailyMinutes must be a positive integer")
		return
	}

	goal, err := sc.stats.SetGoal(c.Param("id"), req.DailyMinutes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "set goal")
		return
	}
	c.JSON(http.StatusOK, goal)
}
