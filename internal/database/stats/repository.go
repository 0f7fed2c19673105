// Package stats provides database operations for reading statistics:
// session history, cumulative reading time, and per-document reading goals.
//
// # Interface Implementation
//
//	var _ reading.SessionStore = (*Repository)(nil)
//	var _ http.StatsStore = (*Repository)(nil)
package stats

import (
	"time"

	"gorm.io/gorm"

	"github.com/ethanwheatthin/lib-reader/internal/database/locks"
	"github.com/ethanwheatthin/lib-reader/internal/entities"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
)

// Repository handles reading stats and goal database operations.
type Repository struct {
	db    *gorm.DB
	locks *locks.KeyedMutex
}

// NewRepository creates a new stats repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, locks: locks.NewKeyedMutex()}
}

// GetByDocument returns the document's stats with its retained sessions in
// chronological order.
func (r *Repository) GetByDocument(documentID string) (*entities.ReadingStats, error) {
	var stats entities.ReadingStats
	err := r.db.
		Preload("Sessions", func(db *gorm.DB) *gorm.DB { return db.Order("reading_sessions.id ASC") }).
		First(&stats, "document_id = ?", documentID).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AppendSession appends a recorded session to the document's history,
// evicting the oldest entry beyond the retention bound, accumulates total
// reading time, stamps the first-opened time once, and advances the reading
// goal for the session's calendar date.
func (r *Repository) AppendSession(documentID string, session entities.ReadingSession) error {
	unlock := r.locks.Lock(documentID)
	defer unlock()

	return r.db.Transaction(func(tx *gorm.DB) error {
		var stats entities.ReadingStats
		if err := tx.First(&stats, "document_id = ?", documentID).Error; err != nil {
			return err
		}

		session.StatsID = stats.ID
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		// Evict oldest sessions beyond the bound
		var ids []uint
		if err := tx.Model(&entities.ReadingSession{}).
			Where("stats_id = ?", stats.ID).
			Order("id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if overflow := len(ids) - entities.MaxStoredSessions; overflow > 0 {
			if err := tx.Delete(&entities.ReadingSession{}, ids[:overflow]).Error; err != nil {
				return err
			}
		}

		updates := map[string]any{
			"total_reading_time": stats.TotalReadingTime + session.Duration,
		}
		if stats.FirstOpenedAt == nil {
			updates["first_opened_at"] = session.StartedAt
		}
		if err := tx.Model(&entities.ReadingStats{}).Where("id = ?", stats.ID).Updates(updates).Error; err != nil {
			return err
		}

		return r.advanceGoal(tx, documentID, stats.ID, session)
	})
}

// advanceGoal marks the session's calendar date as met once the day's
// accumulated reading time reaches the daily target, and recomputes the
// streak. Documents without a goal are untouched.
func (r *Repository) advanceGoal(tx *gorm.DB, documentID string, statsID uint, session entities.ReadingSession) error {
	var goal entities.ReadingGoal
	err := tx.First(&goal, "document_id = ?", documentID).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if goal.DailyMinutes <= 0 {
		return nil
	}

	var sessions []entities.ReadingSession
	if err := tx.Where("stats_id = ?", statsID).Find(&sessions).Error; err != nil {
		return err
	}

	day := session.StartedAt.Local().Format("2006-01-02")
	dayTotal := reading.DailyReadingTime(sessions, session.StartedAt)
	if dayTotal < int64(goal.DailyMinutes)*60000 {
		return nil
	}

	days := goal.CompletedDays()
	for _, d := range days {
		if d == day {
			return nil
		}
	}
	days = append(days, day)
	goal.SetCompletedDays(days)
	goal.CurrentStreak = reading.Streak(days, time.Now())

	return tx.Model(&entities.ReadingGoal{}).Where("id = ?", goal.ID).Updates(map[string]any{
		"completed_days_json": goal.CompletedDaysJSON,
		"current_streak":      goal.CurrentStreak,
	}).Error
}

// GetGoal returns the document's reading goal with a freshly derived streak.
func (r *Repository) GetGoal(documentID string) (*entities.ReadingGoal, error) {
	var goal entities.ReadingGoal
	if err := r.db.First(&goal, "document_id = ?", documentID).Error; err != nil {
		return nil, err
	}
	goal.CurrentStreak = reading.Streak(goal.CompletedDays(), time.Now())
	return &goal, nil
}

// SetGoal creates or updates the document's daily-minutes target, keeping
// the accumulated day set.
func (r *Repository) SetGoal(documentID string, dailyMinutes int) (*entities.ReadingGoal, error) {
	unlock := r.locks.Lock(documentID)
	defer unlock()

	var count int64
	if err := r.db.Model(&entities.Document{}).Where("id = ?", documentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var goal entities.ReadingGoal
	err := r.db.First(&goal, "document_id = ?", documentID).Error
	if err == gorm.ErrRecordNotFound {
		goal = entities.ReadingGoal{DocumentID: documentID, DailyMinutes: dailyMinutes}
		goal.SetCompletedDays(nil)
		if err := r.db.Create(&goal).Error; err != nil {
			return nil, err
		}
		return &goal, nil
	}
	if err != nil {
		return nil, err
	}

	goal.DailyMinutes = dailyMinutes
	goal.CurrentStreak = reading.Streak(goal.CompletedDays(), time.Now())
	if err := r.db.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}
