package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentType string

const (
	DocumentTypeEPUB DocumentType = "epub"
	DocumentTypePDF  DocumentType = "pdf"
)

// MimeType returns the MIME type served for documents of this type.
func (t DocumentType) MimeType() string {
	if t == DocumentTypeEPUB {
		return "application/epub+zip"
	}
	return "application/pdf"
}

// Document is a single EPUB or PDF in the library.
type Document struct {
	ID       string       `gorm:"primaryKey;size:36" json:"id"`
	Title    string       `gorm:"index;size:512" json:"title"`
	Type     DocumentType `gorm:"size:10" json:"type"`
	FileSize int64        `json:"fileSize"`

	UploadDate time.Time  `json:"uploadDate"`
	LastOpened *time.Time `json:"lastOpened,omitempty"`

	// Reading position. CurrentLocation holds the format-specific token:
	// a CFI string for EPUBs, a stringified page number for PDFs.
	CurrentPage            int    `json:"currentPage"`
	TotalPages             int    `json:"totalPages"`
	CurrentLocation        string `gorm:"size:1024" json:"currentCfi,omitempty"`
	ReadingProgressPercent *int   `json:"readingProgressPercent,omitempty"`

	ShelfID *string `gorm:"size:36;index" json:"shelfId,omitempty"`

	Bookmarks []Bookmark    `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"bookmarks"`
	Stats     *ReadingStats `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"readingStats,omitempty"`
	Goal      *ReadingGoal  `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"readingGoal,omitempty"`
	File      *DocumentFile `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadDate.IsZero() {
		d.UploadDate = time.Now()
	}
	return nil
}

// AfterFind keeps Bookmarks an array in JSON, never null.
func (d *Document) AfterFind(tx *gorm.DB) error {
	if d.Bookmarks == nil {
		d.Bookmarks = []Bookmark{}
	}
	return nil
}

// DocumentFile points at the stored file backing a document. Uploaded files
// live under the library data directory; scanned files are linked in place.
type DocumentFile struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	DocumentID string `gorm:"size:36;uniqueIndex" json:"document_id"`
	FilePath   string `gorm:"size:1024;index" json:"file_path"`
	MimeType   string `gorm:"size:100" json:"mime_type"`

	CreatedAt time.Time `json:"created_at"`
}

func (DocumentFile) TableName() string {
	return "document_files"
}

// Bookmark marks a reading position within a document. Location is compared
// verbatim, so at most one bookmark exists per distinct token.
type Bookmark struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID string    `gorm:"size:36;index" json:"-"`
	Location   string    `gorm:"size:1024" json:"location"`
	Label      string    `gorm:"size:256" json:"label"`
	Note       string    `gorm:"size:1024" json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

// ReadingSession is one recorded stretch of reading. Sessions shorter than
// five seconds are never persisted.
type ReadingSession struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	StatsID   uint      `gorm:"index" json:"-"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	// Duration in milliseconds (EndedAt - StartedAt).
	Duration  int64 `json:"duration"`
	PagesRead int   `json:"pagesRead"`
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

// MaxStoredSessions bounds the per-document session history. Appending
// beyond the bound evicts the oldest session first.
const MaxStoredSessions = 30

type ReadingStats struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	DocumentID string `gorm:"size:36;uniqueIndex" json:"-"`
	// TotalReadingTime in milliseconds, accumulated across all sessions
	// ever recorded, not just the retained history.
	TotalReadingTime int64            `json:"totalReadingTime"`
	FirstOpenedAt    *time.Time       `json:"firstOpenedAt,omitempty"`
	Sessions         []ReadingSession `gorm:"foreignKey:StatsID;constraint:OnDelete:CASCADE" json:"sessions"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (ReadingStats) TableName() string {
	return "reading_stats"
}

// AfterFind keeps Sessions an array in JSON, never null.
func (s *ReadingStats) AfterFind(tx *gorm.DB) error {
	if s.Sessions == nil {
		s.Sessions = []ReadingSession{}
	}
	return nil
}

type ReadingGoal struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	DocumentID   string `gorm:"size:36;uniqueIndex" json:"-"`
	DailyMinutes int    `json:"dailyMinutes"`
	// CompletedDaysJSON stores the set of ISO dates ("2006-01-02") on which
	// the goal was met, serialized as a JSON array.
	CompletedDaysJSON string `gorm:"type:text" json:"-"`
	CurrentStreak     int    `json:"currentStreak"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (ReadingGoal) TableName() string {
	return "reading_goals"
}

// CompletedDays returns the decoded ISO date set, oldest first.
func (g *ReadingGoal) CompletedDays() []string {
	if g.CompletedDaysJSON == "" {
		return nil
	}
	var days []string
	if err := json.Unmarshal([]byte(g.CompletedDaysJSON), &days); err != nil {
		return nil
	}
	return days
}

// SetCompletedDays replaces the stored ISO date set.
func (g *ReadingGoal) SetCompletedDays(days []string) {
	if len(days) == 0 {
		g.CompletedDaysJSON = "[]"
		return
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return
	}
	g.CompletedDaysJSON = string(raw)
}

// MarshalJSON inlines the decoded day set.
func (g ReadingGoal) MarshalJSON() ([]byte, error) {
	days := g.CompletedDays()
	if days == nil {
		days = []string{}
	}
	return json.Marshal(struct {
		DailyMinutes  int      `json:"dailyMinutes"`
		CompletedDays []string `json:"completedDays"`
		CurrentStreak int      `json:"currentStreak"`
	}{g.DailyMinutes, days, g.CurrentStreak})
}

// Shelf is a named grouping of documents. Documents reference shelves
// loosely; deleting a shelf leaves its documents unshelved.
type Shelf struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:256" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Shelf) TableName() string {
	return "shelves"
}

func (s *Shelf) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
