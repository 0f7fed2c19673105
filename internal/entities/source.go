package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LibrarySource is a named set of watched directories that are scanned for
// EPUB/PDF files. The source exclusively owns its paths.
type LibrarySource struct {
	ID                     string              `gorm:"primaryKey;size:36" json:"id"`
	Name                   string              `gorm:"size:300" json:"name"`
	PollingEnabled         bool                `gorm:"default:true" json:"pollingEnabled"`
	PollingIntervalSeconds int                 `gorm:"default:300" json:"pollingIntervalSeconds"`
	LastScannedAt          *time.Time          `json:"lastScannedAt,omitempty"`
	Paths                  []LibrarySourcePath `gorm:"foreignKey:SourceID;constraint:OnDelete:CASCADE" json:"paths"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (LibrarySource) TableName() string {
	return "library_sources"
}

func (s *LibrarySource) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TotalFilesFound sums the last-known file counts across all paths.
func (s *LibrarySource) TotalFilesFound() int {
	total := 0
	for _, p := range s.Paths {
		total += p.FileCount
	}
	return total
}

// LibrarySourcePath is one watched directory belonging to a source.
type LibrarySourcePath struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	SourceID string `gorm:"size:36;index" json:"-"`
	// Path is an absolute directory on the server filesystem.
	Path          string     `gorm:"size:1000" json:"path"`
	LastScannedAt *time.Time `json:"lastScannedAt,omitempty"`
	FileCount     int        `json:"fileCount"`

	CreatedAt time.Time `json:"-"`
}

func (LibrarySourcePath) TableName() string {
	return "library_source_paths"
}

func (p *LibrarySourcePath) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
