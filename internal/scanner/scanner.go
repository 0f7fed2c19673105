// Package scanner imports EPUB/PDF files from a library source's watched
// directories. Each unseen file becomes exactly one document with its file
// reference and empty reading stats, created atomically; re-scanning an
// unchanged tree imports nothing.
package scanner

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
	"github.com/ethanwheatthin/lib-reader/internal/metadata"
)

// DocumentImporter is the document-side surface the scanner needs.
type DocumentImporter interface {
	Create(doc *entities.Document, filePath, mimeType string) error
	KnownFilePaths() (map[string]struct{}, error)
}

// SourceUpdater stamps scan results onto the source and its paths.
type SourceUpdater interface {
	MarkPathScanned(pathID string, fileCount int, scannedAt time.Time) error
	MarkSourceScanned(sourceID string, scannedAt time.Time) error
}

// Imported describes one document created by a scan.
type Imported struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Type     entities.DocumentType `json:"type"`
	FilePath string                `json:"filePath"`
}

// Scanner walks library-source directories and imports new files.
type Scanner struct {
	docs    DocumentImporter
	sources SourceUpdater

	// onImported, when set, is invoked per imported document (used to
	// enqueue background metadata/index extraction).
	onImported func(documentID string)
}

func New(docs DocumentImporter, sources SourceUpdater) *Scanner {
	return &Scanner{docs: docs, sources: sources}
}

// OnImported registers a callback fired for each imported document.
func (s *Scanner) OnImported(fn func(documentID string)) {
	s.onImported = fn
}

// ScanSource scans every watched path of the source. Unreadable or missing
// paths are skipped with their file count reset to zero; remaining paths
// still scan. File paths are resolved before the dedupe comparison so the
// same file never imports twice regardless of path separators.
func (s *Scanner) ScanSource(source *entities.LibrarySource) ([]Imported, error) {
	known, err := s.docs.KnownFilePaths()
	if err != nil {
		return nil, fmt.Errorf("load known file paths: %w", err)
	}

	imported := []Imported{}
	now := time.Now()

	for _, sourcePath := range source.Paths {
		info, err := os.Stat(sourcePath.Path)
		if err != nil || !info.IsDir() {
			log.Printf("Library source path does not exist: %s", sourcePath.Path)
			if err := s.sources.MarkPathScanned(sourcePath.ID, 0, now); err != nil {
				return nil, err
			}
			continue
		}

		files := walkDir(sourcePath.Path)
		if err := s.sources.MarkPathScanned(sourcePath.ID, len(files), now); err != nil {
			return nil, err
		}

		for _, filePath := range files {
			resolved, err := filepath.Abs(filePath)
			if err != nil {
				resolved = filePath
			}
			resolved = filepath.Clean(resolved)
			if _, seen := known[resolved]; seen {
				continue
			}

			doc, err := s.importFile(resolved)
			if err != nil {
				return nil, fmt.Errorf("import %s: %w", resolved, err)
			}
			known[resolved] = struct{}{}

			imported = append(imported, Imported{
				ID:       doc.ID,
				Title:    doc.Title,
				Type:     doc.Type,
				FilePath: resolved,
			})
			if s.onImported != nil {
				s.onImported(doc.ID)
			}
		}
	}

	if err := s.sources.MarkSourceScanned(source.ID, now); err != nil {
		return nil, err
	}

	log.Printf("Scan complete for source %q: %d new files imported", source.Name, len(imported))
	return imported, nil
}

// importFile creates the document, file reference and empty stats as one
// unit.
func (s *Scanner) importFile(resolved string) (*entities.Document, error) {
	stat, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}

	docType := entities.DocumentTypePDF
	if strings.EqualFold(filepath.Ext(resolved), ".epub") {
		docType = entities.DocumentTypeEPUB
	}

	doc := &entities.Document{
		Title:    metadata.TitleFromFilename(resolved),
		Type:     docType,
		FileSize: stat.Size(),
	}
	if err := s.docs.Create(doc, resolved, docType.MimeType()); err != nil {
		return nil, err
	}
	return doc, nil
}
