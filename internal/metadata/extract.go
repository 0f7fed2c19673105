// Package metadata inspects EPUB and PDF files on disk: title and page or
// spine counts. Extraction runs in background tasks after import or upload;
// a failure here never blocks the document from entering the library.
package metadata

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"rsc.io/pdf"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

// Info holds what could be extracted from a file. Zero values mean the
// field was unavailable.
type Info struct {
	Title string
	// TotalPages is the real page count for PDFs. For EPUBs it is the
	// spine item count: a rough chapter-level figure used until a
	// renderer reports real numbers.
	TotalPages int
}

// Extract inspects the file according to its document type.
func Extract(path string, docType entities.DocumentType) (Info, error) {
	switch docType {
	case entities.DocumentTypeEPUB:
		return extractEPUB(path)
	case entities.DocumentTypePDF:
		return extractPDF(path)
	default:
		return Info{}, fmt.Errorf("unsupported document type %q", docType)
	}
}

// TitleFromFilename derives a fallback title from the file name.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extractEPUB(path string) (Info, error) {
	rc, err := epub.OpenReader(path)
	if err != nil {
		return Info{}, fmt.Errorf("open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return Info{}, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	return Info{
		Title:      strings.TrimSpace(book.Title),
		TotalPages: len(book.Spine.Itemrefs),
	}, nil
}

func extractPDF(path string) (Info, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open pdf: %w", err)
	}
	return Info{TotalPages: doc.NumPage()}, nil
}
