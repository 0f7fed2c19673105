package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "The Go Programming Language", TitleFromFilename("/library/The Go Programming Language.epub"))
	assert.Equal(t, "report", TitleFromFilename("report.pdf"))
	assert.Equal(t, "no-extension", TitleFromFilename("/tmp/no-extension"))
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := Extract("whatever.mobi", entities.DocumentType("mobi"))
	assert.Error(t, err)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := Extract("/does/not/exist.epub", entities.DocumentTypeEPUB)
	assert.Error(t, err)

	_, err = Extract("/does/not/exist.pdf", entities.DocumentTypePDF)
	assert.Error(t, err)
}
