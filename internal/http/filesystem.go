package http

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// DirEntry is one browsable filesystem entry. Size is set for files only.
type DirEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"isDirectory"`
	Size        int64  `json:"size,omitempty"`
}

// BrowseResponse lists a directory: subdirectories plus EPUB/PDF files.
type BrowseResponse struct {
	Current string     `json:"current"`
	Parent  *string    `json:"parent"`
	Entries []DirEntry `json:"entries"`
}

type FilesystemController struct{}

func NewFilesystemController() *FilesystemController {
	return &FilesystemController{}
}

// Browse lists a server directory for the source-path picker. Without a dir
// parameter it returns the platform roots. Hidden entries are skipped, and
// only directories and EPUB/PDF files are listed.
// GET /api/filesystem/browse?dir=
func (fc *FilesystemController) Browse(c *gin.Context) {
	requestedDir := c.Query("dir")
	if requestedDir == "" {
		c.JSON(http.StatusOK, BrowseResponse{Current: "", Parent: nil, Entries: platformRoots()})
		return
	}

	resolved, err := filepath.Abs(requestedDir)
	if err != nil {
		respondBadRequest(c, "invalid directory path")
		return
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		respondNotFound(c, "directory")
		return
	}
	if err != nil {
		respondInternalError(c, err, "stat directory")
		return
	}
	if !info.IsDir() {
		respondBadRequest(c, "path is not a directory")
		return
	}

	entries := readBrowsableEntries(resolved)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDirectory != entries[j].IsDirectory {
			return entries[i].IsDirectory
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	var parent *string
	if parentDir := filepath.Dir(resolved); parentDir != resolved {
		parent = &parentDir
	}

	c.JSON(http.StatusOK, BrowseResponse{Current: resolved, Parent: parent, Entries: entries})
}

// readBrowsableEntries lists subdirectories and EPUB/PDF files. Unreadable
// entries are skipped rather than failing the whole listing.
func readBrowsableEntries(dir string) []DirEntry {
	entries := []DirEntry{}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return entries
	}

	for _, dirent := range dirents {
		if strings.HasPrefix(dirent.Name(), ".") {
			continue
		}

		fullPath := filepath.Join(dir, dirent.Name())
		if dirent.IsDir() {
			entries = append(entries, DirEntry{Name: dirent.Name(), Path: fullPath, IsDirectory: true})
			continue
		}

		ext := strings.ToLower(filepath.Ext(dirent.Name()))
		if ext != ".epub" && ext != ".pdf" {
			continue
		}
		info, err := dirent.Info()
		if err != nil {
			continue
		}
		entries = append(entries, DirEntry{Name: dirent.Name(), Path: fullPath, Size: info.Size()})
	}

	return entries
}

// platformRoots returns filesystem roots: drive letters on Windows, the root
// plus common mount points elsewhere.
func platformRoots() []DirEntry {
	if runtime.GOOS == "windows" {
		drives := []DirEntry{}
		for letter := 'A'; letter <= 'Z'; letter++ {
			drivePath := string(letter) + `:\`
			if _, err := os.Stat(drivePath); err == nil {
				drives = append(drives, DirEntry{Name: drivePath, Path: drivePath, IsDirectory: true})
			}
		}
		return drives
	}

	roots := []DirEntry{{Name: "/", Path: "/", IsDirectory: true}}
	for _, dir := range []string{"/home", "/mnt", "/media", "/Volumes"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			roots = append(roots, DirEntry{Name: dir, Path: dir, IsDirectory: true})
		}
	}
	return roots
}
