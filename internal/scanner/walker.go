package scanner

import (
	"io/fs"
	"log"
	"path/filepath"
	"strings"
)

var allowedExtensions = map[string]struct{}{
	".epub": {},
	".pdf":  {},
}

// walkDir recursively enumerates importable files under root. Hidden
// entries are skipped entirely; unreadable subdirectories are logged and
// skipped so one bad directory cannot abort the walk.
func walkDir(root string) []string {
	var results []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("Cannot read %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if _, ok := allowedExtensions[ext]; ok {
			results = append(results, path)
		}
		return nil
	})
	if err != nil {
		log.Printf("Cannot read directory %s: %v", root, err)
	}

	return results
}
