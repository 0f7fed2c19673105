package sources

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_sources_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.LibrarySource{},
		&entities.LibrarySourcePath{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	source, err := repo.Create("Home Library", []string{"/books", "/downloads/epubs"}, true, 300)

	require.NoError(t, err)
	assert.NotEmpty(t, source.ID)
	assert.Equal(t, "Home Library", source.Name)
	assert.True(t, source.PollingEnabled)
	assert.Equal(t, 300, source.PollingIntervalSeconds)
	require.Len(t, source.Paths, 2)
	assert.Equal(t, "/books", source.Paths[0].Path)
	assert.Equal(t, "/downloads/epubs", source.Paths[1].Path)
	assert.Nil(t, source.LastScannedAt)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_List(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create("First", []string{"/a"}, true, 300)
	require.NoError(t, err)
	_, err = repo.Create("Second", []string{"/b"}, false, 600)
	require.NoError(t, err)

	sources, err := repo.List()
	require.NoError(t, err)
	require.Len(t, sources, 2)
	for _, s := range sources {
		assert.Len(t, s.Paths, 1)
	}
}

func TestRepository_ListPollable(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create("Watched", []string{"/a"}, true, 300)
	require.NoError(t, err)
	_, err = repo.Create("Manual", []string{"/b"}, false, 300)
	require.NoError(t, err)

	pollable, err := repo.ListPollable()
	require.NoError(t, err)
	require.Len(t, pollable, 1)
	assert.Equal(t, "Watched", pollable[0].Name)
}

func TestRepository_Update_PartialFields(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	source, err := repo.Create("Old Name", []string{"/a"}, true, 300)
	require.NoError(t, err)

	updated, err := repo.Update(source.ID, strPtr("New Name"), boolPtr(false), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.False(t, updated.PollingEnabled)
	// Untouched fields survive
	assert.Equal(t, 300, updated.PollingIntervalSeconds)
	require.Len(t, updated.Paths, 1)
	assert.Equal(t, "/a", updated.Paths[0].Path)
}

func TestRepository_Update_ReconcilesPaths(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	source, err := repo.Create("Library", []string{"/keep", "/drop"}, true, 300)
	require.NoError(t, err)

	var keptID string
	for _, p := range source.Paths {
		if p.Path == "/keep" {
			keptID = p.ID
		}
	}
	require.NoError(t, repo.MarkPathScanned(keptID, 12, time.Now()))

	updated, err := repo.Update(source.ID, nil, nil, intPtr(600), []string{"/keep", "/new"})
	require.NoError(t, err)
	assert.Equal(t, 600, updated.PollingIntervalSeconds)
	require.Len(t, updated.Paths, 2)

	byPath := map[string]entities.LibrarySourcePath{}
	for _, p := range updated.Paths {
		byPath[p.Path] = p
	}
	require.Contains(t, byPath, "/keep")
	require.Contains(t, byPath, "/new")
	assert.NotContains(t, byPath, "/drop")
	// A surviving path keeps its identity and scan history
	assert.Equal(t, keptID, byPath["/keep"].ID)
	assert.Equal(t, 12, byPath["/keep"].FileCount)
	assert.Equal(t, 0, byPath["/new"].FileCount)
}

func TestRepository_Update_NilPathsUntouched(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	source, err := repo.Create("Library", []string{"/a", "/b"}, true, 300)
	require.NoError(t, err)

	updated, err := repo.Update(source.ID, strPtr("Renamed"), nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, updated.Paths, 2)
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Update("missing", strPtr("Name"), nil, nil, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	source, err := repo.Create("Doomed", []string{"/a", "/b"}, true, 300)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(source.ID))

	_, err = repo.GetByID(source.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Delete(source.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_MarkScanned(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	source, err := repo.Create("Library", []string{"/a"}, true, 300)
	require.NoError(t, err)

	scannedAt := time.Now()
	require.NoError(t, repo.MarkPathScanned(source.Paths[0].ID, 7, scannedAt))
	require.NoError(t, repo.MarkSourceScanned(source.ID, scannedAt))

	fetched, err := repo.GetByID(source.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.LastScannedAt)
	assert.WithinDuration(t, scannedAt, *fetched.LastScannedAt, time.Second)
	require.NotNil(t, fetched.Paths[0].LastScannedAt)
	assert.Equal(t, 7, fetched.Paths[0].FileCount)
	assert.Equal(t, 7, fetched.TotalFilesFound())
}
