package reading

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgressStore struct {
	calls []progressCall
	err   error
}

type progressCall struct {
	documentID string
	page       int
	location   string
	percent    *int
}

func (f *fakeProgressStore) ApplyProgress(documentID string, page int, location string, percent *int) error {
	f.calls = append(f.calls, progressCall{documentID, page, location, percent})
	return f.err
}

func TestTracker_OneWritePerEvent(t *testing.T) {
	store := &fakeProgressStore{}
	tracker := NewTracker(store)

	percent := 42
	tracker.OnLocationChanged("doc-1", Position{Page: 12, Token: "epubcfi(/6/4!/4/2/1:0)", Percent: &percent})

	require.Len(t, store.calls, 1)
	assert.Equal(t, "doc-1", store.calls[0].documentID)
	assert.Equal(t, 12, store.calls[0].page)
	assert.Equal(t, "epubcfi(/6/4!/4/2/1:0)", store.calls[0].location)
	require.NotNil(t, store.calls[0].percent)
	assert.Equal(t, 42, *store.calls[0].percent)
}

func TestTracker_PassesNilPercentThrough(t *testing.T) {
	store := &fakeProgressStore{}
	tracker := NewTracker(store)

	tracker.OnLocationChanged("doc-1", Position{Page: 3, Token: "3"})

	require.Len(t, store.calls, 1)
	assert.Nil(t, store.calls[0].percent)
}

func TestTracker_SwallowsStoreErrors(t *testing.T) {
	store := &fakeProgressStore{err: errors.New("database locked")}
	tracker := NewTracker(store)

	assert.NotPanics(t, func() {
		tracker.OnLocationChanged("doc-1", Position{Page: 1, Token: "1"})
	})
}
