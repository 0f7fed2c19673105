package reading

import "log"

// ProgressStore persists merged position updates for a document.
type ProgressStore interface {
	ApplyProgress(documentID string, page int, location string, percent *int) error
}

// Tracker receives location-change events and schedules exactly one
// persistence write per event. Persistence failures are logged and
// swallowed: progress tracking must never throw back into the rendering
// path.
type Tracker struct {
	store ProgressStore
}

func NewTracker(store ProgressStore) *Tracker {
	return &Tracker{store: store}
}

// OnLocationChanged persists the position. The store merges rather than
// replaces, so an update without a percent cannot regress stored progress,
// and the document's last-opened time is refreshed as a side effect.
func (t *Tracker) OnLocationChanged(documentID string, pos Position) {
	if err := t.store.ApplyProgress(documentID, pos.Page, pos.Token, pos.Percent); err != nil {
		log.Printf("progress update for document %s failed: %v", documentID, err)
	}
}
