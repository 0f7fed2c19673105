package reading

import (
	"log"
	"sync"
	"time"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
)

// MinSessionDuration is the floor below which a session is discarded
// rather than recorded.
const MinSessionDuration = 5000 * time.Millisecond

// SessionStore persists completed reading sessions.
type SessionStore interface {
	AppendSession(documentID string, session entities.ReadingSession) error
}

type activeSession struct {
	startedAt time.Time
	startPage int
}

// Recorder brackets wall-clock reading sessions per open document. A
// document transitions Idle -> Active on open and Active -> Idle on close;
// ending while Idle is a no-op, so a double close can never record twice.
type Recorder struct {
	mu     sync.Mutex
	active map[string]*activeSession
	store  SessionStore
}

func NewRecorder(store SessionStore) *Recorder {
	return &Recorder{
		active: make(map[string]*activeSession),
		store:  store,
	}
}

// Start marks the document open, recording the start time and current page.
// Starting an already-active document restarts its session.
func (r *Recorder) Start(documentID string, page int, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[documentID] = &activeSession{startedAt: now, startPage: page}
}

// Active reports whether the document currently has an open session.
func (r *Recorder) Active(documentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[documentID]
	return ok
}

// End closes the document's session at the given page and time. Sessions
// shorter than the floor are discarded. Returns whether a session was
// recorded.
func (r *Recorder) End(documentID string, page int, now time.Time) bool {
	r.mu.Lock()
	session, ok := r.active[documentID]
	if ok {
		delete(r.active, documentID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	return r.Record(documentID, session.startedAt, now, session.startPage, page)
}

// Record persists an explicitly bracketed session, applying the duration
// floor and deriving pagesRead = max(0, endPage-startPage). Store failures
// are logged and swallowed.
func (r *Recorder) Record(documentID string, startedAt, endedAt time.Time, startPage, endPage int) bool {
	duration := endedAt.Sub(startedAt)
	if duration < MinSessionDuration {
		return false
	}

	pagesRead := endPage - startPage
	if pagesRead < 0 {
		pagesRead = 0
	}

	session := entities.ReadingSession{
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Duration:  duration.Milliseconds(),
		PagesRead: pagesRead,
	}
	if err := r.store.AppendSession(documentID, session); err != nil {
		log.Printf("session append for document %s failed: %v", documentID, err)
		return false
	}
	return true
}
