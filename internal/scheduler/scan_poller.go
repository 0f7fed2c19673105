// Package scheduler drives periodic library-source scans. A cron job ticks
// once a minute and rescans every polling-enabled source whose configured
// interval has elapsed, so per-source intervals never need their own cron
// entries.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
	"github.com/ethanwheatthin/lib-reader/internal/scanner"
)

// SourceLister yields the sources eligible for polling.
type SourceLister interface {
	ListPollable() ([]entities.LibrarySource, error)
}

// SourceScanner walks a source's paths and imports new files.
type SourceScanner interface {
	ScanSource(source *entities.LibrarySource) ([]scanner.Imported, error)
}

// ScanPoller manages periodic scans of polling-enabled library sources.
type ScanPoller struct {
	sources SourceLister
	scanner SourceScanner

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewScanPoller creates a new poller instance.
func NewScanPoller(sources SourceLister, scn SourceScanner) *ScanPoller {
	return &ScanPoller{
		sources: sources,
		scanner: scn,
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the minute tick.
func (p *ScanPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return nil
	}

	entryID, err := p.cron.AddFunc("* * * * *", func() {
		p.tick(time.Now())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule scan tick: %w", err)
	}
	p.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, p.cancelFunc = context.WithCancel(ctx)

	p.cron.Start()
	p.isRunning = true

	log.Printf("Scan poller: started")

	go func() {
		<-cancelCtx.Done()
		p.Stop()
	}()

	return nil
}

// Stop gracefully stops the poller, waiting for a running scan to finish.
func (p *ScanPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return
	}

	ctx := p.cron.Stop()
	<-ctx.Done()

	p.isRunning = false
	if p.cancelFunc != nil {
		// Release the context monitor goroutine started by Start
		p.cancelFunc()
		p.cancelFunc = nil
	}

	log.Printf("Scan poller: stopped")
}

// IsRunning returns whether the poller is active.
func (p *ScanPoller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

// RunNow scans every due source immediately.
func (p *ScanPoller) RunNow() {
	go p.tick(time.Now())
}

// tick rescans sources whose polling interval has elapsed.
func (p *ScanPoller) tick(now time.Time) {
	sources, err := p.sources.ListPollable()
	if err != nil {
		log.Printf("Scan poller: failed to list sources: %v", err)
		return
	}

	for i := range sources {
		source := &sources[i]
		if !sourceDue(source, now) {
			continue
		}

		imported, err := p.scanner.ScanSource(source)
		if err != nil {
			log.Printf("Scan poller: scan of source %q failed: %v", source.Name, err)
			continue
		}
		if len(imported) > 0 {
			log.Printf("Scan poller: source %q imported %d new documents", source.Name, len(imported))
		}
	}
}

// sourceDue reports whether the source's interval has elapsed since its last
// scan. Never-scanned sources are always due.
func sourceDue(source *entities.LibrarySource, now time.Time) bool {
	if source.LastScannedAt == nil {
		return true
	}
	interval := time.Duration(source.PollingIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return now.Sub(*source.LastScannedAt) >= interval
}
