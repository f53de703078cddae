package services

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	fullSyncHour     = 2 // nightly catalog + 7-day backfill
	liveWindowStart  = 8 // live syncs only while orders actually arrive
	liveWindowEnd    = 23
	liveSyncInterval = 10 * time.Minute
	schedulerTick    = time.Minute
	fullSyncDays     = 7
	fullSyncMaxPages = 50
)

// SchedulerStatus is the API-visible snapshot of the scheduler.
type SchedulerStatus struct {
	Running      bool      `json:"running"`
	Paused       bool      `json:"paused"`
	LastFullSync time.Time `json:"last_full_sync"`
	LastLiveSync time.Time `json:"last_live_sync"`
}

// SyncScheduler drives the recurring syncs: a nightly full refresh
// (catalog plus a week of orders) and a 10-minute live sync during
// business hours. Pausing stops new runs and gates the one in flight at
// its next batch boundary.
type SyncScheduler struct {
	ingest *IngestService
	gate   *PauseGate

	mu           sync.Mutex
	running      bool
	cancel       context.CancelFunc
	lastFullSync time.Time
	lastLiveSync time.Time
}

func NewSyncScheduler(ingest *IngestService) *SyncScheduler {
	return &SyncScheduler{ingest: ingest, gate: ingest.Gate()}
}

// Start launches the tick loop. Safe to call once; subsequent calls while
// running are ignored.
func (s *SyncScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	go s.loop(ctx)
	log.Printf("scheduler: started (full sync at %02d:00, live sync every %s between %02d:00 and %02d:00)",
		fullSyncHour, liveSyncInterval, liveWindowStart, liveWindowEnd)
}

// Stop cancels the loop and waits for no one; an in-flight sync finishes
// its current batch and aborts on the cancelled context.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	log.Printf("scheduler: stopped")
}

// Pause gates syncs without stopping the loop.
func (s *SyncScheduler) Pause() {
	s.gate.Pause()
	log.Printf("scheduler: paused")
}

// Resume releases the gate.
func (s *SyncScheduler) Resume() {
	s.gate.Resume()
	log.Printf("scheduler: resumed")
}

// Status returns a snapshot for the API.
func (s *SyncScheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{
		Running:      s.running,
		Paused:       s.gate.Paused(),
		LastFullSync: s.lastFullSync,
		LastLiveSync: s.lastLiveSync,
	}
}

func (s *SyncScheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *SyncScheduler) tick(ctx context.Context, now time.Time) {
	if s.gate.Paused() {
		return
	}

	s.mu.Lock()
	fullDue := now.Hour() == fullSyncHour && !sameDay(s.lastFullSync, now)
	liveDue := now.Hour() >= liveWindowStart && now.Hour() < liveWindowEnd &&
		now.Sub(s.lastLiveSync) >= liveSyncInterval
	s.mu.Unlock()

	switch {
	case fullDue:
		s.markFull(now)
		if err := s.RunFullSync(ctx); err != nil {
			log.Printf("scheduler: full sync failed: %v", err)
		}
	case liveDue:
		s.markLive(now)
		if err := s.RunLiveSync(ctx); err != nil {
			log.Printf("scheduler: live sync failed: %v", err)
		}
	}
}

// RunFullSync refreshes the catalog and re-ingests the trailing week. Also
// used as the manual "sync everything" trigger.
func (s *SyncScheduler) RunFullSync(ctx context.Context) error {
	log.Printf("scheduler: full sync starting")
	if _, err := s.ingest.SyncProducts(ctx, fullSyncMaxPages); err != nil {
		return err
	}
	end := time.Now()
	start := end.AddDate(0, 0, -fullSyncDays)
	_, err := s.ingest.IngestOrders(ctx, IngestRequest{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	})
	if err == nil {
		s.markFull(time.Now())
	}
	return err
}

// RunLiveSync ingests yesterday and today so status flips on recent
// orders land quickly.
func (s *SyncScheduler) RunLiveSync(ctx context.Context) error {
	end := time.Now()
	start := end.AddDate(0, 0, -1)
	_, err := s.ingest.IngestOrders(ctx, IngestRequest{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	})
	if err == nil {
		s.markLive(time.Now())
	}
	return err
}

func (s *SyncScheduler) markFull(t time.Time) {
	s.mu.Lock()
	s.lastFullSync = t
	s.mu.Unlock()
}

func (s *SyncScheduler) markLive(t time.Time) {
	s.mu.Lock()
	s.lastLiveSync = t
	s.mu.Unlock()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
