package monitor

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// Run executes the steady-state loop until ctx is cancelled, then flushes
// the ledger unconditionally. A write to the manual calls file kicks an
// immediate cycle instead of waiting for the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	m.CheckBacklog(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.watchManualFile(gctx) })
	g.Go(func() error { return m.pollLoop(gctx) })
	err := g.Wait()

	if saveErr := m.led.Save(m.cfg.LedgerPath); saveErr != nil {
		log.Printf("shutdown: ledger save failed: %v", saveErr)
	} else {
		log.Printf("shutdown: ledger saved to %s", m.cfg.LedgerPath)
	}
	snap := m.met.Snapshot()
	log.Printf("shutdown: cycles=%d detected=%d admitted=%d scheduled=%d schedule_failures=%d save_failures=%d",
		snap.Cycles, snap.Detected, snap.Admitted, snap.Scheduled, snap.ScheduleFailures, snap.SaveFailures)
	return err
}

func (m *Monitor) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if n := m.RunCycle(ctx); n == 0 {
			// Heartbeat so an idle loop is visibly alive.
			fmt.Print(".")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-m.kick:
			log.Printf("manual calls file changed, running cycle")
		}
	}
}

// watchManualFile watches the directory holding the manual file; editors
// replace files on save, so watching the file itself would go stale.
func (m *Monitor) watchManualFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("watcher unavailable: %v (polling only)", err)
		return nil
	}
	defer watcher.Close()

	dir := filepath.Dir(m.cfg.ManualFile)
	if err := watcher.Add(dir); err != nil {
		log.Printf("watch %s failed: %v (polling only)", dir, err)
		return nil
	}
	target := filepath.Clean(m.cfg.ManualFile)

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-watcher.Events:
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				select {
				case m.kick <- struct{}{}:
				default:
				}
			}
		case err := <-watcher.Errors:
			log.Printf("watcher error: %v", err)
		}
	}
}
