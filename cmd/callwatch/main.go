package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"callwatch/internal/calendar"
	"callwatch/internal/call"
	"callwatch/internal/config"
	"callwatch/internal/detect"
	"callwatch/internal/followup"
	"callwatch/internal/ledger"
	"callwatch/internal/metrics"
	"callwatch/internal/monitor"
	"callwatch/internal/notify"
	"callwatch/internal/slot"
)

func main() {
	cfg := config.Load()

	if len(os.Args) > 1 && os.Args[1] == "view" {
		if err := runView(cfg); err != nil {
			log.Fatalf("view: %v", err)
		}
		return
	}

	mon, cleanup, err := build(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	log.Printf("missed call monitor started: poll=%s window=%02d:00-%02d:00 ledger=%s",
		cfg.PollInterval, cfg.WindowStartHour, cfg.WindowEndHour, cfg.LedgerPath)
	if err := mon.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func build(cfg config.Config) (*monitor.Monitor, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	token, err := cfg.ResolveCalendarToken()
	if err != nil {
		return nil, nil, err
	}

	led, err := ledger.Load(cfg.LedgerPath)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now
	notifSrc, err := detect.NewNotificationSource(cfg.NotificationDB, cfg.BundleID, cfg.DetectWindow, cfg.QueryTimeout, loc, now)
	if err != nil {
		return nil, nil, err
	}
	chain := detect.NewChain(notifSrc, detect.NewManualSource(cfg.ManualFile, cfg.ManualMaxBytes))

	norm := call.Normalizer{
		Now:         now,
		Loc:         loc,
		StaleAfter:  cfg.StaleAfter,
		FutureLimit: cfg.FutureLimit,
	}

	cal := calendar.NewHTTPClient(cfg.CalendarBaseURL, token)
	alloc := slot.NewAllocator(cal, cfg.CalendarID, loc, cfg.WindowStartHour, cfg.WindowEndHour, cfg.SlotLength)
	sched := followup.NewScheduler(cal, notify.NewOSANotifier(5*time.Second), cfg.CalendarID)

	mon := monitor.New(cfg, chain, norm, led, alloc, sched, metrics.New())
	cleanup := func() { _ = notifSrc.Close() }
	return mon, cleanup, nil
}

// runView prints the persisted ledger without mutating it.
func runView(cfg config.Config) error {
	led, err := ledger.Load(cfg.LedgerPath)
	if err != nil {
		return err
	}

	fmt.Println("MISSED CALLS TRACKER")
	fmt.Println("========================================")

	counts := led.Counts()
	if len(counts) > 0 {
		callers := make([]string, 0, len(counts))
		for caller := range counts {
			callers = append(callers, caller)
		}
		sort.Strings(callers)
		fmt.Println("\nMissed call counts by contact:")
		for _, caller := range callers {
			fmt.Printf("  %s: %d missed calls\n", caller, counts[caller])
		}
	}

	fmt.Printf("\nTotal processed calls: %d\n", led.TotalProcessed())
	if last := led.LastCommitted(); !last.IsZero() {
		fmt.Printf("Last updated: %s\n", last.Format(time.RFC3339))
	}
	return nil
}
