package store

import (
	"context"
	"log"
	"time"
)

// AlarmHandler is invoked once per due alarm. It is responsible for
// deleting the alarm itself; SweepAlarms never deletes one.
type AlarmHandler func(ctx context.Context, roomCode string, descriptor AlarmDescriptor)

// SweepAlarms polls store for due alarms every pollInterval and invokes
// handler for each, in the same ticker-driven polling shape as
// playpool's StartIdleWorker (internal/game/idle_worker.go): a ticker
// loop that queries a sorted-set-backed due list and dispatches.
// Alarm-handler errors are the handler's own concern to log; a panic
// recovered here must never take down the sweep loop, since an
// alarm-handler error must not crash the room writer.
func SweepAlarms(ctx context.Context, s Store, pollInterval time.Duration, handler AlarmHandler) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := s.DueAlarms(ctx, time.Now())
			if err != nil {
				log.Printf("store: failed to fetch due alarms: %v", err)
				continue
			}
			for _, d := range due {
				dispatchAlarm(ctx, d, handler)
			}
		}
	}
}

func dispatchAlarm(ctx context.Context, d DueAlarm, handler AlarmHandler) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("store: alarm handler panicked for room %s: %v", d.RoomCode, r)
		}
	}()
	handler(ctx, d.RoomCode, d.Descriptor)
}
