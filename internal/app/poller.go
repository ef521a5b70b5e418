package app

import (
	"context"
	"sync"
	"time"
)

const defaultRecentInterval = 5 * time.Minute

// StartPoller runs refresh immediately and then at every interval in a
// background goroutine. It returns right away. The loop ends when ctx is done
// or stop is called; stop cancels an in-flight refresh and waits for the
// goroutine to exit.
func StartPoller(ctx context.Context, interval time.Duration, refresh func(context.Context)) (stop func()) {
	if interval <= 0 {
		interval = defaultRecentInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refresh(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
