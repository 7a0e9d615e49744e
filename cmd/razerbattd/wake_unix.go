//go:build !windows

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/forest/razerbatt/internal/poller"
)

// notifyWake forwards SIGUSR1 to the poller. Resume hooks (systemd sleep
// scripts, pm-utils) send the signal so the daemon re-checks the device
// right after the radio link settles instead of waiting out the normal
// interval.
func notifyWake(ctx context.Context, log *slog.Logger, p *poller.Poller) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				log.Debug("wake signal received")
				p.Wake()
			}
		}
	}()
}
