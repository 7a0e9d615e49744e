//go:build windows

package main

import (
	"context"
	"log/slog"

	"github.com/forest/razerbatt/internal/poller"
)

// notifyWake is a no-op on Windows: there is no SIGUSR1 to hook, and the
// fast-disconnected schedule picks the device back up after resume anyway.
func notifyWake(context.Context, *slog.Logger, *poller.Poller) {}
