// Command razerbattd polls a Razer wireless device for its battery level
// and logs state changes. It prefers the hidapi transport and falls back
// to raw USB when no HID interface node can be opened.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/forest/razerbatt/internal/battery"
	"github.com/forest/razerbatt/internal/config"
	"github.com/forest/razerbatt/internal/device"
	"github.com/forest/razerbatt/internal/hid"
	"github.com/forest/razerbatt/internal/poller"
	"github.com/forest/razerbatt/internal/rawusb"
)

func main() {
	cfgPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(log, *cfgPath); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("daemon failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(log *slog.Logger, cfgPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	sess, err := openSession(log, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()
	log.Info("device ready",
		slog.String("product", sess.Product.Name),
		slog.String("pid", fmt.Sprintf("0x%04X", sess.PID)))

	p := poller.New(sess, poller.Config{
		PollInterval: cfg.PollInterval(),
		FastInterval: cfg.FastInterval(),
		FastMax:      cfg.FastMax(),
		WakeSettle:   cfg.WakeSettle(),
		Staleness:    cfg.Staleness(),
		Logger:       log,
	})

	if cfg.LowBatteryNotify {
		notifier := &battery.Notifier{
			Threshold: cfg.LowBatteryThreshold,
			Notify: func(percent int) {
				log.Warn("battery low", slog.Int("percent", percent))
			},
		}
		p.Subscribe(func(s poller.Snapshot) { notifier.Observe(s.Status) })
	}
	p.Subscribe(func(s poller.Snapshot) {
		log.Debug("poll complete",
			slog.String("state", s.Status.State.String()),
			slog.Int("percent", s.Status.Percent),
			slog.Bool("charging", s.Status.Charging),
			slog.String("mode", s.Plan.Mode.String()))
	})

	notifyWake(ctx, log, p)
	return p.Run(ctx)
}

// openSession scans for a battery-capable product over hidapi and falls
// back to the raw USB transport when not a single HID node opens.
func openSession(log *slog.Logger, cfg *config.Config) (*device.Session, error) {
	opts := device.Options{
		AttemptTimeout:       cfg.AttemptDeadline(),
		AttemptsPerInterface: cfg.AttemptsPerIf,
		BackoffBase:          cfg.BackoffBase(),
		BackoffMax:           cfg.BackoffMax(),
		Logger:               log,
	}

	mgr, err := hid.NewManager()
	if err != nil {
		return nil, err
	}
	sess, hidErr := openFirst(mgr, cfg, opts)
	if hidErr == nil {
		return sess, nil
	}

	log.Warn("hidapi transport unavailable, trying raw usb", slog.String("error", hidErr.Error()))
	sess, rawErr := openFirst(rawusb.NewManager(cfg.VendorID), cfg, opts)
	if rawErr != nil {
		return nil, fmt.Errorf("hid: %v; raw usb: %w", hidErr, rawErr)
	}
	return sess, nil
}

func openFirst(mgr hid.Manager, cfg *config.Config, opts device.Options) (*device.Session, error) {
	cands, err := device.Scan(mgr, cfg.VendorID, cfg.ProductID)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, errors.New("no battery-capable device found")
	}
	var lastErr error
	for _, c := range cands {
		sess, err := device.NewSession(mgr, c.PID, c.Ifaces, opts)
		if err != nil {
			lastErr = err
			continue
		}
		return sess, nil
	}
	return nil, lastErr
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/razerbatt/config.yaml"
	}
	return "razerbatt.yaml"
}
