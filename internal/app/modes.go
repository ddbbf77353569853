package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"studio/internal/environment"
	"studio/pkg/logging"
)

// readyFunc is told when the console accepts connections.
type readyFunc func(addr string)

// notifyReady tells systemd the console is up. Outside systemd it is a
// no-op.
func notifyReady(addr string) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	switch {
	case err != nil:
		logging.Warn("Server", "Failed to notify systemd: %v", err)
	case sent:
		logging.Debug("Server", "Notified systemd that %s is ready", addr)
	}
}

// runServer initializes every module, then serves the console and watches
// environments.yaml until shutdown. Module failures abort before the port
// is opened.
func runServer(ctx context.Context, services *Services, ready readyFunc) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.Modules.InitializeModules(ctx); err != nil {
		return err
	}

	ln, err := services.Server.Listen()
	if err != nil {
		return err
	}
	if ready != nil {
		ready(ln.Addr().String())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return services.Server.Serve(gctx, ln)
	})
	g.Go(func() error {
		watcher := environment.WatchAccessor(services.Accessor, services.Store)
		if err := watcher.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			// The console keeps working without live reload.
			logging.Warn("Server", "Environment watcher stopped: %v", err)
		}
		return nil
	})

	err = g.Wait()
	if sent, _ := daemon.SdNotify(false, daemon.SdNotifyStopping); sent {
		logging.Debug("Server", "Notified systemd of shutdown")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info("Server", "Shutdown complete")
	return nil
}
