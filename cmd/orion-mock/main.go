package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/betbot/go-orion/internal/mockorion"
	"github.com/betbot/go-orion/pkg/logger"
	"github.com/betbot/go-orion/pkg/shutdown"
)

var (
	listenAddr   string
	pingOnOpen   bool
	pingInterval time.Duration
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "orion-mock",
	Short: "Run an in-memory Orion API, event stream, Lyre and Locris for local development",
	RunE:  runMock,
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "listen", ":8089", "Listen address")
	rootCmd.Flags().BoolVar(&pingOnOpen, "ping", true, "Send a ping right after each stream welcome")
	rootCmd.Flags().DurationVar(&pingInterval, "ping-interval", 30*time.Second, "Push a ping to every stream on this interval (0 disables)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMock(cmd *cobra.Command, args []string) error {
	if err := logger.Init(logger.Config{Level: logLevel}); err != nil {
		return err
	}

	mock := mockorion.New(mockorion.Config{PingOnConnect: pingOnOpen})
	srv := &http.Server{Addr: listenAddr, Handler: mock.Router()}

	ctx, stop := shutdown.SignalContext(cmd.Context())
	defer stop()

	mgr := shutdown.NewManager()
	mgr.OnShutdown("http", func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	})
	// hijacked sockets are not tracked by http.Server
	mgr.OnShutdown("streams", func(ctx context.Context) error {
		mock.DropStreams()
		return nil
	})

	if pingInterval > 0 {
		go func() {
			t := time.NewTicker(pingInterval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					mock.SendPing()
				}
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("orion mock listening on %s (user %s / %s)", listenAddr, mockorion.DemoUsername, mockorion.DemoPassword)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mgr.Shutdown(sctx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}
