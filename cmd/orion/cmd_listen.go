package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/spf13/cobra"

	"github.com/betbot/go-orion/orion/client"
	"github.com/betbot/go-orion/orion/stream"
	"github.com/betbot/go-orion/orion/types"
	"github.com/betbot/go-orion/pkg/logger"
	"github.com/betbot/go-orion/pkg/shutdown"
)

var (
	listenGroups  []string
	listenMinWait time.Duration
	listenMaxWait time.Duration
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Engage groups and print stream events until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := shutdown.SignalContext(cmd.Context())
		defer stop()

		c, err := newClient()
		if err != nil {
			return err
		}

		mgr := shutdown.NewManager()
		mgr.OnShutdown("orion-client", func(ctx context.Context) error {
			return c.Close()
		})
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mgr.Shutdown(sctx)
		}()

		return listen(ctx, c, cmd.OutOrStdout())
	},
}

// listen keeps the shared stream open, re-engaging and reconnecting with
// jittered exponential backoff whenever the socket ends.
func listen(ctx context.Context, c *client.Client, out io.Writer) error {
	if err := requireCredentials(); err != nil {
		return err
	}

	var outMu sync.Mutex
	s := c.Stream()
	s.On(stream.Wildcard, func(ev *types.Event) error {
		if ev.EventType == types.EventPing {
			return nil
		}
		outMu.Lock()
		defer outMu.Unlock()
		_, err := fmt.Fprintln(out, renderEvent(ev))
		return err
	})

	b := &backoff.Backoff{
		Min:    listenMinWait,
		Max:    listenMaxWait,
		Factor: 2,
		Jitter: true,
	}
	log := logger.WithField("component", "orion-listen")

	for {
		err := connectOnce(ctx, c)
		if err == nil {
			b.Reset()
			select {
			case <-ctx.Done():
				return nil
			case <-s.Done():
				log.Warnf("stream closed, reconnecting")
			}
		} else {
			if ctx.Err() != nil {
				return nil
			}
			log.Warnf("connect failed: %v", err)
			if client.IsStatus(err, http.StatusUnauthorized) {
				c.InvalidateSession(cfg.Credentials.Username)
			}
		}

		wait := b.Duration()
		log.Infof("retrying in %v (attempt %d)", wait, int(b.Attempt()))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func connectOnce(ctx context.Context, c *client.Client) error {
	sess, err := session(ctx, c)
	if err != nil {
		return err
	}
	groups, err := groupsOrDefault(ctx, c, sess, listenGroups)
	if err != nil {
		return err
	}
	if _, err := c.Engage(ctx, sess.Token, groups, types.VerbosityActive); err != nil {
		return err
	}
	_, err = c.ConnectStream(ctx, sess.Token)
	return err
}

func init() {
	listenCmd.Flags().StringSliceVarP(&listenGroups, "group", "g", nil, "Group id (repeatable, default: configured groups)")
	listenCmd.Flags().DurationVar(&listenMinWait, "min-wait", time.Second, "Minimum reconnect delay")
	listenCmd.Flags().DurationVar(&listenMaxWait, "max-wait", time.Minute, "Maximum reconnect delay")
	rootCmd.AddCommand(listenCmd)
}
