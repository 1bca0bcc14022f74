package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/betbot/go-orion/orion/client"
	"github.com/betbot/go-orion/orion/locris"
	"github.com/betbot/go-orion/orion/types"
	"github.com/betbot/go-orion/pkg/config"
	"github.com/betbot/go-orion/pkg/logger"
)

var (
	configPath string
	logLevel   string
	timeout    time.Duration

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "orion",
	Short: "Command line client for the Orion voice and messaging platform",
	Long: `orion talks to the Orion REST API and event stream.

Credentials and default groups come from the config file, a .env file, or
ORION_USERNAME / ORION_PASSWORD / ORION_GROUPS.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		if err := logger.Init(logger.Config{
			Level:      loaded.Log.Level,
			OutputFile: loaded.Log.File,
			MaxSize:    loaded.Log.MaxSize,
			MaxBackups: loaded.Log.MaxBackups,
			MaxAge:     loaded.Log.MaxAge,
			Compress:   loaded.Log.Compress,
		}); err != nil {
			return errors.Wrap(err, "init logger")
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	return client.NewClientWithConfig(&client.Config{
		BaseURL:    cfg.API.BaseURL,
		StreamURL:  cfg.API.StreamURL,
		Timeout:    cfg.API.Timeout,
		RetryCount: cfg.API.RetryCount,
		SessionTTL: cfg.Session.TTL,
	})
}

func newLocris() *locris.Client {
	return locris.New(&locris.Config{
		LyreURL:      cfg.Services.LyreURL,
		OV2WAVURL:    cfg.Services.OV2WAVURL,
		STTURL:       cfg.Services.STTURL,
		TranslateURL: cfg.Services.TranslateURL,
		WAV2OVURL:    cfg.Services.WAV2OVURL,
	})
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

func requireCredentials() error {
	if !cfg.HasCredentials() {
		return errors.New("credentials missing: set ORION_USERNAME and ORION_PASSWORD or credentials in the config file")
	}
	return nil
}

// session logs in with the configured credentials.
func session(ctx context.Context, c *client.Client) (*types.LoginResponse, error) {
	if err := requireCredentials(); err != nil {
		return nil, err
	}
	return c.Session(ctx, cfg.Credentials.Username, cfg.Credentials.Password)
}

// groupsOrDefault falls back to the configured groups and then to every group of the user.
func groupsOrDefault(ctx context.Context, c *client.Client, sess *types.LoginResponse, flagGroups []string) ([]string, error) {
	if len(flagGroups) > 0 {
		return flagGroups, nil
	}
	if len(cfg.Credentials.Groups) > 0 {
		return cfg.Credentials.Groups, nil
	}
	all, err := c.GetAllUserGroups(ctx, sess.Token, sess.ID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, client.ErrNoGroups
	}
	return types.GroupIDs(all), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
