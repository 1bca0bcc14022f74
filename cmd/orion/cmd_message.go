package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/betbot/go-orion/orion/client"
)

var (
	msgGroups    []string
	msgTarget    string
	msgStreamKey string
	lyreMedia    string
	downloadOut  string
)

var pttCmd = &cobra.Command{
	Use:   "ptt <file.ov>",
	Short: "Upload an OV voice clip and push it to groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		media, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "read %s", args[0])
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		sess, err := session(ctx, c)
		if err != nil {
			return err
		}
		groups, err := groupsOrDefault(ctx, c, sess, msgGroups)
		if err != nil {
			return err
		}
		mediaURL, err := c.SendPTT(ctx, sess.Token, media, groups, &client.PTTOptions{
			TargetUserID: msgTarget,
			StreamKey:    msgStreamKey,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), mediaURL)
		return nil
	},
}

var textCmd = &cobra.Command{
	Use:   "text <message>",
	Short: "Send a text message to groups",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		sess, err := session(ctx, c)
		if err != nil {
			return err
		}
		groups, err := groupsOrDefault(ctx, c, sess, msgGroups)
		if err != nil {
			return err
		}
		if err := c.SendTextMessage(ctx, sess.Token, strings.Join(args, " "), groups, msgTarget); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent to %s\n", strings.Join(groups, ","))
		return nil
	},
}

var lyreCmd = &cobra.Command{
	Use:   "lyre [message]",
	Short: "Send a text-to-speech message through Lyre",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		if message == "" && lyreMedia == "" {
			return errors.New("a message or --media is required")
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		sess, err := session(ctx, c)
		if err != nil {
			return err
		}
		groups, err := groupsOrDefault(ctx, c, sess, msgGroups)
		if err != nil {
			return err
		}
		out, err := newLocris().Lyre(ctx, sess.Token, groups, message, lyreMedia, msgTarget)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download a media object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		path, err := c.DownloadMedia(ctx, args[0])
		if err != nil {
			return err
		}
		if downloadOut != "" {
			if err := os.Rename(path, downloadOut); err != nil {
				return errors.Wrapf(err, "move %s to %s", path, downloadOut)
			}
			path = downloadOut
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{pttCmd, textCmd, lyreCmd} {
		cmd.Flags().StringSliceVarP(&msgGroups, "group", "g", nil, "Group id (repeatable, default: configured groups)")
		cmd.Flags().StringVar(&msgTarget, "target", "", "Target user id")
	}
	pttCmd.Flags().StringVar(&msgStreamKey, "stream-key", "", "Stream key for the PTT event")
	lyreCmd.Flags().StringVar(&lyreMedia, "media", "", "Media URL to relay instead of a message")
	downloadCmd.Flags().StringVarP(&downloadOut, "output", "o", "", "Destination path (default: temp file)")

	rootCmd.AddCommand(pttCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(lyreCmd)
	rootCmd.AddCommand(downloadCmd)
}
