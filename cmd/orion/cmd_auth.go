package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the configured credentials and print the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := requireCredentials(); err != nil {
			return err
		}
		sess, err := c.Login(ctx, cfg.Credentials.Username, cfg.Credentials.Password)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), sess)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log in and immediately end the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := requireCredentials(); err != nil {
			return err
		}
		body, err := c.LogoutAs(ctx, cfg.Credentials.Username, cfg.Credentials.Password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
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
		user, err := c.Whoami(ctx, sess.Token)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), user)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
