package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/betbot/go-orion/orion/types"
)

var (
	engageGroups  []string
	engagePassive bool

	statusUser     string
	statusPresence string
	statusLat      float64
	statusLng      float64
	statusMuted    bool
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the groups of the logged in user",
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
		groups, err := c.GetAllUserGroupsAs(ctx, cfg.Credentials.Username, cfg.Credentials.Password)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, g := range groups {
			if g.Name != "" {
				fmt.Fprintf(out, "%s\t%s\n", g.ID, g.Name)
			} else {
				fmt.Fprintln(out, g.ID)
			}
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read or update user status",
}

var statusGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the status of a user (default: yourself)",
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
		id := statusUser
		if id == "" {
			id = sess.ID
		}
		st, err := c.GetUserStatus(ctx, sess.Token, id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), st)
	},
}

var statusSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update your status",
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
		st := &types.UserStatus{ID: statusUser, Presence: statusPresence}
		if cmd.Flags().Changed("lat") {
			st.Lat = types.Float(statusLat)
		}
		if cmd.Flags().Changed("lng") {
			st.Lng = types.Float(statusLng)
		}
		if cmd.Flags().Changed("muted") {
			st.Muted = types.Bool(statusMuted)
		}
		if err := c.UpdateUserStatusAs(ctx, cfg.Credentials.Username, cfg.Credentials.Password, st); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "status updated")
		return nil
	},
}

var engageCmd = &cobra.Command{
	Use:   "engage",
	Short: "Engage groups on the event stream and print the configuration",
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
		groups, err := groupsOrDefault(ctx, c, sess, engageGroups)
		if err != nil {
			return err
		}
		verbosity := types.VerbosityActive
		if engagePassive {
			verbosity = types.VerbosityPassive
		}
		resp, err := c.Engage(ctx, sess.Token, groups, verbosity)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	statusCmd.PersistentFlags().StringVar(&statusUser, "user", "", "User id (default: logged in user)")
	statusSetCmd.Flags().StringVar(&statusPresence, "presence", "", "Presence value")
	statusSetCmd.Flags().Float64Var(&statusLat, "lat", 0, "Latitude")
	statusSetCmd.Flags().Float64Var(&statusLng, "lng", 0, "Longitude")
	statusSetCmd.Flags().BoolVar(&statusMuted, "muted", false, "Muted flag")
	statusCmd.AddCommand(statusGetCmd)
	statusCmd.AddCommand(statusSetCmd)

	engageCmd.Flags().StringSliceVarP(&engageGroups, "group", "g", nil, "Group id (repeatable, default: configured groups)")
	engageCmd.Flags().BoolVar(&engagePassive, "passive", false, "Engage with passive verbosity")

	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(engageCmd)
}
