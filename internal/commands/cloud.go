package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"
	"github.com/Bernardxu123/unicom-calc/internal/syncclient"
)

func newRegisterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Create a sync account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.sync.Register(cmd.Context(), args[0], args[1])
			if !res.Success {
				return errors.New(res.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registered, now run: cardctl login")
			return nil
		},
	}
}

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Sign in to the sync server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.sync.Login(cmd.Context(), args[0], args[1])
			if !res.Success {
				return errors.New(res.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", res.User.Username)
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sync.Logout()
		},
	}
}

func newPushCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload the ledger, replacing the cloud copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sync.SaveCloudConfig(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pushed")
			return nil
		},
	}
}

func newPullCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace the local ledger with the cloud copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.sync.FetchCloudConfig(cmd.Context())
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing saved in the cloud yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pulled")
			return nil
		},
	}
}

func newRankCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Show the monthly leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != "" && !ledger.ValidMonth(month) {
				return fmt.Errorf("invalid month %q, want YYYY-MM", month)
			}
			list, err := a.sync.Ranking(cmd.Context(), month)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no scores yet")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			for i, e := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, e.Username, yuan(e.Score))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "leaderboard month (YYYY-MM), default current")

	cmd.AddCommand(&cobra.Command{
		Use:   "submit",
		Short: "Submit this ledger's score for the current month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.sync.SubmitScore(cmd.Context(), ledger.Score(a.ledger.Snapshot()))
			if errors.Is(err, syncclient.ErrNotLoggedIn) {
				return fmt.Errorf("%w: run cardctl login first", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s best: %s\n", res.Month, yuan(res.Score))
			return nil
		},
	})

	return cmd
}
