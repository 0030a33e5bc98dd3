package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nicorema/wedding/internal/apiclient"
)

func (a *app) remoteCmd() *cobra.Command {
	var server string
	client := func() *apiclient.Client { return apiclient.New(server, nil) }

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Talk to a running backend",
	}
	def := os.Getenv("WEDDING_SERVER")
	if def == "" {
		def = "http://localhost:5001"
	}
	cmd.PersistentFlags().StringVar(&server, "server", def, "backend base URL")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "best",
			Short: "Show the best recorded time",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				best, err := client().BestTime(cmd.Context())
				if err != nil {
					return err
				}
				if best == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "no scores yet")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %ds\n", best.Name, best.Time)
				return nil
			},
		},
		&cobra.Command{
			Use:   "submit NAME SECONDS",
			Short: "Record a score",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				secs, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("seconds: %w", err)
				}
				sc, err := client().Submit(cmd.Context(), args[0], secs)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded #%d %s %ds\n", sc.ID, sc.Name, sc.Time)
				return nil
			},
		},
		&cobra.Command{
			Use:   "messages",
			Short: "List approved guestbook messages",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := client().Messages(cmd.Context())
				if err != nil {
					return err
				}
				for _, m := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", m.Name, m.Message)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "message NAME TEXT",
			Short: "Leave a guestbook message for moderation",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := client().SubmitMessage(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "message #%d is %s\n", m.ID, m.Status)
				return nil
			},
		},
	)
	return cmd
}
