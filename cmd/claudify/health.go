package main

import (
	"encoding/json"
	stderrors "errors"

	"github.com/spf13/cobra"
)

var errUnhealthy = stderrors.New("no healthy provider")

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print the status of every configured provider as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			mgr, err := a.openManager(ctx)
			if err != nil {
				return err
			}
			defer a.closeManager(ctx, mgr)

			statuses := mgr.Statuses(ctx)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if err := enc.Encode(statuses); err != nil {
				return err
			}

			for _, s := range statuses {
				if s.Healthy {
					return nil
				}
			}

			return errUnhealthy
		},
	}
}
