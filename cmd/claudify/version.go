package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wagiedev/claudify/internal/subprocess"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the claudify and claude CLI versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "claudify %s\n", version)

			if a.mock {
				fmt.Fprintln(out, "claude (mock mode)")

				return nil
			}

			pm := subprocess.NewManager(&subprocess.Config{CliPath: a.cliPath, Logger: a.log})

			cliVersion, err := pm.Version(cmd.Context())
			if err != nil {
				return fmt.Errorf("probe claude CLI: %w", err)
			}

			fmt.Fprintf(out, "claude %s\n", cliVersion)

			return nil
		},
	}
}
