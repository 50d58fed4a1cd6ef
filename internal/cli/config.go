package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stack-deploy/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			s, err := config.Display()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), s)
			return nil
		},
	})

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			newConsole(cmd.OutOrStdout()).Success("Wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "stack-deploy.yaml", "Config file to create")
	cmd.AddCommand(initCmd)

	return cmd
}
