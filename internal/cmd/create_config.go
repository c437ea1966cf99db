package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QwQ3213/ACELimiter/internal/config"
)

func newCreateConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-config [path]",
		Short: "Create a default configuration file",
		Long:  `Generate a default configuration file at the specified path or use the default path.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) > 0 {
				path = args[0]
			}

			if err := config.CreateDefaultConfig(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Default configuration created at %s\n", path)
			return nil
		},
	}

	return cmd
}
