package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QwQ3213/ACELimiter/internal/limiter"
	"github.com/QwQ3213/ACELimiter/internal/process"
)

func newInfoCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the CPU layout used for pinning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, _, cleanup, err := newService(cfg, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			info := svc.SystemInfo()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatSystemInfo(info))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func formatSystemInfo(info limiter.SystemInfo) string {
	return fmt.Sprintf("Logical CPUs:    %d\nTarget core:     %d\nAffinity mask:   %#x\n",
		info.CPUCount, info.LastCoreIndex, process.AffinityMask(info.CPUCount))
}
