package cmd

import (
	"github.com/spf13/cobra"
)

func newScanCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List running ACE processes",
		Long:  `Enumerate running processes once and show every SGuard64.exe and SGuardSvc64.exe instance.`,
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

			return printRecords(cmd.OutOrStdout(), svc.ScanProcesses(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}
