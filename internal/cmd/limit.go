package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/QwQ3213/ACELimiter/internal/errors"
	"github.com/QwQ3213/ACELimiter/internal/process"
)

// parsePIDs converts command line arguments to PIDs
func parsePIDs(args []string) ([]uint32, error) {
	pids := make([]uint32, 0, len(args))
	for _, arg := range args {
		pid, err := strconv.ParseUint(arg, 10, 32)
		if err != nil || pid == 0 {
			return nil, errors.ValidationError("invalid PID: " + arg)
		}
		pids = append(pids, uint32(pid))
	}
	return pids, nil
}

func newLimitCommand() *cobra.Command {
	var (
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "limit [pid...]",
		Short: "Lower priority and pin ACE processes to the last CPU",
		Long: `Set idle priority and single-core affinity on the given PIDs, or on every
running ACE process with --all.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.ValidationError("--all does not take PIDs")
			}
			if !all && len(args) == 0 {
				return errors.ValidationError("specify at least one PID or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pids, err := parsePIDs(args)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, _, cleanup, err := newService(cfg, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			var records []process.Record
			if all {
				records = svc.LimitAll()
			} else {
				for _, pid := range pids {
					records = append(records, svc.LimitProcess(pid))
				}
			}

			return printRecords(cmd.OutOrStdout(), records, asJSON)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Limit every running ACE process")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}
