package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/handoff/internal/audit"
	"github.com/PolarWolf314/handoff/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logIdentity  string
	logOperation string
	logSince     string
	logUntil     string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logIdentity, "identity", "", "filter by local identity")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

func resetLogState() {
	logLimit = 0
	logReverse = false
	logIdentity = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View your local handoff history",
	Long: `Displays the local history of publish, pickup and revoke operations. Payloads
and secrets are never recorded.

Examples:
  handoff log -n 10
  handoff log --reverse --operation publish
  handoff log --since 2026-01-01 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log command")

		result, err := workflows.Log(cmd.Context(), workflows.LogOptions{
			Limit:      logLimit,
			Reverse:    logReverse,
			Identity:   logIdentity,
			Operations: logOperation,
			Since:      logSince,
			Until:      logUntil,
		})
		if err != nil {
			return err
		}

		Logger.Debugf("Parsed %d entries, %d after filtering", result.TotalEntriesBeforeFilter, len(result.Entries))

		if len(result.Entries) == 0 {
			if result.TotalEntriesBeforeFilter == 0 {
				cmd.PrintErrln("No history entries found.")
			} else {
				cmd.PrintErrln("No history entries found matching the filters.")
			}
			return nil
		}

		if logJSON {
			return outputLogJSON(cmd, result.Entries)
		}
		for _, e := range result.Entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%-19s  %-7s  %s  %s\n",
				workflows.FormatDateTime(e.Timestamp), e.Operation, e.Token, workflows.FormatDetails(e))
		}
		return nil
	},
}

func outputLogJSON(cmd *cobra.Command, entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
