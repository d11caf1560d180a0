package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matiasrios/facegate/internal/config"
)

var historyCmd = &cobra.Command{
	Use:   "history <employee-id>",
	Short: "Show an employee's attendance history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("from", "", "Start date (YYYY-MM-DD, inclusive)")
	historyCmd.Flags().String("to", "", "End date (YYYY-MM-DD, inclusive)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, backend, err := buildService(ctx, config.Load())
	if err != nil {
		return err
	}
	defer backend.Close()

	events, err := svc.EmployeeHistory(ctx, args[0], mustGetString(cmd, "from"), mustGetString(cmd, "to"))
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events recorded")
		return nil
	}

	fmt.Printf("%-12s %-10s %-10s %-10s %-14s\n", "DATE", "TIME", "KIND", "SHIFT", "TIMING")
	for _, ev := range events {
		fmt.Printf("%-12s %-10s %-10s %-10s %-14s\n", ev.Date, ev.Time, ev.Kind, ev.Shift, ev.Timing)
	}
	fmt.Printf("\n%d events\n", len(events))
	return nil
}
