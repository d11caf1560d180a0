package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matiasrios/facegate/internal/config"
)

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "List registered employees",
	RunE:  runEmployees,
}

func init() {
	rootCmd.AddCommand(employeesCmd)
}

func runEmployees(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, backend, err := buildService(ctx, config.Load())
	if err != nil {
		return err
	}
	defer backend.Close()

	employees := svc.ListEmployees(ctx)
	if len(employees) == 0 {
		fmt.Println("No employees registered")
		return nil
	}

	fmt.Printf("%-12s %-20s %-20s %-10s\n", "ID", "AREA", "ROLE", "SHIFT")
	for _, e := range employees {
		fmt.Printf("%-12s %-20s %-20s %-10s\n", e.ID, e.Area, e.Role, e.Shift)
	}
	fmt.Printf("\n%d employees\n", len(employees))
	return nil
}
