package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	healthuc "github.com/webntricks/unisearch/internal/usecase/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check index backend reachability and schema state",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	report := app.health.Check(ctx)

	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd.Printf("%-12s %s\n", name, report.Checks[name])
	}

	if report.Status != healthuc.Healthy {
		return fmt.Errorf("status: %s", report.Status)
	}
	cmd.Println("status: ok")
	return nil
}
