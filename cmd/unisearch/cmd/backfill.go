package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	syncuc "github.com/webntricks/unisearch/internal/usecase/sync"
)

var (
	backfillPerPage int
	backfillBatch   int
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Reindex the full content catalog via bulk imports",
	RunE:  runBackfill,
}

func init() {
	backfillCmd.Flags().IntVar(&backfillPerPage, "per-page", 100, "catalog page size")
	backfillCmd.Flags().IntVar(&backfillBatch, "batch", 40, "documents per bulk import")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	// The flags override the configured synchronizer settings for this run.
	syncSvc := syncuc.New(app.index, app.schema, app.content, syncuc.Options{
		Types:     app.cfg.Index.Types,
		PageSize:  backfillPerPage,
		BatchSize: backfillBatch,
	}, app.logger)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
	)

	start := time.Now()
	last := 0
	total, err := syncSvc.Backfill(context.Background(), func(total int) {
		_ = bar.Add(total - last)
		last = total
	})
	_ = bar.Finish()
	cmd.Println()
	if err != nil {
		app.logger.Error("backfill failed", zap.Int("indexed", total), zap.Error(err))
		return fmt.Errorf("backfill aborted after %d documents: %w", total, err)
	}

	app.logger.Info("backfill complete",
		zap.Int("indexed", total),
		zap.Duration("took", time.Since(start)),
	)
	cmd.Printf("Indexed %d documents in %s\n", total, time.Since(start).Round(time.Millisecond))
	return nil
}
