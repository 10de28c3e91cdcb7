package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"rail-controls/internal/storage"
)

type decisionLister interface {
	ListRecentDecisions(ctx context.Context, limit int) ([]storage.DecisionRow, error)
}

type runLister interface {
	ListRecentRuns(ctx context.Context, limit int) ([]storage.RunRecord, error)
}

// Show prints recent persisted decisions (or run headers) from the database.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show persisted runs")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.Runs {
		return a.showRuns(ctx, store, opts.Limit)
	}
	return a.showDecisions(ctx, store, opts.Limit)
}

func (a *App) showDecisions(ctx context.Context, store decisionLister, limit int) error {
	rows, err := store.ListRecentDecisions(ctx, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "no decisions found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Tx\tRail\tAction\tAmount\tControls\tActions")

	for _, row := range rows {
		d := row.Decision
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%.2f\t%s\t%s\n",
			d.TxID,
			d.Rail,
			d.FinalAction,
			d.Amount,
			sanitizeInline(d.TriggeredControls),
			sanitizeInline(d.TriggeredActions),
		)
	}

	return writer.Flush()
}

func (a *App) showRuns(ctx context.Context, store runLister, limit int) error {
	runs, err := store.ListRecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "no runs found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Run\tTime (UTC)\tTransactions\tHits\tBlock\tReview")

	for _, run := range runs {
		fmt.Fprintf(
			writer,
			"%d\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.RunTS.UTC().Format(time.RFC3339),
			run.TxCount,
			run.HitCount,
			run.BlockCount,
			run.ReviewCount,
		)
	}

	return writer.Flush()
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
