package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"rail-controls/internal/alerting"
	"rail-controls/internal/config"
	"rail-controls/internal/controls"
	"rail-controls/internal/dataset"
	"rail-controls/internal/domain"
	"rail-controls/internal/engine"
	"rail-controls/internal/scheduler"
	"rail-controls/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// RunStats summarises one completed evaluation for callers and alerting.
type RunStats struct {
	RunTS       time.Time
	TxCount     int
	HitCount    int
	BlockCount  int
	ReviewCount int
	Metrics     []domain.Metric
}

// BlockShare is the percentage of transactions resolved to BLOCK.
func (s RunStats) BlockShare() decimal.Decimal {
	if s.TxCount == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.BlockCount)).
		Div(decimal.NewFromInt(int64(s.TxCount))).
		Mul(decimal.NewFromInt(100))
}

// Run performs a single batch evaluation, writes the three output tables, and
// optionally persists and alerts on the run.
func (a *App) Run(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; run persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	_, err = a.evaluate(ctx, store)
	return err
}

// Watch re-runs the evaluation on an aligned interval until interrupted, so
// regenerated upstream batches are re-scored without operator action.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; run persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToBucket,
		StartupDelay: a.Config.Watch.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Dur("interval", a.Config.Watch.Interval).Msg("starting watch loop")
	err = sched.Run(ctx, func(ctx context.Context, _ time.Time) error {
		_, err := a.evaluate(ctx, store)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch loop stopped")
	return nil
}

// evaluate is the single-run core shared by Run, Watch, and Export: load the
// control set and the batch, run the engine, write the output tables.
func (a *App) evaluate(ctx context.Context, store *storage.Store) (RunStats, error) {
	ctrls, result, err := a.runEngine()
	if err != nil {
		return RunStats{}, err
	}

	outDir := a.Config.Output.Dir
	if err := dataset.WriteDecisions(filepath.Join(outDir, dataset.DecisionsFileName), result.Decisions); err != nil {
		return RunStats{}, fmt.Errorf("write decisions table: %w", err)
	}
	if err := dataset.WriteHits(filepath.Join(outDir, dataset.HitsFileName), result.Hits); err != nil {
		return RunStats{}, fmt.Errorf("write hits table: %w", err)
	}
	if err := dataset.WriteMetrics(filepath.Join(outDir, dataset.MetricsFileName), result.Metrics); err != nil {
		return RunStats{}, fmt.Errorf("write metrics table: %w", err)
	}

	stats := buildStats(result)

	a.Logger.Info().
		Int("transactions", stats.TxCount).
		Int("controls", len(ctrls)).
		Int("hits", stats.HitCount).
		Int("block", stats.BlockCount).
		Int("review", stats.ReviewCount).
		Str("output_dir", outDir).
		Msg("run complete")

	if store != nil {
		runID, err := store.PersistRun(ctx, stats.RunTS, result)
		if err != nil {
			a.Logger.Error().Err(err).Msg("failed to persist run")
		} else {
			a.Logger.Info().Int64("run_id", runID).Msg("run persisted")
		}
	}

	a.maybeAlert(ctx, stats)

	return stats, nil
}

// runEngine loads inputs and executes the pure evaluation pass.
func (a *App) runEngine() ([]controls.Control, engine.Result, error) {
	ctrls, err := controls.Load(a.Config.Inputs.ControlsPath)
	if err != nil {
		return nil, engine.Result{}, err
	}

	batch, err := dataset.Load(a.Config.Inputs.TransactionsPath)
	if err != nil {
		return nil, engine.Result{}, err
	}

	result := engine.New(a.Logger).Run(batch, ctrls)
	return ctrls, result, nil
}

func buildStats(result engine.Result) RunStats {
	stats := RunStats{
		RunTS:    time.Now().UTC(),
		TxCount:  len(result.Decisions),
		HitCount: len(result.Hits),
		Metrics:  result.Metrics,
	}
	for _, d := range result.Decisions {
		switch d.FinalAction {
		case domain.ActionBlock:
			stats.BlockCount++
		case domain.ActionReview:
			stats.ReviewCount++
		}
	}
	return stats
}

func (a *App) maybeAlert(ctx context.Context, stats RunStats) {
	if !a.Config.Alerting.Enabled {
		return
	}
	notifier := a.newNotifier()
	if notifier == nil {
		return
	}

	threshold := decimal.NewFromFloat(a.Config.Alerting.BlockSharePct)
	share := stats.BlockShare()
	if share.LessThan(threshold) {
		return
	}

	top := make([]string, 0, a.Config.Alerting.TopControlsCount)
	for _, m := range stats.Metrics {
		if len(top) >= a.Config.Alerting.TopControlsCount {
			break
		}
		top = append(top, fmt.Sprintf("%s (%d)", m.ControlID, m.Hits))
	}

	note := alerting.Notification{
		RunTS:        stats.RunTS,
		TxCount:      stats.TxCount,
		HitCount:     stats.HitCount,
		BlockCount:   stats.BlockCount,
		ReviewCount:  stats.ReviewCount,
		BlockShare:   share,
		ThresholdPct: threshold,
		TopControls:  top,
	}
	if err := notifier.Notify(ctx, note); err != nil {
		a.Logger.Error().Err(err).Msg("failed to dispatch run summary alert")
	}
}

// ExportOptions hold parameters for exporting the metrics table.
type ExportOptions struct {
	PNGPath string
	CSVPath string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
	Runs  bool
}
