package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaviraj-dev/strikebot/pkg/config"
	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/engine"
	"github.com/kaviraj-dev/strikebot/pkg/exchange"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
	"github.com/kaviraj-dev/strikebot/pkg/logger/zerolog"
	"github.com/kaviraj-dev/strikebot/pkg/notification"
	"github.com/kaviraj-dev/strikebot/pkg/order"
	"github.com/kaviraj-dev/strikebot/pkg/portfolio"
	"github.com/kaviraj-dev/strikebot/pkg/storage"
	"github.com/kaviraj-dev/strikebot/pkg/strategy"
	"github.com/spf13/cobra"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// Command line flags
var (
	configPath string

	// Run command flags
	seed        int64
	ignoreHours bool

	// Replay command flags
	replayFile  string
	replayIndex string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "strikebot",
		Short:   "Intraday index options trading bot",
		Version: "1.0.0",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(buildRunCmd())
	rootCmd.AddCommand(buildReplayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trading loop against a live or simulated feed",
		RunE:  runLoop,
	}

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Simulated feed random seed")
	runCmd.Flags().BoolVar(&ignoreHours, "ignore-hours", false, "Trade outside market hours (simulated feeds)")

	return runCmd
}

func buildReplayCmd() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded tick session",
		RunE:  runReplay,
	}

	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "Recorded session CSV (timestamp,price)")
	replayCmd.Flags().StringVarP(&replayIndex, "index", "i", "", "Index the recording belongs to (defaults to configured index)")
	replayCmd.MarkFlagRequired("file")

	return replayCmd
}

func runLoop(cmd *cobra.Command, args []string) error {
	app, log, err := initialize()
	if err != nil {
		return err
	}

	feeder := exchange.NewSimFeeder(seed)
	eng, err := buildEngine(app, feeder, feeder, log, ignoreHours)
	if err != nil {
		return err
	}

	if app.Telegram.Enabled {
		telegram, err := notification.NewTelegram(eng, app.Telegram, log)
		if err != nil {
			return fmt.Errorf("telegram setup: %w", err)
		}
		eng.AttachNotifier(telegram)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Println(eng.Summary())
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	app, log, err := initialize()
	if err != nil {
		return err
	}

	index := replayIndex
	if index == "" {
		index = app.Trading.Index
	}
	app.Trading.Index = index

	feed, err := exchange.NewReplayFeed(replayFile, index)
	if err != nil {
		return err
	}

	eng, err := buildEngine(app, feed, feed, log, false)
	if err != nil {
		return err
	}

	if err := eng.Replay(cmd.Context(), feed); err != nil {
		return err
	}

	fmt.Println(eng.Summary())
	return nil
}

func initialize() (*config.App, logger.Logger, error) {
	app, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	log, err := zerolog.NewZerolog(app.LogLevel, dateTimeLayout, !app.LogJSON, app.LogJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("logger setup: %w", err)
	}

	return app, log, nil
}

// buildEngine wires the full stack: storage, broker, strategy instances,
// orchestrator and the engine itself.
func buildEngine(app *config.App, feeder core.Feeder, tickSource core.Feeder,
	log logger.Logger, ignoreSessionHours bool) (*engine.Engine, error) {

	store, err := openStorage(app.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("storage setup: %w", err)
	}

	broker := exchange.NewPaperBroker(feeder, log)
	coord := order.NewCoordinator(broker, log)

	instances, err := buildInstances(app, coord, log)
	if err != nil {
		return nil, err
	}

	orch := portfolio.NewOrchestrator(portfolio.NewShared(), log, instances...)

	opts := []engine.Option{engine.WithStorage(store)}
	if ignoreSessionHours {
		opts = append(opts, engine.WithoutSessionGuard())
	}

	eng := engine.New(&app.Trading, orch, tickSource, log, opts...)
	// Expiry resolution must follow the replay timestamps, not the host
	// wall clock.
	broker.SetClock(eng.Clock())
	return eng, nil
}

func openStorage(path string) (core.TradeStorage, error) {
	if path == "" || path == ":memory:" {
		return storage.FromMemory()
	}
	return storage.FromFile(path)
}

// buildInstances creates one strategy instance per configured id. Outside
// portfolio mode a single instance runs the configured strategy.
func buildInstances(app *config.App, coord *order.Coordinator, log logger.Logger) ([]*portfolio.Instance, error) {
	names := []string{app.Trading.Strategy}
	replicas := 1
	if app.Trading.PortfolioEnabled {
		if len(app.Trading.PortfolioStrategyIDs) > 0 {
			names = app.Trading.PortfolioStrategyIDs
		}
		if app.Trading.PortfolioInstances > 1 {
			replicas = app.Trading.PortfolioInstances
		}
	}

	instances := make([]*portfolio.Instance, 0, len(names)*replicas)
	for _, name := range names {
		for k := 1; k <= replicas; k++ {
			id := name
			if replicas > 1 {
				id = fmt.Sprintf("%s-%d", name, k)
			}
			resolver := config.NewResolver(&app.Trading,
				app.StrategyOverrides[name], app.InstanceOverrides[id])

			strat, err := strategy.New(name, strategy.Config{
				SupertrendPeriod:     resolver.SupertrendPeriod(),
				SupertrendMultiplier: resolver.SupertrendMultiplier(),
				MACDFast:             app.Trading.MACDFast,
				MACDSlow:             app.Trading.MACDSlow,
				MACDSignal:           app.Trading.MACDSignal,
				ADXPeriod:            app.Trading.ADXPeriod,
			})
			if err != nil {
				return nil, err
			}

			instances = append(instances, portfolio.NewInstance(
				id, app.Trading.Index, app.Trading.Mode, app.Trading.CandleInterval,
				strat, resolver, coord, log, nil))
		}
	}
	return instances, nil
}
