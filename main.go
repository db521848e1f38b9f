/* main.go
 * The "main" method for running the scouting bot, web server and offline tools. For details see `readme.md`
 * Usage: go run . bot --web
 *        go run . import ./scouting.tsv
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"cyber-scout/api/api"
	"cyber-scout/api/export"
	"cyber-scout/api/external"
	"cyber-scout/api/logic"
	"cyber-scout/api/store"
	"cyber-scout/bot"
	"cyber-scout/config"
	"cyber-scout/web"
)

const connectTimeout = 20 * time.Second

func main() {
	var envFile string
	var withWeb bool
	var limit int
	var team int

	app := &cli.App{
		Name:    "cyber-scout",
		Usage:   "Scouting bot and scoring tools for FRC Reefscape",
		Version: "v1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "env",
				Usage:       "path of the .env file",
				Value:       ".env",
				Destination: &envFile,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "bot",
				Usage: "run the Discord bot for the configured event",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "web",
						Usage:       "also serve webhooks, metrics and exports over HTTP",
						Destination: &withWeb,
					},
				},
				Action: func(cCtx *cli.Context) error {
					return runOnline(cCtx.Context, envFile, true, withWeb)
				},
			},
			{
				Name:  "serve",
				Usage: "serve TBA webhooks, metrics and exports without the bot",
				Action: func(cCtx *cli.Context) error {
					return runOnline(cCtx.Context, envFile, false, true)
				},
			},
			{
				Name:      "import",
				Usage:     "score a TSV, CSV or xlsx file and print the results",
				ArgsUsage: "<file>",
				Action: func(cCtx *cli.Context) error {
					a, err := offlineAPI(envFile)
					if err != nil {
						return err
					}
					summary, err := importFile(cCtx.Context, a, cCtx.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(export.ScoredTable(summary.Accepted))
					if len(summary.Errors) > 0 {
						fmt.Println(formatRowErrors(summary.Errors, 0))
					}
					return nil
				},
			},
			{
				Name:      "records",
				Usage:     "print a team's best and worst head to head records from a file",
				ArgsUsage: "<file> <team>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "limit",
						Aliases:     []string{"n"},
						Usage:       "records to show in each table, defaults to SCOUT_RECORD_LIMIT",
						Destination: &limit,
					},
				},
				Action: func(cCtx *cli.Context) error {
					cfg, err := config.Load(envFile)
					if err != nil {
						return err
					}
					a, err := newOfflineAPI(cfg)
					if err != nil {
						return err
					}
					teamNumber, err := parseTeamArg(cCtx.Args().Get(1))
					if err != nil {
						return err
					}
					if _, err := importFile(cCtx.Context, a, cCtx.Args().First()); err != nil {
						return err
					}
					if limit <= 0 {
						limit = cfg.RecordLimit
					}
					records, err := a.Records(teamNumber, limit)
					if err != nil {
						return err
					}
					fmt.Println(export.RecordsTable(records))
					return nil
				},
			},
			{
				Name:      "export",
				Usage:     "convert a TSV, CSV or xlsx file into a workbook with the scored records",
				ArgsUsage: "<file> <out.xlsx>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "team",
						Usage:       "only export this team",
						Destination: &team,
					},
				},
				Action: func(cCtx *cli.Context) error {
					out := cCtx.Args().Get(1)
					if out == "" {
						return fmt.Errorf("an output file is required")
					}
					a, err := offlineAPI(envFile)
					if err != nil {
						return err
					}
					if _, err := importFile(cCtx.Context, a, cCtx.Args().First()); err != nil {
						return err
					}
					return writeFile(out, func(f *os.File) error { return a.ExportWorkbook(f, team) })
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// offlineAPI builds an API with no store or TBA client for the file commands
func offlineAPI(envFile string) (*api.API, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	return newOfflineAPI(cfg)
}

func newOfflineAPI(cfg config.Config) (*api.API, error) {
	rubric, err := cfg.Rubrics()
	if err != nil {
		return nil, err
	}
	return api.NewAPI(api.Options{Rubric: rubric, Logger: cfg.NewLogger()}), nil
}

// runOnline connects to mongo and TBA, loads the configured event, then runs the bot and/or web server until ctx ends
// Preconditions: Receives the signal context, the .env path and which front ends to run
// Postconditions: Returns an error if configuration, connecting or a front end fails
func runOnline(ctx context.Context, envFile string, withBot bool, withWeb bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if cfg.Event == "" {
		return fmt.Errorf("SCOUT_EVENT is required")
	}
	if cfg.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	rubric, err := cfg.Rubrics()
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	db, err := store.NewStore(connectCtx, cfg.MongoDB, cfg.MongoURI, cfg.Event)
	if err != nil {
		return fmt.Errorf("failed to initialise store: %w", err)
	}
	db.Logger = logger

	if cfg.TBAKey == "" {
		logger.Warn("TBA_API_KEY is not set, schedule checks and event search are disabled")
	}
	tba := external.NewClient(cfg.TBAKey,
		external.WithRateLimit(cfg.TBARatePerSec, cfg.TBABurst),
		external.WithLogger(logger),
	)

	a := api.NewAPI(api.Options{
		Store:    db,
		TBA:      tba,
		Rubric:   rubric,
		Metrics:  api.NewMetrics(),
		Logger:   logger,
		District: cfg.District,
		HomeTeam: cfg.HomeTeam,
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Error("failed to disconnect from mongo", "error", err)
		}
	}()

	// SCOUT_EVENT is a key, so it is still usable when TBA can't confirm it
	_, err = a.SelectEvent(connectCtx, cfg.Event)
	if errors.Is(err, logic.ErrUnknownEvent) {
		logger.Warn("event not found on TBA, loading it by key", "event", cfg.Event)
		err = a.LoadEvent(connectCtx, external.Event{Key: cfg.Event})
	}
	if err != nil {
		return fmt.Errorf("failed to load event %s: %w", cfg.Event, err)
	}
	if err := db.EnsureSchedule(connectCtx); err != nil {
		logger.Warn("submissions will not be checked against the schedule", "error", err)
	}
	info := a.EventInfo()
	logger.Info("event loaded", "event", info.Key, "records", info.Records, "scheduled_matches", info.ScheduledMatches)

	var b *bot.Bot
	if withBot {
		if b, err = bot.NewBot(cfg.DiscordToken, a); err != nil {
			return err
		}
	}

	// the first front end to stop with an error stops the others
	runCtx, stopAll := context.WithCancel(ctx)
	defer stopAll()

	errCh := make(chan error, 2)
	running := 0
	if withWeb {
		running++
		go func() {
			errCh <- web.Start(runCtx, web.Config{
				Addr:          cfg.HTTPAddr,
				API:           a,
				WebhookSecret: cfg.TBAWebhookSecret,
				Logger:        logger,
			})
		}()
	}
	if b != nil {
		running++
		go func() { errCh <- b.Run(runCtx) }()
	}

	var firstErr error
	for range running {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			logger.Error("front end stopped", "error", err)
			stopAll()
		}
	}
	return firstErr
}
