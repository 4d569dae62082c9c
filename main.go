package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"atcoder-archiver/archive"
	"atcoder-archiver/config"
	"atcoder-archiver/notify"
	"atcoder-archiver/problems"
	"atcoder-archiver/scheduler"
	"atcoder-archiver/scraper"
	"atcoder-archiver/storage"
)

var (
	flagConfig    string
	flagUserID    string
	flagOutputDir string
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:           "atcoder-archiver",
	Short:         "Archive your accepted AtCoder submissions as source files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch and archive the latest accepted submission per problem and language",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, cancel := signalContext()
		defer cancel()

		if _, err := app.runner().Run(ctx); err != nil {
			return err
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a daemon, archiving daily at the configured sync time",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return app.serve()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive manifest statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return app.printStats(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default $ATCODER_ARCHIVER_CONFIG or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user-id", "", "AtCoder user id (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "archive root directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(runCmd, serveCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// App holds all application dependencies.
type App struct {
	cfg      *config.Config
	db       *storage.DB
	client   *problems.Client
	scraper  *scraper.Scraper
	notifier *notify.TelegramNotifier
}

func newApp() (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	setupLogging(cfg)

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	slog.Debug("database initialized", "path", cfg.DBPath)

	app := &App{
		cfg:     cfg,
		db:      db,
		client:  problems.NewClient(problems.WithTimeout(time.Duration(cfg.FetchTimeoutSecs) * time.Second)),
		scraper: scraper.NewScraper(scraper.WithTimeout(time.Duration(cfg.FetchTimeoutSecs) * time.Second)),
	}

	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize notifier: %w", err)
		}
		app.notifier = notifier
		slog.Debug("telegram notifier initialized", "chat_id", cfg.TelegramChatID)
	}

	return app, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *App) runner() *archive.Runner {
	opts := []archive.Option{
		archive.WithUserID(a.cfg.UserID),
		archive.WithOutputDir(a.cfg.OutputDir),
		archive.WithRequestDelay(time.Duration(a.cfg.RequestDelaySecs) * time.Second),
	}
	if a.notifier != nil {
		opts = append(opts, archive.WithNotifier(a.notifier))
	}
	return archive.NewRunner(a.client, a.scraper, &manifestAdapter{a.db}, opts...)
}

func (a *App) serve() error {
	sched, err := scheduler.NewScheduler(a.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("initialize scheduler: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := sched.ScheduleDaily(a.cfg.SyncTime, func() {
		if _, err := a.runner().Run(context.Background()); err != nil {
			slog.Error("scheduled archive run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule daily run: %w", err)
	}

	sched.Start()
	defer sched.Stop()
	slog.Info("daily sync scheduled", "time", a.cfg.SyncTime, "timezone", a.cfg.Timezone)

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

func (a *App) printStats(ctx context.Context) error {
	total, err := a.db.CountSubmissions(ctx)
	if err != nil {
		return fmt.Errorf("count submissions: %w", err)
	}

	counts, err := a.db.CountByLanguage(ctx)
	if err != nil {
		return fmt.Errorf("count by language: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Archived submissions: %d\n", total)
	for _, lc := range counts {
		fmt.Fprintf(&sb, "  %-12s %d\n", lc.Language, lc.Count)
	}
	fmt.Print(sb.String())
	return nil
}

func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// Flags beat config file and environment.
	if flagUserID != "" {
		cfg.UserID = flagUserID
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	level := parseLogLevel(cfg.LogLevel)
	if flagDebug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	return ctx, cancel
}

// manifestAdapter bridges the archive runner to the storage package.
type manifestAdapter struct {
	db *storage.DB
}

func (m *manifestAdapter) SaveSubmission(ctx context.Context, entry *archive.ManifestEntry) error {
	return m.db.SaveSubmission(ctx, &storage.ArchivedSubmission{
		ID:          entry.ID,
		ContestID:   entry.ContestID,
		ProblemID:   entry.ProblemID,
		Language:    entry.Language,
		EpochSecond: entry.EpochSecond,
		Path:        entry.Path,
		ArchivedAt:  time.Now(),
	})
}
