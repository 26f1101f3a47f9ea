package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/cn-calendar/internal/anniversary"
	"github.com/username/cn-calendar/internal/config"
	"github.com/username/cn-calendar/internal/engine"
	"github.com/username/cn-calendar/internal/festival"
	"github.com/username/cn-calendar/internal/schedule"
	"github.com/username/cn-calendar/internal/server"
	"github.com/username/cn-calendar/pkg/dateutil"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cn-calendar",
		Short: "Chinese statutory holiday and lunar calendar engine",
		Long:  "Classify dates under the Chinese statutory holiday regime, convert lunar dates, and query nearest holidays, festivals and solar terms",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(detailCmd())
	rootCmd.AddCommand(nearestCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired components behind every subcommand.
type app struct {
	cfg    *config.Config
	store  *schedule.SQLiteStore
	cache  *schedule.Cache
	engine *engine.Engine
}

func initializeApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := schedule.OpenSQLiteStore(cfg.Store.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule store: %w", err)
	}

	fetcher := schedule.NewHTTPFetcher(cfg.Source.URL, cfg.Source.GetTimeout(), logger)
	cache := schedule.NewCache(store, fetcher, cfg.Source.GetCacheTTL(), logger)

	anniversaries, warnings := anniversary.Parse(cfg.Anniversaries, logger)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipped anniversary %q: %s\n", w.Key, w.Reason)
	}

	eng := engine.New(cache, festival.NewCatalog(), anniversaries, logger)
	return &app{cfg: cfg, store: store, cache: cache, engine: eng}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close schedule store", zap.Error(err))
	}
}

func printDetail(detail engine.DayDetail) {
	fmt.Printf("📅 %s 周%s\n", detail.Date.Format("2006-01-02"), dateutil.WeekdayCN(detail.Date))
	status := detail.Status.String()
	if detail.Name != "" {
		status += " (" + detail.Name + ")"
	}
	if detail.Unverified {
		status += " [未核实，按星期推算]"
	}
	fmt.Printf("   状态: %s\n", status)
	if detail.LunarText != "" {
		fmt.Printf("   农历: %s %s%s年\n", detail.LunarText, detail.YearName, detail.Zodiac)
	}
	if detail.Term != "" {
		fmt.Printf("   节气: %s\n", detail.Term)
	}
	if len(detail.Festivals) > 0 {
		fmt.Printf("   节日: %v\n", detail.Festivals)
	}
	if len(detail.Anniversaries) > 0 {
		fmt.Printf("   纪念日: %v\n", detail.Anniversaries)
	}
	if detail.Suit != "" {
		fmt.Printf("   宜: %s\n", detail.Suit)
	}
	if detail.Avoid != "" {
		fmt.Printf("   忌: %s\n", detail.Avoid)
	}
}

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's classification and calendar detail",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.close()

			today := dateutil.Today()
			if _, err := a.cache.Ensure(cmd.Context(), today.Year()); err != nil {
				logger.Warn("No schedule data for current year", zap.Error(err))
			}

			printDetail(a.engine.DayDetail(today))
			return nil
		},
	}
}

func detailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail <date>",
		Short: "Show the detail bundle for a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", args[0], err)
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.close()

			printDetail(a.engine.DayDetail(date))
			return nil
		},
	}
}

func nearestCmd() *cobra.Command {
	var (
		anchorStr string
		minDays   int
		maxDays   int
	)

	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Show the nearest holiday, festival and solar term",
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor := dateutil.Today()
			if anchorStr != "" {
				var err error
				if anchor, err = dateutil.ParseDate(anchorStr); err != nil {
					return fmt.Errorf("invalid anchor %q: %w", anchorStr, err)
				}
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.cache.Ensure(cmd.Context(), anchor.Year()); err != nil {
				logger.Warn("No schedule data for anchor year", zap.Error(err))
			}

			if bundle, ok := a.engine.HolidayBundle(anchor, minDays, maxDays); ok {
				fmt.Printf("🏖  最近节假日 (%d天后):\n%s\n\n", bundle.DaysDiff, bundle.Summary())
			} else {
				fmt.Println("🏖  窗口内无节假日安排")
			}

			if event, ok := a.engine.NearestFestival(anchor, minDays, maxDays); ok {
				fmt.Printf("🎉 最近节日: %s %s (%d天后)\n", event.Name, event.Date.Format("2006-01-02"), event.DaysDiff)
			}

			if term, diff, ok := a.engine.NearestTerm(anchor, minDays, maxDays); ok {
				fmt.Printf("🌾 最近节气: %s %s (%d天后)\n", term.Name, term.Date.Format("2006-01-02"), diff)
			}

			for _, event := range a.engine.FutureAnniversaries(anchor, maxDays) {
				fmt.Printf("💝 纪念日: %s %s (%d天后)\n",
					event.Anniversary.Label, event.Date.Format("2006-01-02"), event.DaysDiff)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&anchorStr, "anchor", "", "Anchor date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&minDays, "min", 0, "Minimum days ahead")
	cmd.Flags().IntVar(&maxDays, "max", 60, "Maximum days ahead")
	return cmd
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [year...]",
		Short: "Fetch and persist the schedule for the given years (default current)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.close()

			years := []int{dateutil.Today().Year()}
			if len(args) > 0 {
				years = years[:0]
				for _, arg := range args {
					year, err := strconv.Atoi(arg)
					if err != nil {
						return fmt.Errorf("invalid year %q", arg)
					}
					years = append(years, year)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			for _, year := range years {
				record, err := a.cache.Refresh(ctx, year)
				if err != nil {
					fmt.Printf("❌ %d: %v\n", year, err)
					continue
				}
				fmt.Printf("✅ %d: %d overridden days stored\n", year, len(record.Overrides))
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.close()

			srv := server.New(a.engine, a.cache, logger)

			logger.Info("Starting HTTP server", zap.String("addr", a.cfg.Server.Addr))
			fmt.Printf("🚀 Listening on %s\n", a.cfg.Server.Addr)
			return http.ListenAndServe(a.cfg.Server.Addr, srv.Routes())
		},
	}
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
