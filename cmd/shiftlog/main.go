package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alexanderramin/shiftlog/internal/attendance"
	"github.com/alexanderramin/shiftlog/internal/cli"
	"github.com/alexanderramin/shiftlog/internal/config"
	"github.com/alexanderramin/shiftlog/internal/countdown"
	"github.com/alexanderramin/shiftlog/internal/db"
	"github.com/alexanderramin/shiftlog/internal/geo"
	"github.com/alexanderramin/shiftlog/internal/repository"
	"github.com/alexanderramin/shiftlog/internal/service"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
)

const geocoderTimeout = 3 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(config.Options{ConfigFile: os.Getenv("SHIFTLOG_CONFIG")})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	travelRepo := repository.NewSQLiteTravelRepo(database)
	workDayRepo := repository.NewSQLiteWorkDayRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	clock := clockwork.NewRealClock()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	positions, closePositions, err := positionStore(ctx, cfg, clock)
	if err != nil {
		return err
	}
	defer closePositions()

	engineOpts := []attendance.Option{
		attendance.WithClock(clock),
		attendance.WithPositions(positions),
		attendance.WithLocation(loc),
	}
	if cfg.GeocoderURL != "" {
		engineOpts = append(engineOpts, attendance.WithGeocoder(geo.NewNominatimGeocoder(cfg.GeocoderURL, geocoderTimeout)))
	}
	engine := attendance.NewEngine(attendance.NewSQLStore(uow), engineOpts...)

	scheduler := countdown.New(engine,
		countdown.WithClock(clock),
		countdown.WithInterval(cfg.Tick),
		countdown.WithLogger(logger),
	)
	defer scheduler.Stop()
	engine.Subscribe(scheduler)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	app := &cli.App{
		Attendance: service.NewAttendanceService(engine, scheduler, positions, observers...),
		Reports:    service.NewReportService(sessionRepo, travelRepo, workDayRepo, clock, loc, observers...),
		Ticks:      scheduler,
		User:       cfg.User,
		HourlyRate: cfg.HourlyRate,
		Location:   loc,
		Clock:      clock,
	}

	// Detect interactive terminal for prompts.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

// positionStore uses Redis when an address is configured so positions
// reported from other processes are visible; otherwise positions live in
// memory for the lifetime of the command.
func positionStore(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (geo.PositionStore, func(), error) {
	if cfg.RedisAddr == "" {
		return geo.NewMemoryPositionStore(clock, cfg.PositionTTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	return geo.NewRedisPositionStore(client, cfg.PositionTTL), func() { client.Close() }, nil
}
