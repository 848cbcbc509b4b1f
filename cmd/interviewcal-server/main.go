package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"interviewcal/internal/config"
	"interviewcal/internal/service/agendas"
	"interviewcal/internal/service/users"
	"interviewcal/internal/seed"
	"interviewcal/internal/store/postgres"
)

const usage = `usage: interviewcal-server <command> [flags]

commands:
  serve    run the HTTP and gRPC servers (default)
  migrate  apply database migrations and exit
  seed     load users and availability from a YAML file and exit
`

func main() {
	log := newLogger("info")
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg, os.Args[1:]); err != nil {
		log.Error("exiting", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, cfg config.Config, args []string) error {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ContinueOnError)
		migrateFirst := fs.Bool("migrate", false, "apply migrations before serving (postgres only)")
		seedFile := fs.String("seed", "", "load fixtures from this YAML file before serving")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *migrateFirst {
			if err := migrateDatabase(log, cfg); err != nil {
				return err
			}
		}
		return serve(ctx, log, cfg, *seedFile)

	case "migrate":
		return migrateDatabase(log, cfg)

	case "seed":
		fs := flag.NewFlagSet("seed", flag.ContinueOnError)
		file := fs.String("file", "fixtures/demo.yaml", "fixtures file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if cfg.StorageDriver == config.StorageDriverMemory {
			return errors.New("seed needs a persistent store; use serve -seed with the memory driver")
		}
		st, err := openStores(ctx, log, cfg)
		if err != nil {
			return err
		}
		defer st.close()
		return seedFromFile(ctx, log, st, cfg, *file)

	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func migrateDatabase(log *slog.Logger, cfg config.Config) error {
	if cfg.StorageDriver != config.StorageDriverPostgres {
		return fmt.Errorf("migrate: storage driver %q has no schema", cfg.StorageDriver)
	}
	log.Info("applying migrations", databaseLogArgs(cfg.DatabaseURL)...)
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func seedFromFile(ctx context.Context, log *slog.Logger, st *stores, cfg config.Config, path string) error {
	fx, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	seeder := seed.NewSeeder(
		users.NewService(st.users, log),
		agendas.NewPublisher(st.resolver, st.agendas, agendas.Options{
			MaxWindowDays:      cfg.SearchMaxWindowDays,
			MaxSlotsPerPublish: cfg.PublishMaxSlots,
			Log:                log,
		}),
		log,
	)
	res, err := seeder.Apply(ctx, fx)
	if err != nil {
		return err
	}
	log.Info("fixtures loaded", slog.String("file", path), slog.Int("users", len(res.Users)), slog.Int("slots", res.Slots))
	return nil
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(level)})).With(
		slog.String("service", "interviewcal-server"),
	)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
