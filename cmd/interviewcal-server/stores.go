package main

import (
	"context"
	"log/slog"

	"interviewcal/internal/config"
	"interviewcal/internal/store"
	"interviewcal/internal/store/memory"
	"interviewcal/internal/store/postgres"
	"interviewcal/internal/store/rediscache"
)

type stores struct {
	users    store.UserRepository
	resolver store.UserResolver
	agendas  store.AgendaRepository
	health   store.Pinger
	closers  []func() error
	log      *slog.Logger
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warn("close failed", slog.Any("err", err))
		}
	}
}

// openStores builds the repositories for the configured driver. When a Redis
// URL is set, role lookups go through the user cache.
func openStores(ctx context.Context, log *slog.Logger, cfg config.Config) (*stores, error) {
	st := &stores{log: log}

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Info("using in-memory store")
		m := memory.New()
		st.users, st.agendas, st.health = m, m, m
	default:
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
			log.Error("database connection failed", args...)
			return nil, err
		}
		st.closers = append(st.closers, func() error { return postgres.Close(db) })
		userRepo := postgres.NewUserRepo(db)
		st.users, st.health = userRepo, userRepo
		st.agendas = postgres.NewAgendaRepo(db)
	}
	st.resolver = st.users

	if cfg.RedisURL != "" {
		client, err := rediscache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, client.Close)
		st.resolver = rediscache.NewUserCache(client, st.users, cfg.RedisUserTTL, log)
		log.Info("user cache enabled", slog.Duration("ttl", cfg.RedisUserTTL))
	}
	return st, nil
}
