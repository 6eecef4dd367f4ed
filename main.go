package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/blocksum/internal/config"
	"github.com/robalobadob/blocksum/internal/httpserver"
	"github.com/robalobadob/blocksum/internal/i18n"
	"github.com/robalobadob/blocksum/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if err := i18n.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load message catalogs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore(cfg.SessionTTL)
	srv := httpserver.New(mem, cfg, httpserver.WithLogger(log.Logger))
	go srv.Sweep(ctx, sweepInterval(cfg.SessionTTL))

	log.Info().Str("addr", cfg.Addr()).Str("env", cfg.AppEnv).Msg("starting blocksum")
	if err := srv.Start(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// sweepInterval checks for idle lessons a few times per TTL, at most once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}
