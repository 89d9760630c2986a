package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/auth"
	"clocker/backend/internal/commands"
	"clocker/backend/internal/middleware"
	"clocker/backend/internal/pkg/config"
	"clocker/backend/internal/pkg/logger"
	"clocker/backend/internal/pkg/repository/postgresql"
	"clocker/backend/internal/router"

	"github.com/ardanlabs/conf"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type flags struct {
	Config        string `conf:"default:./config.yaml,help:path to the yaml configuration"`
	Migrate       bool   `conf:"default:true,help:apply pending migrations on start"`
	LocalDev      bool   `conf:"default:false,help:human readable debug logs"`
	AdminEmail    string `conf:"default:admin@clocker.local"`
	AdminPassword string `conf:"noprint,help:seed an admin with this password when none exists"`
}

func main() {
	if err := run(); err != nil {
		if errors.Is(err, commands.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("clocker stopped")
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "reading .env:", err)
	}

	var f flags
	if err := conf.Parse(os.Args[1:], "CLOCKER", &f); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage("CLOCKER", &f)
			if err != nil {
				return errors.Wrap(err, "generating usage")
			}
			fmt.Println(usage)
			return commands.ErrHelp
		}
		return errors.Wrap(err, "parsing flags")
	}

	logger.Setup(f.LocalDev)
	if !f.LocalDev {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.NewConfig(f.Config)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	db, err := postgresql.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if f.Migrate {
		if err = commands.MigrateUP(ctx, db); err != nil {
			return errors.Wrap(err, "migrating")
		}
	}
	if f.AdminPassword != "" {
		if err = commands.SeedAdmin(ctx, db, f.AdminEmail, f.AdminPassword); err != nil {
			return err
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-process locks and uncached zones")
	}
	cancel()

	a, err := auth.New(cfg.JWTKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}

	shutdown := make(chan os.Signal, 1)
	app := web.NewApp(shutdown, middleware.Logger())

	r := router.NewRouter(app, db, rdb, a, cfg)
	if err = r.Init(); err != nil {
		return err
	}

	ctx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()
	go func() {
		select {
		case <-shutdown:
			log.Warn().Msg("integrity shutdown requested")
			cancelServe()
		case <-ctx.Done():
		}
	}()

	log.Info().Str("addr", cfg.ServerPort).Msg("clocker listening")
	return app.Serve(ctx, cfg.ServerPort)
}
