package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"anoa.com/skillswap/internal/bootstrap"
	"anoa.com/skillswap/internal/config"
	notifService "anoa.com/skillswap/internal/modules/notification/service"
	"anoa.com/skillswap/internal/scheduler"
	"anoa.com/skillswap/internal/server"
	"anoa.com/skillswap/pkg/database"
	"anoa.com/skillswap/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skillswap",
		Short:         "SkillSync skill-swap marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), migrateCmd(), digestCmd())
	return root
}

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer zap.L().Sync() //nolint:errcheck

			if !skipMigrate {
				if err := migrate(db); err != nil {
					return err
				}
			}

			redisClient := connectRedis(cmd.Context(), cfg.RedisURL)
			if redisClient != nil {
				defer redisClient.Close()
			}

			srv, err := server.NewServer(cfg, db, redisClient)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migration on startup")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and seed the skill catalogue",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, db, err := setup()
			if err != nil {
				return err
			}
			defer zap.L().Sync() //nolint:errcheck

			return migrate(db)
		},
	}
}

func digestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Send one round of unread-message digest emails",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer zap.L().Sync() //nolint:errcheck

			infra := server.NewInfrastructure(cfg, db, nil)
			services := server.NewServices(cfg, server.NewGormRepositories(db), infra)

			sched := scheduler.NewScheduler()
			if err := sched.Register(services.Digest); err != nil {
				return err
			}
			return sched.RunByName(cmd.Context(), notifService.DigestJobName)
		},
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if _, err := logger.New(cfg.AppEnv); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrate(db *gorm.DB) error {
	if err := bootstrap.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := bootstrap.SeedSkills(db); err != nil {
		return fmt.Errorf("failed to seed skills: %w", err)
	}
	return nil
}

// connectRedis returns nil when redis is unset or unreachable; realtime delivery
// and cooldowns are then disabled.
func connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		zap.L().Warn("REDIS_URL not set, realtime notifications and rate limits disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		zap.L().Warn("invalid REDIS_URL", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unreachable", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}
